package telegram

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // decode PNG photos sent as files
	"io"
	"math"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"krishi-advisor/api/internal/advisory/fallback"
	"krishi-advisor/api/internal/util"
)

const maxPixels = 4_000_000

// acceptPhoto verifies the package shown in the largest size of the photo.
func (r *Router) acceptPhoto(ctx context.Context, msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	lang := r.lang(cid)
	r.send(cid, fallback.Label(lang, "photo_received"))

	ph := msg.Photo[len(msg.Photo)-1]
	var img []byte
	url, err := r.Bot.GetFileDirectURL(ph.FileID)
	if err == nil {
		img, err = r.download(ctx, url)
	}
	if err != nil {
		// the assembler turns an empty image into the "analysis failed" record
		r.log.Warn("photo download failed", zap.Int64("chat", cid), zap.Error(err))
		img = nil
	}

	img, mime := shrink(img)
	res := r.Svc.VerifyProductImage(ctx, img, mime, lang)
	r.send(cid, renderVerification(res, lang))
}

// shrink re-encodes photos above maxPixels as a smaller JPEG. Anything it
// cannot decode is passed through unchanged.
func shrink(b []byte) ([]byte, string) {
	mime := util.PickMIME("", "", b)
	if len(b) == 0 {
		return b, mime
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil || cfg.Width*cfg.Height <= maxPixels {
		return b, mime
	}
	src, _, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return b, mime
	}
	scale := math.Sqrt(float64(maxPixels) / float64(cfg.Width*cfg.Height))
	newW := max(1, int(float64(cfg.Width)*scale))
	newH := max(1, int(float64(cfg.Height)*scale))

	var out bytes.Buffer
	if err := jpeg.Encode(&out, scaleDownNN(src, newW, newH), &jpeg.Options{Quality: 90}); err != nil {
		return b, mime
	}
	return out.Bytes(), "image/jpeg"
}

func scaleDownNN(src image.Image, newW, newH int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	sb := src.Bounds()
	srcW := sb.Dx()
	srcH := sb.Dy()
	for y := 0; y < newH; y++ {
		sy := sb.Min.Y + (y*srcH)/newH
		for x := 0; x < newW; x++ {
			sx := sb.Min.X + (x*srcW)/newW
			dst.Set(x, y, src.At(sx, sy))
		}
	}
	return dst
}

func download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(b))
	}
	return io.ReadAll(io.LimitReader(resp.Body, 20<<20))
}

var httpClient = &http.Client{Timeout: 60 * time.Second}
