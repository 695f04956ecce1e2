package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"krishi-advisor/api/internal/advisory"
	"krishi-advisor/api/internal/advisory/types"
	"krishi-advisor/api/internal/calendar"
	"krishi-advisor/api/internal/llm"
)

type fakeBot struct {
	mu      sync.Mutex
	sent    []tgbotapi.Chattable
	fileErr error
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, c)
	return tgbotapi.Message{}, nil
}

func (b *fakeBot) Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (b *fakeBot) GetFileDirectURL(fileID string) (string, error) {
	if b.fileErr != nil {
		return "", b.fileErr
	}
	return "https://files.example/" + fileID, nil
}

func (b *fakeBot) texts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, c := range b.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

func (b *fakeBot) last() string {
	t := b.texts()
	if len(t) == 0 {
		return ""
	}
	return t[len(t)-1]
}

func command(chatID int64, text string) tgbotapi.Update {
	n := len(text)
	for i, c := range text {
		if c == ' ' {
			n = i
			break
		}
	}
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: chatID},
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: n}},
	}}
}

func offline() llm.Generator {
	return llm.GeneratorFunc(func(context.Context, llm.Request) (string, error) {
		return "", llm.ErrNotConfigured
	})
}

func newRouter(gen llm.Generator, opts Options) (*Router, *fakeBot) {
	bot := &fakeBot{}
	return NewRouter(bot, advisory.New(advisory.Config{Text: gen}), opts), bot
}

func TestVerifyCommand(t *testing.T) {
	r, bot := newRouter(offline(), Options{DefaultLanguage: types.English})
	r.HandleUpdate(context.Background(), command(7, "/verify FAKE2024X01"))

	out := bot.last()
	assert.Contains(t, out, "FAKE")
	assert.Contains(t, out, "95%")
	assert.NotContains(t, out, "offline estimate")
}

func TestLanguageCommandAndCallback(t *testing.T) {
	r, bot := newRouter(offline(), Options{DefaultLanguage: types.English})

	r.HandleUpdate(context.Background(), command(1, "/lang hi"))
	assert.Equal(t, "भाषा चुनी गई: Hindi", bot.last())
	assert.Equal(t, types.Hindi, r.lang(1))
	assert.Equal(t, types.English, r.lang(2))

	r.HandleUpdate(context.Background(), command(1, "/lang"))
	bot.mu.Lock()
	kb := bot.sent[len(bot.sent)-1].(tgbotapi.MessageConfig).ReplyMarkup
	bot.mu.Unlock()
	assert.IsType(t, tgbotapi.InlineKeyboardMarkup{}, kb)

	r.HandleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID: "cb", Data: "lang:mr", Message: &tgbotapi.Message{MessageID: 3, Chat: &tgbotapi.Chat{ID: 1}},
	}})
	assert.Equal(t, types.Marathi, r.lang(1))
}

func TestUsageOnBadArguments(t *testing.T) {
	r, bot := newRouter(offline(), Options{})
	for _, cmd := range []string{"/soil 6.5 200", "/advice wheat", "/calendar wheat two 2025-11-10", "/verify"} {
		r.HandleUpdate(context.Background(), command(1, cmd))
		assert.Contains(t, bot.last(), "Could not read the command", cmd)
	}
}

type memSaver struct{ saved []types.SoilTest }

func (m *memSaver) Save(_ context.Context, t *types.SoilTest) error {
	m.saved = append(m.saved, *t)
	return nil
}

func TestSoilCommandFallsBackAndSaves(t *testing.T) {
	saver := &memSaver{}
	r, bot := newRouter(offline(), Options{SoilTests: saver})

	r.HandleUpdate(context.Background(), command(42, "/soil 5,6 180 12 20 0.4 Satara"))

	out := bot.last()
	assert.Contains(t, out, "(offline estimate)")
	assert.Contains(t, out, "Showing standard advice")
	require.Len(t, saver.saved, 1)
	assert.Equal(t, "tg:42", saver.saved[0].UserID)
	assert.Equal(t, 5.6, saver.saved[0].PH)
	assert.Equal(t, "Satara", saver.saved[0].Location)
}

func TestCalendarCommand(t *testing.T) {
	gen := llm.GeneratorFunc(func(context.Context, llm.Request) (string, error) {
		return `{"tasks":[{"dayFromSowing":0,"stage":"Sowing","title":"Sow seed"}]}`, nil
	})
	r, bot := newRouter(gen, Options{IDs: &calendar.SequenceGenerator{}})

	r.HandleUpdate(context.Background(), command(1, "/calendar wheat 2 2025-11-10 Indore"))
	assert.Contains(t, bot.last(), "2025-11-10  Sowing: Sow seed")
}

type memPlans struct {
	plans []types.FarmPlan
	tasks map[string][]types.CalendarTask
}

func (m *memPlans) Create(_ context.Context, p *types.FarmPlan) error {
	p.ID = fmt.Sprintf("plan-%d", len(m.plans)+1)
	m.plans = append(m.plans, *p)
	return nil
}

func (m *memPlans) SaveTasks(_ context.Context, planID string, tasks []types.CalendarTask) error {
	if m.tasks == nil {
		m.tasks = map[string][]types.CalendarTask{}
	}
	m.tasks[planID] = tasks
	return nil
}

func (m *memPlans) ListByUser(_ context.Context, userID string) ([]types.FarmPlan, error) {
	var out []types.FarmPlan
	for _, p := range m.plans {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPlans) ListTasks(_ context.Context, planID string) ([]types.CalendarTask, error) {
	return m.tasks[planID], nil
}

func TestTasksCommand(t *testing.T) {
	gen := llm.GeneratorFunc(func(context.Context, llm.Request) (string, error) {
		return `{"tasks":[
			{"dayFromSowing":-3,"stage":"Land preparation","title":"Plough"},
			{"dayFromSowing":0,"stage":"Sowing","title":"Sow seed","quantityHint":"40 kg/acre"},
			{"dayFromSowing":30,"stage":"Vegetative","title":"Weed"}]}`, nil
	})
	plans := &memPlans{}
	now := time.Date(2025, 11, 8, 6, 0, 0, 0, time.UTC)
	r, bot := newRouter(gen, Options{
		IDs:       &calendar.SequenceGenerator{},
		FarmPlans: plans,
		Now:       func() time.Time { return now },
	})

	r.HandleUpdate(context.Background(), command(5, "/calendar wheat 2 2025-11-10 Indore"))
	require.Len(t, plans.plans, 1)
	assert.Equal(t, "tg:5", plans.plans[0].UserID)
	require.Len(t, plans.tasks["plan-1"], 3)
	assert.Equal(t, "plan-1", plans.tasks["plan-1"][0].FarmPlanID)

	r.HandleUpdate(context.Background(), command(5, "/tasks"))
	out := bot.last()
	assert.Contains(t, out, "Tasks for the next 14 days")
	assert.Contains(t, out, "2025-11-10  Sowing: Sow seed")
	assert.Contains(t, out, "40 kg/acre")
	assert.NotContains(t, out, "Plough")
	assert.NotContains(t, out, "Weed")

	r.HandleUpdate(context.Background(), command(5, "/tasks 60"))
	assert.Contains(t, bot.last(), "Weed")

	r.HandleUpdate(context.Background(), command(6, "/tasks"))
	assert.Equal(t, "No open tasks in the next 14 days.", bot.last())

	r.HandleUpdate(context.Background(), command(5, "/tasks soon"))
	assert.Contains(t, bot.last(), "/tasks [days]")
}

func TestTasksCommandWithoutStorage(t *testing.T) {
	r, bot := newRouter(offline(), Options{})
	r.HandleUpdate(context.Background(), command(5, "/tasks"))
	assert.Equal(t, "Saved calendars are not available right now.", bot.last())
}

func TestPhotoVerification(t *testing.T) {
	var seen llm.Request
	gen := llm.GeneratorFunc(func(_ context.Context, in llm.Request) (string, error) {
		seen = in
		return `{"status":"GENUINE","confidence":88,"productName":"DAP 18-46"}`, nil
	})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))

	r, bot := newRouter(gen, Options{Download: func(_ context.Context, url string) ([]byte, error) {
		assert.Equal(t, "https://files.example/big", url)
		return buf.Bytes(), nil
	}})
	r.HandleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:  &tgbotapi.Chat{ID: 9},
		Photo: []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "big"}},
	}})

	assert.Equal(t, "image/png", seen.MIMEType)
	assert.Equal(t, buf.Bytes(), seen.Image)
	assert.Contains(t, bot.last(), "DAP 18-46")
	assert.Contains(t, bot.texts()[0], "Photo received")
}

func TestPhotoDownloadFailure(t *testing.T) {
	called := false
	gen := llm.GeneratorFunc(func(context.Context, llm.Request) (string, error) {
		called = true
		return "", nil
	})
	r, bot := newRouter(gen, Options{})
	bot.fileErr = errors.New("file too big")

	r.HandleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:  &tgbotapi.Chat{ID: 9},
		Photo: []tgbotapi.PhotoSize{{FileID: "x"}},
	}})
	assert.False(t, called)
	assert.Contains(t, bot.last(), "UNKNOWN")
	assert.Contains(t, bot.last(), "offline estimate")
}

func TestShrink(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2500, 2000))))

	out, mime := shrink(buf.Bytes())
	assert.Equal(t, "image/jpeg", mime)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.LessOrEqual(t, cfg.Width*cfg.Height, maxPixels)

	small := []byte("not an image")
	out, mime = shrink(small)
	assert.Equal(t, small, out)
	assert.Equal(t, "image/jpeg", mime)
}
