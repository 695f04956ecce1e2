// Package telegram serves the advisory assemblers to farmers over a Telegram
// bot.
package telegram

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"krishi-advisor/api/internal/advisory"
	"krishi-advisor/api/internal/advisory/fallback"
	"krishi-advisor/api/internal/advisory/types"
	"krishi-advisor/api/internal/calendar"
	"krishi-advisor/api/internal/logging"
)

const maxMessageLen = 3900

// BotAPI is the part of *tgbotapi.BotAPI the router uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// SoilTestSaver keeps soil tests sent with /soil; *store.SoilTestRepo
// implements it.
type SoilTestSaver interface {
	Save(ctx context.Context, t *types.SoilTest) error
}

// FarmPlans keeps calendars made with /calendar and lists them for /tasks;
// *store.FarmPlanRepo implements it.
type FarmPlans interface {
	Create(ctx context.Context, p *types.FarmPlan) error
	SaveTasks(ctx context.Context, planID string, tasks []types.CalendarTask) error
	ListByUser(ctx context.Context, userID string) ([]types.FarmPlan, error)
	ListTasks(ctx context.Context, planID string) ([]types.CalendarTask, error)
}

const defaultTaskDays = 14

type Options struct {
	DefaultLanguage types.Language
	SoilTests       SoilTestSaver // optional
	FarmPlans       FarmPlans     // optional; /tasks needs it
	IDs             calendar.IDGenerator
	// Timeout bounds the handling of one update.
	Timeout time.Duration
	// Download fetches a Telegram file URL; a plain HTTP GET when nil.
	Download func(ctx context.Context, url string) ([]byte, error)
	Logger   *zap.Logger
	Now      func() time.Time
}

type Router struct {
	Bot BotAPI
	Svc *advisory.Service

	defLang   types.Language
	soilTests SoilTestSaver
	farmPlans FarmPlans
	ids       calendar.IDGenerator
	timeout   time.Duration
	download  func(ctx context.Context, url string) ([]byte, error)
	log       *zap.Logger
	now       func() time.Time
	langs     langState
}

func NewRouter(bot BotAPI, svc *advisory.Service, opts Options) *Router {
	r := &Router{
		Bot:       bot,
		Svc:       svc,
		defLang:   opts.DefaultLanguage,
		soilTests: opts.SoilTests,
		farmPlans: opts.FarmPlans,
		ids:       opts.IDs,
		timeout:   opts.Timeout,
		download:  opts.Download,
		log:       opts.Logger,
		now:       opts.Now,
	}
	if !r.defLang.Valid() {
		r.defLang = types.Baseline
	}
	if r.ids == nil {
		r.ids = calendar.UUIDGenerator{}
	}
	if r.timeout <= 0 {
		r.timeout = 3 * time.Minute
	}
	if r.download == nil {
		r.download = download
	}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	if r.now == nil {
		r.now = time.Now
	}
	r.log = r.log.With(zap.String("component", "telegram"))
	return r
}

func (r *Router) lang(chatID int64) types.Language { return r.langs.get(chatID, r.defLang) }

// HandleUpdate processes one update to completion.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		r.handleCallback(*upd.CallbackQuery)
		return
	}
	if upd.Message == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	switch {
	case upd.Message.IsCommand():
		r.HandleCommand(ctx, upd.Message)
	case len(upd.Message.Photo) > 0:
		r.acceptPhoto(ctx, upd.Message)
	default:
		r.send(upd.Message.Chat.ID, fallback.Label(r.lang(upd.Message.Chat.ID), "help"))
	}
}

func (r *Router) HandleCommand(ctx context.Context, m *tgbotapi.Message) {
	cid := m.Chat.ID
	lang := r.lang(cid)
	args := strings.TrimSpace(m.CommandArguments())
	r.log.Debug("command", zap.Int64("chat", cid), zap.String("cmd", m.Command()))

	switch m.Command() {
	case "start", "help":
		r.send(cid, fallback.Label(lang, "help"))

	case "lang":
		if args == "" {
			msg := tgbotapi.NewMessage(cid, fallback.Label(lang, "lang_choose"))
			msg.ReplyMarkup = makeLanguageKeyboard()
			r.sendMsg(msg)
			return
		}
		r.setLanguage(cid, args)

	case "verify":
		if args == "" {
			r.usage(cid, lang, "/verify <BATCH>")
			return
		}
		r.send(cid, renderVerification(r.Svc.VerifyBatchCode(args, lang), lang))

	case "advice":
		crop, stage, soil, err := parseAdvice(args)
		if err != nil {
			r.usage(cid, lang, "/advice <crop>; <stage>; <soil>")
			return
		}
		r.send(cid, renderAdvisory(r.Svc.CropAdvisory(ctx, crop, stage, soil, lang), lang))

	case "market":
		r.send(cid, renderMarket(r.Svc.MarketData(ctx, r.location(args, lang), lang), lang))

	case "weather":
		r.send(cid, renderWeather(r.Svc.WeatherAlerts(ctx, r.location(args, lang), lang), lang))

	case "soil":
		in, err := parseSoil(args)
		if err != nil {
			r.usage(cid, lang, "/soil <pH> <N> <P> <K> <OM%> [location]")
			return
		}
		res := r.Svc.SoilAnalysis(ctx, in, lang)
		r.saveSoilTest(ctx, cid, in, res.Value)
		r.send(cid, renderSoil(res, lang))

	case "calendar":
		req, err := parseCalendar(args)
		if err != nil {
			r.usage(cid, lang, "/calendar <crop> <acres> <YYYY-MM-DD> [location]")
			return
		}
		res := r.Svc.CropCalendar(ctx, req, lang)
		plan := types.FarmPlan{UserID: chatUser(cid), Crop: req.Crop, LandAcres: req.LandAcres, SowingDate: req.SowingDate}
		if r.farmPlans != nil {
			if err := r.farmPlans.Create(ctx, &plan); err != nil {
				r.log.Error("save farm plan", zap.Int64("chat", cid), zap.Error(err))
			}
		}
		tasks, err := calendar.MapTemplates(plan, res.Value, r.ids)
		if err != nil {
			r.usage(cid, lang, "/calendar <crop> <acres> <YYYY-MM-DD> [location]")
			return
		}
		if r.farmPlans != nil && plan.ID != "" {
			if err := r.farmPlans.SaveTasks(ctx, plan.ID, tasks); err != nil {
				r.log.Error("save calendar tasks", zap.Int64("chat", cid), zap.Error(err))
			}
		}
		r.send(cid, renderCalendar(req, tasks, res.Outcome, lang))

	case "tasks":
		days, err := parseDays(args, defaultTaskDays)
		if err != nil {
			r.usage(cid, lang, "/tasks [days]")
			return
		}
		r.sendTasks(ctx, cid, days, lang)

	default:
		r.send(cid, fallback.Label(lang, "help"))
	}
}

func (r *Router) location(arg string, lang types.Language) string {
	if arg == "" {
		return fallback.LocationDefault(lang)
	}
	return arg
}

// sendTasks lists the open tasks of every plan the chat made, due within
// days.
func (r *Router) sendTasks(ctx context.Context, chatID int64, days int, lang types.Language) {
	if r.farmPlans == nil {
		r.send(chatID, fallback.Label(lang, "no_storage"))
		return
	}
	plans, err := r.farmPlans.ListByUser(ctx, chatUser(chatID))
	if err != nil {
		r.log.Error("list farm plans", zap.Int64("chat", chatID), zap.Error(err))
		r.send(chatID, fallback.Label(lang, "no_storage"))
		return
	}
	var due []types.CalendarTask
	for _, p := range plans {
		tasks, err := r.farmPlans.ListTasks(ctx, p.ID)
		if err != nil {
			r.log.Warn("list calendar tasks", zap.String("plan", p.ID), zap.Error(err))
			continue
		}
		due = append(due, calendar.Upcoming(tasks, r.now(), days)...)
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].Date < due[j].Date })
	r.send(chatID, renderTasks(due, days, lang))
}

func chatUser(chatID int64) string { return fmt.Sprintf("tg:%d", chatID) }

func (r *Router) saveSoilTest(ctx context.Context, chatID int64, in types.SoilInputs, a types.SoilAnalysis) {
	if r.soilTests == nil {
		return
	}
	t := types.SoilTest{
		UserID:          chatUser(chatID),
		Location:        in.Location,
		PH:              in.PH,
		Nitrogen:        in.Nitrogen,
		Phosphorus:      in.Phosphorus,
		Potassium:       in.Potassium,
		OrganicMatter:   in.OrganicMatter,
		Recommendations: a.Summary,
	}
	if err := r.soilTests.Save(ctx, &t); err != nil {
		r.log.Error("save soil test", zap.Int64("chat", chatID), zap.Error(err))
	}
}

func (r *Router) usage(chatID int64, lang types.Language, syntax string) {
	r.send(chatID, fallback.Label(lang, "bad_args")+"\n"+syntax)
}

func (r *Router) send(chatID int64, text string) {
	r.sendMsg(tgbotapi.NewMessage(chatID, logging.Snippet(text, maxMessageLen)))
}

func (r *Router) sendMsg(msg tgbotapi.MessageConfig) {
	if _, err := r.Bot.Send(msg); err != nil {
		r.log.Warn("send failed", zap.Int64("chat", msg.ChatID), zap.Error(err))
	}
}
