package bot

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/Alias1177/Lucent/internal/report"
	"github.com/Alias1177/Lucent/internal/session"
	"github.com/Alias1177/Lucent/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Menu buttons
const (
	ButtonHistory = "Recent Analysis"
	ButtonTiers   = "Risk Tiers"
	ButtonAbout   = "About"
)

const welcomeText = "Welcome to Lucent, clinical trial intelligence.\n\n" +
	"Send a ClinicalTrials.gov identifier (e.g., NCT01721746) and I will estimate the probability of trial success."

// Sender is the part of tgbotapi.BotAPI the bot needs
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot keeps one lookup session per chat
type Bot struct {
	sender  Sender
	client  models.PredictionClient
	journal models.LookupJournal
	logger  zerolog.Logger

	mu       sync.Mutex
	sessions map[int64]*session.Session

	wg sync.WaitGroup
}

// New creates a bot. journal may be nil.
func New(sender Sender, client models.PredictionClient, journal models.LookupJournal) *Bot {
	return &Bot{
		sender:   sender,
		client:   client,
		journal:  journal,
		logger:   log.With().Str("component", "telegram_bot").Logger(),
		sessions: make(map[int64]*session.Session),
	}
}

// Run handles updates until the channel closes or ctx is done
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			b.wg.Wait()
			return
		case update, ok := <-updates:
			if !ok {
				b.wg.Wait()
				return
			}
			if update.Message != nil {
				b.HandleMessage(ctx, update.Message)
			}
		}
	}
}

// Wait blocks until all in-flight lookups have been answered
func (b *Bot) Wait() {
	b.wg.Wait()
}

// HandleMessage processes one incoming message. Lookups run in the
// background so a newer identifier from the same chat supersedes an
// older one still waiting on the service.
func (b *Bot) HandleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.Chat == nil {
		return
	}
	chatID := message.Chat.ID

	if message.IsCommand() {
		switch message.Command() {
		case "start", "help":
			b.sendWithMenu(chatID, welcomeText)
		case "history":
			b.send(chatID, report.History(b.session(chatID).History()))
		case "tiers":
			b.send(chatID, report.Tiers())
		case "about":
			b.send(chatID, report.Model(models.DefaultModelInfo))
		case "predict":
			b.submit(ctx, chatID, message.CommandArguments())
		default:
			b.send(chatID, "Unknown command. Send an NCTID or use /history, /tiers, /about.")
		}
		return
	}

	switch strings.TrimSpace(message.Text) {
	case ButtonHistory:
		b.send(chatID, report.History(b.session(chatID).History()))
	case ButtonTiers:
		b.send(chatID, report.Tiers())
	case ButtonAbout:
		b.send(chatID, report.Model(models.DefaultModelInfo))
	default:
		b.submit(ctx, chatID, message.Text)
	}
}

func (b *Bot) submit(ctx context.Context, chatID int64, text string) {
	sess := b.session(chatID)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		st, err := sess.Submit(ctx, text)
		if errors.Is(err, session.ErrSuperseded) {
			b.logger.Debug().Int64("chat_id", chatID).Str("nctid", st.NCTID).Msg("Dropping superseded result")
			return
		}
		b.send(chatID, report.State(st))
	}()
}

// session returns the chat's session, creating it on first use
func (b *Bot) session(chatID int64) *session.Session {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sess, ok := b.sessions[chatID]; ok {
		return sess
	}

	opts := []session.Option{
		session.WithLogger(b.logger.With().Int64("chat_id", chatID).Logger()),
		session.WithObserver(func(st session.State) {
			if st.Status == session.StatusLoading {
				b.send(chatID, report.State(st))
			}
		}),
	}
	if b.journal != nil {
		opts = append(opts, session.WithJournal(b.journal))
	}

	sess := session.New(b.client, opts...)
	b.sessions[chatID] = sess
	return sess
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.sender.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Error sending message")
	}
}

func (b *Bot) sendWithMenu(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = mainMenuKeyboard()
	if _, err := b.sender.Send(msg); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Error sending message")
	}
}

// mainMenuKeyboard returns the main menu keyboard
func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonHistory),
			tgbotapi.NewKeyboardButton(ButtonTiers),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonAbout),
		),
	)
}
