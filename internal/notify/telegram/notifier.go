// Package telegram sends newly seen roll alerts to a Telegram chat.
package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/bobmcallan/premia/internal/common"
	"github.com/bobmcallan/premia/internal/interfaces"
	"github.com/bobmcallan/premia/internal/models"
)

// sender is the part of tgbotapi.BotAPI the notifier uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier implements interfaces.Notifier. A disabled notifier drops every message.
type Notifier struct {
	bot     sender
	chatID  int64
	enabled bool
	logger  *common.Logger
}

// NewNotifier connects the bot when Telegram is enabled. A bot that fails to
// connect leaves the notifier disabled rather than failing startup.
func NewNotifier(cfg common.TelegramConfig, logger *common.Logger) *Notifier {
	if !cfg.Enabled {
		return &Notifier{enabled: false, logger: logger}
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create telegram bot, notifications disabled")
		return &Notifier{enabled: false, logger: logger}
	}

	logger.Info().Str("username", bot.Self.UserName).Msg("Telegram bot connected")

	return newWithSender(bot, cfg.ChatID, logger)
}

func newWithSender(bot sender, chatID int64, logger *common.Logger) *Notifier {
	return &Notifier{
		bot:     bot,
		chatID:  chatID,
		enabled: true,
		logger:  logger,
	}
}

// Enabled reports whether messages are actually sent.
func (n *Notifier) Enabled() bool {
	return n.enabled
}

// NotifyRollAlerts sends one message summarising the alerts.
func (n *Notifier) NotifyRollAlerts(_ context.Context, alerts []models.RollAlert) error {
	if !n.enabled || len(alerts) == 0 {
		return nil
	}

	msg := tgbotapi.NewMessage(n.chatID, FormatAlerts(alerts))
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	n.logger.Debug().Int("alerts", len(alerts)).Msg("Roll alerts sent to telegram")
	return nil
}

var urgencyMarker = map[models.Urgency]string{
	models.UrgencyHigh:   "🔴",
	models.UrgencyMedium: "🟠",
	models.UrgencyLow:    "🟢",
}

// FormatAlerts renders alerts as a Telegram Markdown message.
func FormatAlerts(alerts []models.RollAlert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Roll opportunities* (%d)\n", len(alerts))
	for _, a := range alerts {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%s *%s* %s %s %s x%d\n",
			urgencyMarker[a.Urgency],
			a.Symbol,
			formatStrike(a.StrikePrice),
			strings.ToUpper(string(a.OptionType)),
			a.ExpirationDate,
			a.Contracts)
		fmt.Fprintf(&b, "Captured %.1f%% ($%.2f): %.2f → %.2f\n",
			a.ProfitPercent, a.ProfitAmount, a.OriginalPremium, a.CurrentPremium)
		if a.DaysToExpiry != nil {
			fmt.Fprintf(&b, "DTE: %d\n", *a.DaysToExpiry)
		}
		b.WriteString("_" + a.Recommendation + "_\n")
	}
	return b.String()
}

func formatStrike(strike float64) string {
	if strike == float64(int64(strike)) {
		return fmt.Sprintf("$%d", int64(strike))
	}
	return fmt.Sprintf("$%.2f", strike)
}

var _ interfaces.Notifier = (*Notifier)(nil)
