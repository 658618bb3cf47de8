package telegramNotifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/finsight/finsight/config"
	"github.com/finsight/finsight/internal/model"
	"github.com/finsight/finsight/utils"
	tele "gopkg.in/telebot.v4"
)

// TelegramNotifier delivers alert events to a configured chat.
type TelegramNotifier struct {
	bot    *tele.Bot
	chatID int64
}

func New(cfg *config.Config) *TelegramNotifier {
	settings := tele.Settings{
		Token:   cfg.Telegram.Token,
		Offline: cfg.Telegram.Token == "",
	}

	b, err := tele.NewBot(settings)
	if err != nil {
		slog.Error("error while tele.NewBot", slog.String("err", err.Error()))
		panic(err)
	}

	return &TelegramNotifier{bot: b, chatID: cfg.Telegram.AlertChatID}
}

func (n *TelegramNotifier) Notify(ctx context.Context, event model.AlertEvent) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "TelegramNotifier.Notify"

	msg := fmt.Sprintf(
		"🔔 %s crossed %s %s: current price %s",
		event.Symbol,
		event.Condition,
		event.Threshold,
		event.Price,
	)

	_, err := n.bot.Send(tele.ChatID(n.chatID), msg)
	if err != nil {
		slog.Error("failed to send alert message", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	return nil
}
