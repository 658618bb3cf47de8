package logNotifier

import (
	"context"
	"log/slog"

	"github.com/finsight/finsight/internal/model"
	"github.com/finsight/finsight/utils"
)

// LogNotifier writes alert events to the log. Useful as a fallback sink when
// no delivery channel is configured.
type LogNotifier struct{}

func New() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Notify(ctx context.Context, event model.AlertEvent) error {
	slog.Info(
		"alert triggered",
		slog.String("rqID", utils.GetRequestIDFromCtx(ctx)),
		slog.String("symbol", event.Symbol),
		slog.String("condition", string(event.Condition)),
		slog.String("threshold", event.Threshold.String()),
		slog.String("price", event.Price.String()),
		slog.Int64("ownerID", event.OwnerID),
	)
	return nil
}
