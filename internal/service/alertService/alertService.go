package alertService

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/finsight/finsight/data/cache"
	"github.com/finsight/finsight/internal/model"
	"github.com/finsight/finsight/internal/model/quoteModel"
	"github.com/finsight/finsight/internal/service"
	"github.com/finsight/finsight/utils"
	"github.com/shopspring/decimal"
)

type QuoteApi interface {
	GetQuote(ctx context.Context, symbol string) (quoteModel.Quote, error)
}

type PriceCache interface {
	GetPrice(ctx context.Context, symbol string) (model.PriceQuote, error)
	UpsertPrice(ctx context.Context, symbol string, price decimal.Decimal, observedAt time.Time) error
}

type Repository interface {
	InsertAlert(ctx context.Context, ownerID int64, symbol string, condition model.AlertCondition, threshold decimal.Decimal) (alertID int64, err error)
	GetAlertsForOwner(ctx context.Context, ownerID int64) ([]model.Alert, error)
	GetPendingAlerts(ctx context.Context) ([]model.Alert, error)
	MarkTriggered(ctx context.Context, alertID int64) (updated bool, err error)
}

type Notifier interface {
	Notify(ctx context.Context, event model.AlertEvent) error
}

type AlertService struct {
	repo       Repository
	priceCache PriceCache
	quoteApi   QuoteApi
	notifier   Notifier
}

func New(repo Repository, priceCache PriceCache, quoteApi QuoteApi, notifier Notifier) *AlertService {
	return &AlertService{
		repo:       repo,
		priceCache: priceCache,
		quoteApi:   quoteApi,
		notifier:   notifier,
	}
}

func (s *AlertService) CreateAlert(ctx context.Context, ownerID int64, symbol, condition string, threshold decimal.Decimal) (alertID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AlertService.CreateAlert"

	slog.Debug("CreateAlert start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	defer func() {
		slog.Debug("CreateAlert finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	}()

	alertCondition, err := model.ParseAlertCondition(condition)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", service.ErrInvalidArgument, err)
	}

	if symbol == "" {
		return 0, fmt.Errorf("%w: empty symbol", service.ErrInvalidArgument)
	}

	alertID, err = s.repo.InsertAlert(ctx, ownerID, strings.ToUpper(symbol), alertCondition, threshold)
	if err != nil {
		slog.Error("got error from repo.InsertAlert", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return 0, err
	}

	return alertID, nil
}

func (s *AlertService) ListAlerts(ctx context.Context, ownerID int64) ([]model.Alert, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AlertService.ListAlerts"

	alerts, err := s.repo.GetAlertsForOwner(ctx, ownerID)
	if err != nil {
		slog.Error("got error from repo.GetAlertsForOwner", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return alerts, nil
}

// RefreshPrices is one scheduler tick: collect the symbols referenced by
// pending alerts, fetch a quote for each, upsert into the price cache, then
// evaluate the alerts against the refreshed cache.
//
// A failed fetch for one symbol is logged and skipped; the tick still
// refreshes the remaining symbols and still proceeds to evaluation. Only a
// store failure aborts the tick, and the next scheduled tick retries from
// the cache's current contents.
func (s *AlertService) RefreshPrices(ctx context.Context) error {
	ctx = utils.CreateCtxWithRqID(ctx)
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AlertService.RefreshPrices"

	slog.Debug("RefreshPrices start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("RefreshPrices finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	alerts, err := s.repo.GetPendingAlerts(ctx)
	if err != nil {
		slog.Error("got error from repo.GetPendingAlerts", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	symbols := pendingSymbols(alerts)
	if len(symbols) == 0 {
		slog.Info("no symbols to refresh", slog.String("rqID", rqID), slog.String("op", op))
		return nil
	}

	refreshed := 0
	for _, symbol := range symbols {
		quote, err := s.quoteApi.GetQuote(ctx, symbol)
		if err != nil {
			slog.Warn(
				"can't fetch quote, skipping symbol",
				slog.String("rqID", rqID),
				slog.String("op", op),
				slog.String("symbol", symbol),
				slog.String("err", err.Error()),
			)
			continue
		}

		err = s.priceCache.UpsertPrice(ctx, quote.Symbol, quote.Price, quote.Timestamp)
		if err != nil {
			slog.Error("got error from priceCache.UpsertPrice", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return err
		}
		refreshed++
	}

	slog.Info("prices refreshed", slog.String("rqID", rqID), slog.String("op", op), slog.Int("refreshed", refreshed), slog.Int("symbols", len(symbols)))

	return s.EvaluateAlerts(ctx)
}

// EvaluateAlerts checks every pending alert against the cached price for its
// symbol. An alert whose symbol has no quote is skipped and stays pending.
// Firing is guarded by the store's compare-and-set on the triggered flag, so
// the method is safe to call repeatedly within and across ticks: only the
// call that wins the transition emits a notification. A notifier failure is
// logged and never rolls the transition back.
func (s *AlertService) EvaluateAlerts(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "AlertService.EvaluateAlerts"

	slog.Debug("EvaluateAlerts start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("EvaluateAlerts finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	alerts, err := s.repo.GetPendingAlerts(ctx)
	if err != nil {
		slog.Error("got error from repo.GetPendingAlerts", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	for _, alert := range alerts {
		quote, err := s.priceCache.GetPrice(ctx, alert.Symbol)
		if err != nil {
			if errors.Is(err, cache.ErrNotFound) {
				continue
			}
			slog.Error("got error from priceCache.GetPrice", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return err
		}

		if !alert.Satisfied(quote.Price) {
			continue
		}

		updated, err := s.repo.MarkTriggered(ctx, alert.AlertID)
		if err != nil {
			slog.Error("got error from repo.MarkTriggered", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return err
		}

		if !updated {
			// lost the CAS race: another evaluation already fired this alert
			slog.Debug("alert already triggered", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("alertID", alert.AlertID))
			continue
		}

		event := model.AlertEvent{
			OwnerID:   alert.OwnerID,
			Symbol:    alert.Symbol,
			Condition: alert.Condition,
			Threshold: alert.Threshold,
			Price:     quote.Price,
		}

		if err := s.notifier.Notify(ctx, event); err != nil {
			slog.Error(
				"failed to notify, alert stays triggered",
				slog.String("rqID", rqID),
				slog.String("op", op),
				slog.Int64("alertID", alert.AlertID),
				slog.String("err", err.Error()),
			)
		}
	}

	return nil
}

func pendingSymbols(alerts []model.Alert) []string {
	set := make(map[string]struct{}, len(alerts))
	for _, alert := range alerts {
		set[alert.Symbol] = struct{}{}
	}

	symbols := make([]string, 0, len(set))
	for symbol := range set {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	return symbols
}
