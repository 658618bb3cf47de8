package portfolioService

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/finsight/finsight/data/cache"
	"github.com/finsight/finsight/data/repository"
	"github.com/finsight/finsight/internal/holdings"
	"github.com/finsight/finsight/internal/model"
	"github.com/finsight/finsight/internal/service"
	"github.com/finsight/finsight/utils"
	"github.com/shopspring/decimal"
)

type Repository interface {
	CreatePortfolio(ctx context.Context, ownerID int64, name, currency string) (portfolioID int64, err error)
	GetPortfolio(ctx context.Context, portfolioID int64) (model.Portfolio, error)
	GetPortfolios(ctx context.Context) ([]model.Portfolio, error)
	GetPortfoliosForOwner(ctx context.Context, ownerID int64) ([]model.Portfolio, error)
	InsertTransaction(ctx context.Context, tx model.Transaction) (transactionID int64, err error)
	GetTransactions(ctx context.Context, portfolioID int64) ([]model.Transaction, error)
}

type PriceCache interface {
	GetPrice(ctx context.Context, symbol string) (model.PriceQuote, error)
	GetPrices(ctx context.Context, symbols []string) (map[string]model.PriceQuote, error)
}

type ReportGenerator interface {
	Generate(ctx context.Context, summary model.PortfolioSummary) (fileBytes []byte, fileExtension string, err error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
}

type PortfolioService struct {
	repo            Repository
	priceCache      PriceCache
	reportGenerator ReportGenerator
	cloudStorage    CloudStorage
}

func New(repo Repository, priceCache PriceCache, reportGenerator ReportGenerator, cloudStorage CloudStorage) *PortfolioService {
	return &PortfolioService{
		repo:            repo,
		priceCache:      priceCache,
		reportGenerator: reportGenerator,
		cloudStorage:    cloudStorage,
	}
}

func (s *PortfolioService) CreatePortfolio(ctx context.Context, ownerID int64, name, currency string) (portfolioID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.CreatePortfolio"

	slog.Debug("CreatePortfolio start", slog.String("rqID", rqID), slog.String("op", op), slog.String("name", name))
	defer func() {
		slog.Debug("CreatePortfolio finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("name", name))
	}()

	if name == "" {
		return 0, fmt.Errorf("%w: empty portfolio name", service.ErrInvalidArgument)
	}

	if currency == "" {
		currency = "USD"
	}

	portfolioID, err = s.repo.CreatePortfolio(ctx, ownerID, name, currency)
	if err != nil {
		slog.Error("got error from repo.CreatePortfolio", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return 0, err
	}

	return portfolioID, nil
}

func (s *PortfolioService) ListPortfolios(ctx context.Context, ownerID int64) ([]model.Portfolio, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.ListPortfolios"

	portfolios, err := s.repo.GetPortfoliosForOwner(ctx, ownerID)
	if err != nil {
		slog.Error("got error from repo.GetPortfoliosForOwner", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return portfolios, nil
}

// GetPortfolio returns the portfolio after checking it belongs to ownerID.
func (s *PortfolioService) GetPortfolio(ctx context.Context, ownerID, portfolioID int64) (model.Portfolio, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetPortfolio"

	portfolio, err := s.repo.GetPortfolio(ctx, portfolioID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Portfolio{}, service.ErrNotFound
		}
		slog.Error("got error from repo.GetPortfolio", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Portfolio{}, err
	}

	if portfolio.OwnerID != ownerID {
		return model.Portfolio{}, service.ErrForbidden
	}

	return portfolio, nil
}

// RecordTransaction appends a BUY/SELL to the portfolio's ledger. The kind is
// validated against the closed set and the symbol is uppercased before it is
// written, so the ledger never carries records aggregation would reject.
func (s *PortfolioService) RecordTransaction(ctx context.Context, ownerID, portfolioID int64, symbol string, quantity, price decimal.Decimal, kind string) (transactionID int64, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.RecordTransaction"

	slog.Debug("RecordTransaction start", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	defer func() {
		slog.Debug("RecordTransaction finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("symbol", symbol))
	}()

	txKind, err := model.ParseTxKind(kind)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", service.ErrInvalidArgument, err)
	}

	if symbol == "" {
		return 0, fmt.Errorf("%w: empty symbol", service.ErrInvalidArgument)
	}

	if !quantity.IsPositive() {
		return 0, fmt.Errorf("%w: quantity must be positive", service.ErrInvalidArgument)
	}

	if !price.IsPositive() {
		return 0, fmt.Errorf("%w: price must be positive", service.ErrInvalidArgument)
	}

	if _, err = s.GetPortfolio(ctx, ownerID, portfolioID); err != nil {
		return 0, err
	}

	tx := model.Transaction{
		PortfolioID: portfolioID,
		Symbol:      strings.ToUpper(symbol),
		Quantity:    quantity,
		Price:       price,
		Kind:        txKind,
	}

	transactionID, err = s.repo.InsertTransaction(ctx, tx)
	if err != nil {
		slog.Error("got error from repo.InsertTransaction", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return 0, err
	}

	return transactionID, nil
}

// Summarize recomputes the portfolio valuation from scratch: full ledger ->
// aggregator -> latest cached quotes. Nothing is cached on the way out, so
// the result always reflects the ledger and the price cache at call time.
// A symbol without a quote contributes zero market value and is reported
// with Priced=false.
func (s *PortfolioService) Summarize(ctx context.Context, portfolioID int64) (summary model.PortfolioSummary, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.Summarize"

	slog.Debug("Summarize start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	defer func() {
		slog.Debug("Summarize finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	}()

	portfolio, err := s.repo.GetPortfolio(ctx, portfolioID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.PortfolioSummary{}, service.ErrNotFound
		}
		slog.Error("got error from repo.GetPortfolio", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PortfolioSummary{}, err
	}

	txs, err := s.repo.GetTransactions(ctx, portfolioID)
	if err != nil {
		slog.Error("got error from repo.GetTransactions", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PortfolioSummary{}, err
	}

	positions, err := holdings.Aggregate(txs)
	if err != nil {
		slog.Error("got error from holdings.Aggregate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PortfolioSummary{}, err
	}

	symbols := make([]string, 0, len(positions))
	for symbol := range positions {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	quotes, err := s.priceCache.GetPrices(ctx, symbols)
	if err != nil {
		slog.Error("got error from priceCache.GetPrices", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PortfolioSummary{}, err
	}

	summary = model.PortfolioSummary{
		PortfolioID: portfolio.PortfolioID,
		Name:        portfolio.Name,
		Holdings:    make([]model.Holding, 0, len(symbols)),
	}

	for _, symbol := range symbols {
		pos := positions[symbol]

		holding := model.Holding{Position: pos}
		if quote, ok := quotes[symbol]; ok {
			holding.MarketPrice = quote.Price
			holding.ObservedAt = quote.ObservedAt
			holding.Priced = true
		}
		holding.MarketValue = pos.Quantity.Mul(holding.MarketPrice)

		summary.TotalValue = summary.TotalValue.Add(holding.MarketValue)
		summary.TotalCost = summary.TotalCost.Add(pos.CostBasis)
		summary.Holdings = append(summary.Holdings, holding)
	}

	summary.UnrealizedPL = summary.TotalValue.Sub(summary.TotalCost)

	return summary, nil
}

// GetMarketPrice reads the cached quote for one symbol.
func (s *PortfolioService) GetMarketPrice(ctx context.Context, symbol string) (model.PriceQuote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetMarketPrice"

	quote, err := s.priceCache.GetPrice(ctx, strings.ToUpper(symbol))
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return model.PriceQuote{}, service.ErrNotFound
		}
		slog.Error("got error from priceCache.GetPrice", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PriceQuote{}, err
	}

	return quote, nil
}

// ExportSummaryReport renders the current valuation to xlsx and uploads it,
// returning a download link.
func (s *PortfolioService) ExportSummaryReport(ctx context.Context, ownerID, portfolioID int64) (downloadLink string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.ExportSummaryReport"

	slog.Debug("ExportSummaryReport start", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	defer func() {
		slog.Debug("ExportSummaryReport finished", slog.String("rqID", rqID), slog.String("op", op), slog.Int64("portfolioID", portfolioID))
	}()

	if _, err = s.GetPortfolio(ctx, ownerID, portfolioID); err != nil {
		return "", err
	}

	return s.exportReport(ctx, portfolioID)
}

func (s *PortfolioService) exportReport(ctx context.Context, portfolioID int64) (downloadLink string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.exportReport"

	summary, err := s.Summarize(ctx, portfolioID)
	if err != nil {
		return "", err
	}

	fileBytes, fileExtension, err := s.reportGenerator.Generate(ctx, summary)
	if err != nil {
		slog.Error("got error from reportGenerator.Generate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	filename := fmt.Sprintf("%s_valuation_%s%s", summary.Name, time.Now().Format("2006-01-02_15-04-05"), fileExtension)

	downloadLink, err = s.cloudStorage.UploadFile(ctx, bytes.NewReader(fileBytes), filename)
	if err != nil {
		slog.Error("got error from cloudStorage.UploadFile", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	return downloadLink, nil
}

// ExportAllReports is the scheduled batch export: one report per portfolio.
// A failure for one portfolio is logged and skipped so the rest still export.
func (s *PortfolioService) ExportAllReports(ctx context.Context) error {
	ctx = utils.CreateCtxWithRqID(ctx)
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.ExportAllReports"

	slog.Debug("ExportAllReports start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("ExportAllReports finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	portfolios, err := s.repo.GetPortfolios(ctx)
	if err != nil {
		slog.Error("got error from repo.GetPortfolios", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	for _, portfolio := range portfolios {
		downloadLink, err := s.exportReport(ctx, portfolio.PortfolioID)
		if err != nil {
			slog.Warn(
				"can't export report, skipping portfolio",
				slog.String("rqID", rqID),
				slog.String("op", op),
				slog.Int64("portfolioID", portfolio.PortfolioID),
				slog.String("err", err.Error()),
			)
			continue
		}

		slog.Info(
			"report exported",
			slog.String("rqID", rqID),
			slog.String("op", op),
			slog.Int64("portfolioID", portfolio.PortfolioID),
			slog.String("downloadLink", downloadLink),
		)
	}

	return nil
}
