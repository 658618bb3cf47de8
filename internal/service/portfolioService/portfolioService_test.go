package portfolioService

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight/finsight/data/cache"
	"github.com/finsight/finsight/data/repository"
	"github.com/finsight/finsight/internal/holdings"
	"github.com/finsight/finsight/internal/model"
	"github.com/finsight/finsight/internal/service"
)

type fakeRepo struct {
	portfolios map[int64]model.Portfolio
	ledger     map[int64][]model.Transaction
	ledgerErr  error
	nextTxID   int64
	nextPfID   int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		portfolios: make(map[int64]model.Portfolio),
		ledger:     make(map[int64][]model.Transaction),
		nextTxID:   1,
		nextPfID:   1,
	}
}

func (r *fakeRepo) addPortfolio(ownerID int64, name string) int64 {
	id := r.nextPfID
	r.nextPfID++
	r.portfolios[id] = model.Portfolio{PortfolioID: id, OwnerID: ownerID, Name: name, Currency: "USD"}
	return id
}

func (r *fakeRepo) CreatePortfolio(_ context.Context, ownerID int64, name, currency string) (int64, error) {
	id := r.nextPfID
	r.nextPfID++
	r.portfolios[id] = model.Portfolio{PortfolioID: id, OwnerID: ownerID, Name: name, Currency: currency}
	return id, nil
}

func (r *fakeRepo) GetPortfolio(_ context.Context, portfolioID int64) (model.Portfolio, error) {
	portfolio, ok := r.portfolios[portfolioID]
	if !ok {
		return model.Portfolio{}, repository.ErrNotFound
	}
	return portfolio, nil
}

func (r *fakeRepo) GetPortfolios(_ context.Context) ([]model.Portfolio, error) {
	var res []model.Portfolio
	for _, portfolio := range r.portfolios {
		res = append(res, portfolio)
	}
	return res, nil
}

func (r *fakeRepo) GetPortfoliosForOwner(_ context.Context, ownerID int64) ([]model.Portfolio, error) {
	var res []model.Portfolio
	for _, portfolio := range r.portfolios {
		if portfolio.OwnerID == ownerID {
			res = append(res, portfolio)
		}
	}
	return res, nil
}

func (r *fakeRepo) InsertTransaction(_ context.Context, tx model.Transaction) (int64, error) {
	tx.TransactionID = r.nextTxID
	r.nextTxID++
	r.ledger[tx.PortfolioID] = append(r.ledger[tx.PortfolioID], tx)
	return tx.TransactionID, nil
}

func (r *fakeRepo) GetTransactions(_ context.Context, portfolioID int64) ([]model.Transaction, error) {
	if r.ledgerErr != nil {
		return nil, r.ledgerErr
	}
	return r.ledger[portfolioID], nil
}

type fakeReportGenerator struct {
	generated []model.PortfolioSummary
}

func (g *fakeReportGenerator) Generate(_ context.Context, summary model.PortfolioSummary) ([]byte, string, error) {
	g.generated = append(g.generated, summary)
	return []byte("report"), ".xlsx", nil
}

type fakeCloudStorage struct {
	uploads []string
}

func (s *fakeCloudStorage) UploadFile(_ context.Context, _ io.Reader, filename string) (string, error) {
	s.uploads = append(s.uploads, filename)
	return "https://example.com/" + filename, nil
}

func newService(repo *fakeRepo, priceCache PriceCache) *PortfolioService {
	return New(repo, priceCache, &fakeReportGenerator{}, &fakeCloudStorage{})
}

func ledgerTx(portfolioID int64, symbol string, kind model.TxKind, qty, price int64) model.Transaction {
	return model.Transaction{
		PortfolioID: portfolioID,
		Symbol:      symbol,
		Kind:        kind,
		Quantity:    decimal.NewFromInt(qty),
		Price:       decimal.NewFromInt(price),
	}
}

func TestSummarize_Valuation(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	pfID := repo.addPortfolio(1, "growth")
	repo.ledger[pfID] = []model.Transaction{
		ledgerTx(pfID, "AAPL", model.TxKindBuy, 10, 100),
		ledgerTx(pfID, "AAPL", model.TxKindBuy, 5, 110),
		ledgerTx(pfID, "AAPL", model.TxKindSell, 3, 120),
	}

	priceCache := cache.NewMemoryPriceCache()
	require.NoError(t, priceCache.UpsertPrice(ctx, "AAPL", decimal.NewFromInt(115), time.Now()))

	srv := newService(repo, priceCache)

	summary, err := srv.Summarize(ctx, pfID)
	require.NoError(t, err)

	require.Len(t, summary.Holdings, 1)
	holding := summary.Holdings[0]
	assert.True(t, holding.Quantity.Equal(decimal.NewFromInt(12)))
	assert.True(t, holding.MarketValue.Equal(decimal.NewFromInt(1380)), "marketValue = %s", holding.MarketValue)
	assert.True(t, holding.RealizedPL.Equal(decimal.NewFromInt(360)))
	assert.True(t, holding.Priced)

	assert.True(t, summary.TotalValue.Equal(decimal.NewFromInt(1380)))
	assert.True(t, summary.TotalCost.Equal(decimal.NewFromInt(1550)))
	assert.True(t, summary.UnrealizedPL.Equal(decimal.NewFromInt(-170)), "unrealizedPL = %s", summary.UnrealizedPL)
}

func TestSummarize_UnpricedDistinctFromZeroPrice(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	pfID := repo.addPortfolio(1, "mixed")
	repo.ledger[pfID] = []model.Transaction{
		ledgerTx(pfID, "AAPL", model.TxKindBuy, 2, 10),
		ledgerTx(pfID, "JUNK", model.TxKindBuy, 5, 1),
	}

	priceCache := cache.NewMemoryPriceCache()
	require.NoError(t, priceCache.UpsertPrice(ctx, "JUNK", decimal.Zero, time.Now()))

	srv := newService(repo, priceCache)

	summary, err := srv.Summarize(ctx, pfID)
	require.NoError(t, err)
	require.Len(t, summary.Holdings, 2)

	// holdings are sorted by symbol
	aapl, junk := summary.Holdings[0], summary.Holdings[1]
	assert.False(t, aapl.Priced, "no quote recorded")
	assert.True(t, aapl.MarketValue.IsZero())
	assert.True(t, junk.Priced, "a zero-price quote is still a quote")
	assert.True(t, junk.MarketValue.IsZero())

	assert.True(t, summary.TotalValue.IsZero())
	assert.True(t, summary.TotalCost.Equal(decimal.NewFromInt(25)))
}

func TestSummarize_UnknownPortfolio(t *testing.T) {
	srv := newService(newFakeRepo(), cache.NewMemoryPriceCache())

	_, err := srv.Summarize(context.Background(), 42)
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestSummarize_LedgerErrorPropagatesWhole(t *testing.T) {
	repo := newFakeRepo()
	pfID := repo.addPortfolio(1, "p")
	repo.ledgerErr = errors.New("store unavailable")

	srv := newService(repo, cache.NewMemoryPriceCache())

	_, err := srv.Summarize(context.Background(), pfID)
	require.Error(t, err)
}

func TestSummarize_MalformedLedgerKind(t *testing.T) {
	repo := newFakeRepo()
	pfID := repo.addPortfolio(1, "p")
	repo.ledger[pfID] = []model.Transaction{
		{PortfolioID: pfID, Symbol: "AAPL", Kind: model.TxKind("SPLIT"), Quantity: decimal.NewFromInt(1), Price: decimal.NewFromInt(1)},
	}

	srv := newService(repo, cache.NewMemoryPriceCache())

	_, err := srv.Summarize(context.Background(), pfID)
	require.ErrorIs(t, err, holdings.ErrInvalidTransactionKind)
}

func TestRecordTransaction_Validation(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	pfID := repo.addPortfolio(1, "p")
	srv := newService(repo, cache.NewMemoryPriceCache())

	_, err := srv.RecordTransaction(ctx, 1, pfID, "AAPL", decimal.NewFromInt(1), decimal.NewFromInt(100), "TRANSFER")
	require.ErrorIs(t, err, service.ErrInvalidArgument)

	_, err = srv.RecordTransaction(ctx, 1, pfID, "AAPL", decimal.NewFromInt(1), decimal.Zero, "BUY")
	require.ErrorIs(t, err, service.ErrInvalidArgument)

	_, err = srv.RecordTransaction(ctx, 1, pfID, "AAPL", decimal.NewFromInt(-1), decimal.NewFromInt(100), "BUY")
	require.ErrorIs(t, err, service.ErrInvalidArgument)
}

func TestRecordTransaction_OwnershipAndUppercase(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	pfID := repo.addPortfolio(1, "p")
	srv := newService(repo, cache.NewMemoryPriceCache())

	_, err := srv.RecordTransaction(ctx, 2, pfID, "AAPL", decimal.NewFromInt(1), decimal.NewFromInt(100), "BUY")
	require.ErrorIs(t, err, service.ErrForbidden)

	txID, err := srv.RecordTransaction(ctx, 1, pfID, "aapl", decimal.NewFromInt(1), decimal.NewFromInt(100), "buy")
	require.NoError(t, err)
	assert.Equal(t, int64(1), txID)

	require.Len(t, repo.ledger[pfID], 1)
	assert.Equal(t, "AAPL", repo.ledger[pfID][0].Symbol)
	assert.Equal(t, model.TxKindBuy, repo.ledger[pfID][0].Kind)
}

func TestGetMarketPrice(t *testing.T) {
	ctx := context.Background()
	priceCache := cache.NewMemoryPriceCache()
	srv := newService(newFakeRepo(), priceCache)

	_, err := srv.GetMarketPrice(ctx, "AAPL")
	require.ErrorIs(t, err, service.ErrNotFound)

	require.NoError(t, priceCache.UpsertPrice(ctx, "AAPL", decimal.NewFromInt(115), time.Now()))

	quote, err := srv.GetMarketPrice(ctx, "aapl")
	require.NoError(t, err)
	assert.True(t, quote.Price.Equal(decimal.NewFromInt(115)))
}

func TestExportSummaryReport(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	pfID := repo.addPortfolio(1, "growth")
	repo.ledger[pfID] = []model.Transaction{ledgerTx(pfID, "AAPL", model.TxKindBuy, 1, 100)}

	reportGenerator := &fakeReportGenerator{}
	cloudStorage := &fakeCloudStorage{}
	srv := New(repo, cache.NewMemoryPriceCache(), reportGenerator, cloudStorage)

	_, err := srv.ExportSummaryReport(ctx, 2, pfID)
	require.ErrorIs(t, err, service.ErrForbidden)

	link, err := srv.ExportSummaryReport(ctx, 1, pfID)
	require.NoError(t, err)
	assert.Contains(t, link, "https://example.com/")
	require.Len(t, reportGenerator.generated, 1)
	assert.Equal(t, "growth", reportGenerator.generated[0].Name)
	require.Len(t, cloudStorage.uploads, 1)
}
