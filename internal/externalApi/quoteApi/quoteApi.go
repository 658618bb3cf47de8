package quoteApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/finsight/finsight/config"
	"github.com/finsight/finsight/internal/externalApi"
	"github.com/finsight/finsight/internal/model/quoteModel"
	"github.com/finsight/finsight/utils"
	"github.com/go-resty/resty/v2"
)

// QuoteApi calls the market-data provider. The resty client timeout bounds
// every request, so one slow provider call cannot stall a refresh tick past
// the configured limit.
type QuoteApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *QuoteApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.QuoteApi.Url)
	return &QuoteApi{client: client}
}

func (a *QuoteApi) GetQuote(ctx context.Context, symbol string) (quoteModel.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	url := "/v1/quotes"
	params := map[string]string{"symbols": symbol}

	slog.Debug("start QuoteApi.GetQuote request", slog.String("rqID", rqID), slog.String("symbol", symbol))

	quotes, err := a.getQuotes(ctx, url, params)
	if err != nil {
		return quoteModel.Quote{}, err
	}

	quote, ok := quotes[symbol]
	if !ok {
		return quoteModel.Quote{}, externalApi.ErrNotFound
	}

	slog.Debug("QuoteApi.GetQuote request complete", slog.String("rqID", rqID), slog.String("symbol", symbol))

	return quote, nil
}

// GetQuotes fetches quotes for a symbol batch. Symbols the provider does not
// know are missing from the result; the caller decides whether that is fatal.
func (a *QuoteApi) GetQuotes(ctx context.Context, symbols []string) (map[string]quoteModel.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	url := "/v1/quotes"
	params := map[string]string{"symbols": strings.Join(symbols, ",")}

	slog.Debug("start QuoteApi.GetQuotes request", slog.String("rqID", rqID), slog.Any("symbols", symbols))

	quotes, err := a.getQuotes(ctx, url, params)
	if err != nil {
		return nil, err
	}

	slog.Debug("QuoteApi.GetQuotes request complete", slog.String("rqID", rqID), slog.Int("found", len(quotes)))

	return quotes, nil
}

func (a *QuoteApi) getQuotes(ctx context.Context, url string, params map[string]string) (map[string]quoteModel.Quote, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(params).
		Get(url)

	if err != nil {
		slog.Error("error while dialing QuoteApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return nil, err
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil, externalApi.ErrNotFound
	}

	if resp.IsError() {
		slog.Error("QuoteApi returned error status", slog.Int("status", resp.StatusCode()), slog.String("rqID", rqID))
		return nil, fmt.Errorf("quote api status %d", resp.StatusCode())
	}

	rawQuotes := quoteModel.QuotesResponse{}
	err = json.Unmarshal(resp.Body(), &rawQuotes)
	if err != nil {
		slog.Error("can't unmarshall response into quoteModel.QuotesResponse", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return nil, err
	}

	res := make(map[string]quoteModel.Quote, len(rawQuotes.Quotes))
	for _, quote := range rawQuotes.Quotes {
		if quote.Symbol == "" {
			return nil, fmt.Errorf("quote without symbol in provider response")
		}
		if !quote.Price.IsPositive() {
			return nil, fmt.Errorf("non-positive price %s for symbol %s", quote.Price, quote.Symbol)
		}
		res[quote.Symbol] = quote
	}

	return res, nil
}
