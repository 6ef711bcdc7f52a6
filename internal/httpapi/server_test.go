package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"stockflow/apperr"
	"stockflow/config"
	"stockflow/internal/service"
	"stockflow/internal/store"
	"stockflow/logger"
	"stockflow/models"
)

type stubMetadata struct {
	stocks []models.Stock
	stock  *models.Stock
	err    error
}

func (f *stubMetadata) List(ctx context.Context, skip, limit int64, sort store.SortSpec) ([]models.Stock, int64, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	total := int64(len(f.stocks))
	if err := store.ValidatePage(skip, limit, total); err != nil {
		return nil, 0, err
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return f.stocks[skip:end], total, nil
}

func (f *stubMetadata) GetByID(ctx context.Context, id string) (*models.Stock, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.stock, nil
}

type stubSeries struct {
	raw []byte
	err error
}

func (f *stubSeries) Fetch(ctx context.Context, symbol string, format models.FileFormat) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.raw, nil
}

func newTestRouter(t *testing.T, cfg config.ServerConfig, meta *stubMetadata, series *stubSeries) http.Handler {
	t.Helper()

	stocks := service.New(meta, series, logger.Logger())
	srv := NewServer(cfg, stocks, nil, logger.Logger())
	router, err := srv.buildRouter()
	if err != nil {
		t.Fatalf("buildRouter failed: %v", err)
	}
	return router
}

func doRequest(t *testing.T, handler http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()

	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error body %q: %v", rec.Body.String(), err)
	}
	return body
}

func sampleStocks() []models.Stock {
	return []models.Stock{
		{ID: "507f1f77bcf86cd799439011", CompanyName: "Nestle India Ltd.", Symbol: "NESTLEIND", FileFormat: models.FormatCSV},
		{ID: "507f1f77bcf86cd799439012", CompanyName: "Tata Consultancy Services Ltd.", Symbol: "TCS", FileFormat: models.FormatJSON},
	}
}

func TestListStocks(t *testing.T) {
	router := newTestRouter(t, config.ServerConfig{}, &stubMetadata{stocks: sampleStocks()}, &stubSeries{})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/stocks")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}

	var listing models.StockListing
	if err := json.Unmarshal(rec.Body.Bytes(), &listing); err != nil {
		t.Fatalf("failed to decode listing: %v", err)
	}
	if listing.Skip != 0 || listing.Limit != 10 || listing.Total != 2 {
		t.Errorf("unexpected envelope: skip=%d limit=%d total=%d", listing.Skip, listing.Limit, listing.Total)
	}
	if len(listing.Stocks) != 2 || listing.Stocks[0].Symbol != "NESTLEIND" {
		t.Errorf("unexpected stocks: %+v", listing.Stocks)
	}
}

func TestListStocksPagination(t *testing.T) {
	router := newTestRouter(t, config.ServerConfig{}, &stubMetadata{stocks: sampleStocks()}, &stubSeries{})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/stocks?skip=1&limit=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var listing models.StockListing
	if err := json.Unmarshal(rec.Body.Bytes(), &listing); err != nil {
		t.Fatalf("failed to decode listing: %v", err)
	}
	if listing.Skip != 1 || listing.Limit != 1 {
		t.Errorf("unexpected envelope: skip=%d limit=%d", listing.Skip, listing.Limit)
	}
	if len(listing.Stocks) != 1 || listing.Stocks[0].Symbol != "TCS" {
		t.Errorf("unexpected stocks: %+v", listing.Stocks)
	}
}

func TestListStocksBadQueryParameters(t *testing.T) {
	router := newTestRouter(t, config.ServerConfig{}, &stubMetadata{stocks: sampleStocks()}, &stubSeries{})

	cases := map[string]string{
		"non integer skip":  "/api/v1/stocks?skip=abc",
		"non integer limit": "/api/v1/stocks?limit=ten",
		"negative skip":     "/api/v1/stocks?skip=-1",
		"skip past total":   "/api/v1/stocks?skip=3",
		"limit over cap":    "/api/v1/stocks?limit=101",
		"negative limit":    "/api/v1/stocks?limit=-5",
		"unknown sort":      "/api/v1/stocks?sort=bogus_field",
		"substring sort":    "/api/v1/stocks?sort=company",
	}

	for name, target := range cases {
		rec := doRequest(t, router, http.MethodGet, target)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, body = %s", name, rec.Code, rec.Body.String())
			continue
		}
		body := decodeErrorBody(t, rec)
		if body.Type != "invalid_query_parameters" {
			t.Errorf("%s: type = %q", name, body.Type)
		}
		if body.Detail == "" {
			t.Errorf("%s: expected a detail message", name)
		}
	}
}

const routerCSV = `Date,Symbol,Series,Prev Close,Open,High,Low,Last,Close,VWAP,Volume,Turnover,Trades,Deliverable Volume,%Deliverble
2021-05-20,NESTLEIND,EQ,17100,17111,17250,17071.15,17227,17215.45,17172.68,133012,22841.5,4751,65434,0.492
2021-05-21,NESTLEIND,EQ,17215.45,17290,17360,17150,17210.1,17201.8,17255.33,98211,16946.1,3913,,
`

func TestGetStock(t *testing.T) {
	stock := &models.Stock{
		ID:          "507f1f77bcf86cd799439011",
		CompanyName: "Nestle India Ltd.",
		Symbol:      "NESTLEIND",
		FileFormat:  models.FormatCSV,
	}
	router := newTestRouter(t, config.ServerConfig{}, &stubMetadata{stock: stock}, &stubSeries{raw: []byte(routerCSV)})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/stocks/507f1f77bcf86cd799439011")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var detail struct {
		Symbol     string `json:"symbol"`
		TimeSeries struct {
			Date  []string   `json:"date"`
			Close []*float64 `json:"close"`
		} `json:"time_series"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("failed to decode detail: %v", err)
	}
	if detail.Symbol != "NESTLEIND" {
		t.Errorf("symbol = %q", detail.Symbol)
	}
	if len(detail.TimeSeries.Date) != 2 || detail.TimeSeries.Date[0] != "2021-05-20T00:00:00Z" {
		t.Errorf("unexpected dates: %v", detail.TimeSeries.Date)
	}
	if detail.TimeSeries.Close[0] == nil || *detail.TimeSeries.Close[0] != 17215.45 {
		t.Errorf("unexpected close: %v", detail.TimeSeries.Close)
	}
}

func TestGetStockMalformedID(t *testing.T) {
	meta := &stubMetadata{err: apperr.New(apperr.InvalidParameter, "malformed stock id %q", "not-an-id")}
	router := newTestRouter(t, config.ServerConfig{}, meta, &stubSeries{})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/stocks/not-an-id")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := decodeErrorBody(t, rec)
	if body.Type != "invalid_resource" {
		t.Errorf("type = %q", body.Type)
	}
	if body.Detail == "" {
		t.Error("expected a detail message")
	}
}

func TestGetStockNotFound(t *testing.T) {
	router := newTestRouter(t, config.ServerConfig{}, &stubMetadata{}, &stubSeries{})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/stocks/507f1f77bcf86cd799439011")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := decodeErrorBody(t, rec)
	if body.Type != "not_found" {
		t.Errorf("type = %q", body.Type)
	}
	if body.Detail != "" {
		t.Errorf("404 must not carry detail, got %q", body.Detail)
	}
}

// Backend failures must never leak internal detail to the client.
func TestGetStockInternalErrorIsSanitized(t *testing.T) {
	stock := &models.Stock{ID: "507f1f77bcf86cd799439011", Symbol: "NESTLEIND", FileFormat: models.FormatCSV}
	series := &stubSeries{err: apperr.New(apperr.Transient, "dial tcp 10.0.0.5:443: connection refused")}
	router := newTestRouter(t, config.ServerConfig{}, &stubMetadata{stock: stock}, series)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/stocks/507f1f77bcf86cd799439011")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	body := decodeErrorBody(t, rec)
	if body.Type != "internal_error" {
		t.Errorf("type = %q", body.Type)
	}
	if body.Detail != "" {
		t.Errorf("500 must not carry detail, got %q", body.Detail)
	}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, config.ServerConfig{}, &stubMetadata{}, &stubSeries{})

	rec := doRequest(t, router, http.MethodGet, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t, config.ServerConfig{}, &stubMetadata{}, &stubSeries{})

	rec := doRequest(t, router, http.MethodOptions, "/api/v1/stocks")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := config.ServerConfig{
		RateLimit: config.RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 1,
			BurstSize:         1,
		},
	}
	router := newTestRouter(t, cfg, &stubMetadata{stocks: sampleStocks()}, &stubSeries{})

	first := doRequest(t, router, http.MethodGet, "/api/v1/stocks")
	if first.Code != http.StatusOK {
		t.Fatalf("first request status = %d", first.Code)
	}

	second := doRequest(t, router, http.MethodGet, "/api/v1/stocks")
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d", second.Code)
	}
	body := decodeErrorBody(t, second)
	if body.Type != "rate_limited" {
		t.Errorf("type = %q", body.Type)
	}
}
