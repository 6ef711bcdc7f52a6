package service

import (
	"context"
	"testing"

	"stockflow/apperr"
	"stockflow/internal/store"
	"stockflow/logger"
	"stockflow/models"
)

type fakeMetadata struct {
	stocks    []models.Stock
	stock     *models.Stock
	err       error
	listCalls int
	gotSort   store.SortSpec
}

func (f *fakeMetadata) List(ctx context.Context, skip, limit int64, sort store.SortSpec) ([]models.Stock, int64, error) {
	f.listCalls++
	f.gotSort = sort
	if f.err != nil {
		return nil, 0, f.err
	}
	return f.stocks, int64(len(f.stocks)), nil
}

func (f *fakeMetadata) GetByID(ctx context.Context, id string) (*models.Stock, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.stock, nil
}

type fakeSeries struct {
	raw []byte
	err error
}

func (f *fakeSeries) Fetch(ctx context.Context, symbol string, format models.FileFormat) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.raw, nil
}

func newTestService(meta *fakeMetadata, series *fakeSeries) *StockService {
	return New(meta, series, logger.Logger())
}

func TestParseSort(t *testing.T) {
	cases := map[string]struct {
		want    store.SortSpec
		wantErr bool
	}{
		"company_name":   {want: store.SortSpec{Field: "company_name"}},
		"-company_name":  {want: store.SortSpec{Field: "company_name", Descending: true}},
		"symbol":         {want: store.SortSpec{Field: "symbol"}},
		"-last_updated":  {want: store.SortSpec{Field: "last_updated", Descending: true}},
		" created_at ":   {want: store.SortSpec{Field: "created_at"}},
		"bogus_field":    {wantErr: true},
		"-bogus_field":   {wantErr: true},
		"":               {wantErr: true},
		"-":              {wantErr: true},
		"company":        {wantErr: true},
		"name":           {wantErr: true},
		"company_name-x": {wantErr: true},
	}

	for input, tc := range cases {
		got, err := ParseSort(input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseSort(%q): expected error", input)
				continue
			}
			if kind := apperr.KindOf(err); kind != apperr.InvalidParameter {
				t.Errorf("ParseSort(%q): kind = %v, want InvalidParameter", input, kind)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSort(%q) failed: %v", input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseSort(%q) = %+v, want %+v", input, got, tc.want)
		}
	}
}

func TestListRejectsSortBeforeStoreCall(t *testing.T) {
	meta := &fakeMetadata{}
	svc := newTestService(meta, &fakeSeries{})

	_, _, err := svc.List(context.Background(), 0, 10, "bogus_field")
	if err == nil {
		t.Fatal("expected error")
	}
	if kind := apperr.KindOf(err); kind != apperr.InvalidParameter {
		t.Fatalf("kind = %v, want InvalidParameter", kind)
	}
	if meta.listCalls != 0 {
		t.Fatalf("store was queried %d times before validation", meta.listCalls)
	}
}

func TestListForwardsSortSpec(t *testing.T) {
	meta := &fakeMetadata{stocks: []models.Stock{{Symbol: "NESTLEIND"}}}
	svc := newTestService(meta, &fakeSeries{})

	stocks, total, err := svc.List(context.Background(), 0, 10, "-company_name")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 || len(stocks) != 1 {
		t.Fatalf("unexpected listing: %d stocks, total %d", len(stocks), total)
	}
	want := store.SortSpec{Field: "company_name", Descending: true}
	if meta.gotSort != want {
		t.Fatalf("forwarded sort = %+v, want %+v", meta.gotSort, want)
	}
}

const detailCSV = `Date,Symbol,Series,Prev Close,Open,High,Low,Last,Close,VWAP,Volume,Turnover,Trades,Deliverable Volume,%Deliverble
2021-05-20,NESTLEIND,EQ,17100,17111,17250,17071.15,17227,17215.45,17172.68,133012,22841.5,4751,65434,0.492
`

func nestleStock() *models.Stock {
	return &models.Stock{
		ID:          "507f1f77bcf86cd799439011",
		CompanyName: "Nestle India Ltd.",
		Industry:    "CONSUMER GOODS",
		Symbol:      "NESTLEIND",
		Series:      "EQ",
		ISINCode:    "INE239A01016",
		FileFormat:  models.FormatCSV,
	}
}

func TestGetDetail(t *testing.T) {
	meta := &fakeMetadata{stock: nestleStock()}
	series := &fakeSeries{raw: []byte(detailCSV)}
	svc := newTestService(meta, series)

	stock, got, err := svc.GetDetail(context.Background(), "507f1f77bcf86cd799439011")
	if err != nil {
		t.Fatalf("GetDetail failed: %v", err)
	}
	if stock.Symbol != "NESTLEIND" {
		t.Errorf("unexpected symbol: %s", stock.Symbol)
	}
	if got.Len() != 1 {
		t.Fatalf("unexpected row count: %d", got.Len())
	}
	if got.Close[0] == nil || *got.Close[0] != 17215.45 {
		t.Errorf("unexpected close: %v", got.Close[0])
	}
}

func TestGetDetailMetadataNotFound(t *testing.T) {
	svc := newTestService(&fakeMetadata{}, &fakeSeries{})

	_, _, err := svc.GetDetail(context.Background(), "507f1f77bcf86cd799439011")
	if err == nil {
		t.Fatal("expected error")
	}
	if kind := apperr.KindOf(err); kind != apperr.NotFound {
		t.Fatalf("kind = %v, want NotFound", kind)
	}
}

// A missing series object is surfaced as NotFound but keeps its own message
// so it stays distinguishable from a missing metadata record.
func TestGetDetailSeriesNotFound(t *testing.T) {
	meta := &fakeMetadata{stock: nestleStock()}
	series := &fakeSeries{err: apperr.New(apperr.NotFound, "no series object at %q", "stocks/csv/NESTLEIND.csv")}
	svc := newTestService(meta, series)

	_, _, err := svc.GetDetail(context.Background(), "507f1f77bcf86cd799439011")
	if err == nil {
		t.Fatal("expected error")
	}
	if kind := apperr.KindOf(err); kind != apperr.NotFound {
		t.Fatalf("kind = %v, want NotFound", kind)
	}
	if got := apperr.Message(err); got != `no series data for symbol "NESTLEIND"` {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestGetDetailDecodeFailure(t *testing.T) {
	meta := &fakeMetadata{stock: nestleStock()}
	series := &fakeSeries{raw: []byte("Date,Close\nnot-a-date,17215.45\n")}
	svc := newTestService(meta, series)

	_, _, err := svc.GetDetail(context.Background(), "507f1f77bcf86cd799439011")
	if err == nil {
		t.Fatal("expected error")
	}
	if kind := apperr.KindOf(err); kind != apperr.Decode {
		t.Fatalf("kind = %v, want Decode", kind)
	}
}

func TestGetDetailTransientFetchFailure(t *testing.T) {
	meta := &fakeMetadata{stock: nestleStock()}
	series := &fakeSeries{err: apperr.New(apperr.Transient, "connection reset")}
	svc := newTestService(meta, series)

	_, _, err := svc.GetDetail(context.Background(), "507f1f77bcf86cd799439011")
	if err == nil {
		t.Fatal("expected error")
	}
	if kind := apperr.KindOf(err); kind != apperr.Transient {
		t.Fatalf("kind = %v, want Transient", kind)
	}
}
