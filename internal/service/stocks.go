// Package service orchestrates the read path: metadata listing with sort
// validation, and detail retrieval joining a metadata record with its
// decoded time series. The service is stateless; every call stands alone.
package service

import (
	"context"
	"strings"

	"stockflow/apperr"
	"stockflow/internal/store"
	"stockflow/logger"
	"stockflow/models"
	"stockflow/serializer"
)

// MetadataReader is the slice of the metadata store the service consumes.
type MetadataReader interface {
	List(ctx context.Context, skip, limit int64, sort store.SortSpec) ([]models.Stock, int64, error)
	GetByID(ctx context.Context, id string) (*models.Stock, error)
}

// SeriesFetcher is the slice of the blob store the service consumes.
type SeriesFetcher interface {
	Fetch(ctx context.Context, symbol string, format models.FileFormat) ([]byte, error)
}

// StockService is the sole entry point for request handling; the adapters
// behind it are never exposed to the transport layer.
type StockService struct {
	meta   MetadataReader
	series SeriesFetcher
	log    *logger.Log
}

func New(meta MetadataReader, series SeriesFetcher, log *logger.Log) *StockService {
	return &StockService{
		meta:   meta,
		series: series,
		log:    log,
	}
}

// ParseSort parses a sort expression: a stock field name with an optional
// leading "-" for descending order. The field must be an exact member of
// the stock attribute set; anything else is rejected before any store call.
func ParseSort(input string) (store.SortSpec, error) {
	spec := store.SortSpec{Field: strings.TrimSpace(input)}

	if strings.HasPrefix(spec.Field, "-") {
		spec.Descending = true
		spec.Field = spec.Field[1:]
	}

	if !models.IsStockField(spec.Field) {
		return store.SortSpec{}, apperr.New(apperr.InvalidParameter, "unknown sort field %q", spec.Field)
	}

	return spec, nil
}

// List returns one page of stock metadata plus the total record count.
func (s *StockService) List(ctx context.Context, skip, limit int64, sortInput string) ([]models.Stock, int64, error) {
	sort, err := ParseSort(sortInput)
	if err != nil {
		return nil, 0, err
	}

	return s.meta.List(ctx, skip, limit, sort)
}

// GetDetail resolves a metadata record by id, fetches its series payload in
// the declared file format and normalizes it into the canonical schema.
// A missing series object is reported as NotFound with its own message so
// it stays distinguishable from a missing metadata record in the logs.
func (s *StockService) GetDetail(ctx context.Context, id string) (*models.Stock, *models.StockSeries, error) {
	stock, err := s.meta.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if stock == nil {
		return nil, nil, apperr.New(apperr.NotFound, "no stock with id %q", id)
	}

	raw, err := s.series.Fetch(ctx, stock.Symbol, stock.FileFormat)
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			return nil, nil, apperr.Wrap(apperr.NotFound, err, "no series data for symbol %q", stock.Symbol)
		}
		return nil, nil, err
	}

	series, err := serializer.Normalize(raw, stock.FileFormat, models.SeriesColumnRenames)
	if err != nil {
		return nil, nil, err
	}

	s.log.WithComponent("stock_service").WithFields(logger.Fields{
		"symbol": stock.Symbol,
		"format": stock.FileFormat,
		"rows":   series.Len(),
	}).Debug("normalized stock series")

	return stock, series, nil
}
