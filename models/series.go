package models

import "time"

// SeriesColumnRenames maps source file headers to canonical column names.
// Lookup is by exact string match; headers not present in the map are left
// untouched by the serializers and dropped when the canonical table is built.
var SeriesColumnRenames = map[string]string{
	"Date":               "date",
	"Symbol":             "symbol",
	"Series":             "series",
	"Prev Close":         "previous_close",
	"Open":               "open",
	"High":               "high",
	"Low":                "low",
	"Last":               "last",
	"Close":              "close",
	"VWAP":               "vwap",
	"Volume":             "volume",
	"Turnover":           "turnover",
	"Trades":             "trades",
	"Deliverable Volume": "deliverable_volume",
	"%Deliverble":        "deliverable_percent",
}

// StockSeries is the canonical column-oriented table every source format
// converges to. Each slice has one entry per trading date, in source file
// order. Missing values are nil, never a sentinel number or empty string.
type StockSeries struct {
	Date               []time.Time `json:"date"`
	Symbol             []*string   `json:"symbol"`
	Series             []*string   `json:"series"`
	PreviousClose      []*float64  `json:"previous_close"`
	Open               []*float64  `json:"open"`
	High               []*float64  `json:"high"`
	Low                []*float64  `json:"low"`
	Last               []*float64  `json:"last"`
	Close              []*float64  `json:"close"`
	VWAP               []*float64  `json:"vwap"`
	Volume             []*int64    `json:"volume"`
	Turnover           []*float64  `json:"turnover"`
	Trades             []*float64  `json:"trades"`
	DeliverableVolume  []*int64    `json:"deliverable_volume"`
	DeliverablePercent []*float64  `json:"deliverable_percent"`
}

// Len returns the number of rows in the series.
func (s *StockSeries) Len() int {
	return len(s.Date)
}
