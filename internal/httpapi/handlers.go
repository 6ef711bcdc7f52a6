package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stockflow/apperr"
	"stockflow/logger"
	"stockflow/models"
)

const (
	defaultLimit = 10
	defaultSort  = "company_name"
)

const (
	errTypeInvalidResource        = "invalid_resource"
	errTypeInvalidQueryParameters = "invalid_query_parameters"
	errTypeNotFound               = "not_found"
	errTypeInternal               = "internal_error"
)

// errorBody is the error envelope returned on every failed request.
type errorBody struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Detail      string `json:"detail,omitempty"`
}

// stockDetailResponse flattens the metadata record next to its series.
type stockDetailResponse struct {
	models.Stock
	TimeSeries *models.StockSeries `json:"time_series"`
}

// listStocks handles GET /api/v1/stocks.
func (s *Server) listStocks(c *gin.Context) {
	skip, err := queryInt(c, "skip", 0)
	if err != nil {
		s.writeError(c, err, errTypeInvalidQueryParameters)
		return
	}

	limit, err := queryInt(c, "limit", defaultLimit)
	if err != nil {
		s.writeError(c, err, errTypeInvalidQueryParameters)
		return
	}

	sort := c.DefaultQuery("sort", defaultSort)

	stocks, total, err := s.stocks.List(c.Request.Context(), skip, limit, sort)
	if err != nil {
		s.writeError(c, err, errTypeInvalidQueryParameters)
		return
	}

	c.JSON(http.StatusOK, models.StockListing{
		Stocks: stocks,
		Skip:   skip,
		Limit:  limit,
		Total:  total,
	})
}

// getStock handles GET /api/v1/stocks/:id.
func (s *Server) getStock(c *gin.Context) {
	id := c.Param("id")

	stock, series, err := s.stocks.GetDetail(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err, errTypeInvalidResource)
		return
	}

	c.JSON(http.StatusOK, stockDetailResponse{
		Stock:      *stock,
		TimeSeries: series,
	})
}

func queryInt(c *gin.Context, name string, fallback int64) (int64, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperr.New(apperr.InvalidParameter, "query parameter %q must be an integer", name)
	}
	return value, nil
}

// writeError translates an error kind into a status and error envelope.
// InvalidParameter carries its message as client-visible detail; everything
// unexpected is logged in full and answered with a sanitized 500.
func (s *Server) writeError(c *gin.Context, err error, invalidType string) {
	reqLog := s.log.WithComponent("httpapi").WithRequestID(requestIDFrom(c)).WithFields(logger.Fields{
		"path": c.Request.URL.Path,
	})

	switch apperr.KindOf(err) {
	case apperr.InvalidParameter:
		c.JSON(http.StatusBadRequest, errorBody{
			Type:        invalidType,
			Description: invalidTypeDescription(invalidType),
			Detail:      apperr.Message(err),
		})
	case apperr.NotFound:
		c.JSON(http.StatusNotFound, errorBody{
			Type:        errTypeNotFound,
			Description: "The server can not find the requested resource.",
		})
	default:
		reqLog.WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, errorBody{
			Type:        errTypeInternal,
			Description: "An internal error has occurred while processing the request.",
		})
	}
}

func invalidTypeDescription(errType string) string {
	if errType == errTypeInvalidResource {
		return "The requested resource is invalid."
	}
	return "The request has invalid query parameters."
}
