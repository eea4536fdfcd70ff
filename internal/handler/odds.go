package handler

import (
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/oddstable/internal/errs"
	"github.com/deppfellow/oddstable/internal/model"
	"github.com/deppfellow/oddstable/internal/server"
	"github.com/deppfellow/oddstable/internal/service"
	"github.com/deppfellow/oddstable/internal/validation"
)

const defaultScanLimit = 100

// GetOddsRequest reads one row. Sep overrides the configured key delimiter.
type GetOddsRequest struct {
	RowKey string `param:"rowkey" validate:"required"`
	Sep    string `query:"sep"`
}

func (r *GetOddsRequest) Validate() error {
	return validation.Struct(r)
}

// ScanOddsRequest reads a key range: either [start, stop) or every key under
// prefix.
type ScanOddsRequest struct {
	Start  string `query:"start"`
	Stop   string `query:"stop"`
	Prefix string `query:"prefix"`
	Limit  int64  `query:"limit" validate:"omitempty,min=1,max=1000"`
	Sep    string `query:"sep"`
}

func (r *ScanOddsRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}
	return r.scanRequest().Validate()
}

func (r *ScanOddsRequest) scanRequest() service.ScanRequest {
	limit := r.Limit
	if limit == 0 {
		limit = defaultScanLimit
	}
	return service.ScanRequest{
		Start:     r.Start,
		Stop:      r.Stop,
		Prefix:    r.Prefix,
		Limit:     limit,
		Delimiter: r.Sep,
	}
}

// RecordError is a row the scan found but could not turn into a record.
type RecordError struct {
	RowKey string `json:"rowkey"`
	Kind   string `json:"kind"`
	Error  string `json:"error"`
}

type OddsListResponse struct {
	Records []*model.Record `json:"records"`
	Errors  []RecordError   `json:"errors,omitempty"`

	// NextStart is set when a page is full. Pass it as start, together with
	// the same prefix or stop, to read the next page.
	NextStart string `json:"next_start,omitempty"`
}

func (r *OddsListResponse) Count() int {
	return len(r.Records)
}

type OddsHandler struct {
	Handler
	query *service.QueryService
}

func NewOddsHandler(s *server.Server, query *service.QueryService) *OddsHandler {
	return &OddsHandler{
		Handler: NewHandler(s),
		query:   query,
	}
}

// GetOdds serves GET /api/v1/odds/:rowkey.
func (h *OddsHandler) GetOdds(c echo.Context, req *GetOddsRequest) (*model.Record, error) {
	// Echo routes on the raw path when the request carries one, leaving the
	// param escaped.
	key := req.RowKey
	if c.Request().URL.RawPath != "" {
		unescaped, err := url.PathUnescape(key)
		if err != nil {
			return nil, errs.NewMalformedKey(key, "row key is not a valid escaped path segment")
		}
		key = unescaped
	}

	results, err := h.query.Get(c.Request().Context(), []string{key}, req.Sep)
	if err != nil {
		return nil, err
	}
	if results[0].Err != nil {
		return nil, results[0].Err
	}
	return results[0].Record, nil
}

// ScanOdds serves GET /api/v1/odds. Rows that fail to assemble are listed
// under errors instead of failing the page.
func (h *OddsHandler) ScanOdds(c echo.Context, req *ScanOddsRequest) (*OddsListResponse, error) {
	scan := req.scanRequest()
	resp := &OddsListResponse{Records: []*model.Record{}}

	var rows int64
	var last string
	err := h.query.Scan(c.Request().Context(), scan, func(r service.Result) bool {
		rows++
		last = r.Key
		if r.Err != nil {
			resp.Errors = append(resp.Errors, RecordError{
				RowKey: r.Key,
				Kind:   string(errs.KindOf(r.Err)),
				Error:  r.Err.Error(),
			})
			return true
		}
		resp.Records = append(resp.Records, r.Record)
		return true
	})
	if err != nil {
		return nil, err
	}

	// last+"\x00" is the smallest key sorting after last.
	if next := last + "\x00"; rows == scan.Limit && (scan.Stop == "" || next < scan.Stop) {
		resp.NextStart = next
	}
	return resp, nil
}
