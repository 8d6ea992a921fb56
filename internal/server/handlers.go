package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quantforge/ta/pkg/indicator"
	"github.com/quantforge/ta/pkg/ma"
	"github.com/quantforge/ta/pkg/quotes"
)

// computeRequest is the body of a compute call: either inline OHLCV arrays
// or a stored symbol/timeframe reference, plus indicator parameters.
type computeRequest struct {
	Symbol    string           `json:"symbol,omitempty"`
	Timeframe string           `json:"timeframe,omitempty"`
	Limit     int              `json:"limit,omitempty"`
	Open      []float64        `json:"open,omitempty"`
	High      []float64        `json:"high,omitempty"`
	Low       []float64        `json:"low,omitempty"`
	Close     []float64        `json:"close,omitempty"`
	Volume    []float64        `json:"volume,omitempty"`
	Params    indicator.Params `json:"params,omitempty"`
}

type computeResponse struct {
	Indicator string                `json:"indicator"`
	Length    int                   `json:"length"`
	Outputs   map[string][]*float64 `json:"outputs"`
}

// Response helpers
func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(err))
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, indicator.ErrUnknownIndicator):
		return http.StatusNotFound
	case errors.Is(err, ma.ErrInvalidParameter),
		errors.Is(err, quotes.ErrColumnNotFound),
		errors.Is(err, quotes.ErrShapeMismatch),
		errors.Is(err, quotes.ErrBadInput):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleListIndicators(w http.ResponseWriter, r *http.Request) {
	entries := make([]indicator.Entry, 0)
	for _, name := range indicator.Names() {
		entry, err := indicator.Lookup(name)
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	s.writeJSON(w, map[string]interface{}{"indicators": entries})
}

func (s *Server) handleGetIndicator(w http.ResponseWriter, r *http.Request) {
	entry, err := indicator.Lookup(chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, entry)
}

func (s *Server) handleComputeIndicator(w http.ResponseWriter, r *http.Request) {
	var req computeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, fmt.Errorf("%w: invalid request body: %v", quotes.ErrBadInput, err))
		return
	}

	resp, err := s.compute(r.Context(), chi.URLParam(r, "name"), &req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, resp)
}

// compute resolves the quote series, runs the indicator and converts the
// outputs to their JSON form. Shared by the REST and WebSocket paths.
func (s *Server) compute(ctx context.Context, name string, req *computeRequest) (*computeResponse, error) {
	q, err := s.resolveQuotes(ctx, req)
	if err != nil {
		return nil, err
	}

	timer := time.Now()
	result, err := indicator.Compute(name, q, req.Params)
	computeDuration.WithLabelValues(name).Observe(time.Since(timer).Seconds())
	if err != nil {
		computeTotal.WithLabelValues(name, "error").Inc()
		return nil, err
	}
	computeTotal.WithLabelValues(name, "ok").Inc()

	outputs := make(map[string][]*float64, result.Len())
	for _, output := range result.Names() {
		series, _ := result.Get(output)
		outputs[output] = jsonSeries(series)
	}

	s.logger.Debug().
		Str("indicator", name).
		Int("bars", q.Len()).
		Msg("Indicator computed")

	return &computeResponse{
		Indicator: name,
		Length:    q.Len(),
		Outputs:   outputs,
	}, nil
}

func (s *Server) resolveQuotes(ctx context.Context, req *computeRequest) (*quotes.Quotes, error) {
	if len(req.Close) > 0 {
		opts := []quotes.Option{}
		if len(req.Volume) > 0 {
			opts = append(opts, quotes.WithVolume(req.Volume))
		}
		return quotes.New(req.Open, req.High, req.Low, req.Close, opts...)
	}
	if req.Symbol == "" {
		return nil, fmt.Errorf("%w: either OHLC arrays or a symbol is required", quotes.ErrBadInput)
	}
	timeframe := req.Timeframe
	if timeframe == "" {
		timeframe = "1d"
	}
	return s.db.Candles(ctx, req.Symbol, timeframe, req.Limit)
}

func (s *Server) handleGetCandles(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	timeframe := r.URL.Query().Get("timeframe")
	if timeframe == "" {
		timeframe = "1d"
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, fmt.Errorf("%w: invalid limit: %s", quotes.ErrBadInput, v))
			return
		}
		limit = n
	}

	q, err := s.db.Candles(r.Context(), symbol, timeframe, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}

	ts := make([]int64, q.Len())
	for i, t := range q.Time() {
		ts[i] = t.UnixMilli()
	}
	resp := map[string]interface{}{
		"symbol":    symbol,
		"timeframe": timeframe,
		"ts":        ts,
		"open":      jsonSeries(q.Open()),
		"high":      jsonSeries(q.High()),
		"low":       jsonSeries(q.Low()),
		"close":     jsonSeries(q.Close()),
	}
	if volume, err := q.Volume(); err == nil {
		resp["volume"] = jsonSeries(volume)
	}
	s.writeJSON(w, resp)
}

// jsonSeries maps NaN to null, which encoding/json cannot do for raw floats.
func jsonSeries(values []float64) []*float64 {
	out := make([]*float64, len(values))
	for i := range values {
		if math.IsNaN(values[i]) {
			continue
		}
		v := values[i]
		out[i] = &v
	}
	return out
}
