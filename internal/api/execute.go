package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seantiz/algolab/internal/algorithm/args"
	"github.com/seantiz/algolab/internal/engine"
)

const (
	maxBatchSize     = 32
	batchConcurrency = 8
)

// executeRequest is the JSON body for POST /v1/execute.
type executeRequest struct {
	Algorithm string          `json:"algorithm"`
	Params    []any           `json:"params"`
	Options   *executeOptions `json:"options"`
}

type executeOptions struct {
	SkipCache     bool `json:"skip_cache"`
	TimeoutMS     int  `json:"timeout_ms"`
	ValidateInput bool `json:"validate_input"`
}

// executeResponse is the JSON response for a single execution.
type executeResponse struct {
	Algorithm  string  `json:"algorithm"`
	Result     any     `json:"result,omitempty"`
	DurationMS float64 `json:"duration_ms"`
	Error      string  `json:"error,omitempty"`
	Status     int     `json:"status,omitempty"`
}

type batchRequest struct {
	Calls []executeRequest `json:"calls"`
}

type batchResponse struct {
	Results []executeResponse `json:"results"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Algorithm == "" {
		s.writeError(w, http.StatusBadRequest, "algorithm is required")
		return
	}

	resp, status := s.run(r.Context(), req)
	if status != http.StatusOK {
		s.writeError(w, status, resp.Error)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExecuteBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Calls) == 0 {
		s.writeError(w, http.StatusBadRequest, "calls is required")
		return
	}
	if len(req.Calls) > maxBatchSize {
		s.writeError(w, http.StatusBadRequest, "too many calls in batch")
		return
	}

	results := make([]executeResponse, len(req.Calls))
	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(batchConcurrency)
	for i, call := range req.Calls {
		g.Go(func() error {
			if call.Algorithm == "" {
				results[i] = executeResponse{Error: "algorithm is required", Status: http.StatusBadRequest}
				return nil
			}
			resp, status := s.run(ctx, call)
			if status != http.StatusOK {
				resp.Status = status
			}
			results[i] = resp
			return nil
		})
	}
	// Per-call failures are reported in place; the group itself never fails.
	_ = g.Wait()

	s.writeJSON(w, http.StatusOK, batchResponse{Results: results})
}

// run executes one request and maps the outcome to an HTTP status.
func (s *Server) run(ctx context.Context, req executeRequest) (executeResponse, int) {
	opts := []engine.ExecOption{engine.WithTimeout(s.execTimeout)}
	if o := req.Options; o != nil {
		if o.SkipCache {
			opts = append(opts, engine.SkipCache())
		}
		if o.TimeoutMS > 0 {
			opts = append(opts, engine.WithTimeout(time.Duration(o.TimeoutMS)*time.Millisecond))
		}
		if o.ValidateInput {
			opts = append(opts, engine.ValidateInput())
		}
	}

	start := time.Now()
	result, err := s.engine.Execute(ctx, req.Algorithm, req.Params, opts...)
	resp := executeResponse{
		Algorithm:  req.Algorithm,
		DurationMS: float64(time.Since(start)) / float64(time.Millisecond),
	}
	if err != nil {
		resp.Error = err.Error()
		return resp, statusForError(err)
	}
	resp.Result = result
	return resp, http.StatusOK
}

// statusForError maps engine and algorithm errors to HTTP status codes.
// Anything not recognised is an algorithm rejecting its input.
func statusForError(err error) int {
	var panicErr *engine.PanicError
	switch {
	case errors.Is(err, engine.ErrUnknownAlgorithm):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrInvalidParams), errors.Is(err, args.ErrArgument):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrExecutionTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case errors.As(err, &panicErr):
		return http.StatusInternalServerError
	default:
		return http.StatusUnprocessableEntity
	}
}
