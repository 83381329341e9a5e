package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/brickfall/pkg/analysis"
	"github.com/matzehuels/brickfall/pkg/buildinfo"
	"github.com/matzehuels/brickfall/pkg/errors"
	"github.com/matzehuels/brickfall/pkg/pipeline"
)

type analyzeRequest struct {
	Snapshot string `json:"snapshot"`
	Details  bool   `json:"details"`
}

type analyzeResponse struct {
	RunID     string          `json:"run_id"`
	InputHash string          `json:"input_hash"`
	Moved     int             `json:"moved"`
	Cached    bool            `json:"cached"`
	Report    analysis.Report `json:"report"`
}

type errorResponse struct {
	Error     string      `json:"error"`
	Code      errors.Code `json:"code,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

var contentTypes = map[string]string{
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatJSON: "application/json",
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, err := readRequest(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if req.Details, err = queryBool(r, "details", req.Details); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := s.run(r.Context(), pipeline.Options{
		Snapshot: []byte(req.Snapshot),
		Details:  req.Details,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analyzeResponse{
		RunID:     res.RunID,
		InputHash: res.InputHash,
		Moved:     res.Stats.Moved,
		Cached:    res.CacheInfo.ReportHit,
		Report:    res.Report,
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, r, err)
		return
	}
	req, err := readRequest(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	detailed, err := queryBool(r, "detailed", false)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := s.run(r.Context(), pipeline.Options{
		Snapshot: []byte(req.Snapshot),
		Details:  req.Details,
		Formats:  []string{format},
		Detailed: detailed,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Run-Id", res.RunID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

type chainResponse struct {
	RunID string `json:"run_id"`
	pipeline.Chain
}

func (s *Server) handleChain(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("brick")
	if ref == "" {
		writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "query parameter brick is required"))
		return
	}
	req, err := readRequest(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := s.run(r.Context(), pipeline.Options{Snapshot: []byte(req.Snapshot)})
	if err != nil {
		writeError(w, r, err)
		return
	}
	chain, err := res.Chain(ref)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chainResponse{RunID: res.RunID, Chain: chain})
}

func (s *Server) run(ctx context.Context, opts pipeline.Options) (*pipeline.Result, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	opts.Logger = s.cfg.Logger.With("request", middleware.GetReqID(ctx))
	opts.CacheTTL = s.cfg.CacheTTL
	res, err := s.cfg.Runner.Execute(ctx, opts)
	if stderrors.Is(err, context.DeadlineExceeded) {
		return nil, errors.Wrap(errors.ErrCodeTimeout, err, "analysis timed out")
	}
	return res, err
}

// queryBool reads a boolean query parameter, returning def when it is absent.
func queryBool(r *http.Request, name string, def bool) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeInvalidInput, err, "query parameter %s must be a boolean, got %q", name, v)
	}
	return b, nil
}

// readRequest reads a snapshot from the body, either raw or wrapped in JSON.
func readRequest(w http.ResponseWriter, r *http.Request) (analyzeRequest, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, errors.MaxInputBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return analyzeRequest{}, errors.New(errors.ErrCodeInputTooLarge, "request body exceeds %d bytes", errors.MaxInputBytes)
		}
		return analyzeRequest{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		return analyzeRequest{Snapshot: string(body)}, nil
	}
	var req analyzeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return analyzeRequest{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request")
	}
	return req, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	writeJSON(w, statusFor(err), errorResponse{
		Error:     errors.UserMessage(err),
		Code:      errors.GetCode(err),
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func statusFor(err error) int {
	if code := errors.GetCode(err); code != "" {
		return code.Status()
	}
	if stderrors.Is(err, context.Canceled) {
		return 499
	}
	return http.StatusInternalServerError
}
