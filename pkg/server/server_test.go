package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/brickfall/pkg/errors"
	"github.com/matzehuels/brickfall/pkg/observability"
)

const sample = `1,0,1~1,2,1
0,0,2~2,0,2
0,2,3~2,2,3
0,0,4~0,2,4
2,0,5~2,2,5
0,1,6~2,1,6
1,1,8~1,1,9
`

func newTestServer(t *testing.T) (*Server, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	s := New(Config{
		Logger:   log.New(io.Discard),
		Gatherer: reg,
	})
	return s, reg
}

func do(t *testing.T, s *Server, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp := httptest.NewRecorder()
	s.Handler().ServeHTTP(resp, req)
	return resp
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var e errorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode error response: %v (body %s)", err, resp.Body.String())
	}
	return e
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	resp := do(t, s, http.MethodGet, "/healthz", "", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.Code)
	}
	if resp.Header().Get("X-Request-Id") == "" {
		t.Error("response missing X-Request-Id")
	}
	if !strings.Contains(resp.Body.String(), `"status":"ok"`) {
		t.Errorf("body = %s", resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), `"build":{"version":`) {
		t.Errorf("body lacks build info: %s", resp.Body.String())
	}
}

func TestRequestIDPropagated(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	resp := httptest.NewRecorder()
	s.Handler().ServeHTTP(resp, req)
	if got := resp.Header().Get("X-Request-Id"); got != "abc-123" {
		t.Errorf("X-Request-Id = %q, want abc-123", got)
	}
}

func TestAnalyzeRawBody(t *testing.T) {
	s, _ := newTestServer(t)
	resp := do(t, s, http.MethodPost, "/v1/analyze", "text/plain", sample)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}

	var out analyzeResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Report.Bricks != 7 || out.Report.Safe != 5 || out.Report.ChainTotal != 7 {
		t.Errorf("report = %+v", out.Report)
	}
	if out.Moved != 5 {
		t.Errorf("moved = %d, want 5", out.Moved)
	}
	if out.RunID == "" {
		t.Error("run_id missing")
	}
	if len(out.Report.Details) != 0 {
		t.Error("details should be omitted by default")
	}
}

func TestAnalyzeJSONBody(t *testing.T) {
	s, _ := newTestServer(t)
	body, _ := json.Marshal(analyzeRequest{Snapshot: sample, Details: true})
	resp := do(t, s, http.MethodPost, "/v1/analyze", "application/json; charset=utf-8", string(body))
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}

	var out analyzeResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Report.Details) != 7 {
		t.Errorf("len(details) = %d, want 7", len(out.Report.Details))
	}
}

func TestAnalyzeDetailsQuery(t *testing.T) {
	s, _ := newTestServer(t)
	resp := do(t, s, http.MethodPost, "/v1/analyze?details=true", "", sample)
	if !strings.Contains(resp.Body.String(), `"details"`) {
		t.Errorf("details=true should include details, body %s", resp.Body.String())
	}
}

func TestAnalyzeDetailsQueryFalse(t *testing.T) {
	s, _ := newTestServer(t)
	resp := do(t, s, http.MethodPost, "/v1/analyze?details=0", "application/json",
		`{"snapshot":"1,0,1~1,2,1\n","details":true}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}
	if strings.Contains(resp.Body.String(), `"details"`) {
		t.Errorf("details=0 should override the body, body %s", resp.Body.String())
	}
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantStatus  int
		wantCode    errors.Code
	}{
		{"malformed", "", "1,0,1~1,2\n", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"overlap", "", "0,0,1~2,0,1\n1,0,1~1,2,1\n", http.StatusBadRequest, errors.ErrCodeOverlap},
		{"empty", "", "", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad json", "application/json", "{", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"too large", "", strings.Repeat("1", errors.MaxInputBytes+1), http.StatusRequestEntityTooLarge, errors.ErrCodeInputTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t)
			resp := do(t, s, http.MethodPost, "/v1/analyze", tt.contentType, tt.body)
			if resp.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", resp.Code, tt.wantStatus, resp.Body.String())
			}
			e := decodeError(t, resp)
			if e.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", e.Code, tt.wantCode)
			}
			if e.RequestID == "" {
				t.Error("error response missing request_id")
			}
		})
	}
}

func TestRender(t *testing.T) {
	s, _ := newTestServer(t)
	resp := do(t, s, http.MethodPost, "/v1/render?format=dot&detailed=true", "", sample)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}
	if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/vnd.graphviz") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(resp.Body.String(), "digraph G") {
		t.Errorf("body is not DOT: %s", resp.Body.String())
	}
	if resp.Header().Get("X-Run-Id") == "" {
		t.Error("missing X-Run-Id")
	}
}

func TestRenderBadFormat(t *testing.T) {
	s, _ := newTestServer(t)
	resp := do(t, s, http.MethodPost, "/v1/render?format=pdf", "", sample)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}
	if e := decodeError(t, resp); e.Code != errors.ErrCodeInvalidFormat {
		t.Errorf("code = %s, want %s", e.Code, errors.ErrCodeInvalidFormat)
	}
}

func TestChain(t *testing.T) {
	s, _ := newTestServer(t)
	resp := do(t, s, http.MethodPost, "/v1/chain?brick="+url.QueryEscape("1,0,1~1,2,1"), "", sample)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}
	var body chainResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Falls != 6 || len(body.Toppled) != 6 {
		t.Errorf("chain = %+v, want 6 falls", body.Chain)
	}
	if body.RunID == "" {
		t.Error("missing run_id")
	}
}

func TestChainErrors(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantCode   errors.Code
	}{
		{"missing brick", "/v1/chain", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown brick", "/v1/chain?brick=" + url.QueryEscape("9,9,9~9,9,9"), http.StatusNotFound, errors.ErrCodeBrickNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t)
			resp := do(t, s, http.MethodPost, tt.target, "", sample)
			if resp.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", resp.Code, tt.wantStatus, resp.Body.String())
			}
			if e := decodeError(t, resp); e.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", e.Code, tt.wantCode)
			}
		})
	}
}

func TestBooleanQueryErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"analyze details", "/v1/analyze?details=yes"},
		{"render detailed", "/v1/render?format=dot&detailed=maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t)
			resp := do(t, s, http.MethodPost, tt.target, "", sample)
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", resp.Code, resp.Body.String())
			}
			if e := decodeError(t, resp); e.Code != errors.ErrCodeInvalidInput {
				t.Errorf("code = %s, want %s", e.Code, errors.ErrCodeInvalidInput)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t)
	resp := do(t, s, http.MethodGet, "/v1/analyze", "", "")
	if resp.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.Code)
	}
}

func TestMetrics(t *testing.T) {
	s, reg := newTestServer(t)
	m := observability.NewMetrics(reg)
	t.Cleanup(observability.Install(observability.Hooks{Pipeline: m, HTTP: m}))

	if resp := do(t, s, http.MethodPost, "/v1/analyze", "", sample); resp.Code != http.StatusOK {
		t.Fatalf("analyze status = %d", resp.Code)
	}

	resp := do(t, s, http.MethodGet, "/metrics", "", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", resp.Code)
	}
	body := resp.Body.String()
	for _, want := range []string{
		`brickfall_http_requests_total{code="200",method="POST",route="/v1/analyze"} 1`,
		`brickfall_stage_duration_seconds_count{stage="settle"} 1`,
		`brickfall_snapshot_bricks_count 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}
