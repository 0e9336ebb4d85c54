package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mhalver/gatefold/pkg/pipeline"
)

const testProgram = `OPENQASM 2.0;
include "qelib1.inc";
qreg q[2];
h q[0];
h q[0];
t q[1];
tdg q[1];
cx q[0],q[1];
cx q[0],q[1];
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return NewServer(pipeline.NewRunner(nil, nil, nil), nil)
}

func postJSON(t *testing.T, srv *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshaling request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestOptimizeEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := postJSON(t, srv, "/v1/optimize", optimizeRequest{Source: testProgram})
	if rec.Code != http.StatusOK {
		t.Fatalf("POST /v1/optimize status = %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body)
	}

	var resp optimizeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.GatesBefore != 6 {
		t.Errorf("GatesBefore = %d, want 6", resp.GatesBefore)
	}
	if resp.GatesAfter != 0 {
		t.Errorf("GatesAfter = %d, want 0", resp.GatesAfter)
	}
	if resp.Removed != 6 {
		t.Errorf("Removed = %d, want 6", resp.Removed)
	}
	if resp.SourceHash == "" {
		t.Error("SourceHash is empty")
	}
	if !strings.Contains(resp.Optimized, "qreg q[2];") {
		t.Errorf("Optimized missing qreg declaration:\n%s", resp.Optimized)
	}
}

func TestOptimizeEndpointReturnsArtifacts(t *testing.T) {
	srv := newTestServer(t)

	rec := postJSON(t, srv, "/v1/optimize", optimizeRequest{
		Source:  "qreg q[1];\nh q[0];\n",
		Formats: []string{"dot"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusOK, rec.Body)
	}

	var resp optimizeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	dot, ok := resp.Artifacts["dot"]
	if !ok {
		t.Fatalf("Artifacts missing %q key, got %v", "dot", resp.Artifacts)
	}
	if !strings.Contains(string(dot), "digraph circuit") {
		t.Errorf("dot artifact missing digraph header:\n%s", dot)
	}
}

func TestOptimizeEndpointErrors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{
			name:       "empty source",
			body:       optimizeRequest{Source: ""},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_QASM",
		},
		{
			name:       "malformed gate",
			body:       optimizeRequest{Source: "qreg q[1];\nbogus q[0];\n"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_GATE",
		},
		{
			name:       "unknown schedule pass",
			body:       optimizeRequest{Source: "qreg q[1];\nh q[0];\n", Schedule: "h,nope"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_SCHEDULE",
		},
		{
			name:       "unknown format",
			body:       optimizeRequest{Source: "qreg q[1];\nh q[0];\n", Formats: []string{"pdf"}},
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_FORMAT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, srv, "/v1/optimize", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body: %s)", rec.Code, tt.wantStatus, rec.Body)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decoding error response: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", resp.Code, tt.wantCode)
			}
		})
	}
}

func TestOptimizeEndpointRejectsBadJSON(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/optimize", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestJobLifecycle(t *testing.T) {
	srv := newTestServer(t)

	rec := postJSON(t, srv, "/v1/jobs", optimizeRequest{Source: testProgram})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("POST /v1/jobs status = %d, want %d (body: %s)", rec.Code, http.StatusAccepted, rec.Body)
	}

	var created jobResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding job response: %v", err)
	}
	if created.ID == "" {
		t.Fatal("job ID is empty")
	}

	// Poll until the job settles.
	var final jobResponse
	deadline := time.Now().Add(5 * time.Second)
	for {
		req := httptest.NewRequest(http.MethodGet, "/v1/jobs/"+created.ID, nil)
		poll := httptest.NewRecorder()
		srv.ServeHTTP(poll, req)
		if poll.Code != http.StatusOK {
			t.Fatalf("GET /v1/jobs/{id} status = %d, want %d", poll.Code, http.StatusOK)
		}
		if err := json.Unmarshal(poll.Body.Bytes(), &final); err != nil {
			t.Fatalf("decoding job status: %v", err)
		}
		if final.Status == string(jobStatusDone) || final.Status == string(jobStatusFailed) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job stuck in status %q", final.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if final.Status != string(jobStatusDone) {
		t.Fatalf("job status = %q, want %q (error: %s)", final.Status, jobStatusDone, final.Error)
	}
	if final.Result == nil {
		t.Fatal("finished job has no result")
	}
	if final.Result.Removed != 6 {
		t.Errorf("Result.Removed = %d, want 6", final.Result.Removed)
	}
}

func TestJobRejectsInvalidOptionsUpFront(t *testing.T) {
	srv := newTestServer(t)

	rec := postJSON(t, srv, "/v1/jobs", optimizeRequest{Source: ""})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestGetJobNotFound(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		id   string
	}{
		{"unknown uuid", "b9f9f6a0-0000-4000-8000-000000000000"},
		{"not a uuid", "nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/jobs/"+tt.id, nil)
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)
			if rec.Code != http.StatusNotFound {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
			}
		})
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
