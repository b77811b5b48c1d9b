// Package e2e builds the algolab binary and drives it over HTTP.
package e2e

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"
)

const (
	startupTimeout = 10 * time.Second
	pollInterval   = 100 * time.Millisecond
)

// lockedBuffer is a thread-safe wrapper around bytes.Buffer.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (lb *lockedBuffer) Write(p []byte) (int, error) {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.buf.Write(p)
}

func (lb *lockedBuffer) String() string {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return lb.buf.String()
}

// serverProc holds the running server subprocess and its output.
type serverProc struct {
	cmd    *exec.Cmd
	stdout *lockedBuffer
	url    string
}

var (
	builtBinary string
	buildOnce   sync.Once
	buildErr    error
)

func getBinary(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("e2e: skipped in short mode")
	}
	buildOnce.Do(func() {
		dir, err := os.MkdirTemp("", "algolab-e2e-*")
		if err != nil {
			buildErr = err
			return
		}
		binary := filepath.Join(dir, "algolab")
		cmd := exec.Command("go", "build", "-o", binary, "./cmd/algolab")
		cmd.Dir = findRepoRoot(t)
		out, err := cmd.CombinedOutput()
		if err != nil {
			buildErr = fmt.Errorf("go build failed: %w\n%s", err, out)
			return
		}
		builtBinary = binary
	})
	if buildErr != nil {
		t.Fatal(buildErr)
	}
	return builtBinary
}

func findRepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find repo root")
		}
		dir = parent
	}
}

// startServer launches the binary against dbPath. Extra env entries override
// the defaults.
func startServer(t *testing.T, binary, dbPath string, env ...string) *serverProc {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("find free port: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	stdout := &lockedBuffer{}
	cmd := exec.Command(binary)
	cmd.Dir = t.TempDir() // no stray .env
	cmd.Env = append(os.Environ(),
		"ALGOLAB_LISTEN_ADDR="+addr,
		"ALGOLAB_DB_PATH="+dbPath,
		"ALGOLAB_LOG_LEVEL=info",
	)
	cmd.Env = append(cmd.Env, env...)
	cmd.Stdout = stdout
	cmd.Stderr = stdout

	if err := cmd.Start(); err != nil {
		t.Fatalf("start server: %v", err)
	}

	sp := &serverProc{
		cmd:    cmd,
		stdout: stdout,
		url:    "http://" + addr,
	}

	t.Cleanup(func() {
		if sp.cmd.ProcessState == nil {
			cmd.Process.Kill()
			cmd.Wait()
		}
	})

	deadline := time.Now().Add(startupTimeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(sp.url + "/healthz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == 200 {
				return sp
			}
		}
		time.Sleep(pollInterval)
	}
	t.Fatalf("server did not become ready within %v\nstdout:\n%s", startupTimeout, stdout.String())
	return nil
}

// stop sends SIGTERM and waits for the process to exit.
func (sp *serverProc) stop(t *testing.T) {
	t.Helper()
	if err := sp.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		t.Fatalf("signal server: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- sp.cmd.Wait() }()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("server exited with error: %v\nstdout:\n%s", err, sp.stdout.String())
		}
	case <-time.After(15 * time.Second):
		t.Fatal("server did not exit after SIGTERM")
	}
}

func execute(t *testing.T, url, body string) map[string]any {
	t.Helper()
	resp, err := http.Post(url+"/v1/execute", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /v1/execute: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, want 200\nbody: %s", resp.StatusCode, b)
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestBinaryServesHealthAndMetrics(t *testing.T) {
	binary := getBinary(t)
	sp := startServer(t, binary, filepath.Join(t.TempDir(), "test.db"))

	resp, err := http.Get(sp.url + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	for _, name := range []string{"algolab_http_requests_total", "algolab_http_request_duration_seconds"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}

func TestExecuteFloydWarshall(t *testing.T) {
	binary := getBinary(t)
	sp := startServer(t, binary, filepath.Join(t.TempDir(), "test.db"))

	out := execute(t, sp.url, `{"algorithm":"graphTheory.floydWarshall","params":[[[0,3,0],[0,0,1],[2,0,0]]]}`)

	dist, ok := out["result"].([]any)
	if !ok || len(dist) != 3 {
		t.Fatalf("result = %v, want 3x3 matrix", out["result"])
	}
	row0, _ := dist[0].([]any)
	if len(row0) != 3 || row0[2] != float64(4) {
		t.Errorf("dist[0] = %v, want dist[0][2] = 4", row0)
	}
}

func TestArchiveSurvivesRestart(t *testing.T) {
	binary := getBinary(t)
	dbPath := filepath.Join(t.TempDir(), "archive.db")

	sp := startServer(t, binary, dbPath)
	execute(t, sp.url, `{"algorithm":"cryptography.gcd","params":[48,18]}`)
	execute(t, sp.url, `{"algorithm":"cryptography.gcd","params":[48,18]}`)
	sp.stop(t)

	if !strings.Contains(sp.stdout.String(), `"msg":"server stopped"`) {
		t.Errorf("no graceful shutdown log\nstdout:\n%s", sp.stdout.String())
	}

	sp = startServer(t, binary, dbPath)
	resp, err := http.Get(sp.url + "/v1/executions/stats")
	if err != nil {
		t.Fatalf("GET /v1/executions/stats: %v", err)
	}
	defer resp.Body.Close()

	var stats struct {
		Total          int            `json:"total"`
		CountByOutcome map[string]int `json:"count_by_outcome"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if stats.Total != 2 || stats.CountByOutcome["cached"] != 1 {
		t.Errorf("stats after restart = %+v, want 2 executions with 1 cached", stats)
	}

	// In-memory history does not survive the restart.
	hresp, err := http.Get(sp.url + "/v1/history")
	if err != nil {
		t.Fatalf("GET /v1/history: %v", err)
	}
	defer hresp.Body.Close()
	var hist struct {
		Records []any `json:"records"`
	}
	if err := json.NewDecoder(hresp.Body).Decode(&hist); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(hist.Records) != 0 {
		t.Errorf("history after restart = %d records, want 0", len(hist.Records))
	}
}

func TestCacheDisabledByEnv(t *testing.T) {
	binary := getBinary(t)
	sp := startServer(t, binary, filepath.Join(t.TempDir(), "test.db"), "ALGOLAB_CACHE_ENABLED=false")

	execute(t, sp.url, `{"algorithm":"cryptography.gcd","params":[10,4]}`)
	execute(t, sp.url, `{"algorithm":"cryptography.gcd","params":[10,4]}`)

	resp, err := http.Get(sp.url + "/v1/stats")
	if err != nil {
		t.Fatalf("GET /v1/stats: %v", err)
	}
	defer resp.Body.Close()

	var stats struct {
		TotalExecutions int  `json:"total_executions"`
		CacheHits       int  `json:"cache_hits"`
		CacheEnabled    bool `json:"cache_enabled"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if stats.CacheEnabled || stats.CacheHits != 0 || stats.TotalExecutions != 2 {
		t.Errorf("stats = %+v, want cache off and 2 executions", stats)
	}
}

func TestStructuredJSONLogs(t *testing.T) {
	binary := getBinary(t)
	sp := startServer(t, binary, filepath.Join(t.TempDir(), "test.db"))

	resp, err := http.Get(sp.url + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()

	// Poll for log output with a deadline.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(sp.stdout.String(), `"msg":"request"`) {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	scanner := bufio.NewScanner(strings.NewReader(sp.stdout.String()))
	foundRequestLog := false
	for scanner.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		if msg, ok := entry["msg"].(string); ok && msg == "request" {
			foundRequestLog = true
			for _, key := range []string{"method", "path", "status", "duration_ms"} {
				if _, ok := entry[key]; !ok {
					t.Errorf("request log missing field %q", key)
				}
			}
		}
	}
	if !foundRequestLog {
		t.Errorf("no structured request log found in stdout\noutput:\n%s", sp.stdout.String())
	}
}
