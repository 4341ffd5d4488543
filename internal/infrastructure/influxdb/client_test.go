package influxdb_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/pico-bridge/internal/infrastructure/config"
	"github.com/nerrad567/pico-bridge/internal/infrastructure/influxdb"
)

// fakeInflux is an httptest server speaking the parts of the InfluxDB v2
// HTTP API the client uses: /ping and /api/v2/write.
type fakeInflux struct {
	*httptest.Server

	mu        sync.Mutex
	lines     []string
	writeCode int
}

func newFakeInflux(t *testing.T) *fakeInflux {
	t.Helper()
	f := &fakeInflux{writeCode: http.StatusNoContent}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeInflux) handle(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/ping", "/health":
		w.WriteHeader(http.StatusNoContent)
	case "/api/v2/write":
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		code := f.writeCode
		if code == http.StatusNoContent {
			for _, l := range strings.Split(strings.TrimSpace(string(body)), "\n") {
				if l != "" {
					f.lines = append(f.lines, l)
				}
			}
		}
		f.mu.Unlock()
		if code != http.StatusNoContent {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(code)
			io.WriteString(w, `{"code":"invalid","message":"rejected"}`)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeInflux) setWriteCode(code int) {
	f.mu.Lock()
	f.writeCode = code
	f.mu.Unlock()
}

// waitLines waits until at least n lines have been written.
func (f *fakeInflux) waitLines(t *testing.T, n int) []string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		f.mu.Lock()
		lines := append([]string(nil), f.lines...)
		f.mu.Unlock()
		if len(lines) >= n {
			return lines
		}
		if time.Now().After(deadline) {
			t.Fatalf("got %d written lines, want %d: %v", len(lines), n, lines)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func testConfig(url string) config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           url,
		Token:         "picobridge-test-token",
		Org:           "picobridge",
		Bucket:        "telemetry",
		BatchSize:     100,
		FlushInterval: 1,
	}
}

func connect(t *testing.T, f *fakeInflux) *influxdb.Client {
	t.Helper()
	client, err := influxdb.Connect(context.Background(), testConfig(f.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

// =============================================================================
// Connection Tests
// =============================================================================

func TestConnect(t *testing.T) {
	client := connect(t, newFakeInflux(t))

	if !client.IsConnected() {
		t.Error("IsConnected() = false after Connect()")
	}
}

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:8086")
	cfg.Enabled = false

	client, err := influxdb.Connect(context.Background(), cfg)
	if !errors.Is(err, influxdb.ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
	if client != nil {
		t.Error("Connect() returned a client while disabled")
	}
}

func TestConnect_Unreachable(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:59999")

	_, err := influxdb.Connect(context.Background(), cfg)
	if !errors.Is(err, influxdb.ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestConnect_DefaultBatchSettings(t *testing.T) {
	f := newFakeInflux(t)
	cfg := testConfig(f.URL)
	cfg.BatchSize = -5
	cfg.FlushInterval = 0

	client, err := influxdb.Connect(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if !client.IsConnected() {
		t.Error("IsConnected() = false after Connect() with default batch settings")
	}
}

// =============================================================================
// Health Check Tests
// =============================================================================

func TestHealthCheck(t *testing.T) {
	client := connect(t, newFakeInflux(t))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestHealthCheck_Cancelled(t *testing.T) {
	client := connect(t, newFakeInflux(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := client.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() should return error for cancelled context")
	}
}

func TestHealthCheck_AfterClose(t *testing.T) {
	client := connect(t, newFakeInflux(t))
	client.Close()

	if err := client.HealthCheck(context.Background()); !errors.Is(err, influxdb.ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

// =============================================================================
// Telemetry Tests
// =============================================================================

func TestRecordInbound(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []string
		notWant string
	}{
		{
			name:    "numeric payload gets a value field",
			payload: "21.5",
			want:    []string{"mqtt_inbound,topic=mqtt/pico_data ", `payload="21.5"`, "value=21.5", "bytes=4i"},
		},
		{
			name:    "text payload has no value field",
			payload: "hello pico",
			want:    []string{"mqtt_inbound,topic=mqtt/pico_data ", `payload="hello pico"`},
			notWant: "value=",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeInflux(t)
			client := connect(t, f)

			client.RecordInbound("mqtt/pico_data", []byte(tt.payload))
			client.Flush()

			line := f.waitLines(t, 1)[0]
			for _, w := range tt.want {
				if !strings.Contains(line, w) {
					t.Errorf("line %q missing %q", line, w)
				}
			}
			if tt.notWant != "" && strings.Contains(line, tt.notWant) {
				t.Errorf("line %q should not contain %q", line, tt.notWant)
			}
		})
	}
}

func TestRecordPublish(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   []string
	}{
		{
			name:   "success",
			status: 0,
			want:   []string{"mqtt_publish,status_code=0,topic=mqtt/streamlit_data ", "ok=true", "status=0i", `payload="7"`, "value=7"},
		},
		{
			name:   "no connection",
			status: 4,
			want:   []string{"status_code=4", "ok=false", "status=4i"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFakeInflux(t)
			client := connect(t, f)

			client.RecordPublish("mqtt/streamlit_data", []byte("7"), tt.status)
			client.Flush()

			line := f.waitLines(t, 1)[0]
			for _, w := range tt.want {
				if !strings.Contains(line, w) {
					t.Errorf("line %q missing %q", line, w)
				}
			}
		})
	}
}

func TestWritePointWithTime(t *testing.T) {
	f := newFakeInflux(t)
	client := connect(t, f)

	ts := time.Unix(1700000000, 0)
	client.WritePointWithTime("custom", map[string]string{"source": "test"}, map[string]interface{}{"value": 88.8}, ts)
	client.Flush()

	line := f.waitLines(t, 1)[0]
	if !strings.HasSuffix(line, " 1700000000000000000") {
		t.Errorf("line %q does not end with the nanosecond timestamp", line)
	}
}

func TestWriteErrorCallback(t *testing.T) {
	f := newFakeInflux(t)
	f.setWriteCode(http.StatusBadRequest)
	client := connect(t, f)

	errCh := make(chan error, 1)
	client.SetOnError(func(err error) {
		select {
		case errCh <- err:
		default:
		}
	})

	client.RecordInbound("mqtt/pico_data", []byte("1"))
	client.Flush()

	select {
	case err := <-errCh:
		if err == nil {
			t.Error("callback received nil error")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("write error callback was not invoked")
	}
}

// =============================================================================
// Close Tests
// =============================================================================

func TestClose_FlushesAndDisconnects(t *testing.T) {
	f := newFakeInflux(t)
	client, err := influxdb.Connect(context.Background(), testConfig(f.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	client.RecordPublish("mqtt/streamlit_data", []byte("3"), 0)

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close()")
	}
	f.waitLines(t, 1)

	// Writes after close are dropped; a second Close is a no-op.
	client.RecordPublish("mqtt/streamlit_data", []byte("4"), 0)
	client.Flush()
	if err := client.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestClose_Nil(t *testing.T) {
	var client *influxdb.Client
	if err := client.Close(); err != nil {
		t.Errorf("nil Close() error = %v", err)
	}
}
