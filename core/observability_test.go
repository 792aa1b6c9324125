package core

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
)

type capturedCounter struct {
	name  string
	value int64
	tags  map[string]string
}

type capturedHistogram struct {
	name  string
	value float64
	tags  map[string]string
}

type captureMetricsRecorder struct {
	mu         sync.Mutex
	counters   []capturedCounter
	histograms []capturedHistogram
}

func (m *captureMetricsRecorder) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters = append(m.counters, capturedCounter{name: name, value: value, tags: cloneTags(tags)})
}

func (m *captureMetricsRecorder) ObserveHistogram(_ context.Context, name string, value float64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histograms = append(m.histograms, capturedHistogram{name: name, value: value, tags: cloneTags(tags)})
}

type capturedLog struct {
	level  string
	msg    string
	fields map[string]any
}

type captureLogger struct {
	mu       *sync.Mutex
	records  *[]capturedLog
	defaults map[string]any
}

func newCaptureLogger() *captureLogger {
	records := []capturedLog{}
	return &captureLogger{mu: &sync.Mutex{}, records: &records, defaults: map[string]any{}}
}

func (l *captureLogger) WithFields(fields map[string]any) Logger {
	merged := cloneFields(l.defaults)
	for key, value := range fields {
		merged[key] = value
	}
	return &captureLogger{mu: l.mu, records: l.records, defaults: merged}
}

func (l *captureLogger) Trace(msg string, args ...any) { l.record("trace", msg, args...) }
func (l *captureLogger) Debug(msg string, args ...any) { l.record("debug", msg, args...) }
func (l *captureLogger) Info(msg string, args ...any)  { l.record("info", msg, args...) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args...) }
func (l *captureLogger) Error(msg string, args ...any) { l.record("error", msg, args...) }
func (l *captureLogger) Fatal(msg string, args ...any) { l.record("fatal", msg, args...) }

func (l *captureLogger) WithContext(context.Context) Logger {
	return &captureLogger{mu: l.mu, records: l.records, defaults: cloneFields(l.defaults)}
}

func (l *captureLogger) record(level string, msg string, args ...any) {
	fields := cloneFields(l.defaults)
	for index := 0; index+1 < len(args); index += 2 {
		key, ok := args[index].(string)
		if !ok {
			continue
		}
		fields[key] = args[index+1]
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.records = append(*l.records, capturedLog{level: level, msg: msg, fields: fields})
}

func (l *captureLogger) snapshot() []capturedLog {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]capturedLog, len(*l.records))
	copy(out, *l.records)
	return out
}

func newObservedClient(t *testing.T, transport *recordingTransport, metrics MetricsRecorder, logger *captureLogger, opts ...Option) *Client {
	t.Helper()
	base := []Option{
		WithMetricsRecorder(metrics),
		WithLoggerProvider(stubLoggerProvider{logger: logger}),
		WithLogger(logger),
	}
	return newTestClient(t, transport, append(base, opts...)...)
}

func TestClientObservability_InvokeSuccess(t *testing.T) {
	metrics := &captureMetricsRecorder{}
	logger := newCaptureLogger()
	client := newObservedClient(t, &recordingTransport{}, metrics, logger)

	if _, err := client.GetItem(context.Background(), "access-sandbox-1"); err != nil {
		t.Fatalf("get item: %v", err)
	}

	if !hasCounter(metrics.counters, "plaid.link.get_item.total", "success") {
		t.Fatalf("expected plaid.link.get_item.total success counter")
	}
	if !hasHistogram(metrics.histograms, "plaid.link.get_item.duration_ms", "success") {
		t.Fatalf("expected plaid.link.get_item.duration_ms histogram")
	}
	for _, counter := range metrics.counters {
		if strings.HasSuffix(counter.name, ".remote_errors") {
			t.Fatalf("expected no remote error counter on success, got %#v", counter)
		}
	}
	if !hasLog(logger.snapshot(), "info", "link.get_item succeeded", "link.get_item") {
		t.Fatalf("expected link.get_item succeeded structured log")
	}
}

func TestClientObservability_InvokeFailure(t *testing.T) {
	metrics := &captureMetricsRecorder{}
	logger := newCaptureLogger()
	transport := &recordingTransport{errs: []error{errors.New("connection refused")}}
	client := newObservedClient(t, transport, metrics, logger)

	if _, err := client.GetItem(context.Background(), "access-sandbox-1"); err == nil {
		t.Fatalf("expected transport failure")
	}
	if !hasCounter(metrics.counters, "plaid.link.get_item.total", "failure") {
		t.Fatalf("expected failure counter")
	}
	records := logger.snapshot()
	if !hasLog(records, "error", "link.get_item failed", "link.get_item") {
		t.Fatalf("expected failure log")
	}
	last := records[len(records)-1]
	if last.fields["error_text_code"] != ErrorTransportFailure {
		t.Fatalf("expected error_text_code %q, got %#v", ErrorTransportFailure, last.fields["error_text_code"])
	}
	if last.fields["error_category"] != "external" {
		t.Fatalf("expected external error category, got %#v", last.fields["error_category"])
	}
}

func TestClientObservability_RemoteErrorIsStillSuccess(t *testing.T) {
	metrics := &captureMetricsRecorder{}
	logger := newCaptureLogger()
	transport := &recordingTransport{responses: []TransportResponse{
		jsonResponse(http.StatusBadRequest, `{"error_code":"ITEM_LOGIN_REQUIRED","request_id":"req_1"}`),
	}}
	client := newObservedClient(t, transport, metrics, logger)

	if _, err := client.GetAuthData(context.Background(), "access-sandbox-1"); err != nil {
		t.Fatalf("get auth data: %v", err)
	}
	records := logger.snapshot()
	if len(records) == 0 {
		t.Fatalf("expected log records")
	}
	last := records[len(records)-1]
	if last.fields["error_code"] != "ITEM_LOGIN_REQUIRED" || last.fields["request_id"] != "req_1" {
		t.Fatalf("expected remote error fields, got %#v", last.fields)
	}
	if last.fields["status_code"] != http.StatusBadRequest {
		t.Fatalf("expected status code field, got %#v", last.fields["status_code"])
	}

	if !hasCounter(metrics.counters, "plaid.auth.get.total", "success") {
		t.Fatalf("expected remote error to count as success, got %#v", metrics.counters)
	}
	found := false
	for _, counter := range metrics.counters {
		if counter.name == "plaid.auth.get.remote_errors" {
			found = true
			if counter.tags["error_code"] != "ITEM_LOGIN_REQUIRED" || counter.tags["status_code"] != "400" {
				t.Fatalf("unexpected remote error tags %#v", counter.tags)
			}
		}
	}
	if !found {
		t.Fatalf("expected remote error counter, got %#v", metrics.counters)
	}
}

func TestRemoteErrorTags_DefaultsUnknownCode(t *testing.T) {
	base := map[string]string{"operation": "link.get_item"}
	tags := remoteErrorTags(base, " ")
	if tags["error_code"] != "unknown" || tags["operation"] != "link.get_item" {
		t.Fatalf("unexpected tags %#v", tags)
	}
	if _, leaked := base["error_code"]; leaked {
		t.Fatalf("expected base tags untouched")
	}
}

func TestClientObservability_ActivitySinkFailureIsLogged(t *testing.T) {
	metrics := &captureMetricsRecorder{}
	logger := newCaptureLogger()
	sink := &memoryActivitySink{err: errors.New("disk full")}
	client := newObservedClient(t, &recordingTransport{}, metrics, logger, WithActivitySink(sink))

	if _, err := client.GetItem(context.Background(), "access-sandbox-1"); err != nil {
		t.Fatalf("sink failures must not fail the call: %v", err)
	}
	found := false
	for _, record := range logger.snapshot() {
		if record.level == "warn" && record.msg == "activity record failed" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected activity failure warning")
	}
}

func hasCounter(items []capturedCounter, name string, status string) bool {
	for _, item := range items {
		if item.name == name && item.tags["status"] == status {
			return true
		}
	}
	return false
}

func hasHistogram(items []capturedHistogram, name string, status string) bool {
	for _, item := range items {
		if item.name == name && item.tags["status"] == status {
			return true
		}
	}
	return false
}

func hasLog(items []capturedLog, level string, message string, operation string) bool {
	for _, item := range items {
		if item.level != level || item.msg != message {
			continue
		}
		if item.fields["operation"] == operation {
			return true
		}
	}
	return false
}
