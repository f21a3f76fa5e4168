package gita

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"regexp"
)

// DebugLogger traces HTTP traffic to the document store and token endpoint.
// A nil or disabled DebugLogger is a no-op.
type DebugLogger struct {
	enabled bool
	log     *Logger
}

// NewDebugLogger creates a debug logger writing through log.
func NewDebugLogger(enabled bool, log *Logger) *DebugLogger {
	if log == nil {
		log = NopLogger()
	}
	return &DebugLogger{enabled: enabled, log: log.With("component", "http")}
}

// Enabled reports whether tracing is on.
func (l *DebugLogger) Enabled() bool { return l != nil && l.enabled }

// LogRequest logs an outgoing HTTP request.
func (l *DebugLogger) LogRequest(method, url string, body []byte) {
	if !l.Enabled() {
		return
	}
	if len(body) > 0 {
		l.log.Debug("request", "method", method, "url", url, "body", truncateForLog(scrubBody(body), 2000))
		return
	}
	l.log.Debug("request", "method", method, "url", url)
}

// LogResponse logs an HTTP response.
func (l *DebugLogger) LogResponse(statusCode int, status string, body []byte) {
	if !l.Enabled() {
		return
	}
	l.log.Debug("response", "status_code", statusCode, "status", status, "body", truncateForLog(scrubBody(body), 4000))
}

// LogError logs an error with full details.
func (l *DebugLogger) LogError(operation string, err error) {
	if !l.Enabled() {
		return
	}
	l.log.Debug("error", "operation", operation, "error", err)
}

// Transport wraps base so that every round trip is traced. When tracing is
// off base is returned unchanged.
func (l *DebugLogger) Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if !l.Enabled() {
		return base
	}
	return &debugTransport{base: base, log: l}
}

type debugTransport struct {
	base http.RoundTripper
	log  *DebugLogger
}

func (t *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil && req.GetBody != nil {
		if rc, err := req.GetBody(); err == nil {
			body, _ = io.ReadAll(rc)
			_ = rc.Close()
		}
	}
	t.log.LogRequest(req.Method, req.URL.Redacted(), body)

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		t.log.LogError(req.Method+" "+req.URL.Path, err)
		return nil, err
	}
	respBody, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(respBody))
	if readErr != nil {
		t.log.LogError("read response", readErr)
	}
	t.log.LogResponse(resp.StatusCode, resp.Status, respBody)
	return resp, nil
}

var secretFieldPattern = regexp.MustCompile(`((?:access|refresh|id)_token|client_secret)("?\s*[:=]\s*"?)([^"&\s,}]+)`)

// scrubBody masks token and secret values in JSON or form-encoded bodies.
func scrubBody(body []byte) string {
	return secretFieldPattern.ReplaceAllString(string(body), "${1}${2}"+redacted)
}

// truncateForLog truncates a string for logging purposes.
func truncateForLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + fmt.Sprintf("... [truncated, %d bytes total]", len(s))
}
