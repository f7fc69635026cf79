// Package report delivers error messages to an external monitoring sink.
// Reporting is strictly best-effort: a sink must never block or fail a
// render cycle.
package report

import (
	"net/http"
	"strings"
	"time"

	appLog "eventcal/internal/log"
)

// Reporter accepts a single message string and forwards it to a monitoring
// service. Implementations swallow their own failures.
type Reporter interface {
	Report(msg string)
}

// LogReporter writes messages to the application log. It is the default sink
// when no monitoring endpoint is configured.
type LogReporter struct{}

func (LogReporter) Report(msg string) {
	appLog.Error("report", nil, "msg", msg)
}

// HTTPReporter posts each message as a plain-text body to a monitoring
// endpoint. The short client timeout keeps a slow sink from ever stalling
// the pipeline.
type HTTPReporter struct {
	URL    string
	client *http.Client
}

func NewHTTPReporter(url string) *HTTPReporter {
	return &HTTPReporter{
		URL: url,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (r *HTTPReporter) Report(msg string) {
	resp, err := r.client.Post(r.URL, "text/plain; charset=utf-8", strings.NewReader(msg))
	if err != nil {
		appLog.Error("error report delivery failed", err, "msg", msg)
		return
	}
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		appLog.Error("error report rejected", nil, "status", resp.StatusCode, "msg", msg)
	}
}

// Recorder collects reported messages in memory for tests.
type Recorder struct {
	Messages []string
}

func (r *Recorder) Report(msg string) {
	r.Messages = append(r.Messages, msg)
}
