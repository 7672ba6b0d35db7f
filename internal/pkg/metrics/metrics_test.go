package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("GET", "/x", "200", time.Millisecond)
	m.ObserveGate("ALLOWED")
	m.ObserveTransition("application", "selected")
	m.ObserveNotification("websocket", "sent")
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.ObserveGate("DENIED")
	m.ObserveTransition("registration", "confirmed")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	text := string(body)
	for _, want := range []string{
		`campushub_access_gate_decisions_total{state="DENIED"} 1`,
		`campushub_status_transitions_total{entity="registration",to="confirmed"} 1`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
