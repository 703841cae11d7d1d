package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	EventsRouted       *prometheus.CounterVec
	ScriptErrors       *prometheus.CounterVec
	MessagesSuppressed *prometheus.CounterVec
	AppStarts          *prometheus.CounterVec
	LinesAppended      prometheus.Counter
	CallbackDuration   *prometheus.HistogramVec
)

// Init registers the metrics on the default registry. Safe to call more
// than once.
func Init() {
	once.Do(func() {
		EventsRouted = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "roomkit_events_routed_total",
			Help: "Platform events handled by the router, by kind.",
		}, []string{"kind"})
		ScriptErrors = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "roomkit_script_errors_total",
			Help: "Errors raised by app code, by entry point.",
		}, []string{"source"})
		MessagesSuppressed = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "roomkit_messages_suppressed_total",
			Help: "Chat messages dropped after the app's verdict, by reason.",
		}, []string{"reason"})
		AppStarts = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "roomkit_app_starts_total",
			Help: "StartApp calls, by result.",
		}, []string{"result"})
		LinesAppended = promauto.NewCounter(prometheus.CounterOpts{
			Name: "roomkit_chat_lines_total",
			Help: "Lines appended to the transcript.",
		})
		CallbackDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "roomkit_event_duration_seconds",
			Help:    "Time spent routing one event, app callback included.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"})
	})
}

// The helpers below are no-ops until Init has run.

func CountEvent(kind string) {
	if EventsRouted != nil {
		EventsRouted.WithLabelValues(kind).Inc()
	}
}

func CountScriptError(source string) {
	if ScriptErrors != nil {
		ScriptErrors.WithLabelValues(source).Inc()
	}
}

func CountSuppressed(reason string) {
	if MessagesSuppressed != nil {
		MessagesSuppressed.WithLabelValues(reason).Inc()
	}
}

func CountAppStart(ok bool) {
	if AppStarts == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	AppStarts.WithLabelValues(result).Inc()
}

func CountLine() {
	if LinesAppended != nil {
		LinesAppended.Inc()
	}
}

func ObserveEvent(kind string, seconds float64) {
	if CallbackDuration != nil {
		CallbackDuration.WithLabelValues(kind).Observe(seconds)
	}
}
