package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var messageProcessedCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "warden_messages_processed",
	Help: "Number of text events run through the detectors",
}, []string{"surface"})

var messageBlockedCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "warden_messages_blocked",
	Help: "Number of text events blocked, by surface and category",
}, []string{"surface", "category"})

var detectionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "warden_detection_duration_sec",
	Help: "Duration of the synchronous detection path",
}, []string{"surface"})

var violationRecordedCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "warden_violations_recorded",
	Help: "Number of violations persisted to the ledger",
}, []string{"category"})

var violationDroppedCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "warden_violations_dropped",
	Help: "Number of violation events dropped before persisting",
}, []string{"reason"})

var commandDispatchedCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "warden_commands_dispatched",
	Help: "Number of punitive commands handed to the dispatcher",
})

var detectionPanicCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "warden_detection_panics",
	Help: "Number of recovered panics in the detection path",
})
