package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/maxpert/amqp-client-go/protocol"
)

// Collector holds all Prometheus metrics for the AMQP client core. It
// satisfies the dispatch Observer contract, so registries, waiters and
// supervisors can report through it.
type Collector struct {
	// Frame metrics
	FramesRead    prometheus.Counter
	FramesWritten prometheus.Counter

	// Codec metrics
	FieldValuesDecoded prometheus.Counter
	TablesDecoded      prometheus.Counter
	CodecFaults        *prometheus.CounterVec

	// Dispatch metrics
	DispatchHits   *prometheus.CounterVec
	DispatchMisses prometheus.Counter

	// Waiter metrics
	WaitersSatisfied prometheus.Counter
	WaitersCanceled  prometheus.Counter

	// Supervisor metrics
	TasksStarted prometheus.Counter
	TasksFailed  prometheus.Counter
}

// NewCollector creates a new metrics collector with all Prometheus metrics
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "amqp_client"
	}

	return &Collector{
		FramesRead: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_read_total",
			Help:      "Total number of frames read from the peer",
		}),
		FramesWritten: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_written_total",
			Help:      "Total number of frames written to the peer",
		}),

		FieldValuesDecoded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "field_values_decoded_total",
			Help:      "Total number of field values decoded",
		}),
		TablesDecoded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tables_decoded_total",
			Help:      "Total number of field tables decoded",
		}),
		CodecFaults: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "codec_faults_total",
			Help:      "Total number of codec faults by reason",
		}, []string{"reason"}),

		DispatchHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_hits_total",
			Help:      "Total number of frames dispatched, by method class",
		}, []string{"class"}),
		DispatchMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatch_misses_total",
			Help:      "Total number of frames with no registered handler type",
		}),

		WaitersSatisfied: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "waiters_satisfied_total",
			Help:      "Total number of waits completed with a matching value",
		}),
		WaitersCanceled: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "waiters_canceled_total",
			Help:      "Total number of waits released by cancellation",
		}),

		TasksStarted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "supervised_tasks_started_total",
			Help:      "Total number of supervised tasks scheduled",
		}),
		TasksFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "supervised_tasks_failed_total",
			Help:      "Total number of supervised tasks completing with a non-cancellation fault",
		}),
	}
}

// RecordFrameRead records a frame read from the peer
func (c *Collector) RecordFrameRead() {
	c.FramesRead.Inc()
}

// RecordFrameWritten records a frame written to the peer
func (c *Collector) RecordFrameWritten() {
	c.FramesWritten.Inc()
}

// RecordFieldValueDecoded records a decoded field value
func (c *Collector) RecordFieldValueDecoded() {
	c.FieldValuesDecoded.Inc()
}

// RecordTableDecoded records a decoded field table
func (c *Collector) RecordTableDecoded() {
	c.TablesDecoded.Inc()
}

// RecordCodecFault records a codec fault by reason
func (c *Collector) RecordCodecFault(reason string) {
	c.CodecFaults.WithLabelValues(reason).Inc()
}

// DispatchHit records a dispatched frame by method class
func (c *Collector) DispatchHit(key protocol.MethodKey) {
	class := "unknown"
	if info, ok := protocol.Methods[key]; ok {
		class = info.Class
	}
	c.DispatchHits.WithLabelValues(class).Inc()
}

// DispatchMiss records a frame whose key had no registered method type
func (c *Collector) DispatchMiss(protocol.MethodKey) {
	c.DispatchMisses.Inc()
}

// WaiterSatisfied records a wait completed with a matching value
func (c *Collector) WaiterSatisfied() {
	c.WaitersSatisfied.Inc()
}

// WaiterCanceled records a wait released by cancellation
func (c *Collector) WaiterCanceled() {
	c.WaitersCanceled.Inc()
}

// TaskStarted records a scheduled supervised task
func (c *Collector) TaskStarted(string) {
	c.TasksStarted.Inc()
}

// TaskFailed records a supervised task that failed with a reportable fault
func (c *Collector) TaskFailed(string) {
	c.TasksFailed.Inc()
}
