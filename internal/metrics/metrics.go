package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orderservice_orders_created_total",
		Help: "Total number of orders successfully created.",
	})

	OrdersDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orderservice_orders_deleted_total",
		Help: "Total number of orders deleted.",
	})

	StatusTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderservice_status_transitions_total",
		Help: "Status transitions produced by the status simulator, by target status.",
	},
		[]string{"status"},
	)

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderservice_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation"},
	)

	StoredOrders = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orderservice_stored_orders",
		Help: "Current number of orders held in the store.",
	})

	ActiveStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orderservice_active_streams",
		Help: "Currently open order update subscriptions.",
	})

	RPCsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orderservice_rpcs_total",
		Help: "Handled RPCs by full method and status code.",
	},
		[]string{"method", "code"},
	)

	RPCDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "orderservice_rpc_duration_seconds",
		Help:    "RPC handling latency.",
		Buckets: prometheus.DefBuckets,
	},
		[]string{"method"},
	)

	RPCsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orderservice_rpcs_in_flight",
		Help: "RPCs currently being handled.",
	})

	EventsPublishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orderservice_events_published_total",
		Help: "Order events handed to the producer successfully.",
	})

	EventsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orderservice_events_dropped_total",
		Help: "Order events dropped because the publisher buffer was full or closed.",
	})
)
