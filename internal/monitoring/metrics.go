package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

var (
	CommandsExecuted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_commands_total",
			Help: "Total number of back-office commands executed by name and outcome",
		},
		[]string{"command", "outcome"},
	)
	StructuresProvisioned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "structures_provisioned_total",
			Help: "Total number of structures provisioned by status",
		},
		[]string{"status"},
	)
	ProvisioningDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "structure_provisioning_duration_seconds",
			Help:    "Duration of structure provisioning in seconds",
			Buckets: prometheus.LinearBuckets(0, 1, 10), // 0 to 10 seconds
		},
	)
)

func InitMetrics() {
	for _, c := range []prometheus.Collector{CommandsExecuted, StructuresProvisioned, ProvisioningDuration} {
		if err := prometheus.Register(c); err != nil {
			log.Error().Err(err).Msg("Failed to register metric")
		}
	}
}
