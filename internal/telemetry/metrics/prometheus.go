package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// SetupPrometheus creates the registry served on the metrics endpoint. Besides the go runtime
// and process collectors it carries gymflow_build_info, labeled with the running version, and
// any extra collectors (e.g. the pgxpool one).
func SetupPrometheus(version string, extra ...prometheus.Collector) *prometheus.Registry {
	if version == "" {
		version = "unknown"
	}
	buildInfo := prometheus.NewGauge(prometheus.GaugeOpts{
		Name:        "gymflow_build_info",
		Help:        "Version of the running gymflow service, the value is always 1",
		ConstLabels: prometheus.Labels{"version": version},
	})
	buildInfo.Set(1)

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		buildInfo,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	promRegistry.MustRegister(extra...)

	return promRegistry
}
