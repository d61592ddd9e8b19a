package commands

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/jnproject/jn/internal/obsmetrics"
)

var serveMetricsAddr string

var serveMetricsCmd = &cobra.Command{
	Use:   "serve-metrics",
	Short: "Serve Prometheus metrics for discovery, cache, and pipeline activity",
	RunE:  runServeMetrics,
}

func init() {
	serveMetricsCmd.Flags().StringVar(&serveMetricsAddr, "addr", ":9090", "Address to listen on")
}

func runServeMetrics(cmd *cobra.Command, args []string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(obsmetrics.Registry(), promhttp.HandlerOpts{}))
	return http.ListenAndServe(serveMetricsAddr, mux)
}
