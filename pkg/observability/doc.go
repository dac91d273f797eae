/*
Package observability turns compiler lifecycle events into Prometheus metrics
and structured log lines.

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	c := logicflow.New(logicflow.WithHooks(observability.NewHooks(metrics, logger)))
*/
package observability
