// Package metrics exposes Prometheus metrics for the rank API.
//
// Metrics are kept in a private registry (no global state) and served by a
// separate Fiber app on their own port, 9000 by default, at "/" and at the
// configured path.
//
// # Collected Metrics
//
//   - http_requests_total{method,route,status}
//   - http_request_duration_seconds{method,route}
//   - items_created_total, items_deleted_total
//   - scores_recorded_total, scores_rejected_total, score_value
//   - exports_total{result}
//   - Go runtime and process collectors
//
// # Usage
//
//	m := metrics.New(cfg.Metrics.Namespace)
//	app.Use(m.Middleware())
//	go metrics.NewApp(cfg.Metrics, m).Listen(":9000")
package metrics
