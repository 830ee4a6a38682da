// Package metrics provides build and stage metrics for sitebuilder.
//
// Components receive a Recorder through dependency injection. NoopRecorder is
// the default and costs nothing; PrometheusRecorder registers collectors on a
// registry that the watch command can expose over HTTP:
//
//	reg := prometheus.NewRegistry()
//	recorder := metrics.NewPrometheusRecorder(reg)
//	gen := generator.New(cfg, generator.WithRecorder(recorder))
//	http.Handle("/metrics", metrics.HTTPHandler(reg))
package metrics
