// Package metrics declares the site's Prometheus series and small recorders
// for them. Everything registers with the default registry through promauto
// and is scraped from /metrics.
//
// Label values are always drawn from fixed sets (route patterns, form names,
// outcome words), never from visitor input.
package metrics
