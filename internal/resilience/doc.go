// Package resilience holds the failure handling for the site's two remote
// dependencies, the publishing platform's feed and the email provider.
//
// Neither is retried: a page render or a form post makes at most one call.
// The circuitbreaker subpackage stops calling a dependency after repeated
// failures and lets /ready and /health report it.
package resilience
