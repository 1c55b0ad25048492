package metrics

import "time"

// RecordFeedFetch records the outcome and duration of one feed fetch.
// Result should be "success", "transport", "http_status" or "parse".
func RecordFeedFetch(result string, duration time.Duration) {
	FeedFetchTotal.WithLabelValues(result).Inc()
	FeedFetchDuration.Observe(duration.Seconds())
}

// RecordFeedEntrySkipped records a feed entry dropped during normalization.
func RecordFeedEntrySkipped(reason string) {
	FeedEntriesSkippedTotal.WithLabelValues(reason).Inc()
}

// RecordPostsServed observes how many summaries one fetch returned.
func RecordPostsServed(count int) {
	PostsServed.Observe(float64(count))
}

// RecordPostsCache records a posts cache lookup ("hit" or "miss").
func RecordPostsCache(result string) {
	PostsCacheTotal.WithLabelValues(result).Inc()
}

// RecordFormSubmission counts a newsletter or contact post by outcome.
func RecordFormSubmission(form, outcome string) {
	FormSubmissionsTotal.WithLabelValues(form, outcome).Inc()
}

// RecordProviderRequest records one email provider call.
func RecordProviderRequest(operation, result string, duration time.Duration) {
	ProviderRequestsTotal.WithLabelValues(operation, result).Inc()
	ProviderRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCircuitBreakerState records the current state of a named breaker.
func RecordCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}
