// Package observability defines the Prometheus metrics exported at the
// metrics endpoint.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Attempt outcomes
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

var (
	// ProviderAttempts counts individual provider calls by outcome.
	// A request that falls through the chain increments this once per
	// provider tried.
	ProviderAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lessonforge_provider_attempts_total",
		Help: "Provider completion attempts by provider and outcome.",
	}, []string{"provider", "outcome"})

	// FallbackAnswers counts requests answered by the deterministic
	// fallback because every provider failed or none was configured.
	FallbackAnswers = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lessonforge_fallback_answers_total",
		Help: "Requests answered by the deterministic fallback.",
	})

	// RateLimitedRequests counts requests rejected by the sliding-window
	// rate limiter.
	RateLimitedRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lessonforge_rate_limited_requests_total",
		Help: "Requests rejected by the rate limiter.",
	})

	// VideoJobs counts video generation jobs by outcome.
	VideoJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lessonforge_video_jobs_total",
		Help: "Video generation jobs by outcome.",
	}, []string{"outcome"})

	// SilentVideos counts videos produced without narration because
	// synthesis was unavailable or failed.
	SilentVideos = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lessonforge_silent_videos_total",
		Help: "Videos produced without a narration track.",
	})
)
