package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label value constants to prevent typos
const (
	// HTTP endpoints
	EndpointHealth        = "health"
	EndpointOAuthStart    = "oauth_start"
	EndpointOAuthCallback = "oauth_callback"
	EndpointUser          = "user"
	EndpointActivities    = "activities"
	EndpointActivity      = "activity"
	EndpointStreams       = "activity_streams"
	EndpointLaps          = "activity_laps"
	EndpointDashboard     = "dashboard"
	EndpointRecords       = "personal_records"
	EndpointAchievements  = "achievements"
	EndpointGoals         = "goals"
	EndpointExport        = "export"

	// Strava API operations
	OpExchangeCode       = "exchange_code"
	OpListActivities     = "list_activities"
	OpGetActivity        = "get_activity"
	OpGetActivityStreams = "get_activity_streams"
	OpGetActivityLaps    = "get_activity_laps"

	// OAuth flow results
	OAuthResultSuccess      = "success"
	OAuthResultInvalidState = "invalid_state"
	OAuthResultExchangeFail = "exchange_failed"

	// Rate limit types
	RateLimit15Min = "15min"
	RateLimitDaily = "daily"

	// Rate limit buckets
	BucketLimit = "limit"
	BucketUsage = "usage"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"endpoint", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint", "status_code"},
	)
)

// Strava API Metrics
var (
	StravaAPIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strava_api_requests_total",
			Help: "Total number of Strava API requests",
		},
		[]string{"operation", "status_code"},
	)

	StravaAPIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "strava_api_request_duration_seconds",
			Help:    "Strava API request latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"operation", "status_code"},
	)

	StravaRateLimitUsage = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "strava_rate_limit_usage",
			Help: "Strava API rate limit usage",
		},
		[]string{"limit_type", "bucket"},
	)
)

// Business Metrics
var (
	OAuthFlowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "oauth_flows_total",
			Help: "Total number of completed OAuth callback flows by result",
		},
		[]string{"result"},
	)

	ActivitiesSyncedPerCall = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "activities_synced_per_call",
			Help:    "Number of activities upserted per sync call",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	PersonalRecordsDetectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "personal_records_detected_total",
			Help: "Total number of personal records detected during ingestion",
		},
	)

	AchievementsDetectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "achievements_detected_total",
			Help: "Total number of achievements detected during ingestion",
		},
	)
)
