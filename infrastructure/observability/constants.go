package observability

// Metric name prefixes
const (
	MetricPrefix = "lottery"
)

// Metric names
const (
	DrawsTotal          = MetricPrefix + ".draws_total"
	DrawWinners         = MetricPrefix + ".draw_winners"
	ResetsTotal         = MetricPrefix + ".resets_total"
	AuthFailuresTotal   = MetricPrefix + ".auth_failures_total"
	RosterImportsTotal  = MetricPrefix + ".roster_imports_total"
	NATSPublishedTotal  = MetricPrefix + ".nats.messages_published_total"
	NATSPublishFailures = MetricPrefix + ".nats.publish_failures_total"
)

// Label keys
const (
	LabelRole      = "role"
	LabelSource    = "source"
	LabelEventType = "event_type"
)
