package domain

// AuditRepository is the persistence surface for the audit trail and
// usage counters. SettingsRepository embeds the same methods; consumers
// that only audit should depend on this narrower interface.
type AuditRepository interface {
	RecordEvent(event Event) error
	LoadEvents() ([]Event, error)
	UpdateUsage(stats UsageStats) error
	LoadUsage() (*UsageStats, error)
}
