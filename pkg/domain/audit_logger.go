package domain

// AuditLogger records auditable actions. Scan and migration services
// depend on this interface rather than a concrete implementation.
type AuditLogger interface {
	Log(action string, actor string, metadata map[string]interface{}) error
}
