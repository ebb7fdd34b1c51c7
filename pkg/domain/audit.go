package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// Event represents a single auditable action: a scan, a migration, a
// configuration change. Events form a hash chain so tampering with the
// history is detectable.
type Event struct {
	ID        string                 `json:"id"`
	Timestamp time.Time              `json:"timestamp"`
	Action    string                 `json:"action"`
	Actor     string                 `json:"actor"` // "cli" or "api"
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	PrevHash  string                 `json:"prev_hash,omitempty"` // Hash of the preceding event
	Hash      string                 `json:"hash,omitempty"`      // Deterministic hash of this event
}

// CalculateHash returns the SHA256 of the event's chained fields:
// PrevHash, ID, timestamp (RFC3339Nano), Action, Actor, and the
// canonical metadata form, concatenated in that order.
func (e *Event) CalculateHash() string {
	var payload strings.Builder
	payload.WriteString(e.PrevHash)
	payload.WriteString(e.ID)
	payload.WriteString(e.Timestamp.Format(time.RFC3339Nano))
	payload.WriteString(e.Action)
	payload.WriteString(e.Actor)
	payload.WriteString(canonicalJSON(e.Metadata))

	sum := sha256.Sum256([]byte(payload.String()))
	return hex.EncodeToString(sum[:])
}

// canonicalJSON renders metadata as a JSON object with keys in sorted
// order, so equal maps always hash equally. Empty metadata contributes
// nothing to the hash.
func canonicalJSON(m map[string]interface{}) string {
	if len(m) == 0 {
		return ""
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		keyJSON, _ := json.Marshal(k)
		valJSON, _ := json.Marshal(m[k])
		b.Write(keyJSON)
		b.WriteByte(':')
		b.Write(valJSON)
	}
	b.WriteByte('}')
	return b.String()
}

// UsageStats tracks how often the tool has been exercised against the
// organization.
type UsageStats struct {
	TotalScans      int       `json:"total_scans"`
	TotalMigrations int       `json:"total_migrations"`
	LastActivityAt  time.Time `json:"last_activity_at"`
}
