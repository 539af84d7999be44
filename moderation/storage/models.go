package storage

import "time"

// PlayerRecord is the durable per-player profile row. The audit-log flags
// opt the player in to receiving moderation notices; the mention and
// greeting fields belong to the chat-preference command layer and live here
// because they share the same storage and cache machinery.
type PlayerRecord struct {
	PlayerID string `gorm:"primaryKey;column:player_id"`
	Name     string `gorm:"index"`

	AdAuditLog    bool
	SpamAuditLog  bool
	SwearAuditLog bool

	MentionSound   bool
	MentionDisplay bool
	Greeting       string

	UpdatedAt time.Time
}

// IgnoreRecord is one player-ignores-player relationship.
type IgnoreRecord struct {
	PlayerID  string `gorm:"primaryKey;column:player_id"`
	IgnoredID string `gorm:"primaryKey;column:ignored_id"`
	CreatedAt time.Time
}

// ViolationRecord is one recorded violation. Immutable once created;
// records are never deleted on window expiry, only excluded from active
// queries, so the table is a permanent audit trail.
type ViolationRecord struct {
	ID       string `gorm:"primaryKey"`
	PlayerID string `gorm:"index;not null;column:player_id"`
	Category string `gorm:"not null"`
	Details  string
	// Timestamp is unix milliseconds; both backends store it as a plain
	// integer so window comparisons behave identically.
	Timestamp int64 `gorm:"not null"`
}

// Time returns the record's timestamp as a time.Time.
func (v *ViolationRecord) Time() time.Time {
	return time.UnixMilli(v.Timestamp)
}
