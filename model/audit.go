package model

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityType names an entry in the guild activity log.
type ActivityType string

const (
	ActivityQuestAccepted  ActivityType = "quest_accepted"
	ActivityQuestCompleted ActivityType = "quest_completed"
	ActivityQuestApproved  ActivityType = "quest_approved"
	ActivityQuestAbandoned ActivityType = "quest_abandoned"
	ActivityLevelUp        ActivityType = "level_up"
	ActivityEffectGranted  ActivityType = "effect_granted"
	ActivityEffectExpired  ActivityType = "effect_expired"
	ActivityPurchase       ActivityType = "purchase"
)

// ActivityLog records character-facing events for audit and display.
type ActivityLog struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TraceID     string         `gorm:"index:idx_activity_trace;size:64" json:"trace_id"`
	Type        ActivityType   `gorm:"size:32;not null" json:"type"`
	CharID      int64          `gorm:"index:idx_activity_char" json:"char_id"`
	Description string         `gorm:"type:text" json:"description"`
	Metadata    datatypes.JSON `json:"metadata"`
	CreatedAt   time.Time      `gorm:"index:idx_activity_created;autoCreateTime:milli" json:"created_at"`
}
