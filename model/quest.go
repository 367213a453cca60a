package model

import "time"

// QuestType is the closed set of quest categories.
type QuestType string

const (
	QuestDaily     QuestType = "DAILY"
	QuestWeekly    QuestType = "WEEKLY"
	QuestSpecial   QuestType = "SPECIAL"
	QuestGroup     QuestType = "GROUP"
	QuestEducation QuestType = "EDUCATION"
	QuestPhysical  QuestType = "PHYSICAL"
	QuestCreative  QuestType = "CREATIVE"
	QuestFamily    QuestType = "FAMILY"
)

// QuestTypes lists every valid QuestType.
var QuestTypes = []QuestType{
	QuestDaily, QuestWeekly, QuestSpecial, QuestGroup,
	QuestEducation, QuestPhysical, QuestCreative, QuestFamily,
}

// Valid reports whether t is one of QuestTypes.
func (t QuestType) Valid() bool {
	for _, v := range QuestTypes {
		if v == t {
			return true
		}
	}
	return false
}

// QuestStatus is the lifecycle state of a quest.
type QuestStatus string

const (
	QuestAvailable  QuestStatus = "AVAILABLE"
	QuestInProgress QuestStatus = "IN_PROGRESS"
	QuestCompleted  QuestStatus = "COMPLETED"
	QuestApproved   QuestStatus = "APPROVED"
)

const (
	MinDifficulty = 1
	MaxDifficulty = 3
)

// Reward is an experience amount plus the currency triple.
type Reward struct {
	Exp    int64 `gorm:"default:0" json:"exp"`
	Bronze int64 `gorm:"default:0" json:"bronze"`
	Silver int64 `gorm:"default:0" json:"silver"`
	Gold   int64 `gorm:"default:0" json:"gold"`
}

// Quest is a guild task with a lifecycle and a base reward.
type Quest struct {
	ID             int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	GuildID        int64       `gorm:"index:idx_quest_guild;not null" json:"guild_id"`
	Title          string      `gorm:"size:128;not null" json:"title"`
	Description    string      `gorm:"type:text" json:"description"`
	Type           QuestType   `gorm:"size:16;not null" json:"type"`
	Difficulty     int         `gorm:"default:1" json:"difficulty"`
	Status         QuestStatus `gorm:"size:16;index:idx_quest_guild;not null" json:"status"`
	Reward         Reward      `gorm:"embedded;embeddedPrefix:reward_" json:"base_reward"`
	AssignedCharID *int64      `gorm:"index:idx_quest_char" json:"assigned_char_id"`
	StartedAt      *time.Time  `json:"started_at"`
	CompletedAt    *time.Time  `json:"completed_at"`
	ApprovedAt     *time.Time  `json:"approved_at"`
	Version        int64       `gorm:"default:0" json:"version"`
	CreatedAt      time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}
