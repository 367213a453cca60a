package model

import "time"

// GuildRole is a member's role within the guild.
type GuildRole string

const (
	RoleGuildmaster GuildRole = "GUILDMASTER"
	RoleMember      GuildRole = "MEMBER"
)

// Valid reports whether r is a known role.
func (r GuildRole) Valid() bool {
	return r == RoleGuildmaster || r == RoleMember
}

// Guild groups characters and the quests assigned to them.
type Guild struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:64;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// GuildMember links a character to a guild with a role.
type GuildMember struct {
	GuildID  int64     `gorm:"primaryKey" json:"guild_id"`
	CharID   int64     `gorm:"primaryKey;index:idx_member_char" json:"char_id"`
	Role     GuildRole `gorm:"size:16;not null" json:"role"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}
