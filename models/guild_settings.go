package models

import (
	"time"
)

// DefaultTimezone is applied to guilds that have never been configured
const DefaultTimezone = "America/Denver"

// GuildSettings represents per-guild configuration settings
type GuildSettings struct {
	GuildID        string          `db:"guild_id" json:"guild_id"`
	Timezone       string          `db:"timezone" json:"timezone"`
	AdminChannelID *string         `db:"admin_channel_id" json:"admin_channel_id"` // Nullable - channel for builder announcements
	Features       map[string]bool `db:"features" json:"features"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// NewDefaultGuildSettings returns the settings an unconfigured guild gets
func NewDefaultGuildSettings(guildID string) *GuildSettings {
	return &GuildSettings{
		GuildID:  guildID,
		Timezone: DefaultTimezone,
		Features: map[string]bool{},
	}
}

// HasAdminChannel checks if an admin channel is configured
func (gs *GuildSettings) HasAdminChannel() bool {
	return gs.AdminChannelID != nil && *gs.AdminChannelID != ""
}

// FeatureEnabled checks a feature flag, defaulting to disabled
func (gs *GuildSettings) FeatureEnabled(name string) bool {
	if gs.Features == nil {
		return false
	}
	return gs.Features[name]
}

// GuildSettingsUpdate is a partial update applied by upsert. Nil fields are
// left untouched; feature flags are merged key by key.
type GuildSettingsUpdate struct {
	Timezone       *string         `json:"timezone,omitempty"`
	AdminChannelID *string         `json:"admin_channel_id,omitempty"`
	Features       map[string]bool `json:"features,omitempty"`
}
