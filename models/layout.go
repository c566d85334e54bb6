package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ChannelType identifies the kind of channel a layout entry describes
type ChannelType string

const (
	ChannelTypeText         ChannelType = "text"
	ChannelTypeVoice        ChannelType = "voice"
	ChannelTypeAnnouncement ChannelType = "announcement"
	ChannelTypeForum        ChannelType = "forum"
	ChannelTypeStage        ChannelType = "stage"
)

// IsValid reports whether the channel type is one of the known variants
func (t ChannelType) IsValid() bool {
	switch t {
	case ChannelTypeText, ChannelTypeVoice, ChannelTypeAnnouncement, ChannelTypeForum, ChannelTypeStage:
		return true
	}
	return false
}

// LayoutMode tags a payload as "build" (fresh guild) or "update" (existing
// guild). It is kept for compatibility with dashboard payloads and snapshot
// exports; reconciliation is creation-only, so both modes apply identically
// and the value is validated and stored but never branched on.
type LayoutMode string

const (
	LayoutModeBuild  LayoutMode = "build"
	LayoutModeUpdate LayoutMode = "update"
)

// OverwriteValue is a tri-state permission overwrite setting
type OverwriteValue string

const (
	OverwriteInherit OverwriteValue = "inherit"
	OverwriteAllow   OverwriteValue = "allow"
	OverwriteDeny    OverwriteValue = "deny"
)

// IsValid reports whether the value is a known tri-state (empty means inherit)
func (v OverwriteValue) IsValid() bool {
	switch v {
	case "", OverwriteInherit, OverwriteAllow, OverwriteDeny:
		return true
	}
	return false
}

// RolePerms holds the permission flags a layout can request for a role
type RolePerms struct {
	Admin          bool `json:"admin,omitempty"`
	ManageChannels bool `json:"manage_channels,omitempty"`
	ManageRoles    bool `json:"manage_roles,omitempty"`
	ViewChannel    bool `json:"view_channel,omitempty"`
	SendMessages   bool `json:"send_messages,omitempty"`
	Connect        bool `json:"connect,omitempty"`
	Speak          bool `json:"speak,omitempty"`
}

// RoleSpec describes one desired role
type RoleSpec struct {
	Name     string     `json:"name"`
	Color    string     `json:"color,omitempty"` // hex string like "#5865f2"
	Position *int       `json:"position,omitempty"`
	Perms    *RolePerms `json:"perms,omitempty"`
}

// OverwriteSpec is a per-role permission overwrite on a category or channel.
// Each field is inherit/allow/deny; empty means inherit.
type OverwriteSpec struct {
	View           OverwriteValue `json:"view,omitempty"`
	Send           OverwriteValue `json:"send,omitempty"`
	Connect        OverwriteValue `json:"connect,omitempty"`
	Speak          OverwriteValue `json:"speak,omitempty"`
	ManageChannels OverwriteValue `json:"manage_channels,omitempty"`
	ManageRoles    OverwriteValue `json:"manage_roles,omitempty"`
}

// ChannelOptions holds optional channel properties applied at creation
type ChannelOptions struct {
	Topic    string `json:"topic,omitempty"`
	NSFW     bool   `json:"nsfw,omitempty"`
	Slowmode int    `json:"slowmode,omitempty"`
}

// ChannelSpec describes one desired channel inside a category
type ChannelSpec struct {
	Name       string                   `json:"name"`
	Type       ChannelType              `json:"type"`
	Position   *int                     `json:"position,omitempty"`
	Options    ChannelOptions           `json:"options,omitempty"`
	Overwrites map[string]OverwriteSpec `json:"overwrites,omitempty"`
}

// CategorySpec describes one desired category and its ordered channels.
// The channels_text/channels_voice fields are a legacy dashboard shape that
// Normalize merges into Channels.
type CategorySpec struct {
	Name          string                   `json:"name"`
	Position      *int                     `json:"position,omitempty"`
	Overwrites    map[string]OverwriteSpec `json:"overwrites,omitempty"`
	Channels      []ChannelSpec            `json:"channels,omitempty"`
	ChannelsText  []ChannelSpec            `json:"channels_text,omitempty"`
	ChannelsVoice []ChannelSpec            `json:"channels_voice,omitempty"`
}

// Layout is a desired guild structure as submitted from the dashboard or
// captured by a snapshot. The store treats it as an opaque versioned document;
// the applier walks it in role, category, channel order.
type Layout struct {
	Mode       LayoutMode     `json:"mode,omitempty"`
	Roles      []RoleSpec     `json:"roles"`
	Categories []CategorySpec `json:"categories"`
}

// BuilderLayout is one immutable versioned row of the layout store
type BuilderLayout struct {
	GuildID   string    `db:"guild_id"`
	Version   int       `db:"version"`
	Payload   Layout    `db:"payload"`
	CreatedAt time.Time `db:"created_at"`
}

// Normalize fills defaults and folds the legacy split channel lists into the
// unified Channels list, ordered by position. Safe to call more than once.
func (l *Layout) Normalize() {
	if l.Mode == "" {
		l.Mode = LayoutModeUpdate
	}
	for i := range l.Categories {
		cat := &l.Categories[i]
		if len(cat.Channels) == 0 && (len(cat.ChannelsText) > 0 || len(cat.ChannelsVoice) > 0) {
			merged := append([]ChannelSpec{}, cat.ChannelsText...)
			merged = append(merged, cat.ChannelsVoice...)
			sort.SliceStable(merged, func(a, b int) bool {
				return channelPos(merged[a]) < channelPos(merged[b])
			})
			cat.Channels = merged
		}
		cat.ChannelsText = nil
		cat.ChannelsVoice = nil
		for j := range cat.Channels {
			if cat.Channels[j].Type == "" {
				cat.Channels[j].Type = ChannelTypeText
			}
		}
	}
}

func channelPos(ch ChannelSpec) int {
	if ch.Position != nil {
		return *ch.Position
	}
	return 0
}

// Validate rejects malformed layouts before they reach the store. Callers
// should Normalize first.
func (l *Layout) Validate() error {
	if l.Mode != LayoutModeBuild && l.Mode != LayoutModeUpdate {
		return NewValidationError("mode", fmt.Sprintf("unknown mode %q", l.Mode))
	}
	if len(l.Roles) == 0 && len(l.Categories) == 0 {
		return NewValidationError("layout", "must contain at least one role or category")
	}

	// Duplicate detection uses the same normalized keys as reconciliation,
	// so two entries that would resolve to one live entity are rejected here.
	roleNames := make(map[string]bool, len(l.Roles))
	for i, r := range l.Roles {
		name := NormalizeEntityName(r.Name)
		if name == "" {
			return NewValidationError(fmt.Sprintf("roles[%d].name", i), "role name must not be blank")
		}
		if roleNames[name] {
			return NewValidationError(fmt.Sprintf("roles[%d].name", i), fmt.Sprintf("duplicate role %q", r.Name))
		}
		roleNames[name] = true
	}

	catNames := make(map[string]bool, len(l.Categories))
	chanKeys := make(map[ChannelKey]bool)
	for i, cat := range l.Categories {
		catName := NormalizeEntityName(cat.Name)
		if catName == "" {
			return NewValidationError(fmt.Sprintf("categories[%d].name", i), "category name must not be blank")
		}
		if catNames[catName] {
			return NewValidationError(fmt.Sprintf("categories[%d].name", i), fmt.Sprintf("duplicate category %q", cat.Name))
		}
		catNames[catName] = true

		if err := validateOverwrites(fmt.Sprintf("categories[%d]", i), cat.Overwrites); err != nil {
			return err
		}

		for j, ch := range cat.Channels {
			field := fmt.Sprintf("categories[%d].channels[%d]", i, j)
			if strings.TrimSpace(ch.Name) == "" {
				return NewValidationError(field+".name", "channel name must not be blank")
			}
			if !ch.Type.IsValid() {
				return NewValidationError(field+".type", fmt.Sprintf("unknown channel type %q", ch.Type))
			}
			key := NewChannelKey(cat.Name, ch.Name, ch.Type)
			if chanKeys[key] {
				return NewValidationError(field, fmt.Sprintf("duplicate channel %q in category %q", ch.Name, cat.Name))
			}
			chanKeys[key] = true
			if ch.Options.Slowmode < 0 {
				return NewValidationError(field+".options.slowmode", "slowmode must not be negative")
			}
			if err := validateOverwrites(field, ch.Overwrites); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateOverwrites(field string, overwrites map[string]OverwriteSpec) error {
	for roleName, ow := range overwrites {
		if strings.TrimSpace(roleName) == "" {
			return NewValidationError(field+".overwrites", "overwrite role name must not be blank")
		}
		values := []OverwriteValue{ow.View, ow.Send, ow.Connect, ow.Speak, ow.ManageChannels, ow.ManageRoles}
		for _, v := range values {
			if !v.IsValid() {
				return NewValidationError(field+".overwrites", fmt.Sprintf("invalid overwrite value %q for role %q", v, roleName))
			}
		}
	}
	return nil
}

// ValidationError describes a malformed layout or settings payload. It is
// raised at the submission boundary so bad shapes never reach storage.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError creates a validation error for a specific field
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
