package models

import "strings"

// NormalizeEntityName produces the comparison key for a role or category
// name: surrounding whitespace stripped, lowercased.
func NormalizeEntityName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeChannelName produces the comparison key for a channel name.
// Discord rewrites text-type channel names server-side (lowercase, spaces
// become hyphens), so those types get the same transform here. Without it a
// stored "General Chat" would never match the live "general-chat" and would
// be re-created on every pass.
func NormalizeChannelName(name string, t ChannelType) string {
	normalized := NormalizeEntityName(name)
	switch t {
	case ChannelTypeText, ChannelTypeAnnouncement, ChannelTypeForum:
		normalized = strings.ReplaceAll(normalized, " ", "-")
	}
	return normalized
}

// ChannelKey identifies a channel inside a guild by its parent category,
// name, and type. Keys built with NewChannelKey carry normalized names.
type ChannelKey struct {
	Category string
	Name     string
	Type     ChannelType
}

// NewChannelKey builds the comparison key for a channel
func NewChannelKey(category, name string, t ChannelType) ChannelKey {
	return ChannelKey{
		Category: NormalizeEntityName(category),
		Name:     NormalizeChannelName(name, t),
		Type:     t,
	}
}

// GuildState is a snapshot of the live structure of a guild, keyed by
// normalized name. Values are the external IDs of the existing entities; the
// applier uses them to resolve parents and permission overwrite targets.
type GuildState struct {
	Roles      map[string]string
	Categories map[string]string
	Channels   map[ChannelKey]string
}

// NewGuildState returns an empty snapshot
func NewGuildState() *GuildState {
	return &GuildState{
		Roles:      make(map[string]string),
		Categories: make(map[string]string),
		Channels:   make(map[ChannelKey]string),
	}
}

// SetRole records an existing role under its normalized name
func (s *GuildState) SetRole(name, id string) {
	s.Roles[NormalizeEntityName(name)] = id
}

// SetCategory records an existing category under its normalized name
func (s *GuildState) SetCategory(name, id string) {
	s.Categories[NormalizeEntityName(name)] = id
}

// SetChannel records an existing channel under its normalized key
func (s *GuildState) SetChannel(category, name string, t ChannelType, id string) {
	s.Channels[NewChannelKey(category, name, t)] = id
}

// HasRole reports whether a role with this name exists, ignoring case and
// surrounding whitespace
func (s *GuildState) HasRole(name string) bool {
	_, ok := s.Roles[NormalizeEntityName(name)]
	return ok
}

// HasCategory reports whether a category with this name exists
func (s *GuildState) HasCategory(name string) bool {
	_, ok := s.Categories[NormalizeEntityName(name)]
	return ok
}

// HasChannel reports whether a channel with this name and type exists under
// the given category
func (s *GuildState) HasChannel(category, name string, t ChannelType) bool {
	_, ok := s.Channels[NewChannelKey(category, name, t)]
	return ok
}
