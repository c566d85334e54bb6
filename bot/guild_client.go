package bot

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"architect/models"
	"architect/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// guildClient implements service.GuildClient on top of a discordgo session.
// Creation calls are throttled with a fixed delay so a large layout does not
// trip the REST rate limiter.
type guildClient struct {
	session   *discordgo.Session
	editDelay time.Duration
}

// NewGuildClient creates a guild client backed by the given session
func NewGuildClient(session *discordgo.Session, editDelay time.Duration) service.GuildClient {
	return &guildClient{
		session:   session,
		editDelay: editDelay,
	}
}

func (c *guildClient) throttle() {
	if c.editDelay > 0 {
		time.Sleep(c.editDelay)
	}
}

// Snapshot returns the current structure of the guild keyed by name
func (c *guildClient) Snapshot(ctx context.Context, guildID string) (*models.GuildState, error) {
	state := models.NewGuildState()

	roles, err := c.session.GuildRoles(guildID)
	if err != nil {
		return nil, &service.ExternalAPIError{Op: "list_roles", Entity: guildID, Err: err}
	}
	for _, role := range roles {
		if role.ID == guildID {
			continue // @everyone
		}
		state.SetRole(role.Name, role.ID)
	}

	channels, err := c.session.GuildChannels(guildID)
	if err != nil {
		return nil, &service.ExternalAPIError{Op: "list_channels", Entity: guildID, Err: err}
	}

	categoryNames := make(map[string]string) // category ID -> name
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildCategory {
			state.SetCategory(ch.Name, ch.ID)
			categoryNames[ch.ID] = ch.Name
		}
	}
	for _, ch := range channels {
		chType, ok := channelTypeFromDiscord(ch.Type)
		if !ok {
			continue
		}
		state.SetChannel(categoryNames[ch.ParentID], ch.Name, chType, ch.ID)
	}

	return state, nil
}

// ExportLayout captures the live guild structure as a layout document
func (c *guildClient) ExportLayout(ctx context.Context, guildID string) (models.Layout, error) {
	layout := models.Layout{Mode: models.LayoutModeUpdate}

	roles, err := c.session.GuildRoles(guildID)
	if err != nil {
		return models.Layout{}, &service.ExternalAPIError{Op: "list_roles", Entity: guildID, Err: err}
	}

	roleNames := make(map[string]string) // role ID -> name
	sorted := make([]*discordgo.Role, 0, len(roles))
	for _, role := range roles {
		roleNames[role.ID] = role.Name
		if role.ID == guildID || role.Managed {
			continue // @everyone and integration-owned roles are not ours to recreate
		}
		sorted = append(sorted, role)
	}
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].Position > sorted[b].Position
	})
	for _, role := range sorted {
		pos := role.Position
		layout.Roles = append(layout.Roles, models.RoleSpec{
			Name:     role.Name,
			Color:    fmt.Sprintf("#%06x", role.Color),
			Position: &pos,
			Perms:    rolePermsFromBits(role.Permissions),
		})
	}

	channels, err := c.session.GuildChannels(guildID)
	if err != nil {
		return models.Layout{}, &service.ExternalAPIError{Op: "list_channels", Entity: guildID, Err: err}
	}

	categories := make([]*discordgo.Channel, 0)
	childrenByParent := make(map[string][]*discordgo.Channel)
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildCategory {
			categories = append(categories, ch)
			continue
		}
		if _, ok := channelTypeFromDiscord(ch.Type); ok && ch.ParentID != "" {
			childrenByParent[ch.ParentID] = append(childrenByParent[ch.ParentID], ch)
		}
	}
	sort.SliceStable(categories, func(a, b int) bool {
		return categories[a].Position < categories[b].Position
	})

	for _, cat := range categories {
		catPos := cat.Position
		spec := models.CategorySpec{
			Name:       cat.Name,
			Position:   &catPos,
			Overwrites: overwritesFromDiscord(cat.PermissionOverwrites, roleNames),
		}

		children := childrenByParent[cat.ID]
		sort.SliceStable(children, func(a, b int) bool {
			return children[a].Position < children[b].Position
		})
		for _, ch := range children {
			chType, _ := channelTypeFromDiscord(ch.Type)
			chPos := ch.Position
			spec.Channels = append(spec.Channels, models.ChannelSpec{
				Name:     ch.Name,
				Type:     chType,
				Position: &chPos,
				Options: models.ChannelOptions{
					Topic:    ch.Topic,
					NSFW:     ch.NSFW,
					Slowmode: ch.RateLimitPerUser,
				},
				Overwrites: overwritesFromDiscord(ch.PermissionOverwrites, roleNames),
			})
		}

		layout.Categories = append(layout.Categories, spec)
	}

	return layout, nil
}

// CreateRole creates a role and returns its ID
func (c *guildClient) CreateRole(ctx context.Context, guildID string, spec models.RoleSpec) (string, error) {
	c.throttle()

	params := &discordgo.RoleParams{Name: spec.Name}
	if color, err := parseHexColor(spec.Color); err == nil {
		params.Color = &color
	}
	if spec.Perms != nil {
		perms := rolePermsToBits(spec.Perms)
		params.Permissions = &perms
	}

	role, err := c.session.GuildRoleCreate(guildID, params)
	if err != nil {
		return "", &service.ExternalAPIError{Op: "create_role", Entity: spec.Name, Err: err}
	}

	log.WithFields(log.Fields{"guildID": guildID, "role": spec.Name}).Debug("Created role")
	return role.ID, nil
}

// CreateCategory creates a category and returns its ID
func (c *guildClient) CreateCategory(ctx context.Context, guildID string, spec models.CategorySpec, roleIDs map[string]string) (string, error) {
	c.throttle()

	data := discordgo.GuildChannelCreateData{
		Name:                 spec.Name,
		Type:                 discordgo.ChannelTypeGuildCategory,
		PermissionOverwrites: overwritesToDiscord(spec.Overwrites, roleIDs),
	}
	if spec.Position != nil {
		data.Position = *spec.Position
	}

	ch, err := c.session.GuildChannelCreateComplex(guildID, data)
	if err != nil {
		return "", &service.ExternalAPIError{Op: "create_category", Entity: spec.Name, Err: err}
	}

	log.WithFields(log.Fields{"guildID": guildID, "category": spec.Name}).Debug("Created category")
	return ch.ID, nil
}

// CreateChannel creates a channel under the given parent category
func (c *guildClient) CreateChannel(ctx context.Context, guildID string, parentID string, spec models.ChannelSpec, roleIDs map[string]string) (string, error) {
	c.throttle()

	data := discordgo.GuildChannelCreateData{
		Name:                 spec.Name,
		Type:                 channelTypeToDiscord(spec.Type),
		Topic:                spec.Options.Topic,
		NSFW:                 spec.Options.NSFW,
		RateLimitPerUser:     spec.Options.Slowmode,
		ParentID:             parentID,
		PermissionOverwrites: overwritesToDiscord(spec.Overwrites, roleIDs),
	}
	if spec.Position != nil {
		data.Position = *spec.Position
	}

	ch, err := c.session.GuildChannelCreateComplex(guildID, data)
	if err != nil {
		return "", &service.ExternalAPIError{Op: "create_channel", Entity: spec.Name, Err: err}
	}

	log.WithFields(log.Fields{"guildID": guildID, "channel": spec.Name}).Debug("Created channel")
	return ch.ID, nil
}

func channelTypeToDiscord(t models.ChannelType) discordgo.ChannelType {
	switch t {
	case models.ChannelTypeVoice:
		return discordgo.ChannelTypeGuildVoice
	case models.ChannelTypeAnnouncement:
		return discordgo.ChannelTypeGuildNews
	case models.ChannelTypeForum:
		return discordgo.ChannelTypeGuildForum
	case models.ChannelTypeStage:
		return discordgo.ChannelTypeGuildStageVoice
	default:
		return discordgo.ChannelTypeGuildText
	}
}

func channelTypeFromDiscord(t discordgo.ChannelType) (models.ChannelType, bool) {
	switch t {
	case discordgo.ChannelTypeGuildText:
		return models.ChannelTypeText, true
	case discordgo.ChannelTypeGuildVoice:
		return models.ChannelTypeVoice, true
	case discordgo.ChannelTypeGuildNews:
		return models.ChannelTypeAnnouncement, true
	case discordgo.ChannelTypeGuildForum:
		return models.ChannelTypeForum, true
	case discordgo.ChannelTypeGuildStageVoice:
		return models.ChannelTypeStage, true
	}
	return "", false
}

func parseHexColor(color string) (int, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(color), "#")
	if trimmed == "" {
		return 0, fmt.Errorf("empty color")
	}
	parsed, err := strconv.ParseInt(trimmed, 16, 32)
	if err != nil {
		return 0, err
	}
	return int(parsed), nil
}

func rolePermsToBits(p *models.RolePerms) int64 {
	var bits int64
	if p.Admin {
		bits |= discordgo.PermissionAdministrator
	}
	if p.ManageChannels {
		bits |= discordgo.PermissionManageChannels
	}
	if p.ManageRoles {
		bits |= discordgo.PermissionManageRoles
	}
	if p.ViewChannel {
		bits |= discordgo.PermissionViewChannel
	}
	if p.SendMessages {
		bits |= discordgo.PermissionSendMessages
	}
	if p.Connect {
		bits |= discordgo.PermissionVoiceConnect
	}
	if p.Speak {
		bits |= discordgo.PermissionVoiceSpeak
	}
	return bits
}

func rolePermsFromBits(bits int64) *models.RolePerms {
	perms := &models.RolePerms{
		Admin:          bits&discordgo.PermissionAdministrator != 0,
		ManageChannels: bits&discordgo.PermissionManageChannels != 0,
		ManageRoles:    bits&discordgo.PermissionManageRoles != 0,
		ViewChannel:    bits&discordgo.PermissionViewChannel != 0,
		SendMessages:   bits&discordgo.PermissionSendMessages != 0,
		Connect:        bits&discordgo.PermissionVoiceConnect != 0,
		Speak:          bits&discordgo.PermissionVoiceSpeak != 0,
	}
	if *perms == (models.RolePerms{}) {
		return nil
	}
	return perms
}

// overwriteBit pairs a tri-state overwrite field with its permission bit
type overwriteBit struct {
	value models.OverwriteValue
	bit   int64
}

func overwriteBits(spec models.OverwriteSpec) (allow, deny int64) {
	fields := []overwriteBit{
		{spec.View, discordgo.PermissionViewChannel},
		{spec.Send, discordgo.PermissionSendMessages},
		{spec.Connect, discordgo.PermissionVoiceConnect},
		{spec.Speak, discordgo.PermissionVoiceSpeak},
		{spec.ManageChannels, discordgo.PermissionManageChannels},
		{spec.ManageRoles, discordgo.PermissionManageRoles},
	}
	for _, f := range fields {
		switch f.value {
		case models.OverwriteAllow:
			allow |= f.bit
		case models.OverwriteDeny:
			deny |= f.bit
		}
	}
	return allow, deny
}

func overwritesToDiscord(overwrites map[string]models.OverwriteSpec, roleIDs map[string]string) []*discordgo.PermissionOverwrite {
	if len(overwrites) == 0 {
		return nil
	}

	result := make([]*discordgo.PermissionOverwrite, 0, len(overwrites))
	for roleName, spec := range overwrites {
		roleID, ok := roleIDs[models.NormalizeEntityName(roleName)]
		if !ok {
			// Role was neither present nor created earlier in the pass
			log.WithField("role", roleName).Warn("Skipping overwrite for unknown role")
			continue
		}
		allow, deny := overwriteBits(spec)
		if allow == 0 && deny == 0 {
			continue
		}
		result = append(result, &discordgo.PermissionOverwrite{
			ID:    roleID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: allow,
			Deny:  deny,
		})
	}
	return result
}

func triState(allow, deny, bit int64) models.OverwriteValue {
	switch {
	case allow&bit != 0:
		return models.OverwriteAllow
	case deny&bit != 0:
		return models.OverwriteDeny
	default:
		return ""
	}
}

func overwritesFromDiscord(overwrites []*discordgo.PermissionOverwrite, roleNames map[string]string) map[string]models.OverwriteSpec {
	var result map[string]models.OverwriteSpec
	for _, ow := range overwrites {
		if ow.Type != discordgo.PermissionOverwriteTypeRole {
			continue
		}
		roleName, ok := roleNames[ow.ID]
		if !ok {
			continue
		}
		spec := models.OverwriteSpec{
			View:           triState(ow.Allow, ow.Deny, discordgo.PermissionViewChannel),
			Send:           triState(ow.Allow, ow.Deny, discordgo.PermissionSendMessages),
			Connect:        triState(ow.Allow, ow.Deny, discordgo.PermissionVoiceConnect),
			Speak:          triState(ow.Allow, ow.Deny, discordgo.PermissionVoiceSpeak),
			ManageChannels: triState(ow.Allow, ow.Deny, discordgo.PermissionManageChannels),
			ManageRoles:    triState(ow.Allow, ow.Deny, discordgo.PermissionManageRoles),
		}
		if spec == (models.OverwriteSpec{}) {
			continue
		}
		if result == nil {
			result = make(map[string]models.OverwriteSpec)
		}
		result[roleName] = spec
	}
	return result
}
