package settings

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"architect/bot/common"
	"architect/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// handleShow handles the /settings show command
func (f *Feature) handleShow(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	settings, err := f.settingsService.GetSettings(ctx, i.GuildID)
	if err != nil {
		log.Errorf("Failed to get settings for guild %s: %v", i.GuildID, err)
		common.RespondWithError(s, i, "Failed to load settings")
		return
	}

	adminChannel := "not set"
	if settings.HasAdminChannel() {
		adminChannel = fmt.Sprintf("<#%s>", *settings.AdminChannelID)
	}

	var features string
	if len(settings.Features) == 0 {
		features = "none configured"
	} else {
		names := make([]string, 0, len(settings.Features))
		for name := range settings.Features {
			names = append(names, name)
		}
		sort.Strings(names)
		var sb strings.Builder
		for _, name := range names {
			state := "off"
			if settings.Features[name] {
				state = "on"
			}
			fmt.Fprintf(&sb, "`%s`: %s\n", name, state)
		}
		features = sb.String()
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{{
				Title: "Server settings",
				Color: 0x5865f2,
				Fields: []*discordgo.MessageEmbedField{
					{Name: "Timezone", Value: settings.Timezone, Inline: true},
					{Name: "Admin channel", Value: adminChannel, Inline: true},
					{Name: "Features", Value: features},
				},
			}},
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Failed to respond to settings show: %v", err)
	}
}

// handleTimezone handles the /settings timezone command
func (f *Feature) handleTimezone(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !common.IsUserAdmin(s, i.GuildID, i.Member.User.ID) {
		common.RespondWithError(s, i, "You need administrator permissions to use this command")
		return
	}

	options := i.ApplicationCommandData().Options[0].Options
	if len(options) == 0 {
		common.RespondWithError(s, i, "Please provide a timezone name")
		return
	}
	tz := options[0].StringValue()

	ctx := context.Background()

	_, err := f.settingsService.UpdateSettings(ctx, i.GuildID, models.GuildSettingsUpdate{Timezone: &tz})
	if err != nil {
		var validationErr *models.ValidationError
		if errors.As(err, &validationErr) {
			common.RespondWithError(s, i, fmt.Sprintf("`%s` is not a valid timezone name (try `America/Denver`)", tz))
			return
		}
		log.Errorf("Failed to update timezone for guild %s: %v", i.GuildID, err)
		common.RespondWithError(s, i, "Failed to update settings")
		return
	}

	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Timezone updated to `%s`", tz), true); err != nil {
		log.Errorf("Failed to respond to timezone command: %v", err)
	}
}

// handleAdminChannel handles the /settings admin-channel command
func (f *Feature) handleAdminChannel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !common.IsUserAdmin(s, i.GuildID, i.Member.User.ID) {
		common.RespondWithError(s, i, "You need administrator permissions to use this command")
		return
	}

	// An empty channel ID clears the setting
	channelID := ""
	options := i.ApplicationCommandData().Options[0].Options
	if len(options) > 0 && options[0].Name == "channel" {
		if ch := options[0].ChannelValue(s); ch != nil {
			channelID = ch.ID
		}
	}

	ctx := context.Background()

	_, err := f.settingsService.UpdateSettings(ctx, i.GuildID, models.GuildSettingsUpdate{AdminChannelID: &channelID})
	if err != nil {
		log.Errorf("Failed to update admin channel for guild %s: %v", i.GuildID, err)
		common.RespondWithError(s, i, "Failed to update settings")
		return
	}

	var message string
	if channelID != "" {
		message = fmt.Sprintf("Admin channel updated to <#%s>", channelID)
	} else {
		message = "Admin channel cleared"
	}
	if err := common.RespondWithSuccess(s, i, message, true); err != nil {
		log.Errorf("Failed to respond to admin-channel command: %v", err)
	}
}

// handleFeature handles the /settings feature command
func (f *Feature) handleFeature(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !common.IsUserAdmin(s, i.GuildID, i.Member.User.ID) {
		common.RespondWithError(s, i, "You need administrator permissions to use this command")
		return
	}

	options := i.ApplicationCommandData().Options[0].Options
	var name string
	var enabled bool
	for _, opt := range options {
		switch opt.Name {
		case "name":
			name = opt.StringValue()
		case "enabled":
			enabled = opt.BoolValue()
		}
	}
	if name == "" {
		common.RespondWithError(s, i, "Please provide a feature name")
		return
	}

	ctx := context.Background()

	_, err := f.settingsService.UpdateSettings(ctx, i.GuildID, models.GuildSettingsUpdate{
		Features: map[string]bool{name: enabled},
	})
	if err != nil {
		log.Errorf("Failed to update feature flag for guild %s: %v", i.GuildID, err)
		common.RespondWithError(s, i, "Failed to update settings")
		return
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	if err := common.RespondWithSuccess(s, i, fmt.Sprintf("Feature `%s` %s", name, state), true); err != nil {
		log.Errorf("Failed to respond to feature command: %v", err)
	}
}
