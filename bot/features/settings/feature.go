package settings

import (
	"architect/service"

	"github.com/bwmarrin/discordgo"
)

// Feature handles guild settings management
type Feature struct {
	session         *discordgo.Session
	settingsService service.GuildSettingsService
}

// NewFeature creates a new settings feature instance
func NewFeature(session *discordgo.Session, settingsService service.GuildSettingsService) *Feature {
	return &Feature{
		session:         session,
		settingsService: settingsService,
	}
}

// HandleCommand routes settings subcommands to appropriate handlers
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return
	}

	switch options[0].Name {
	case "show":
		f.handleShow(s, i)
	case "timezone":
		f.handleTimezone(s, i)
	case "admin-channel":
		f.handleAdminChannel(s, i)
	case "feature":
		f.handleFeature(s, i)
	}
}
