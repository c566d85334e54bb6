package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) registerCommands() error {
	var minVersion float64 = 1

	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "build_server",
			Description: "Build out this server from the latest saved layout",
		},
		{
			Name:        "update_server",
			Description: "Create anything from a saved layout that is missing on this server",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "version",
					Description: "Layout version to apply (defaults to latest)",
					MinValue:    &minVersion,
					Required:    false,
				},
			},
		},
		{
			Name:        "snapshot_layout",
			Description: "Save the current server structure as a new layout version",
		},
		{
			Name:        "layout_versions",
			Description: "List the saved layout versions for this server",
		},
		{
			Name:        "settings",
			Description: "View and change server settings",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "show",
					Description: "Show the current settings",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "timezone",
					Description: "Set the server timezone",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "name",
							Description: "IANA timezone name, e.g. America/Denver",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "admin-channel",
					Description: "Set or clear the channel for bot announcements",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionChannel,
							Name:        "channel",
							Description: "Channel for announcements (omit to clear)",
							Required:    false,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "feature",
					Description: "Toggle a feature flag",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "name",
							Description: "Feature name",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Name:        "enabled",
							Description: "Whether the feature is enabled",
							Required:    true,
						},
					},
				},
			},
		},
	}

	for _, cmd := range commands {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, "", cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}

	return nil
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "build_server":
		b.builderFeature.HandleBuild(s, i)
	case "update_server":
		b.builderFeature.HandleUpdate(s, i)
	case "snapshot_layout":
		b.builderFeature.HandleSnapshot(s, i)
	case "layout_versions":
		b.builderFeature.HandleVersions(s, i)
	case "settings":
		b.settingsFeature.HandleCommand(s, i)
	}
}
