package bot

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"architect/bot/features/builder"
	"architect/bot/features/settings"
	"architect/events"
	"architect/service"

	"github.com/bwmarrin/discordgo"
)

// Config holds bot configuration
type Config struct {
	Token          string
	ApplyEditDelay time.Duration
}

type Bot struct {
	config          Config
	session         *discordgo.Session
	guildClient     service.GuildClient
	layoutService   service.LayoutService
	settingsService service.GuildSettingsService
	builderService  service.BuilderService
	builderFeature  *builder.Feature
	settingsFeature *settings.Feature
	eventBus        *events.Bus
}

func New(config Config, layoutService service.LayoutService, settingsService service.GuildSettingsService, eventBus *events.Bus) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

	guildClient := NewGuildClient(dg, config.ApplyEditDelay)
	builderService := service.NewBuilderService(layoutService, guildClient, eventBus)

	bot := &Bot{
		config:          config,
		session:         dg,
		guildClient:     guildClient,
		layoutService:   layoutService,
		settingsService: settingsService,
		builderService:  builderService,
		builderFeature:  builder.NewFeature(dg, builderService, layoutService),
		settingsFeature: settings.NewFeature(dg, settingsService),
		eventBus:        eventBus,
	}

	// Register slash command handlers
	dg.AddHandler(bot.handleCommands)

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	// Announce dashboard submissions in the configured admin channel
	eventBus.Subscribe(events.EventTypeLayoutSaved, func(ctx context.Context, event events.Event) {
		saved, ok := event.(events.LayoutSavedEvent)
		if !ok {
			return
		}
		bot.announceLayoutSaved(ctx, saved)
	})

	return bot, nil
}

// GuildClient exposes the live guild reader for the dashboard
func (b *Bot) GuildClient() service.GuildClient {
	return b.guildClient
}

// BuilderService exposes the apply pipeline bound to this session
func (b *Bot) BuilderService() service.BuilderService {
	return b.builderService
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) announceLayoutSaved(ctx context.Context, event events.LayoutSavedEvent) {
	guildSettings, err := b.settingsService.GetSettings(ctx, event.GuildID)
	if err != nil {
		log.Errorf("Failed to load settings for layout announcement: %v", err)
		return
	}
	if !guildSettings.HasAdminChannel() {
		return
	}

	message := fmt.Sprintf("📐 Layout version **%d** was saved. Run `/update_server` to apply it.", event.Version)
	if _, err := b.session.ChannelMessageSend(*guildSettings.AdminChannelID, message); err != nil {
		log.Errorf("Failed to announce layout save in guild %s: %v", event.GuildID, err)
	}
}
