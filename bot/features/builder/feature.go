package builder

import (
	"architect/service"

	"github.com/bwmarrin/discordgo"
)

// Feature handles the server building commands
type Feature struct {
	session        *discordgo.Session
	builderService service.BuilderService
	layoutService  service.LayoutService
}

// NewFeature creates a new builder feature instance
func NewFeature(session *discordgo.Session, builderService service.BuilderService, layoutService service.LayoutService) *Feature {
	return &Feature{
		session:        session,
		builderService: builderService,
		layoutService:  layoutService,
	}
}
