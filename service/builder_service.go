package service

import (
	"context"
	"fmt"
	"time"

	"architect/events"
	"architect/models"

	log "github.com/sirupsen/logrus"
)

// builderService implements the BuilderService interface
type builderService struct {
	layouts LayoutService
	client  GuildClient
	bus     *events.Bus
}

// NewBuilderService creates a new builder service
func NewBuilderService(layouts LayoutService, client GuildClient, bus *events.Bus) BuilderService {
	return &builderService{
		layouts: layouts,
		client:  client,
		bus:     bus,
	}
}

// ApplyLatest loads the newest stored layout for the guild and applies it
func (s *builderService) ApplyLatest(ctx context.Context, guildID string) (*models.BuildReport, error) {
	stored, err := s.layouts.LatestLayout(ctx, guildID)
	if err != nil {
		return nil, err
	}
	return s.Apply(ctx, guildID, stored.Version, stored.Payload)
}

// ApplyVersion applies a specific stored version
func (s *builderService) ApplyVersion(ctx context.Context, guildID string, version int) (*models.BuildReport, error) {
	stored, err := s.layouts.GetLayout(ctx, guildID, version)
	if err != nil {
		return nil, err
	}
	return s.Apply(ctx, guildID, stored.Version, stored.Payload)
}

// Apply reconciles the payload against the live guild structure, creating
// only what is absent. Entities are created roles first, then categories,
// then channels, so later entities can reference earlier ones. A failed
// create is recorded and the pass continues with the remaining entities.
func (s *builderService) Apply(ctx context.Context, guildID string, version int, payload models.Layout) (*models.BuildReport, error) {
	payload.Normalize()

	state, err := s.client.Snapshot(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot guild %s: %w", guildID, err)
	}

	report := &models.BuildReport{
		GuildID:   guildID,
		Version:   version,
		StartedAt: time.Now(),
	}

	// Role names resolve overwrite targets for categories and channels, so
	// the map carries both pre-existing and freshly created roles. Keys are
	// normalized names, matching the snapshot.
	roleIDs := make(map[string]string, len(state.Roles))
	for name, id := range state.Roles {
		roleIDs[name] = id
	}

	for _, role := range payload.Roles {
		if state.HasRole(role.Name) {
			report.Add(models.EntityResult{Kind: models.EntityRole, Name: role.Name, Outcome: models.OutcomeExists})
			continue
		}
		id, err := s.client.CreateRole(ctx, guildID, role)
		if err != nil {
			report.Add(models.EntityResult{Kind: models.EntityRole, Name: role.Name, Outcome: models.OutcomeFailed, Reason: err.Error()})
			log.WithFields(log.Fields{"guildID": guildID, "role": role.Name}).WithError(err).Warn("Failed to create role")
			continue
		}
		roleIDs[models.NormalizeEntityName(role.Name)] = id
		report.Add(models.EntityResult{Kind: models.EntityRole, Name: role.Name, Outcome: models.OutcomeCreated})
	}

	categoryIDs := make(map[string]string, len(state.Categories))
	for name, id := range state.Categories {
		categoryIDs[name] = id
	}

	for _, category := range payload.Categories {
		if state.HasCategory(category.Name) {
			report.Add(models.EntityResult{Kind: models.EntityCategory, Name: category.Name, Outcome: models.OutcomeExists})
			continue
		}
		id, err := s.client.CreateCategory(ctx, guildID, category, roleIDs)
		if err != nil {
			report.Add(models.EntityResult{Kind: models.EntityCategory, Name: category.Name, Outcome: models.OutcomeFailed, Reason: err.Error()})
			log.WithFields(log.Fields{"guildID": guildID, "category": category.Name}).WithError(err).Warn("Failed to create category")
			continue
		}
		categoryIDs[models.NormalizeEntityName(category.Name)] = id
		report.Add(models.EntityResult{Kind: models.EntityCategory, Name: category.Name, Outcome: models.OutcomeCreated})
	}

	for _, category := range payload.Categories {
		parentID, parentOK := categoryIDs[models.NormalizeEntityName(category.Name)]
		for _, channel := range category.Channels {
			if state.HasChannel(category.Name, channel.Name, channel.Type) {
				report.Add(models.EntityResult{Kind: models.EntityChannel, Name: channel.Name, Category: category.Name, Outcome: models.OutcomeExists})
				continue
			}
			if !parentOK {
				report.Add(models.EntityResult{
					Kind:     models.EntityChannel,
					Name:     channel.Name,
					Category: category.Name,
					Outcome:  models.OutcomeFailed,
					Reason:   "parent category unavailable",
				})
				continue
			}
			_, err := s.client.CreateChannel(ctx, guildID, parentID, channel, roleIDs)
			if err != nil {
				report.Add(models.EntityResult{Kind: models.EntityChannel, Name: channel.Name, Category: category.Name, Outcome: models.OutcomeFailed, Reason: err.Error()})
				log.WithFields(log.Fields{"guildID": guildID, "category": category.Name, "channel": channel.Name}).WithError(err).Warn("Failed to create channel")
				continue
			}
			report.Add(models.EntityResult{Kind: models.EntityChannel, Name: channel.Name, Category: category.Name, Outcome: models.OutcomeCreated})
		}
	}

	report.FinishedAt = time.Now()

	log.WithFields(log.Fields{
		"guildID": guildID,
		"version": version,
		"summary": report.Summary(),
	}).Info("Applied layout")

	s.bus.Emit(ctx, events.LayoutAppliedEvent{
		GuildID:  guildID,
		Version:  version,
		Created:  report.Created(),
		Existing: report.Existing(),
		Failed:   report.Failed(),
	})

	return report, nil
}

// SnapshotToLayout captures the live guild structure and stores it as a new
// layout version
func (s *builderService) SnapshotToLayout(ctx context.Context, guildID string) (int, error) {
	layout, err := s.client.ExportLayout(ctx, guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to export guild %s: %w", guildID, err)
	}
	return s.layouts.SaveLayout(ctx, guildID, layout)
}
