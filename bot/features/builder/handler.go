package builder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"architect/bot/common"
	"architect/models"
	"architect/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// HandleBuild handles the /build_server command
func (f *Feature) HandleBuild(s *discordgo.Session, i *discordgo.InteractionCreate) {
	f.apply(s, i, 0)
}

// HandleUpdate handles the /update_server command
func (f *Feature) HandleUpdate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	var version int
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "version" {
			version = int(opt.IntValue())
		}
	}
	f.apply(s, i, version)
}

// apply runs a reconciliation pass. A version of 0 means latest.
func (f *Feature) apply(s *discordgo.Session, i *discordgo.InteractionCreate, version int) {
	if !common.IsUserAdmin(s, i.GuildID, i.Member.User.ID) {
		common.RespondWithError(s, i, "You need administrator permissions to use this command")
		return
	}

	// Creating roles and channels takes a while on larger layouts
	if err := common.DeferResponse(s, i, false); err != nil {
		log.Errorf("Failed to defer response: %v", err)
		return
	}

	ctx := context.Background()

	var report *models.BuildReport
	var err error
	if version == 0 {
		report, err = f.builderService.ApplyLatest(ctx, i.GuildID)
	} else {
		report, err = f.builderService.ApplyVersion(ctx, i.GuildID, version)
	}
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			common.FollowUpWithError(s, i, "No saved layout found for this server. Submit one from the dashboard first.")
			return
		}
		log.Errorf("Failed to apply layout for guild %s: %v", i.GuildID, err)
		common.FollowUpWithError(s, i, "Failed to apply the layout. Please try again.")
		return
	}

	embed := buildReportEmbed(report)
	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: "Requested by " + common.GetDisplayName(s, i.GuildID, i.Member.User.ID),
	}
	if _, err := common.FollowUpWithEmbed(s, i, embed, false); err != nil {
		log.Errorf("Failed to send build report: %v", err)
	}
}

// HandleSnapshot handles the /snapshot_layout command
func (f *Feature) HandleSnapshot(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !common.IsUserAdmin(s, i.GuildID, i.Member.User.ID) {
		common.RespondWithError(s, i, "You need administrator permissions to use this command")
		return
	}

	if err := common.DeferResponse(s, i, true); err != nil {
		log.Errorf("Failed to defer response: %v", err)
		return
	}

	ctx := context.Background()

	version, err := f.builderService.SnapshotToLayout(ctx, i.GuildID)
	if err != nil {
		log.Errorf("Failed to snapshot guild %s: %v", i.GuildID, err)
		common.FollowUpWithError(s, i, "Failed to snapshot the server layout. Please try again.")
		return
	}

	_, err = s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Content: fmt.Sprintf("✅ Saved the current server structure as layout version **%d**", version),
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Errorf("Failed to respond to snapshot command: %v", err)
	}
}

// HandleVersions handles the /layout_versions command
func (f *Feature) HandleVersions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	versions, err := f.layoutService.ListVersions(ctx, i.GuildID)
	if err != nil {
		log.Errorf("Failed to list layout versions for guild %s: %v", i.GuildID, err)
		common.RespondWithError(s, i, "Failed to list layout versions. Please try again.")
		return
	}
	if len(versions) == 0 {
		common.RespondWithError(s, i, "No saved layouts found for this server.")
		return
	}

	var sb strings.Builder
	for _, v := range versions {
		fmt.Fprintf(&sb, "**v%d** — saved <t:%d:R>\n", v.Version, v.CreatedAt.Unix())
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{{
				Title:       "Saved layout versions",
				Description: sb.String(),
				Color:       0x5865f2,
			}},
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Failed to respond to versions command: %v", err)
	}
}

func buildReportEmbed(report *models.BuildReport) *discordgo.MessageEmbed {
	color := 0x57f287 // green
	if report.Failed() > 0 {
		color = 0xed4245 // red
	} else if report.Created() == 0 {
		color = 0x5865f2 // nothing to do
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Layout v%d applied", report.Version),
		Description: report.Summary(),
		Color:       color,
	}

	if created := formatResults(report, models.OutcomeCreated); created != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Created",
			Value: created,
		})
	}
	if failed := formatResults(report, models.OutcomeFailed); failed != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Failed",
			Value: failed,
		})
	}

	return embed
}

func formatResults(report *models.BuildReport, outcome models.Outcome) string {
	var sb strings.Builder
	for _, res := range report.Results {
		if res.Outcome != outcome {
			continue
		}
		if sb.Len() > 900 {
			sb.WriteString("…\n")
			break
		}
		name := res.Name
		if res.Category != "" {
			name = res.Category + " / " + res.Name
		}
		if res.Reason != "" {
			fmt.Fprintf(&sb, "%s **%s** — %s\n", res.Kind, name, res.Reason)
		} else {
			fmt.Fprintf(&sb, "%s **%s**\n", res.Kind, name)
		}
	}
	return sb.String()
}
