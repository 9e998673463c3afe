package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/matchscope/matchscope/pkg/detect"
)

var priorityColors = map[detect.Priority]int{
	detect.PriorityCritical: 0xe74c3c,
	detect.PriorityHigh:     0xe67e22,
	detect.PriorityMedium:   0xf1c40f,
	detect.PriorityLow:      0x95a5a6,
}

// DiscordChannel delivers change notifications as embeds to one Discord
// channel via a bot session.
type DiscordChannel struct {
	session      *discordgo.Session
	channelID    string
	stakeholders []detect.Stakeholder
}

// NewDiscordChannel opens a bot session and targets the given channel ID.
func NewDiscordChannel(token, channelID string, stakeholders []detect.Stakeholder) (*DiscordChannel, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	if len(stakeholders) == 0 {
		stakeholders = []detect.Stakeholder{detect.StakeholderAll}
	}
	return &DiscordChannel{
		session:      session,
		channelID:    channelID,
		stakeholders: stakeholders,
	}, nil
}

func (c *DiscordChannel) Name() string { return "discord" }

func (c *DiscordChannel) Stakeholders() []detect.Stakeholder { return c.stakeholders }

func (c *DiscordChannel) Send(ctx context.Context, change detect.Change) error {
	color, ok := priorityColors[change.Priority]
	if !ok {
		color = priorityColors[detect.PriorityLow]
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Match %s: %s", change.MatchID, change.Category),
		Description: change.Description,
		Color:       color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Priority", Value: string(change.Priority), Inline: true},
			{Name: "Field", Value: change.FieldName, Inline: true},
		},
	}
	if change.MatchNumber != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "Match nr " + change.MatchNumber}
	}

	_, err := c.session.ChannelMessageSendEmbed(c.channelID, embed, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("discord send failed: %w", err)
	}
	return nil
}

// Close shuts down the underlying session.
func (c *DiscordChannel) Close() error {
	return c.session.Close()
}
