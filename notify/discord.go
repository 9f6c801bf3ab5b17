/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package notify

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/mikeb26/cutematch/pgn"
)

const (
	colorGreen  = 0x2ecc71
	colorRed    = 0xe74c3c
	colorYellow = 0xf1c40f
)

// Discord posts match results to a channel webhook.
type Discord struct {
	WebhookID string
	Token     string

	// post is swapped out in tests
	post func(params *discordgo.WebhookParams) error
}

// NewDiscord parses a webhook URL of the form
// https://discord.com/api/webhooks/<id>/<token>.
func NewDiscord(webhookURL string) (*Discord, error) {
	id, token, err := parseWebhookURL(webhookURL)
	if err != nil {
		return nil, err
	}

	// webhook execution needs no bot token
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("notify: failed to initialize discord client: %w", err)
	}

	d := &Discord{WebhookID: id, Token: token}
	d.post = func(params *discordgo.WebhookParams) error {
		_, err := session.WebhookExecute(d.WebhookID, d.Token, false, params)
		return err
	}

	return d, nil
}

func parseWebhookURL(raw string) (string, string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", "", fmt.Errorf("notify: bad webhook url: %w", err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] == "webhooks" && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1], parts[i+2], nil
		}
	}

	return "", "", fmt.Errorf("notify: webhook url %q lacks /webhooks/<id>/<token>",
		u.Redacted())
}

// PostSummary sends s as a single embed. title is typically the match
// label and status the tournament manager's exit status.
func (d *Discord) PostSummary(title string, status int, s pgn.Summary) error {
	params := &discordgo.WebhookParams{
		Username: "cutematch",
		Embeds:   []*discordgo.MessageEmbed{BuildSummaryEmbed(title, status, s)},
	}
	if err := d.post(params); err != nil {
		return fmt.Errorf("notify: webhook post failed: %w", err)
	}

	return nil
}

func BuildSummaryEmbed(title string, status int,
	s pgn.Summary) *discordgo.MessageEmbed {

	embed := &discordgo.MessageEmbed{
		Title: title,
		Color: colorGreen,
	}
	if status != 0 {
		embed.Color = colorRed
		embed.Description = fmt.Sprintf("cutechess-cli exited with status %d", status)
	} else if s.Unfinished > 0 {
		embed.Color = colorYellow
	}

	games := fmt.Sprintf("%d", s.Games())
	if s.Unfinished > 0 {
		games += fmt.Sprintf(" (+%d unfinished)", s.Unfinished)
	}
	embed.Fields = append(embed.Fields,
		&discordgo.MessageEmbedField{Name: "Games", Value: games, Inline: true},
		&discordgo.MessageEmbedField{
			Name:   "W / B / D",
			Value:  fmt.Sprintf("%d / %d / %d", s.WhiteWins, s.BlackWins, s.Draws),
			Inline: true,
		})

	if !s.SelfPlay() && s.Record.Games() > 0 {
		diff, margin := s.Record.Elo()
		record := fmt.Sprintf("+%d -%d =%d (%.1f%%)", s.Record.Wins,
			s.Record.Losses, s.Record.Draws, 100*s.Record.Score())
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: s.Player1 + " vs " + s.Player2, Value: record},
			&discordgo.MessageEmbedField{Name: "Elo", Value: fmt.Sprintf("%+.1f ± %.1f", diff, margin)})
	}

	return embed
}
