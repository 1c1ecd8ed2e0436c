package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Discord posts each DetectedActivity as an embed to a single channel. The
// session is opened once at construction and kept alive for the process
// lifetime.
type Discord struct {
	session   *discordgo.Session
	channelID string
	log       *zap.SugaredLogger
}

// NewDiscord opens a bot session authenticated with token and returns a
// transport bound to channelID. Mirrors the teacher pack's own session
// lifecycle: construct, Open, hand the session to callers.
func NewDiscord(token, channelID string, log *zap.SugaredLogger) (*Discord, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("notify: create discord session: %w", err)
	}
	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("notify: open discord session: %w", err)
	}
	return &Discord{session: session, channelID: channelID, log: log}, nil
}

func (d *Discord) SendActivity(ctx context.Context, activity DetectedActivity) {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Callsign detected: %s", activity.Callsign),
		Color: 0x2ecc71,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Frequency", Value: fmt.Sprintf("%.4f MHz", float64(activity.FrequencyHz)/1e6), Inline: true},
			{Name: "Duration", Value: activity.Duration.Round(1e8).String(), Inline: true},
			{Name: "Method", Value: activity.CallsignMethod, Inline: true},
			{Name: "Confidence", Value: fmt.Sprintf("%.2f", activity.Confidence), Inline: true},
		},
		Timestamp: activity.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if activity.Transcript != "" {
		embed.Description = activity.Transcript
	}

	if _, err := d.session.ChannelMessageSendEmbed(d.channelID, embed); err != nil {
		d.log.Warnw("discord: delivery failed", "error", err)
	}
}

// Close releases the underlying Discord session.
func (d *Discord) Close() error {
	return d.session.Close()
}
