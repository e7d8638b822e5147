package notify

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// DiscordNotifier posts match summaries to a single text channel. The
// session never opens a gateway connection; plain REST calls are all the
// notifier needs.
type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscordNotifier(token, channelID string) (*DiscordNotifier, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
	}, nil
}

func (n *DiscordNotifier) Post(_ context.Context, text string) error {
	_, err := n.session.ChannelMessageSend(n.channelID, text)
	return err
}
