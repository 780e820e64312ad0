package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// Client implements API against a live Discord gateway session via discordgo.
type Client struct {
	session *discordgo.Session
	guildID string
}

// Connect logs the bot into the Discord gateway and waits for the session to
// open. The returned Client is bound to a single guild.
func Connect(token, guildID string) (*Client, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

	session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		slog.Info("bot ready", slog.String("user", r.User.String()))
	})

	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("open gateway: %w", err)
	}
	return &Client{session: session, guildID: guildID}, nil
}

// Close disconnects from the gateway.
func (c *Client) Close() error {
	return c.session.Close()
}

// Connected reports whether the gateway session has completed its handshake.
func (c *Client) Connected() bool {
	return c.session.DataReady
}

func (c *Client) Guild(ctx context.Context) (*Guild, error) {
	g, err := c.session.Guild(c.guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch guild %s: %w", c.guildID, err)
	}
	return &Guild{ID: g.ID, Name: g.Name}, nil
}

func (c *Client) Channels(ctx context.Context) ([]*Channel, error) {
	chans, err := c.session.GuildChannels(c.guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetch channels: %w", err)
	}
	out := make([]*Channel, 0, len(chans))
	for _, ch := range chans {
		out = append(out, &Channel{
			ID:       ch.ID,
			Name:     ch.Name,
			Type:     ChannelType(ch.Type),
			ParentID: ch.ParentID,
			Topic:    ch.Topic,
		})
	}
	return out, nil
}

func (c *Client) CreateChannel(ctx context.Context, params CreateChannelParams) (*Channel, error) {
	overwrites := make([]*discordgo.PermissionOverwrite, 0, len(params.Overwrites))
	for _, ow := range params.Overwrites {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    ow.ID,
			Type:  discordgo.PermissionOverwriteType(ow.Type),
			Allow: ow.Allow,
			Deny:  ow.Deny,
		})
	}
	ch, err := c.session.GuildChannelCreateComplex(c.guildID, discordgo.GuildChannelCreateData{
		Name:                 params.Name,
		Type:                 discordgo.ChannelType(params.Type),
		Topic:                params.Topic,
		ParentID:             params.ParentID,
		PermissionOverwrites: overwrites,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("create channel %q: %w", params.Name, err)
	}
	return &Channel{ID: ch.ID, Name: ch.Name, Type: ChannelType(ch.Type), ParentID: ch.ParentID, Topic: ch.Topic}, nil
}

func (c *Client) CreateInvite(ctx context.Context, channelID string, maxAge, maxUses int) (*Invite, error) {
	inv, err := c.session.ChannelInviteCreate(channelID, discordgo.Invite{
		MaxAge:  maxAge,
		MaxUses: maxUses,
		Unique:  true,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("create invite for channel %s: %w", channelID, err)
	}
	return &Invite{Code: inv.Code, MaxAge: inv.MaxAge, MaxUses: inv.MaxUses}, nil
}

func (c *Client) DeleteChannel(ctx context.Context, channelID, reason string) error {
	_, err := c.session.ChannelDelete(channelID, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	if err != nil {
		return fmt.Errorf("delete channel %s: %w", channelID, err)
	}
	return nil
}
