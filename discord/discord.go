// Package discord contains a minimal client for the Discord operations the
// service needs: guild/channel lookup, private channel creation with
// permission overwrites, invite issuance, and channel deletion with an
// audit-log reason. The API interface exists so the provisioning flow and the
// cleanup scheduler can be exercised against a fake in tests.
package discord

import "context"

// ChannelType mirrors the subset of Discord channel types the service cares about.
type ChannelType int

const (
	ChannelTypeText     ChannelType = 0
	ChannelTypeCategory ChannelType = 4
)

// OverwriteType distinguishes role overwrites from member overwrites.
type OverwriteType int

const (
	OverwriteTypeRole   OverwriteType = 0
	OverwriteTypeMember OverwriteType = 1
)

// Permission bits used by the provisioning flow.
const (
	PermissionViewChannel  int64 = 1 << 10
	PermissionSendMessages int64 = 1 << 11
	PermissionConnect      int64 = 1 << 20
)

// Guild is the target server.
type Guild struct {
	ID   string
	Name string
}

// Channel is a channel or category on the guild.
type Channel struct {
	ID       string
	Name     string
	Type     ChannelType
	ParentID string
	Topic    string
}

// PermissionOverwrite is a per-principal allow/deny rule attached to a channel.
type PermissionOverwrite struct {
	ID    string
	Type  OverwriteType
	Allow int64
	Deny  int64
}

// CreateChannelParams carries everything needed to create a guild text channel.
type CreateChannelParams struct {
	Name       string
	Type       ChannelType
	Topic      string
	ParentID   string
	Overwrites []PermissionOverwrite
}

// Invite is a use- and age-limited entry token for a channel.
type Invite struct {
	Code    string
	MaxAge  int
	MaxUses int
}

// API is the platform surface consumed by the provisioning flow and the
// cleanup scheduler. The production implementation is Client (discordgo);
// tests use testutil.FakeAPI.
type API interface {
	// Guild fetches the configured guild.
	Guild(ctx context.Context) (*Guild, error)
	// Channels fetches all channels and categories on the guild.
	Channels(ctx context.Context) ([]*Channel, error)
	// CreateChannel creates a text channel on the guild.
	CreateChannel(ctx context.Context, params CreateChannelParams) (*Channel, error)
	// CreateInvite creates a unique invite for the channel with the given
	// maximum age (seconds) and use count.
	CreateInvite(ctx context.Context, channelID string, maxAge, maxUses int) (*Invite, error)
	// DeleteChannel deletes the channel, recording reason in the audit log.
	DeleteChannel(ctx context.Context, channelID, reason string) error
}

// InviteURL builds the user-facing URL for an invite code.
func InviteURL(code string) string {
	return "https://discord.gg/" + code
}
