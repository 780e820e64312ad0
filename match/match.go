// Package match implements the channel provisioning flow: request validation,
// category resolution, channel name derivation, permission overwrite
// construction, invite issuance, and scheduling of the deferred cleanup.
package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/qparty/matchbot/discord"
	"github.com/qparty/matchbot/telemetry"
)

const (
	// MaxMembers caps how many member ids a single request may carry.
	MaxMembers = 20

	defaultGame      = "match"
	defaultPartySize = 5
)

// Validation and platform error sentinels. The messages are part of the API
// contract and surface verbatim in error responses.
var (
	ErrNoMembers      = errors.New("member_ids must be a non-empty array")
	ErrTooManyMembers = errors.New("Too many member_ids")
	ErrGuildNotFound  = errors.New("Guild not found")
)

// Request is the provisioning request body. Game and PartySize are optional
// and fall back to defaults. A non-positive PartySize (including an explicit
// zero) takes the default rather than becoming an unlimited-use invite.
type Request struct {
	MemberIDs []string `json:"member_ids"`
	Game      string   `json:"game"`
	PartySize int      `json:"party_size"`
}

// Validate checks the request shape. It does not mutate the request.
func (r *Request) Validate() error {
	if len(r.MemberIDs) == 0 {
		return ErrNoMembers
	}
	if len(r.MemberIDs) > MaxMembers {
		return ErrTooManyMembers
	}
	return nil
}

// applyDefaults fills in the optional fields.
func (r *Request) applyDefaults() {
	if r.Game == "" {
		r.Game = defaultGame
	}
	if r.PartySize <= 0 {
		r.PartySize = defaultPartySize
	}
}

// Result is returned to the HTTP caller on success.
type Result struct {
	InviteURL string `json:"invite_url"`
	ChannelID string `json:"channel_id"`
	GuildID   string `json:"guild_id"`
}

// Provisioner runs the provisioning flow against the platform and hands the
// created channel to the cleanup scheduler.
type Provisioner struct {
	api        discord.API
	scheduler  *Scheduler
	inviteTTL  time.Duration
	channelTTL time.Duration

	now func() time.Time // injectable for deterministic names in tests
}

// NewProvisioner wires the provisioning flow. The scheduler may be shared with
// other components; the provisioner only ever inserts into it.
func NewProvisioner(api discord.API, scheduler *Scheduler, inviteTTL, channelTTL time.Duration) *Provisioner {
	return &Provisioner{
		api:        api,
		scheduler:  scheduler,
		inviteTTL:  inviteTTL,
		channelTTL: channelTTL,
		now:        time.Now,
	}
}

// Provision executes the five provisioning stages strictly in order: fetch
// guild, resolve category, create channel, create invite, schedule cleanup.
// The request must already be validated. If invite creation fails the channel
// is not rolled back and no cleanup is scheduled.
func (p *Provisioner) Provision(ctx context.Context, req Request) (*Result, error) {
	req.applyDefaults()

	ctx, span := telemetry.StartSpan(ctx, "match", "provision")
	defer span.End()

	var result *Result
	var err error
	telemetry.TimeFunc(telemetry.ProvisionDuration, func() {
		result, err = p.provision(ctx, req)
	})
	if err != nil {
		telemetry.IncProvisionFailures()
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetSpanSuccess(span)
	return result, nil
}

func (p *Provisioner) provision(ctx context.Context, req Request) (*Result, error) {
	guild, err := p.api.Guild(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGuildNotFound, err)
	}

	channels, err := p.api.Channels(ctx)
	if err != nil {
		return nil, err
	}
	category := FindCategory(channels, req.Game)

	now := p.now()
	params := discord.CreateChannelParams{
		Name:       ChannelName(req.Game, now),
		Type:       discord.ChannelTypeText,
		Topic:      fmt.Sprintf("Match channel for %s created %s", req.Game, now.UTC().Format(time.RFC3339)),
		Overwrites: BuildOverwrites(guild.ID, req.MemberIDs),
	}
	if category != nil {
		params.ParentID = category.ID
	}

	channel, err := p.api.CreateChannel(ctx, params)
	if err != nil {
		return nil, err
	}
	telemetry.IncChannelsCreated()

	invite, err := p.api.CreateInvite(ctx, channel.ID, int(p.inviteTTL.Seconds()), req.PartySize)
	if err != nil {
		// Known limitation: the already-created channel is orphaned here,
		// with no cleanup scheduled.
		return nil, err
	}
	telemetry.IncInvitesIssued()

	p.scheduler.Schedule(channel.ID, p.channelTTL)

	slog.Info("channel provisioned",
		slog.String("channel", channel.ID),
		slog.String("name", channel.Name),
		slog.String("game", req.Game),
		slog.Int("members", len(req.MemberIDs)))

	return &Result{
		InviteURL: discord.InviteURL(invite.Code),
		ChannelID: channel.ID,
		GuildID:   guild.ID,
	}, nil
}

var whitespace = regexp.MustCompile(`\s+`)

// ChannelName derives the channel name from the game and a creation timestamp:
// match-<game lowercased, whitespace runs collapsed to hyphens>-<last 6 digits
// of the epoch-millisecond timestamp>. Two requests for the same game within
// the same millisecond could collide; that is accepted.
func ChannelName(game string, now time.Time) string {
	slug := whitespace.ReplaceAllString(strings.ToLower(game), "-")
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	return fmt.Sprintf("match-%s-%s", slug, ms[len(ms)-6:])
}

// FindCategory returns the first category whose name matches the game,
// case-insensitively, or nil when none does. Absence is not an error.
func FindCategory(channels []*discord.Channel, game string) *discord.Channel {
	want := strings.ToLower(game)
	for _, ch := range channels {
		if ch.Type == discord.ChannelTypeCategory && strings.ToLower(ch.Name) == want {
			return ch
		}
	}
	return nil
}

// BuildOverwrites constructs the access rules for a private match channel:
// the @everyone role (whose id equals the guild id) is denied view, then each
// member id is allowed view/send/connect, in submitted order.
func BuildOverwrites(guildID string, memberIDs []string) []discord.PermissionOverwrite {
	overwrites := make([]discord.PermissionOverwrite, 0, len(memberIDs)+1)
	overwrites = append(overwrites, discord.PermissionOverwrite{
		ID:   guildID,
		Type: discord.OverwriteTypeRole,
		Deny: discord.PermissionViewChannel,
	})
	for _, id := range memberIDs {
		overwrites = append(overwrites, discord.PermissionOverwrite{
			ID:    id,
			Type:  discord.OverwriteTypeMember,
			Allow: discord.PermissionViewChannel | discord.PermissionSendMessages | discord.PermissionConnect,
		})
	}
	return overwrites
}
