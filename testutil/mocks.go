// Package testutil provides an in-memory fake of the Discord API surface for
// handler and provisioner tests. It records every call so tests can assert
// that auth/validation failures never reach the platform.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/qparty/matchbot/discord"
)

// FakeAPI implements discord.API. Zero value is usable: it serves a default
// guild and an empty channel list, creates channels/invites with sequential
// ids, and deletes successfully. Set the Err fields to force failures.
type FakeAPI struct {
	mu sync.Mutex

	GuildID   string
	ChannelsV []*discord.Channel

	GuildErr         error
	ChannelsErr      error
	CreateChannelErr error
	CreateInviteErr  error
	DeleteErr        error

	// Call log
	Calls          []string
	Created        []discord.CreateChannelParams
	Invites        []CreatedInvite
	Deleted        []DeletedChannel
	nextChannelSeq int
}

// CreatedInvite records one CreateInvite call.
type CreatedInvite struct {
	ChannelID string
	MaxAge    int
	MaxUses   int
}

// DeletedChannel records one DeleteChannel call.
type DeletedChannel struct {
	ChannelID string
	Reason    string
}

func (f *FakeAPI) record(call string) {
	f.Calls = append(f.Calls, call)
}

func (f *FakeAPI) guildID() string {
	if f.GuildID == "" {
		return "guild-1"
	}
	return f.GuildID
}

func (f *FakeAPI) Guild(ctx context.Context) (*discord.Guild, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Guild")
	if f.GuildErr != nil {
		return nil, f.GuildErr
	}
	return &discord.Guild{ID: f.guildID(), Name: "Test Guild"}, nil
}

func (f *FakeAPI) Channels(ctx context.Context) ([]*discord.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Channels")
	if f.ChannelsErr != nil {
		return nil, f.ChannelsErr
	}
	return f.ChannelsV, nil
}

func (f *FakeAPI) CreateChannel(ctx context.Context, params discord.CreateChannelParams) (*discord.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateChannel")
	if f.CreateChannelErr != nil {
		return nil, f.CreateChannelErr
	}
	f.nextChannelSeq++
	f.Created = append(f.Created, params)
	return &discord.Channel{
		ID:       fmt.Sprintf("chan-%d", f.nextChannelSeq),
		Name:     params.Name,
		Type:     params.Type,
		ParentID: params.ParentID,
		Topic:    params.Topic,
	}, nil
}

func (f *FakeAPI) CreateInvite(ctx context.Context, channelID string, maxAge, maxUses int) (*discord.Invite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateInvite")
	if f.CreateInviteErr != nil {
		return nil, f.CreateInviteErr
	}
	f.Invites = append(f.Invites, CreatedInvite{ChannelID: channelID, MaxAge: maxAge, MaxUses: maxUses})
	return &discord.Invite{Code: "testcode", MaxAge: maxAge, MaxUses: maxUses}, nil
}

func (f *FakeAPI) DeleteChannel(ctx context.Context, channelID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteChannel")
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.Deleted = append(f.Deleted, DeletedChannel{ChannelID: channelID, Reason: reason})
	return nil
}

// CallCount returns the total number of platform calls made.
func (f *FakeAPI) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}

// DeletedChannels returns a copy of the delete-call log.
func (f *FakeAPI) DeletedChannels() []DeletedChannel {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]DeletedChannel, len(f.Deleted))
	copy(out, f.Deleted)
	return out
}
