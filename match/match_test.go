package match

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/qparty/matchbot/discord"
	"github.com/qparty/matchbot/testutil"
)

func newTestProvisioner(api *testutil.FakeAPI) *Provisioner {
	scheduler := NewScheduler(api)
	p := NewProvisioner(api, scheduler, 600*time.Second, time.Hour)
	p.now = func() time.Time { return time.UnixMilli(1714000123456) }
	return p
}

func TestRequestValidate(t *testing.T) {
	ids := func(n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = fmt.Sprintf("%d", i)
		}
		return out
	}

	tests := []struct {
		name    string
		members []string
		wantErr error
	}{
		{"nil members", nil, ErrNoMembers},
		{"empty members", []string{}, ErrNoMembers},
		{"one member", ids(1), nil},
		{"twenty members", ids(20), nil},
		{"twenty-one members", ids(21), ErrTooManyMembers},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := Request{MemberIDs: tt.members}
			if err := req.Validate(); !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestChannelName(t *testing.T) {
	now := time.UnixMilli(1714000123456)
	tests := []struct {
		game string
		want string
	}{
		{"Valorant", "match-valorant-123456"},
		{"match", "match-match-123456"},
		{"Rocket League", "match-rocket-league-123456"},
		{"A  B\tC", "match-a-b-c-123456"},
	}
	for _, tt := range tests {
		t.Run(tt.game, func(t *testing.T) {
			if got := ChannelName(tt.game, now); got != tt.want {
				t.Errorf("ChannelName(%q) = %q, want %q", tt.game, got, tt.want)
			}
		})
	}
}

func TestChannelNameShape(t *testing.T) {
	pattern := regexp.MustCompile(`^match-[a-z-]+-\d{6}$`)
	got := ChannelName("Valorant", time.Now())
	if !pattern.MatchString(got) {
		t.Errorf("channel name %q does not match expected shape", got)
	}
}

func TestFindCategory(t *testing.T) {
	channels := []*discord.Channel{
		{ID: "1", Name: "general", Type: discord.ChannelTypeText},
		{ID: "2", Name: "Valorant", Type: discord.ChannelTypeCategory},
		{ID: "3", Name: "Match", Type: discord.ChannelTypeCategory},
	}

	if got := FindCategory(channels, "valorant"); got == nil || got.ID != "2" {
		t.Errorf("expected category 2, got %+v", got)
	}
	if got := FindCategory(channels, "MATCH"); got == nil || got.ID != "3" {
		t.Errorf("expected category 3 (case-insensitive), got %+v", got)
	}
	if got := FindCategory(channels, "overwatch"); got != nil {
		t.Errorf("expected nil for unknown game, got %+v", got)
	}
	// A text channel with a matching name is not a category
	if got := FindCategory(channels, "general"); got != nil {
		t.Errorf("expected nil for text channel name, got %+v", got)
	}
}

func TestBuildOverwrites(t *testing.T) {
	members := []string{"111", "222", "333"}
	overwrites := BuildOverwrites("guild-1", members)

	if len(overwrites) != 4 {
		t.Fatalf("expected 4 overwrites, got %d", len(overwrites))
	}

	everyone := overwrites[0]
	if everyone.ID != "guild-1" || everyone.Type != discord.OverwriteTypeRole {
		t.Errorf("first overwrite should target the @everyone role: %+v", everyone)
	}
	if everyone.Deny != discord.PermissionViewChannel || everyone.Allow != 0 {
		t.Errorf("everyone overwrite should deny view only: %+v", everyone)
	}

	wantAllow := discord.PermissionViewChannel | discord.PermissionSendMessages | discord.PermissionConnect
	for i, id := range members {
		ow := overwrites[i+1]
		if ow.ID != id || ow.Type != discord.OverwriteTypeMember {
			t.Errorf("overwrite %d should target member %s in order: %+v", i+1, id, ow)
		}
		if ow.Allow != wantAllow || ow.Deny != 0 {
			t.Errorf("member overwrite should allow view/send/connect: %+v", ow)
		}
	}
}

func TestProvisionNestsUnderMatchingCategory(t *testing.T) {
	api := &testutil.FakeAPI{
		ChannelsV: []*discord.Channel{
			{ID: "cat-1", Name: "Valorant", Type: discord.ChannelTypeCategory},
		},
	}
	p := newTestProvisioner(api)

	result, err := p.Provision(context.Background(), Request{MemberIDs: []string{"111", "222"}, Game: "valorant", PartySize: 2})
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}

	if len(api.Created) != 1 {
		t.Fatalf("expected 1 channel created, got %d", len(api.Created))
	}
	created := api.Created[0]
	if created.ParentID != "cat-1" {
		t.Errorf("expected channel nested under cat-1, got parent %q", created.ParentID)
	}
	if created.Type != discord.ChannelTypeText {
		t.Errorf("expected text channel, got type %d", created.Type)
	}
	if created.Name != "match-valorant-123456" {
		t.Errorf("unexpected channel name %q", created.Name)
	}

	if len(api.Invites) != 1 {
		t.Fatalf("expected 1 invite, got %d", len(api.Invites))
	}
	inv := api.Invites[0]
	if inv.MaxAge != 600 || inv.MaxUses != 2 {
		t.Errorf("expected invite maxAge=600 maxUses=2, got %+v", inv)
	}

	if result.InviteURL != "https://discord.gg/testcode" {
		t.Errorf("unexpected invite url %q", result.InviteURL)
	}
	if result.ChannelID == "" || result.GuildID != "guild-1" {
		t.Errorf("unexpected result %+v", result)
	}

	if p.scheduler.Pending() != 1 {
		t.Errorf("expected 1 pending cleanup, got %d", p.scheduler.Pending())
	}
}

func TestProvisionWithoutCategory(t *testing.T) {
	api := &testutil.FakeAPI{}
	p := newTestProvisioner(api)

	_, err := p.Provision(context.Background(), Request{MemberIDs: []string{"111"}})
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if api.Created[0].ParentID != "" {
		t.Errorf("expected no parent, got %q", api.Created[0].ParentID)
	}
}

func TestProvisionDefaults(t *testing.T) {
	api := &testutil.FakeAPI{}
	p := newTestProvisioner(api)

	_, err := p.Provision(context.Background(), Request{MemberIDs: []string{"111"}})
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if api.Created[0].Name != "match-match-123456" {
		t.Errorf("expected default game name, got %q", api.Created[0].Name)
	}
	if api.Invites[0].MaxUses != 5 {
		t.Errorf("expected default party size 5, got %d", api.Invites[0].MaxUses)
	}
}

func TestProvisionNonPositivePartySizeTakesDefault(t *testing.T) {
	for _, size := range []int{0, -3} {
		api := &testutil.FakeAPI{}
		p := newTestProvisioner(api)

		_, err := p.Provision(context.Background(), Request{MemberIDs: []string{"111"}, PartySize: size})
		if err != nil {
			t.Fatalf("Provision(party_size=%d): %v", size, err)
		}
		// Never issue an unlimited-use invite (maxUses=0).
		if api.Invites[0].MaxUses != 5 {
			t.Errorf("party_size=%d: expected max uses 5, got %d", size, api.Invites[0].MaxUses)
		}
	}
}

func TestProvisionTopic(t *testing.T) {
	api := &testutil.FakeAPI{}
	p := newTestProvisioner(api)

	_, err := p.Provision(context.Background(), Request{MemberIDs: []string{"111"}, Game: "Valorant"})
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	want := "Match channel for Valorant created " + time.UnixMilli(1714000123456).UTC().Format(time.RFC3339)
	if got := api.Created[0].Topic; got != want {
		t.Errorf("topic = %q, want %q", got, want)
	}
}

func TestProvisionGuildFailure(t *testing.T) {
	api := &testutil.FakeAPI{GuildErr: errors.New("boom")}
	p := newTestProvisioner(api)

	_, err := p.Provision(context.Background(), Request{MemberIDs: []string{"111"}})
	if !errors.Is(err, ErrGuildNotFound) {
		t.Fatalf("expected ErrGuildNotFound, got %v", err)
	}
	if len(api.Created) != 0 {
		t.Errorf("no channel should be created when guild fetch fails")
	}
}

func TestProvisionInviteFailureLeavesChannelUnscheduled(t *testing.T) {
	api := &testutil.FakeAPI{CreateInviteErr: errors.New("rate limited")}
	p := newTestProvisioner(api)

	_, err := p.Provision(context.Background(), Request{MemberIDs: []string{"111"}})
	if err == nil {
		t.Fatal("expected error from invite creation")
	}
	if len(api.Created) != 1 {
		t.Fatalf("channel creation should have happened, got %d", len(api.Created))
	}
	// Known limitation: the channel is orphaned, no cleanup is scheduled.
	if p.scheduler.Pending() != 0 {
		t.Errorf("no cleanup should be scheduled when invite fails, got %d", p.scheduler.Pending())
	}
}
