package match

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/qparty/matchbot/discord"
	"github.com/qparty/matchbot/telemetry"
)

// CleanupReason is recorded in the guild audit log when a channel expires.
const CleanupReason = "Auto cleanup - match finished"

// deleteTimeout bounds the platform call made when a cleanup timer fires.
const deleteTimeout = 30 * time.Second

// Scheduler owns the pending-deletion registry: at most one pending deletion
// per channel id. Scheduling again for the same id cancels and replaces the
// prior timer. Entries are removed once the deletion fires, whether or not it
// succeeds; failures are logged and swallowed since the originating request
// has long since completed. The registry is in-memory only, so pending
// deletions are lost on restart.
type Scheduler struct {
	api discord.API

	mu     sync.Mutex
	timers map[string]*pendingDeletion
}

// pendingDeletion is the registry entry for one scheduled channel deletion.
// The timer field is only written and read under the scheduler mutex; the
// firing callback identifies itself by the entry pointer, never by the timer
// handle, so no timer handle crosses goroutines unsynchronized.
type pendingDeletion struct {
	timer *time.Timer
}

// NewScheduler creates an empty scheduler backed by the given platform client.
func NewScheduler(api discord.API) *Scheduler {
	return &Scheduler{
		api:    api,
		timers: make(map[string]*pendingDeletion),
	}
}

// Schedule registers a deferred deletion for the channel. A no-op when the
// channel id is empty. Replaces any pending deletion for the same id.
func (s *Scheduler) Schedule(channelID string, ttl time.Duration) {
	if channelID == "" {
		return
	}

	s.mu.Lock()
	if e, ok := s.timers[channelID]; ok {
		e.timer.Stop()
		slog.Debug("superseding pending cleanup", slog.String("channel", channelID))
	}
	entry := &pendingDeletion{}
	entry.timer = time.AfterFunc(ttl, func() { s.fire(channelID, entry) })
	s.timers[channelID] = entry
	pending := len(s.timers)
	s.mu.Unlock()

	telemetry.SetPendingCleanups(pending)
	slog.Info("cleanup scheduled", slog.String("channel", channelID), slog.Duration("ttl", ttl))
}

// Cancel drops the pending deletion for the channel, if any.
func (s *Scheduler) Cancel(channelID string) {
	s.mu.Lock()
	if e, ok := s.timers[channelID]; ok {
		e.timer.Stop()
		delete(s.timers, channelID)
	}
	pending := len(s.timers)
	s.mu.Unlock()
	telemetry.SetPendingCleanups(pending)
}

// Pending returns the number of channels with a deletion scheduled.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// fire runs when a timer elapses: delete the channel, then drop the registry
// entry regardless of outcome. The entry is only removed if it still belongs
// to this firing, so a superseding Schedule racing with the firing is not
// clobbered.
func (s *Scheduler) fire(channelID string, entry *pendingDeletion) {
	ctx, cancel := context.WithTimeout(context.Background(), deleteTimeout)
	defer cancel()

	if err := s.api.DeleteChannel(ctx, channelID, CleanupReason); err != nil {
		telemetry.IncCleanupFailures()
		slog.Error("failed to delete channel", slog.String("channel", channelID), slog.Any("err", err))
	} else {
		telemetry.IncChannelsDeleted()
		slog.Info("deleted channel", slog.String("channel", channelID))
	}

	s.mu.Lock()
	if cur, ok := s.timers[channelID]; ok && cur == entry {
		delete(s.timers, channelID)
	}
	pending := len(s.timers)
	s.mu.Unlock()
	telemetry.SetPendingCleanups(pending)
}
