package notify

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brandpulse/internal/domain"
)

func newTestEmitter(cfg Config, sinks ...Sink) (*Emitter, *time.Time) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	e := NewEmitter(cfg, logger, sinks...)
	now := time.Date(2025, 10, 14, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return now }
	return e, &now
}

func TestEmitter_PushKeepsMultipleActive(t *testing.T) {
	var delivered []domain.Notification
	e, _ := newTestEmitter(Config{TTL: 4 * time.Second}, SinkFunc(func(n domain.Notification) {
		delivered = append(delivered, n)
	}))

	first := e.Push("Article Saved", "added", domain.SeveritySuccess)
	second := e.Push("Save Failed", "try again", domain.SeverityError)

	active := e.Active()
	require.Len(t, active, 2)
	assert.Equal(t, first.ID, active[0].ID)
	assert.Equal(t, second.ID, active[1].ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt.Add(4*time.Second), first.ExpiresAt)
	assert.Equal(t, []domain.Notification{first, second}, delivered)
}

func TestEmitter_DismissIndependently(t *testing.T) {
	e, _ := newTestEmitter(Config{})

	a := e.Push("A", "", domain.SeverityInfo)
	b := e.Push("B", "", domain.SeverityInfo)
	c := e.Push("C", "", domain.SeverityInfo)

	assert.True(t, e.Dismiss(b.ID))
	assert.False(t, e.Dismiss(b.ID))

	active := e.Active()
	require.Len(t, active, 2)
	assert.Equal(t, a.ID, active[0].ID)
	assert.Equal(t, c.ID, active[1].ID)

	assert.Equal(t, 2, e.DismissAll())
	assert.Empty(t, e.Active())
}

func TestEmitter_SweepExpired(t *testing.T) {
	e, now := newTestEmitter(Config{TTL: 4 * time.Second})

	old := e.Push("old", "", domain.SeverityInfo)
	*now = now.Add(2 * time.Second)
	fresh := e.Push("fresh", "", domain.SeverityInfo)

	assert.Equal(t, 0, e.Sweep(old.ExpiresAt.Add(-time.Millisecond)))
	assert.Equal(t, 1, e.Sweep(old.ExpiresAt))

	active := e.Active()
	require.Len(t, active, 1)
	assert.Equal(t, fresh.ID, active[0].ID)
}

func TestEmitter_ZeroTTLNeverExpires(t *testing.T) {
	e, now := newTestEmitter(Config{})

	e.Push("sticky", "", domain.SeverityError)

	assert.Equal(t, 0, e.Sweep(now.Add(24*time.Hour)))
	assert.Len(t, e.Active(), 1)
}

func TestEmitter_MaxActiveDropsOldest(t *testing.T) {
	e, _ := newTestEmitter(Config{MaxActive: 2})

	e.Push("1", "", domain.SeverityInfo)
	e.Push("2", "", domain.SeverityInfo)
	e.Push("3", "", domain.SeverityInfo)

	active := e.Active()
	require.Len(t, active, 2)
	assert.Equal(t, "2", active[0].Title)
	assert.Equal(t, "3", active[1].Title)
}

func TestEmitter_AddSink(t *testing.T) {
	e, _ := newTestEmitter(Config{})
	e.Notify("before", "", domain.SeverityInfo)

	var got []string
	e.AddSink(SinkFunc(func(n domain.Notification) { got = append(got, n.Title) }))
	e.Notify("after", "", domain.SeverityInfo)

	assert.Equal(t, []string{"after"}, got)
}
