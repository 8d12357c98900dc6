// Package inbox holds the notification collection shown in the bell
// dropdown: read/unread transitions, deletion and the unread counter.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"eventdesk/internal/model"
)

var (
	ErrNotFound        = errors.New("notification not found")
	ErrConfirmRequired = errors.New("clearing the inbox requires confirmation")
)

// Feed is the external source that populates the inbox. The store never
// fetches on its own; population is the feed's concern.
type Feed interface {
	Fetch(ctx context.Context) ([]model.Notification, error)
}

type Store struct {
	feed Feed
	log  *zerolog.Logger

	mu            sync.Mutex
	notifications []model.Notification
}

func NewStore(feed Feed, log *zerolog.Logger) *Store {
	return &Store{feed: feed, log: log}
}

// Load replaces the inbox with a fresh pull from the feed.
func (s *Store) Load(ctx context.Context) error {
	notifications, err := s.feed.Fetch(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to fetch notification feed")
		return err
	}
	s.mu.Lock()
	s.notifications = notifications
	s.mu.Unlock()
	s.log.Info().Int("count", len(notifications)).Msg("inbox loaded")
	return nil
}

// Push appends a notification delivered out of band (e.g. from the
// message queue consumer).
func (s *Store) Push(n model.Notification) {
	s.mu.Lock()
	s.notifications = append(s.notifications, n)
	s.mu.Unlock()
}

// All returns the notifications in arrival order.
func (s *Store) All() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Notification(nil), s.notifications...)
}

func (s *Store) MarkRead(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].Lida = true
			return nil
		}
	}
	return ErrNotFound
}

func (s *Store) MarkAllRead() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		s.notifications[i].Lida = true
	}
}

func (s *Store) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// ClearAll empties the inbox; the confirm flag is the yes/no gate shown
// to the user.
func (s *Store) ClearAll(confirm bool) error {
	if !confirm {
		return ErrConfirmRequired
	}
	s.mu.Lock()
	s.notifications = nil
	s.mu.Unlock()
	return nil
}

// UnreadCount derives the badge number; recomputed on every call rather
// than cached, the collection is small.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.notifications {
		if !n.Lida {
			count++
		}
	}
	return count
}

// RelativeTime buckets a timestamp into minutes/hours/days ago, falling
// back to an absolute date past 7 days.
func RelativeTime(ts, now time.Time) string {
	diff := now.Sub(ts)
	switch {
	case diff < time.Minute:
		return "agora"
	case diff < time.Hour:
		return fmt.Sprintf("há %d min", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("há %d h", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("há %d dias", int(diff.Hours()/24))
	default:
		return ts.Format("02/01/2006")
	}
}
