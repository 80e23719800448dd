package learning

import (
	"context"
	"sync"
	"time"
)

type ChangeKind string

const (
	ContentCompleted    ChangeKind = "content_completed"
	SubmissionRecorded  ChangeKind = "submission_recorded"
	QuizAttemptRecorded ChangeKind = "quiz_attempt_recorded"
	ContentDelivered    ChangeKind = "content_delivered"
)

// Change is published once a write has been stored.
type Change struct {
	Kind      ChangeKind
	CourseID  string
	StudentID string // empty for ContentDelivered
	OfficerID string // ContentDelivered only
	At        time.Time
}

// Subscriber reacts to a Change. Subscribers run synchronously, in subscription order.
type Subscriber func(ctx context.Context, ch Change) error

type notifier struct {
	mu   sync.RWMutex
	subs []Subscriber
}

func (n *notifier) subscribe(sub Subscriber) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs = append(n.subs, sub)
}

// publish runs every subscriber and returns the first error.
func (n *notifier) publish(ctx context.Context, ch Change) error {
	n.mu.RLock()
	subs := append([]Subscriber{}, n.subs...)
	n.mu.RUnlock()

	var firstErr error
	for _, sub := range subs {
		if err := sub(ctx, ch); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
