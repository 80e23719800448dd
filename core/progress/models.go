package progress

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// Kind tells who consumed the content: a learner completing it or an officer delivering it live.
type Kind string

const (
	KindLearner Kind = "learner"
	KindOfficer Kind = "officer"
)

// Partition is the storage unit of completion records.
type Partition struct {
	Kind     Kind
	OwnerID  string
	CourseID string
}

// Record is unique per (Partition, ContentItemID). Once Completed, it stays completed.
type Record struct {
	Kind            Kind         `json:"kind"`
	OwnerID         string       `json:"owner_id"`
	CourseID        string       `json:"course_id"`
	ContentItemID   string       `json:"content_item_id"`
	Completed       bool         `json:"completed"`
	CompletedAt     time.Time    `json:"completed_at"` // UTC
	WatchPercentage null.Float64 `json:"watch_percentage"`
}

func (r Record) Partition() Partition {
	return Partition{Kind: r.Kind, OwnerID: r.OwnerID, CourseID: r.CourseID}
}

// Merge applies an incoming mark on top of an existing record.
// Completion never reverts; a missing watch percentage keeps the previous one.
func (r Record) Merge(incoming Record) Record {
	merged := r
	merged.Completed = r.Completed || incoming.Completed
	merged.CompletedAt = incoming.CompletedAt
	if incoming.WatchPercentage.Valid {
		merged.WatchPercentage = incoming.WatchPercentage
	}
	return merged
}

// Set is the set of completed content item ids of a partition.
type Set map[string]struct{}

func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s Set) Len() int { return len(s) }
