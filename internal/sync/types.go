package sync

import (
	"context"
	"time"

	"github.com/anshulchahar/gita/internal/firestore"
)

// Remote collection names.
const (
	CollectionJourneys  = "journeys"
	CollectionUnits     = "units"
	CollectionChapters  = "chapters"
	CollectionSections  = "sections"
	CollectionLessons   = "lessons"
	CollectionQuestions = "questions"
)

// WipeOrder deletes children before their parents.
var WipeOrder = []string{
	CollectionQuestions,
	CollectionLessons,
	CollectionChapters,
	CollectionSections,
	CollectionUnits,
}

// DocumentStore is the create-or-replace boundary of the remote store.
type DocumentStore interface {
	Upsert(ctx context.Context, token, collection, id string, fields map[string]any) error
}

// RemoteStore adds the listing and deletion used by Wiper.
type RemoteStore interface {
	List(ctx context.Context, token, collection string) ([]firestore.Document, error)
	Delete(ctx context.Context, token, collection, id string) error
}

// TokenSource supplies a bearer token for outbound requests.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Recorder persists a finished run.
type Recorder interface {
	RecordSummary(ctx context.Context, s *Summary) error
}

// Outcome of a single document operation.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Run kinds.
const (
	KindSync = "sync"
	KindWipe = "wipe"
)

// Write is one planned document write.
type Write struct {
	Collection string         `json:"collection"`
	ID         string         `json:"id"`
	Fields     map[string]any `json:"fields"`
}

// Result is the outcome of one document operation.
type Result struct {
	Collection string  `json:"collection"`
	ID         string  `json:"id"`
	Outcome    Outcome `json:"outcome"`
	Reason     string  `json:"reason,omitempty"`
	StatusCode int     `json:"status_code,omitempty"`
}

// Summary aggregates the results of one run.
type Summary struct {
	RunID      string    `json:"run_id"`
	Kind       string    `json:"kind"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Units      []int     `json:"units,omitempty"`
	// Skipped lists requested units that had no content file.
	Skipped   []int    `json:"skipped,omitempty"`
	Results   []Result `json:"results"`
	Succeeded int      `json:"succeeded"`
	Failed    int      `json:"failed"`
	// Aborted holds the fatal error that stopped the run early, if any.
	Aborted string `json:"aborted,omitempty"`
}

func (s *Summary) add(r Result) {
	s.Results = append(s.Results, r)
	if r.Outcome == OutcomeSuccess {
		s.Succeeded++
	} else {
		s.Failed++
	}
}

// Failures returns the failed results.
func (s *Summary) Failures() []Result {
	var out []Result
	for _, r := range s.Results {
		if r.Outcome == OutcomeFailure {
			out = append(out, r)
		}
	}
	return out
}

// CollectionCount is the per-collection tally of a run.
type CollectionCount struct {
	Collection string `json:"collection"`
	Succeeded  int    `json:"succeeded"`
	Failed     int    `json:"failed"`
}

// ByCollection tallies results per collection in first-seen order.
func (s *Summary) ByCollection() []CollectionCount {
	var out []CollectionCount
	idx := map[string]int{}
	for _, r := range s.Results {
		i, ok := idx[r.Collection]
		if !ok {
			i = len(out)
			idx[r.Collection] = i
			out = append(out, CollectionCount{Collection: r.Collection})
		}
		if r.Outcome == OutcomeSuccess {
			out[i].Succeeded++
		} else {
			out[i].Failed++
		}
	}
	return out
}
