package sync

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/anshulchahar/gita"
	"github.com/anshulchahar/gita/internal/firestore"
)

type call struct {
	collection string
	id         string
}

// fakeStore mimics a field-merging document store in memory.
type fakeStore struct {
	docs  map[string]map[string]map[string]any
	calls []call
	fail  map[string]bool // "collection/id"
	// listErr fails List for the named collection.
	listErr map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: map[string]map[string]map[string]any{}, fail: map[string]bool{}, listErr: map[string]bool{}}
}

func (f *fakeStore) Upsert(_ context.Context, token, collection, id string, fields map[string]any) error {
	f.calls = append(f.calls, call{collection, id})
	if token == "" {
		return errors.New("missing token")
	}
	if f.fail[collection+"/"+id] {
		return &gita.SyncError{
			Operation:  "upsert",
			Collection: collection,
			DocumentID: id,
			StatusCode: 500,
			Err:        errors.New("HTTP 500: boom"),
		}
	}
	if f.docs[collection] == nil {
		f.docs[collection] = map[string]map[string]any{}
	}
	doc := f.docs[collection][id]
	if doc == nil {
		doc = map[string]any{}
		f.docs[collection][id] = doc
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

func (f *fakeStore) List(_ context.Context, _, collection string) ([]firestore.Document, error) {
	if f.listErr[collection] {
		return nil, &gita.SyncError{Operation: "list", Collection: collection, StatusCode: 403, Err: errors.New("HTTP 403: denied")}
	}
	ids := make([]string, 0, len(f.docs[collection]))
	for id := range f.docs[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]firestore.Document, 0, len(ids))
	for _, id := range ids {
		out = append(out, firestore.Document{Name: fmt.Sprintf("projects/p/databases/(default)/documents/%s/%s", collection, id)})
	}
	return out, nil
}

func (f *fakeStore) Delete(_ context.Context, _, collection, id string) error {
	f.calls = append(f.calls, call{collection, id})
	if f.fail[collection+"/"+id] {
		return &gita.SyncError{Operation: "delete", Collection: collection, DocumentID: id, StatusCode: 500, Err: errors.New("HTTP 500")}
	}
	delete(f.docs[collection], id)
	return nil
}

// collectionRuns collapses consecutive calls to the same collection.
func (f *fakeStore) collectionRuns() []string {
	var out []string
	for _, c := range f.calls {
		if len(out) == 0 || out[len(out)-1] != c.collection {
			out = append(out, c.collection)
		}
	}
	return out
}

type fakeTokens struct {
	err   error
	calls int
}

func (f *fakeTokens) Token(context.Context) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "tok", nil
}

type fakeRecorder struct {
	got []*Summary
}

func (f *fakeRecorder) RecordSummary(_ context.Context, s *Summary) error {
	f.got = append(f.got, s)
	return nil
}

func generated(t interface{ Fatalf(string, ...any) }, n int) *gita.Document {
	doc, err := gita.GenerateUnit(gita.UnitSpec{
		Number:     n,
		Name:       fmt.Sprintf("Unit %d", n),
		NameHi:     fmt.Sprintf("इकाई %d", n),
		Theme:      "Duty",
		Difficulty: "beginner",
		Shlokas:    40,
	})
	if err != nil {
		t.Fatalf("GenerateUnit(%d): %v", n, err)
	}
	return doc
}

// authored returns a generated unit whose questions are all marked authored.
func authored(t interface{ Fatalf(string, ...any) }, n int) *gita.Document {
	doc := generated(t, n)
	for i := range doc.Questions {
		doc.Questions[i].Status = gita.StatusAuthored
	}
	return doc
}
