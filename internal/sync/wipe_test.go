package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/anshulchahar/gita"
)

func seeded(t *testing.T) *fakeStore {
	t.Helper()
	store := newFakeStore()
	if _, err := NewSynchronizer(store, &fakeTokens{}, Options{}).Sync(context.Background(), gita.DefaultJourneys(), []*gita.Document{authored(t, 1)}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store.calls = nil
	return store
}

func TestWipe_DefaultOrderKeepsJourneys(t *testing.T) {
	store := seeded(t)
	sum, err := NewWiper(store, &fakeTokens{}, Options{}).Wipe(context.Background(), nil)
	if err != nil {
		t.Fatalf("Wipe() error: %v", err)
	}
	if diff := cmp.Diff(WipeOrder, store.collectionRuns()); diff != "" {
		t.Errorf("delete order mismatch (-want +got):\n%s", diff)
	}
	for _, c := range WipeOrder {
		if n := len(store.docs[c]); n != 0 {
			t.Errorf("%s still has %d documents", c, n)
		}
	}
	if len(store.docs[CollectionJourneys]) != 3 {
		t.Errorf("journeys = %d, want 3 kept", len(store.docs[CollectionJourneys]))
	}
	if sum.Kind != KindWipe || sum.Failed != 0 {
		t.Errorf("summary = %s with %d failures, want wipe with 0", sum.Kind, sum.Failed)
	}
}

func TestWipe_ListFailureContinues(t *testing.T) {
	store := seeded(t)
	store.listErr[CollectionLessons] = true

	sum, err := NewWiper(store, &fakeTokens{}, Options{}).Wipe(context.Background(), []string{CollectionLessons, CollectionSections})
	if err != nil {
		t.Fatalf("Wipe() error: %v", err)
	}
	if sum.Failed != 1 || sum.Failures()[0].StatusCode != 403 {
		t.Errorf("failures = %+v, want one 403", sum.Failures())
	}
	if len(store.docs[CollectionSections]) != 0 {
		t.Error("sections not deleted after lessons list failure")
	}
	if len(store.docs[CollectionLessons]) != 12 {
		t.Errorf("lessons = %d, want 12 untouched", len(store.docs[CollectionLessons]))
	}
}

func TestWipe_AuthErrorStops(t *testing.T) {
	store := seeded(t)
	_, err := NewWiper(store, &fakeTokens{err: errors.New("no token")}, Options{}).Wipe(context.Background(), nil)
	var ae *gita.AuthError
	if !errors.As(err, &ae) {
		t.Fatalf("Wipe() error = %v, want *AuthError", err)
	}
	if len(store.calls) != 0 {
		t.Errorf("store calls = %d, want 0", len(store.calls))
	}
}
