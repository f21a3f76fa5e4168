package gita_test

import (
	"testing"

	"github.com/anshulchahar/gita"
)

// newUnit generates unit 1 (47 shlokas): 4 sections, 12 lessons, 60 placeholder questions.
func newUnit(t *testing.T) *gita.Document {
	t.Helper()
	doc, err := gita.GenerateUnit(gita.UnitSpec{
		Number:     1,
		Name:       "Arjuna Vishada Yoga",
		NameHi:     "अर्जुन विषाद योग",
		Theme:      "Despair",
		Difficulty: "beginner",
		Shlokas:    47,
	})
	if err != nil {
		t.Fatalf("GenerateUnit() error: %v", err)
	}
	return doc
}

func lessonIDs(doc *gita.Document) []string {
	var ids []string
	for _, l := range doc.LessonsInOrder() {
		ids = append(ids, l.ID)
	}
	return ids
}

func ptr(s string) *string { return &s }

// story returns a minimal valid story card.
func story() gita.StoryCard {
	return gita.StoryCard{Title: "t", Story: "s", KrishnaMessage: "m"}
}
