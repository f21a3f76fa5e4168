package gita_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/anshulchahar/gita"
)

func TestJourneyIDForUnit(t *testing.T) {
	tests := []struct {
		unit int
		want string
	}{
		{1, "journey_1"},
		{6, "journey_1"},
		{7, "journey_2"},
		{12, "journey_2"},
		{13, "journey_3"},
		{18, "journey_3"},
		{0, "journey_1"},
	}
	for _, tt := range tests {
		if got := gita.JourneyIDForUnit(tt.unit); got != tt.want {
			t.Errorf("JourneyIDForUnit(%d) = %q, want %q", tt.unit, got, tt.want)
		}
	}
}

func TestCanonicalIDs(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{gita.UnitID(3), "unit_3"},
		{gita.ChapterID(3), "chapter_3"},
		{gita.SectionID(3, 2), "section_3_2"},
		{gita.LessonID(3, 2, 1), "lesson_3_2_1"},
		{gita.QuestionID(3, 2, 1, gita.QuestionStoryCard, 2), "q_3_2_1_storyCard_2"},
		{gita.UnitFileName(12), "unit12.json"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestParseShlokaRange(t *testing.T) {
	tests := []struct {
		in      string
		want    gita.ShlokaRange
		wantErr bool
	}{
		{"1-43", gita.ShlokaRange{Start: 1, End: 43}, false},
		{" 12 - 22 ", gita.ShlokaRange{Start: 12, End: 22}, false},
		{"7", gita.ShlokaRange{Start: 7, End: 7}, false},
		{"", gita.ShlokaRange{}, true},
		{"0-4", gita.ShlokaRange{}, true},
		{"9-3", gita.ShlokaRange{}, true},
		{"a-b", gita.ShlokaRange{}, true},
	}
	for _, tt := range tests {
		got, err := gita.ParseShlokaRange(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseShlokaRange(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseShlokaRange(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestPartitionShlokas(t *testing.T) {
	want := []gita.ShlokaRange{
		{Start: 1, End: 11},
		{Start: 12, End: 22},
		{Start: 23, End: 33},
		{Start: 34, End: 47},
	}
	if diff := cmp.Diff(want, gita.PartitionShlokas(47, 4)); diff != "" {
		t.Errorf("PartitionShlokas(47, 4) mismatch (-want +got):\n%s", diff)
	}

	total := 0
	for _, r := range gita.PartitionShlokas(72, 4) {
		total += r.Len()
	}
	if total != 72 {
		t.Errorf("partition of 72 covers %d verses", total)
	}
	if gita.PartitionShlokas(10, 0) != nil {
		t.Error("PartitionShlokas(10, 0) should be nil")
	}
	if got := gita.PartitionShlokas(3, 4); got != nil {
		t.Errorf("PartitionShlokas(3, 4) = %v, want nil", got)
	}
	if diff := cmp.Diff([]gita.ShlokaRange{{Start: 1, End: 1}, {Start: 2, End: 2}, {Start: 3, End: 3}, {Start: 4, End: 4}}, gita.PartitionShlokas(4, 4)); diff != "" {
		t.Errorf("PartitionShlokas(4, 4) mismatch (-want +got):\n%s", diff)
	}
}

func TestNextLessonID(t *testing.T) {
	doc := newUnit(t)
	id, err := doc.NextLessonID("section_1_3")
	if err != nil {
		t.Fatalf("NextLessonID() error: %v", err)
	}
	if id != "lesson_1_3_4" {
		t.Errorf("NextLessonID() = %q, want lesson_1_3_4", id)
	}
	if _, err := doc.NextLessonID("section_1_9"); err == nil {
		t.Error("NextLessonID(unknown) = nil error")
	}
}

func TestUnitNumberFromPath(t *testing.T) {
	tests := map[string]int{
		"content/unit7.json":    7,
		"/tmp/unit18.json":      18,
		"unit.json":             0,
		"unit3.json.tmp":        0,
		"content/journeys.json": 0,
	}
	for path, want := range tests {
		if got := gita.UnitNumberFromPath(path); got != want {
			t.Errorf("UnitNumberFromPath(%q) = %d, want %d", path, got, want)
		}
	}
}
