package gita

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// UnitsPerJourney is the width of the fixed unit→journey partition.
const UnitsPerJourney = 6

// UnitID returns the canonical unit ID for a unit number.
func UnitID(unitNumber int) string { return fmt.Sprintf("unit_%d", unitNumber) }

// ChapterID returns the chapter projection ID for a unit number.
func ChapterID(unitNumber int) string { return fmt.Sprintf("chapter_%d", unitNumber) }

// SectionID returns the canonical section ID.
func SectionID(unitNumber, sectionNumber int) string {
	return fmt.Sprintf("section_%d_%d", unitNumber, sectionNumber)
}

// LessonID returns the canonical lesson ID for a lesson's position within its section.
func LessonID(unitNumber, sectionNumber, lessonNumber int) string {
	return fmt.Sprintf("lesson_%d_%d_%d", unitNumber, sectionNumber, lessonNumber)
}

// QuestionID returns the canonical question ID for generated questions.
func QuestionID(unitNumber, sectionNumber, lessonNumber int, t QuestionType, order int) string {
	return fmt.Sprintf("q_%d_%d_%d_%s_%d", unitNumber, sectionNumber, lessonNumber, t, order)
}

// JourneyIDForUnit maps a unit number onto its journey: 1-6 → journey_1,
// 7-12 → journey_2, and so on.
func JourneyIDForUnit(unitNumber int) string {
	if unitNumber < 1 {
		unitNumber = 1
	}
	return fmt.Sprintf("journey_%d", (unitNumber-1)/UnitsPerJourney+1)
}

// UnitFileName returns the content file name for a unit number.
func UnitFileName(unitNumber int) string { return fmt.Sprintf("unit%d.json", unitNumber) }

// NextLessonID returns the first lesson_<U>_<S>_<n> ID not already used in d.
func (d *Document) NextLessonID(sectionID string) (string, error) {
	sec, ok := d.SectionByID(sectionID)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownSection, sectionID)
	}
	used := make(map[string]bool, len(d.Lessons))
	for _, l := range d.Lessons {
		used[l.ID] = true
	}
	for n := 1; ; n++ {
		id := LessonID(d.Unit.UnitNumber, sec.SectionNumber, n)
		if !used[id] {
			return id, nil
		}
	}
}

// ShlokaRange is an inclusive verse range.
type ShlokaRange struct {
	Start int
	End   int
}

// ParseShlokaRange parses "a-b" (or a single "a") into a range.
func ParseShlokaRange(s string) (ShlokaRange, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ShlokaRange{}, fmt.Errorf("empty shloka range")
	}
	startStr, endStr, found := strings.Cut(s, "-")
	start, err := strconv.Atoi(strings.TrimSpace(startStr))
	if err != nil {
		return ShlokaRange{}, fmt.Errorf("shloka range %q: %w", s, err)
	}
	end := start
	if found {
		end, err = strconv.Atoi(strings.TrimSpace(endStr))
		if err != nil {
			return ShlokaRange{}, fmt.Errorf("shloka range %q: %w", s, err)
		}
	}
	if start < 1 || end < start {
		return ShlokaRange{}, fmt.Errorf("shloka range %q: want 1 <= start <= end", s)
	}
	return ShlokaRange{Start: start, End: end}, nil
}

func (r ShlokaRange) String() string { return fmt.Sprintf("%d-%d", r.Start, r.End) }

// Len returns the number of verses in r.
func (r ShlokaRange) Len() int { return r.End - r.Start + 1 }

// PartitionShlokas splits [1, count] into n contiguous ranges. Each range
// gets count/n verses and the last absorbs the remainder. It returns nil
// when there are fewer verses than ranges.
func PartitionShlokas(count, n int) []ShlokaRange {
	if n <= 0 || count < n {
		return nil
	}
	per := count / n
	out := make([]ShlokaRange, 0, n)
	for i := 1; i <= n; i++ {
		start := (i-1)*per + 1
		end := i * per
		if i == n {
			end = count
		}
		out = append(out, ShlokaRange{Start: start, End: end})
	}
	return out
}

func sortLessons(ls []Lesson) {
	sort.SliceStable(ls, func(i, j int) bool { return ls[i].Order < ls[j].Order })
}

func sortQuestions(qs []Question) {
	sort.SliceStable(qs, func(i, j int) bool { return qs[i].Order < qs[j].Order })
}

func sortSections(ss []Section) {
	sort.SliceStable(ss, func(i, j int) bool { return ss[i].SectionNumber < ss[j].SectionNumber })
}
