package gita

import (
	"fmt"
)

// Validate checks every structural invariant of the document and returns a
// *ContentError listing all violations, or nil.
func (d *Document) Validate() error {
	var v []string
	add := func(format string, args ...any) {
		v = append(v, fmt.Sprintf(format, args...))
	}

	u := d.Unit
	if u.ID == "" {
		add("unit: missing id")
	}
	if u.UnitNumber < 1 {
		add("unit %s: unitNumber %d must be >= 1", u.ID, u.UnitNumber)
	}

	v = append(v, d.validateSections()...)

	sectionIDs := make(map[string]bool, len(d.Sections))
	for _, s := range d.Sections {
		sectionIDs[s.ID] = true
	}

	lessonIDs := make(map[string]bool, len(d.Lessons))
	for _, l := range d.Lessons {
		if l.ID == "" {
			add("lesson: missing id")
			continue
		}
		if lessonIDs[l.ID] {
			add("lesson %s: duplicate id", l.ID)
		}
		lessonIDs[l.ID] = true
		if !sectionIDs[l.SectionID] {
			add("lesson %s: sectionId %q does not resolve", l.ID, l.SectionID)
		}
		if l.UnitID != u.ID {
			add("lesson %s: unitId %q, want %q", l.ID, l.UnitID, u.ID)
		}
		if len(l.ShlokasCovered) == 0 {
			add("lesson %s: shlokasCovered is empty", l.ID)
		}
		if l.XPReward <= 0 {
			add("lesson %s: xpReward %d must be positive", l.ID, l.XPReward)
		}
	}
	v = append(v, checkLessonChain(d.LessonsInOrder())...)

	byLesson := make(map[string][]Question)
	questionIDs := make(map[string]bool, len(d.Questions))
	for _, q := range d.Questions {
		if questionIDs[q.ID] {
			add("question %s: duplicate id", q.ID)
		}
		questionIDs[q.ID] = true
		if !lessonIDs[q.LessonID] {
			add("question %s: lessonId %q does not resolve", q.ID, q.LessonID)
		}
		if !q.Type.IsValid() {
			add("question %s: %v %q", q.ID, ErrInvalidQuestionType, q.Type)
		} else if q.Content == nil {
			add("question %s: missing content", q.ID)
		} else if q.Content.QuestionType() != q.Type {
			add("question %s: content is %s, type is %s", q.ID, q.Content.QuestionType(), q.Type)
		} else if err := q.Content.Validate(); err != nil {
			add("question %s: %v", q.ID, err)
		}
		byLesson[q.LessonID] = append(byLesson[q.LessonID], q)
	}
	for lessonID, qs := range byLesson {
		if len(qs) > MaxQuestionsPerLesson {
			add("lesson %s: %d questions, at most %d allowed", lessonID, len(qs), MaxQuestionsPerLesson)
		}
		sortQuestions(qs)
		for i, q := range qs {
			if q.Order != i+1 {
				add("lesson %s: question %s has order %d, want %d", lessonID, q.ID, q.Order, i+1)
				break
			}
		}
	}

	if len(v) == 0 {
		return nil
	}
	return &ContentError{UnitID: u.ID, Violations: v}
}

func (d *Document) validateSections() []string {
	var v []string
	sections := make([]Section, len(d.Sections))
	copy(sections, d.Sections)
	sortSections(sections)

	seen := make(map[string]bool, len(sections))
	next := 1
	for i, s := range sections {
		if seen[s.ID] {
			v = append(v, fmt.Sprintf("section %s: duplicate id", s.ID))
		}
		seen[s.ID] = true
		if s.UnitID != d.Unit.ID {
			v = append(v, fmt.Sprintf("section %s: unitId %q, want %q", s.ID, s.UnitID, d.Unit.ID))
		}
		if s.SectionNumber != i+1 {
			v = append(v, fmt.Sprintf("section %s: sectionNumber %d, want %d", s.ID, s.SectionNumber, i+1))
		}
		r, err := ParseShlokaRange(s.ShlokaRange)
		if err != nil {
			v = append(v, fmt.Sprintf("section %s: %v", s.ID, err))
			continue
		}
		if r.Start != next {
			v = append(v, fmt.Sprintf("section %s: range %s starts at %d, want %d", s.ID, r, r.Start, next))
		}
		next = r.End + 1
	}
	switch {
	case len(sections) > 0 && d.Unit.ShlokaCount < 1:
		v = append(v, fmt.Sprintf("unit %s: shlokaCount %d must be >= 1", d.Unit.ID, d.Unit.ShlokaCount))
	case len(sections) > 0 && next-1 != d.Unit.ShlokaCount:
		v = append(v, fmt.Sprintf("sections cover 1-%d, unit declares %d shlokas", next-1, d.Unit.ShlokaCount))
	}
	return v
}

// checkLessonChain verifies that lessons, sorted by order, form 1..n with each
// prerequisite naming the predecessor.
func checkLessonChain(lessons []Lesson) []string {
	var v []string
	prev := ""
	for i, l := range lessons {
		if l.Order != i+1 {
			v = append(v, fmt.Sprintf("lesson %s: order %d, want %d", l.ID, l.Order, i+1))
		}
		if got := l.PrerequisiteID(); got != prev {
			v = append(v, fmt.Sprintf("lesson %s: prerequisite %q, want %q", l.ID, got, prev))
		}
		if i == 0 && l.Prerequisite != nil {
			v = append(v, fmt.Sprintf("lesson %s: first lesson must have null prerequisite", l.ID))
		}
		prev = l.ID
	}
	return v
}
