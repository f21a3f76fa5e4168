package gita

import (
	"errors"
	"fmt"
)

// Defaults applied to lessons created by InsertLesson when left unset.
const (
	DefaultLessonTime = 300
	DefaultLessonXP   = 50
)

// NewLesson describes a lesson to insert. ID is optional; when empty the next
// free lesson_<unit>_<section>_<n> ID is assigned.
type NewLesson struct {
	ID             string `json:"id,omitempty"`
	SectionID      string `json:"sectionId"`
	Name           string `json:"lessonName"`
	NameHi         string `json:"lessonNameHi"`
	Difficulty     string `json:"difficulty,omitempty"`
	EstimatedTime  int    `json:"estimatedTime,omitempty"`
	ShlokasCovered []int  `json:"shlokasCovered"`
	XPReward       int    `json:"xpReward,omitempty"`
}

// SectionRename carries replacement display fields for a section. Empty
// fields are left unchanged.
type SectionRename struct {
	ID          string `json:"id"`
	Name        string `json:"sectionName,omitempty"`
	NameHi      string `json:"sectionNameHi,omitempty"`
	KeyTeaching string `json:"keyTeaching,omitempty"`
}

// LessonRename carries replacement display fields and verse list for a
// lesson. Empty fields are left unchanged.
type LessonRename struct {
	ID             string `json:"id"`
	Name           string `json:"lessonName,omitempty"`
	NameHi         string `json:"lessonNameHi,omitempty"`
	ShlokasCovered []int  `json:"shlokasCovered,omitempty"`
}

// Clone returns a copy of d whose slices can be mutated independently.
func (d *Document) Clone() *Document {
	c := &Document{Unit: d.Unit}
	c.Sections = append([]Section(nil), d.Sections...)
	c.Lessons = append([]Lesson(nil), d.Lessons...)
	c.Questions = append([]Question(nil), d.Questions...)
	return c
}

// ApplyOrder rewrites the unit's lesson sequence to follow target. Lessons
// absent from target are dropped along with their questions. Every lesson
// then gets order = position and prerequisite = predecessor in one pass.
// Unknown or duplicated IDs fail with *OrderingError and leave d unchanged.
func (d *Document) ApplyOrder(target []string) (dropped []string, err error) {
	if err := d.checkTarget(target, nil); err != nil {
		return nil, err
	}

	keep := make(map[string]int, len(target))
	for i, id := range target {
		keep[id] = i
	}
	ordered := make([]Lesson, len(target))
	for _, l := range d.Lessons {
		i, ok := keep[l.ID]
		if !ok {
			dropped = append(dropped, l.ID)
			continue
		}
		ordered[i] = l
	}
	d.Lessons = ordered
	d.dropQuestionsOf(dropped)
	d.relink()
	return dropped, nil
}

// checkTarget validates target against the document's lessons. IDs listed in
// remove are expected to be absent from target; any other lesson missing
// from target is reported when remove is non-nil.
func (d *Document) checkTarget(target []string, remove []string) error {
	known := make(map[string]bool, len(d.Lessons))
	for _, l := range d.Lessons {
		known[l.ID] = true
	}
	oe := &OrderingError{}
	seen := make(map[string]bool, len(target))
	for _, id := range target {
		switch {
		case !known[id]:
			oe.Unknown = append(oe.Unknown, id)
		case seen[id]:
			oe.Duplicate = append(oe.Duplicate, id)
		}
		seen[id] = true
	}
	if len(target) == 0 && len(d.Lessons) > 0 {
		for _, l := range d.Lessons {
			oe.Missing = append(oe.Missing, l.ID)
		}
	}
	if remove != nil {
		removed := make(map[string]bool, len(remove))
		for _, id := range remove {
			if !known[id] {
				oe.Unknown = append(oe.Unknown, id)
			}
			if seen[id] {
				oe.Duplicate = append(oe.Duplicate, id)
			}
			removed[id] = true
		}
		for _, l := range d.Lessons {
			if !seen[l.ID] && !removed[l.ID] {
				oe.Missing = append(oe.Missing, l.ID)
			}
		}
	}
	if len(oe.Missing)+len(oe.Duplicate)+len(oe.Unknown) > 0 {
		return oe
	}
	return nil
}

// Renumber recomputes order and prerequisite from the lessons' current
// relative order.
func (d *Document) Renumber() {
	sortLessons(d.Lessons)
	d.relink()
}

// relink assigns order, prerequisite and per-section lessonNumber from the
// position of each lesson in d.Lessons.
func (d *Document) relink() {
	perSection := make(map[string]int)
	var prev *string
	for i := range d.Lessons {
		l := &d.Lessons[i]
		l.Order = i + 1
		l.Prerequisite = prev
		perSection[l.SectionID]++
		l.LessonNumber = perSection[l.SectionID]
		id := l.ID
		prev = &id
	}
}

func (d *Document) dropQuestionsOf(lessonIDs []string) {
	if len(lessonIDs) == 0 {
		return
	}
	gone := make(map[string]bool, len(lessonIDs))
	for _, id := range lessonIDs {
		gone[id] = true
	}
	kept := d.Questions[:0]
	for _, q := range d.Questions {
		if !gone[q.LessonID] {
			kept = append(kept, q)
		}
	}
	d.Questions = kept
}

// InsertLesson adds a lesson to a section and applies target, which must
// list the new lesson's ID among the unit's lessons. It returns the new ID.
func (d *Document) InsertLesson(nl NewLesson, target []string) (string, error) {
	l, err := d.buildLesson(nl)
	if err != nil {
		return "", err
	}
	found := false
	for _, id := range target {
		if id == l.ID {
			found = true
			break
		}
	}
	if !found {
		return "", &OrderingError{Missing: []string{l.ID}}
	}

	next := d.Clone()
	next.Lessons = append(next.Lessons, l)
	if _, err := next.ApplyOrder(target); err != nil {
		return "", err
	}
	*d = *next
	return l.ID, nil
}

func (d *Document) buildLesson(nl NewLesson) (Lesson, error) {
	if _, ok := d.SectionByID(nl.SectionID); !ok {
		return Lesson{}, fmt.Errorf("%w: %s", ErrUnknownSection, nl.SectionID)
	}
	if nl.Name == "" {
		return Lesson{}, fmt.Errorf("%w: new lesson in %s has no name", ErrInvalidContent, nl.SectionID)
	}
	if len(nl.ShlokasCovered) == 0 {
		return Lesson{}, fmt.Errorf("%w: new lesson %q covers no shlokas", ErrInvalidContent, nl.Name)
	}
	id := nl.ID
	if id == "" {
		var err error
		if id, err = d.NextLessonID(nl.SectionID); err != nil {
			return Lesson{}, err
		}
	} else if _, exists := d.LessonByID(id); exists {
		return Lesson{}, &OrderingError{Duplicate: []string{id}}
	}
	l := Lesson{
		ID:             id,
		SectionID:      nl.SectionID,
		UnitID:         d.Unit.ID,
		Name:           nl.Name,
		NameHi:         nl.NameHi,
		Difficulty:     nl.Difficulty,
		EstimatedTime:  nl.EstimatedTime,
		ShlokasCovered: append([]int(nil), nl.ShlokasCovered...),
		XPReward:       nl.XPReward,
	}
	if l.Difficulty == "" {
		l.Difficulty = d.Unit.Difficulty
	}
	if l.EstimatedTime == 0 {
		l.EstimatedTime = DefaultLessonTime
	}
	if l.XPReward == 0 {
		l.XPReward = DefaultLessonXP
	}
	return l, nil
}

// ReplaceQuestions removes the lesson's placeholder questions and appends qs.
// Missing question IDs default to <lessonId>_<type>_<order>. The lesson's
// resulting questions must number 1..n with n <= MaxQuestionsPerLesson.
func (d *Document) ReplaceQuestions(lessonID string, qs []Question) error {
	if _, ok := d.LessonByID(lessonID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLesson, lessonID)
	}

	var kept, result []Question
	for _, q := range d.Questions {
		if q.LessonID == lessonID && q.IsPlaceholder() {
			continue
		}
		kept = append(kept, q)
		if q.LessonID == lessonID {
			result = append(result, q)
		}
	}

	ids := make(map[string]bool, len(kept))
	for _, q := range kept {
		ids[q.ID] = true
	}
	added := make([]Question, 0, len(qs))
	for _, q := range qs {
		q.LessonID = lessonID
		q.Status = StatusAuthored
		if !q.Type.IsValid() {
			return fmt.Errorf("%w: %q for lesson %s", ErrInvalidQuestionType, q.Type, lessonID)
		}
		if q.Content == nil || q.Content.QuestionType() != q.Type {
			return fmt.Errorf("%w: question %d of %s: content does not match type %s", ErrInvalidContent, q.Order, lessonID, q.Type)
		}
		if err := q.Content.Validate(); err != nil {
			return fmt.Errorf("%w: lesson %s: %v", ErrInvalidContent, lessonID, err)
		}
		if q.ID == "" {
			q.ID = fmt.Sprintf("%s_%s_%d", lessonID, q.Type, q.Order)
		}
		if ids[q.ID] {
			return fmt.Errorf("%w: duplicate question id %s", ErrInvalidContent, q.ID)
		}
		ids[q.ID] = true
		added = append(added, q)
	}

	result = append(result, added...)
	if len(result) > MaxQuestionsPerLesson {
		return fmt.Errorf("%w: %s would have %d", ErrTooManyQuestions, lessonID, len(result))
	}
	sortQuestions(result)
	for i, q := range result {
		if q.Order != i+1 {
			return fmt.Errorf("%w: lesson %s question %s has order %d, want %d", ErrInvalidContent, lessonID, q.ID, q.Order, i+1)
		}
	}

	d.Questions = append(kept, added...)
	return nil
}

// RenameSection updates a section's display fields in place.
func (d *Document) RenameSection(r SectionRename) error {
	s, ok := d.SectionByID(r.ID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSection, r.ID)
	}
	if r.Name != "" {
		s.Name = r.Name
	}
	if r.NameHi != "" {
		s.NameHi = r.NameHi
	}
	if r.KeyTeaching != "" {
		s.KeyTeaching = r.KeyTeaching
	}
	return nil
}

// RenameLesson updates a lesson's display fields and verse list in place.
func (d *Document) RenameLesson(r LessonRename) error {
	l, ok := d.LessonByID(r.ID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLesson, r.ID)
	}
	if r.Name != "" {
		l.Name = r.Name
	}
	if r.NameHi != "" {
		l.NameHi = r.NameHi
	}
	if len(r.ShlokasCovered) > 0 {
		l.ShlokasCovered = append([]int(nil), r.ShlokasCovered...)
	}
	return nil
}

// QuestionSet is a replacement question list for one lesson.
type QuestionSet struct {
	LessonID  string     `json:"lessonId"`
	Questions []Question `json:"questions"`
}

// Plan is a batch of structural edits for one unit.
type Plan struct {
	Unit           int             `json:"unit"`
	InsertLessons  []NewLesson     `json:"insertLessons,omitempty"`
	Order          []string        `json:"order,omitempty"`
	Remove         []string        `json:"remove,omitempty"`
	RenameSections []SectionRename `json:"renameSections,omitempty"`
	RenameLessons  []LessonRename  `json:"renameLessons,omitempty"`
	Questions      []QuestionSet   `json:"questions,omitempty"`
}

// PlanResult reports what ApplyPlan changed.
type PlanResult struct {
	Inserted []string `json:"inserted,omitempty"`
	Removed  []string `json:"removed,omitempty"`
	Renamed  int      `json:"renamed"`
	Replaced int      `json:"replaced"`
}

// ApplyPlan applies p to d. Inserted lessons must carry explicit IDs when an
// Order is given. When Order is set, every lesson must appear in exactly one
// of Order or Remove. The edits run on a copy and the result is checked with
// Validate; d is only replaced when everything succeeds.
func ApplyPlan(d *Document, p Plan) (PlanResult, error) {
	var res PlanResult
	if p.Unit != 0 && p.Unit != d.Unit.UnitNumber {
		return res, fmt.Errorf("plan targets unit %d, document is unit %d", p.Unit, d.Unit.UnitNumber)
	}
	next := d.Clone()

	for _, nl := range p.InsertLessons {
		if len(p.Order) > 0 && nl.ID == "" {
			return res, fmt.Errorf("%w: inserted lesson %q needs an id to appear in order", ErrInvalidOrdering, nl.Name)
		}
		l, err := next.buildLesson(nl)
		if err != nil {
			return res, err
		}
		if len(p.Order) == 0 {
			l.Order = len(next.Lessons) + 1
		}
		next.Lessons = append(next.Lessons, l)
		res.Inserted = append(res.Inserted, l.ID)
	}

	if len(p.Order) > 0 {
		remove := p.Remove
		if remove == nil {
			remove = []string{}
		}
		if err := next.checkTarget(p.Order, remove); err != nil {
			return res, err
		}
		dropped, err := next.ApplyOrder(p.Order)
		if err != nil {
			return res, err
		}
		res.Removed = dropped
	} else if len(p.Remove) > 0 {
		return res, errors.New("plan: remove requires an explicit order")
	} else if len(p.InsertLessons) > 0 {
		next.Renumber()
	}

	for _, r := range p.RenameSections {
		if err := next.RenameSection(r); err != nil {
			return res, err
		}
		res.Renamed++
	}
	for _, r := range p.RenameLessons {
		if err := next.RenameLesson(r); err != nil {
			return res, err
		}
		res.Renamed++
	}
	for _, set := range p.Questions {
		if err := next.ReplaceQuestions(set.LessonID, set.Questions); err != nil {
			return res, err
		}
		res.Replaced++
	}

	if err := next.Validate(); err != nil {
		return res, err
	}
	*d = *next
	return res, nil
}
