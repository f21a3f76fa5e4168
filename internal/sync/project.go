package sync

import (
	"fmt"

	"github.com/anshulchahar/gita"
	"github.com/anshulchahar/gita/internal/firestore"
)

// Projector turns content into the ordered list of remote writes.
type Projector struct {
	// Unlocked reports whether a unit's chapter projection is published unlocked.
	Unlocked func(unitNumber int) bool
}

// Plan returns every write for journeys and docs in dependency order:
// journeys, then each unit followed by its chapter projection, then
// sections, lessons and questions. Denormalized keys are recomputed from
// the owning unit. Placeholder questions are local scaffolding and are
// never planned.
func (p Projector) Plan(journeys []gita.Journey, docs []*gita.Document) ([]Write, error) {
	var writes []Write
	add := func(collection, id string, v any, extra map[string]any) error {
		fields, err := firestore.Fields(v)
		if err != nil {
			return fmt.Errorf("%s/%s: %w", collection, id, err)
		}
		for k, val := range extra {
			fields[k] = val
		}
		writes = append(writes, Write{Collection: collection, ID: id, Fields: fields})
		return nil
	}

	for _, j := range journeys {
		if err := add(CollectionJourneys, j.ID, j, nil); err != nil {
			return nil, err
		}
	}

	for _, d := range docs {
		u := d.Unit
		unlocked := p.Unlocked != nil && p.Unlocked(u.UnitNumber)
		if err := add(CollectionUnits, u.ID, u, map[string]any{"journeyId": gita.JourneyIDForUnit(u.UnitNumber)}); err != nil {
			return nil, err
		}
		if err := add(CollectionChapters, gita.ChapterID(u.UnitNumber), u.Chapter(unlocked), nil); err != nil {
			return nil, err
		}
	}

	for _, d := range docs {
		journeyID := gita.JourneyIDForUnit(d.Unit.UnitNumber)
		for _, s := range d.Sections {
			if err := add(CollectionSections, s.ID, s, map[string]any{
				"unitId":    d.Unit.ID,
				"journeyId": journeyID,
			}); err != nil {
				return nil, err
			}
		}
	}

	for _, d := range docs {
		journeyID := gita.JourneyIDForUnit(d.Unit.UnitNumber)
		chapterID := gita.ChapterID(d.Unit.UnitNumber)
		for _, l := range d.LessonsInOrder() {
			if err := add(CollectionLessons, l.ID, l, map[string]any{
				"unitId":    d.Unit.ID,
				"chapterId": chapterID,
				"journeyId": journeyID,
			}); err != nil {
				return nil, err
			}
		}
	}

	for _, d := range docs {
		for _, l := range d.LessonsInOrder() {
			for _, q := range d.QuestionsFor(l.ID) {
				if q.IsPlaceholder() {
					continue
				}
				fields, err := firestore.Fields(q)
				if err != nil {
					return nil, fmt.Errorf("%s/%s: %w", CollectionQuestions, q.ID, err)
				}
				delete(fields, "status")
				writes = append(writes, Write{Collection: CollectionQuestions, ID: q.ID, Fields: fields})
			}
		}
	}
	return writes, nil
}
