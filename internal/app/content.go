package app

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/anshulchahar/gita"
)

// ReadPlan decodes a reconciliation plan from a JSON file.
func ReadPlan(path string) (gita.Plan, error) {
	var p gita.Plan
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read plan: %w", err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse plan %s: %w", path, err)
	}
	if p.Unit < 1 {
		return p, fmt.Errorf("plan %s: unit must be >= 1", path)
	}
	return p, nil
}

// Reconcile applies p to its unit and saves the result. With dryRun the
// document is edited and checked but not written.
func (a *App) Reconcile(p gita.Plan, dryRun bool) (gita.PlanResult, error) {
	dir, err := a.ContentDir()
	if err != nil {
		return gita.PlanResult{}, err
	}
	doc, err := gita.LoadDocument(dir, p.Unit)
	if err != nil {
		return gita.PlanResult{}, err
	}
	res, err := gita.ApplyPlan(doc, p)
	if err != nil {
		return res, err
	}
	if dryRun {
		return res, nil
	}
	path, err := gita.SaveDocument(dir, doc)
	if err != nil {
		return res, err
	}
	a.log.Info("unit reconciled", "unit", p.Unit, "path", path,
		"inserted", len(res.Inserted), "removed", len(res.Removed), "renamed", res.Renamed, "replaced", res.Replaced)
	return res, nil
}

// Generated reports one generated unit file.
type Generated struct {
	Unit    int    `json:"unit"`
	Path    string `json:"path,omitempty"`
	Skipped bool   `json:"skipped,omitempty"`
}

// Generate writes skeleton documents for catalog entries. Existing files
// are kept unless force is set. An empty units list means the whole catalog.
func (a *App) Generate(catalogPath string, units []int, force bool) ([]Generated, error) {
	specs, err := gita.LoadCatalog(catalogPath)
	if err != nil {
		return nil, err
	}
	dir, err := a.writableContentDir()
	if err != nil {
		return nil, err
	}
	want := make(map[int]bool, len(units))
	unseen := make(map[int]bool, len(units))
	for _, n := range units {
		want[n] = true
		unseen[n] = true
	}

	var out []Generated
	for _, s := range specs {
		if len(want) > 0 && !want[s.Number] {
			continue
		}
		delete(unseen, s.Number)
		if !force {
			if _, err := gita.LoadDocument(dir, s.Number); err == nil {
				out = append(out, Generated{Unit: s.Number, Skipped: true})
				continue
			}
		}
		doc, err := gita.GenerateUnit(s)
		if err != nil {
			return out, err
		}
		path, err := gita.SaveDocument(dir, doc)
		if err != nil {
			return out, err
		}
		a.log.Info("unit generated", "unit", s.Number, "path", path)
		out = append(out, Generated{Unit: s.Number, Path: path})
	}
	if len(unseen) > 0 {
		var unknown []int
		for n := range unseen {
			unknown = append(unknown, n)
		}
		sort.Ints(unknown)
		return out, fmt.Errorf("units %v are not in catalog %s", unknown, catalogPath)
	}
	return out, nil
}

// Themed reports how many entities a theme table renamed in one unit.
type Themed struct {
	Unit    int `json:"unit"`
	Renamed int `json:"renamed"`
}

// Theme applies a theme table to every unit it names that has a file.
func (a *App) Theme(themesPath string, units []int) ([]Themed, error) {
	table, err := gita.LoadThemes(themesPath)
	if err != nil {
		return nil, err
	}
	c, err := a.Load(units)
	if err != nil {
		return nil, err
	}
	var out []Themed
	for _, d := range c.Docs {
		themes, ok := table[d.Unit.UnitNumber]
		if !ok {
			continue
		}
		n, err := gita.ApplyTheme(d, themes)
		if err != nil {
			return out, fmt.Errorf("unit %d: %w", d.Unit.UnitNumber, err)
		}
		if _, err := gita.SaveDocument(c.Dir, d); err != nil {
			return out, err
		}
		out = append(out, Themed{Unit: d.Unit.UnitNumber, Renamed: n})
	}
	return out, nil
}

// ChainLink is one lesson in a unit's prerequisite chain.
type ChainLink struct {
	Order        int    `json:"order"`
	ID           string `json:"id"`
	Section      string `json:"sectionId"`
	Name         string `json:"lessonName"`
	Prerequisite string `json:"prerequisite,omitempty"`
	Questions    int    `json:"questions"`
	Placeholders int    `json:"placeholders"`
}

// LessonChain returns a unit's lessons in order with their prerequisites.
func (a *App) LessonChain(unit int) ([]ChainLink, error) {
	dir, err := a.ContentDir()
	if err != nil {
		return nil, err
	}
	doc, err := gita.LoadDocument(dir, unit)
	if err != nil {
		return nil, err
	}
	lessons := doc.LessonsInOrder()
	out := make([]ChainLink, 0, len(lessons))
	for _, l := range lessons {
		link := ChainLink{
			Order:        l.Order,
			ID:           l.ID,
			Section:      l.SectionID,
			Name:         l.Name,
			Prerequisite: l.PrerequisiteID(),
		}
		for _, q := range doc.QuestionsFor(l.ID) {
			link.Questions++
			if q.IsPlaceholder() {
				link.Placeholders++
			}
		}
		out = append(out, link)
	}
	return out, nil
}
