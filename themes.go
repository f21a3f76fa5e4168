package gita

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SectionTheme names a section and its lessons, in lesson order.
type SectionTheme struct {
	Name    string   `yaml:"name"`
	NameHi  string   `yaml:"nameHi,omitempty"`
	Lessons []string `yaml:"lessons"`
}

// ThemeTable maps unit numbers to their section themes.
type ThemeTable map[int][]SectionTheme

// LoadThemes reads a YAML theme table keyed by unit number.
func LoadThemes(path string) (ThemeTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read themes: %w", err)
	}
	var t ThemeTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse themes %s: %w", path, err)
	}
	return t, nil
}

// ApplyTheme renames the document's sections (by sectionNumber) and the
// lessons inside each section (by order). Lessons beyond the theme's list
// are named "Advanced <section> <n>". It returns the number of renamed
// entities. Ordering is untouched, and d is left unchanged on error.
func ApplyTheme(d *Document, themes []SectionTheme) (int, error) {
	next := d.Clone()
	sections := make([]Section, len(next.Sections))
	copy(sections, next.Sections)
	sortSections(sections)
	lessons := next.LessonsInOrder()

	renamed := 0
	for i, sec := range sections {
		if i >= len(themes) {
			break
		}
		th := themes[i]
		if th.Name == "" {
			return 0, fmt.Errorf("%w: theme %d for %s has no name", ErrInvalidContent, i+1, sec.ID)
		}
		nameHi := th.NameHi
		if nameHi == "" {
			nameHi = th.Name + " (Hindi)"
		}
		if err := next.RenameSection(SectionRename{
			ID:          sec.ID,
			Name:        th.Name,
			NameHi:      nameHi,
			KeyTeaching: "Understand: " + th.Name,
		}); err != nil {
			return 0, err
		}
		renamed++

		j := 0
		for _, l := range lessons {
			if l.SectionID != sec.ID {
				continue
			}
			r := LessonRename{ID: l.ID}
			if j < len(th.Lessons) {
				r.Name = th.Lessons[j]
				r.NameHi = th.Lessons[j] + " (Hindi)"
			} else {
				r.Name = fmt.Sprintf("Advanced %s %d", th.Name, j+1)
			}
			if err := next.RenameLesson(r); err != nil {
				return 0, err
			}
			renamed++
			j++
		}
	}
	*d = *next
	return renamed, nil
}
