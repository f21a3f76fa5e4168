package gita

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Skeleton shape produced by GenerateUnit.
const (
	SectionsPerUnit   = 4
	LessonsPerSection = 3
)

// placeholderRotation is the question type sequence given to every generated lesson.
var placeholderRotation = []QuestionType{
	QuestionScenarioChallenge,
	QuestionStoryCard,
	QuestionMultipleChoice,
	QuestionScenarioChallenge,
	QuestionReflectionPrompt,
}

// UnitSpec is one catalog entry describing a unit to generate.
type UnitSpec struct {
	Number     int    `yaml:"number"`
	Name       string `yaml:"name"`
	NameHi     string `yaml:"nameHi"`
	Theme      string `yaml:"theme"`
	Icon       string `yaml:"icon"`
	Color      string `yaml:"color"`
	Difficulty string `yaml:"difficulty"`
	Shlokas    int    `yaml:"shlokas"`
}

// Validate checks that s can produce a well-formed skeleton.
func (s UnitSpec) Validate() error {
	switch {
	case s.Number < 1:
		return fmt.Errorf("catalog: unit number %d must be >= 1", s.Number)
	case s.Name == "":
		return fmt.Errorf("catalog: unit %d has no name", s.Number)
	case s.Shlokas < SectionsPerUnit:
		return fmt.Errorf("catalog: unit %d has %d shlokas, need at least %d", s.Number, s.Shlokas, SectionsPerUnit)
	}
	return nil
}

type catalogFile struct {
	Units []UnitSpec `yaml:"units"`
}

// LoadCatalog reads a YAML unit catalog, sorted by unit number.
func LoadCatalog(path string) ([]UnitSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	seen := make(map[int]bool, len(cf.Units))
	var errs []error
	for _, u := range cf.Units {
		if err := u.Validate(); err != nil {
			errs = append(errs, err)
		}
		if seen[u.Number] {
			errs = append(errs, fmt.Errorf("catalog: unit %d listed twice", u.Number))
		}
		seen[u.Number] = true
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	sort.Slice(cf.Units, func(i, j int) bool { return cf.Units[i].Number < cf.Units[j].Number })
	return cf.Units, nil
}

// GenerateUnit builds a templated unit document: SectionsPerUnit sections
// partitioning the unit's verses, LessonsPerSection lessons per section on a
// single prerequisite chain, and a full set of placeholder questions per lesson.
func GenerateUnit(s UnitSpec) (*Document, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	n := s.Number
	unitID := UnitID(n)
	doc := &Document{
		Unit: Unit{
			ID:             unitID,
			UnitNumber:     n,
			Name:           s.Name,
			NameHi:         s.NameHi,
			ChapterNumber:  n,
			Theme:          s.Theme,
			Difficulty:     s.Difficulty,
			Icon:           s.Icon,
			Color:          s.Color,
			Description:    fmt.Sprintf("Chapter %d: %s - %s", n, s.Name, s.Theme),
			DescriptionHi:  fmt.Sprintf("अध्याय %d: %s - %s", n, s.NameHi, s.Theme),
			JourneyID:      JourneyIDForUnit(n),
			ShlokasCovered: ShlokaRange{Start: 1, End: s.Shlokas}.String(),
			ShlokaCount:    s.Shlokas,
		},
	}

	for i, r := range PartitionShlokas(s.Shlokas, SectionsPerUnit) {
		sn := i + 1
		sectionID := SectionID(n, sn)
		doc.Sections = append(doc.Sections, Section{
			ID:            sectionID,
			UnitID:        unitID,
			SectionNumber: sn,
			Name:          fmt.Sprintf("Section %d", sn),
			NameHi:        fmt.Sprintf("खंड %d", sn),
			ShlokaRange:   r.String(),
			KeyTeaching:   "Key teaching for this section",
			Order:         sn,
		})
		verses := []int{r.Start}
		if r.End > r.Start {
			verses = append(verses, r.Start+1)
		}
		for ln := 1; ln <= LessonsPerSection; ln++ {
			lessonID := LessonID(n, sn, ln)
			doc.Lessons = append(doc.Lessons, Lesson{
				ID:             lessonID,
				SectionID:      sectionID,
				UnitID:         unitID,
				Name:           fmt.Sprintf("Lesson %d of Section %d", ln, sn),
				NameHi:         fmt.Sprintf("पाठ %d (खंड %d)", ln, sn),
				EstimatedTime:  DefaultLessonTime,
				Difficulty:     s.Difficulty,
				ShlokasCovered: append([]int(nil), verses...),
				XPReward:       DefaultLessonXP,
			})
			doc.Questions = append(doc.Questions, placeholderQuestions(n, sn, ln, lessonID)...)
		}
	}
	doc.relink()
	return doc, nil
}

// PlaceholderXP returns the reward given to a generated question of type t.
func PlaceholderXP(t QuestionType) int {
	if t == QuestionStoryCard {
		return 10
	}
	return 25
}

func placeholderQuestions(unit, section, lesson int, lessonID string) []Question {
	qs := make([]Question, 0, len(placeholderRotation))
	for i, t := range placeholderRotation {
		order := i + 1
		qs = append(qs, Question{
			ID:       QuestionID(unit, section, lesson, t, order),
			LessonID: lessonID,
			Type:     t,
			Order:    order,
			XPReward: PlaceholderXP(t),
			Status:   StatusPlaceholder,
			Content:  placeholderContent(t),
		})
	}
	return qs
}

func placeholderContent(t QuestionType) Payload {
	switch t {
	case QuestionScenarioChallenge:
		return ScenarioChallenge{
			ScenarioTitle:   "Practice Scenario",
			ScenarioTitleHi: "अभ्यास परिदृश्य",
			Scenario:        "A situation to apply Gita wisdom.",
			ScenarioHi:      "गीता ज्ञान लागू करने की स्थिति।",
			Options: []ScenarioOption{
				{Text: "Option A", TextHi: "विकल्प A", Feedback: "Feedback A", FeedbackHi: "प्रतिक्रिया A"},
				{Text: "Option B", TextHi: "विकल्प B", Feedback: "Feedback B", FeedbackHi: "प्रतिक्रिया B", IsOptimal: true},
			},
		}
	case QuestionStoryCard:
		return StoryCard{
			Title:            "A Story from the Chapter",
			TitleHi:          "अध्याय से एक कहानी",
			Story:            "A short story illustrating the lesson.",
			StoryHi:          "पाठ को समझाने वाली एक छोटी कहानी।",
			KrishnaMessage:   "Core wisdom from the story.",
			KrishnaMessageHi: "कहानी का मूल ज्ञान।",
		}
	case QuestionMultipleChoice:
		return MultipleChoice{
			QuestionText:        "Question about the lesson?",
			QuestionTextHi:      "पाठ के बारे में प्रश्न?",
			Options:             []string{"Answer A", "Answer B", "Answer C", "Answer D"},
			OptionsHi:           []string{"उत्तर A", "उत्तर B", "उत्तर C", "उत्तर D"},
			CorrectAnswerIndex:  1,
			Explanation:         "Why B is correct.",
			ExplanationHi:       "B क्यों सही है।",
			RealLifeApplication: "Apply this to daily life.",
		}
	default:
		return ReflectionPrompt{
			Prompt:             "Reflect on how this applies to you.",
			PromptHi:           "विचार करें कि यह आप पर कैसे लागू होता है।",
			GuidingQuestions:   []string{"Question 1?", "Question 2?"},
			GuidingQuestionsHi: []string{"प्रश्न 1?", "प्रश्न 2?"},
			KrishnaWisdom:      "Concluding wisdom.",
			KrishnaWisdomHi:    "समापन ज्ञान।",
		}
	}
}
