package gita

// Journey groups units by thematic arc.
type Journey struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	TitleHi       string `json:"titleHi"`
	Description   string `json:"description"`
	DescriptionHi string `json:"descriptionHi"`
	Order         int    `json:"order"`
	UnitRange     string `json:"unitRange"` // e.g. "1-6"
}

// Unit is one chapter of content. The "chapter" collection holds a
// presentation projection of it, see ChapterView.
type Unit struct {
	ID             string `json:"id"`
	UnitNumber     int    `json:"unitNumber"`
	Name           string `json:"unitName"`
	NameHi         string `json:"unitNameHi"`
	ChapterNumber  int    `json:"chapterNumber"`
	Theme          string `json:"theme"`
	Difficulty     string `json:"difficulty"`
	Icon           string `json:"icon"`
	Color          string `json:"color"`
	Description    string `json:"description"`
	DescriptionHi  string `json:"descriptionHi"`
	JourneyID      string `json:"journeyId"`
	ShlokasCovered string `json:"shlokasCovered"`
	ShlokaCount    int    `json:"shlokaCount"`
}

// Section is a themed sub-range of a unit's verses.
type Section struct {
	ID            string `json:"id"`
	UnitID        string `json:"unitId"`
	SectionNumber int    `json:"sectionNumber"`
	Name          string `json:"sectionName"`
	NameHi        string `json:"sectionNameHi"`
	ShlokaRange   string `json:"shlokaRange"`
	KeyTeaching   string `json:"keyTeaching"`
	Order         int    `json:"order"`
}

// Lesson is one linearly-chained learning step. Order is global within the
// unit and Prerequisite names the lesson at Order-1.
type Lesson struct {
	ID             string  `json:"id"`
	SectionID      string  `json:"sectionId"`
	UnitID         string  `json:"unitId"`
	LessonNumber   int     `json:"lessonNumber"`
	Name           string  `json:"lessonName"`
	NameHi         string  `json:"lessonNameHi"`
	Order          int     `json:"order"`
	EstimatedTime  int     `json:"estimatedTime"` // seconds
	Difficulty     string  `json:"difficulty"`
	ShlokasCovered []int   `json:"shlokasCovered"`
	XPReward       int     `json:"xpReward"`
	Prerequisite   *string `json:"prerequisite"`
}

// PrerequisiteID returns the prerequisite lesson ID, or "" for the first lesson.
func (l Lesson) PrerequisiteID() string {
	if l.Prerequisite == nil {
		return ""
	}
	return *l.Prerequisite
}

// Document is one unit's full authored subtree, persisted as unit<N>.json.
type Document struct {
	Unit      Unit       `json:"unit"`
	Sections  []Section  `json:"sections"`
	Lessons   []Lesson   `json:"lessons"`
	Questions []Question `json:"questions"`
}

// ChapterView is the legacy "chapters" projection of a unit. Localized and
// default names are swapped relative to Unit.
type ChapterView struct {
	ChapterNumber  int    `json:"chapterNumber"`
	ChapterName    string `json:"chapterName"`
	ChapterNameEn  string `json:"chapterNameEn"`
	Description    string `json:"description"`
	DescriptionEn  string `json:"descriptionEn"`
	ShlokaCount    int    `json:"shlokaCount"`
	ShlokasCovered string `json:"shlokasCovered"`
	Order          int    `json:"order"`
	IsUnlocked     bool   `json:"isUnlocked"`
	Icon           string `json:"icon"`
	Color          string `json:"color"`
	JourneyID      string `json:"journeyId"`
}

// Chapter returns the chapter projection of u.
func (u Unit) Chapter(unlocked bool) ChapterView {
	return ChapterView{
		ChapterNumber:  u.UnitNumber,
		ChapterName:    u.NameHi,
		ChapterNameEn:  u.Name,
		Description:    u.DescriptionHi,
		DescriptionEn:  u.Description,
		ShlokaCount:    u.ShlokaCount,
		ShlokasCovered: u.ShlokasCovered,
		Order:          u.UnitNumber,
		IsUnlocked:     unlocked,
		Icon:           u.Icon,
		Color:          u.Color,
		JourneyID:      JourneyIDForUnit(u.UnitNumber),
	}
}

// LessonsInOrder returns the lessons sorted by Order. The document is not modified.
func (d *Document) LessonsInOrder() []Lesson {
	out := make([]Lesson, len(d.Lessons))
	copy(out, d.Lessons)
	sortLessons(out)
	return out
}

// SectionByID returns the section with the given ID.
func (d *Document) SectionByID(id string) (*Section, bool) {
	for i := range d.Sections {
		if d.Sections[i].ID == id {
			return &d.Sections[i], true
		}
	}
	return nil, false
}

// LessonByID returns the lesson with the given ID.
func (d *Document) LessonByID(id string) (*Lesson, bool) {
	for i := range d.Lessons {
		if d.Lessons[i].ID == id {
			return &d.Lessons[i], true
		}
	}
	return nil, false
}

// QuestionsFor returns the questions attached to a lesson, sorted by Order.
func (d *Document) QuestionsFor(lessonID string) []Question {
	var out []Question
	for _, q := range d.Questions {
		if q.LessonID == lessonID {
			out = append(out, q)
		}
	}
	sortQuestions(out)
	return out
}

// Content limits.
const (
	MaxQuestionsPerLesson = 5
	MinChoiceOptions      = 2
)
