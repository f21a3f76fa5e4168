package gita

import (
	"encoding/json"
	"fmt"
)

// QuestionType tags the shape of a question's content payload.
type QuestionType string

const (
	QuestionScenarioChallenge QuestionType = "scenarioChallenge"
	QuestionStoryCard         QuestionType = "storyCard"
	QuestionMultipleChoice    QuestionType = "multipleChoice"
	QuestionReflectionPrompt  QuestionType = "reflectionPrompt"
)

// ValidQuestionTypes returns the fixed set of question types.
func ValidQuestionTypes() []QuestionType {
	return []QuestionType{
		QuestionScenarioChallenge,
		QuestionStoryCard,
		QuestionMultipleChoice,
		QuestionReflectionPrompt,
	}
}

// IsValid checks if the type is one of the fixed question types.
func (t QuestionType) IsValid() bool {
	for _, valid := range ValidQuestionTypes() {
		if t == valid {
			return true
		}
	}
	return false
}

// QuestionStatus marks locally-tracked lifecycle state. It is never synchronized.
type QuestionStatus string

const (
	StatusAuthored    QuestionStatus = ""
	StatusPlaceholder QuestionStatus = "placeholder"
)

// Question is one interactive step attached to a lesson.
type Question struct {
	ID       string
	LessonID string
	Type     QuestionType
	Order    int
	XPReward int
	Status   QuestionStatus
	Content  Payload
}

// IsPlaceholder reports whether q is templated filler awaiting authored content.
func (q Question) IsPlaceholder() bool { return q.Status == StatusPlaceholder }

// Payload is the type-specific content of a question.
type Payload interface {
	QuestionType() QuestionType
	Validate() error
}

// ScenarioChallenge presents a situation with options, exactly one of which is optimal.
type ScenarioChallenge struct {
	ScenarioTitle   string           `json:"scenarioTitle"`
	ScenarioTitleHi string           `json:"scenarioTitleHi"`
	Scenario        string           `json:"scenario"`
	ScenarioHi      string           `json:"scenarioHi"`
	Options         []ScenarioOption `json:"options"`
}

// ScenarioOption is one choice of a ScenarioChallenge.
type ScenarioOption struct {
	Text       string `json:"text"`
	TextHi     string `json:"textHi"`
	Feedback   string `json:"feedback"`
	FeedbackHi string `json:"feedbackHi"`
	IsOptimal  bool   `json:"isOptimal"`
}

func (ScenarioChallenge) QuestionType() QuestionType { return QuestionScenarioChallenge }

func (p ScenarioChallenge) Validate() error {
	if len(p.Options) < MinChoiceOptions {
		return fmt.Errorf("scenarioChallenge: %d options, need at least %d", len(p.Options), MinChoiceOptions)
	}
	optimal := 0
	for _, o := range p.Options {
		if o.IsOptimal {
			optimal++
		}
	}
	if optimal != 1 {
		return fmt.Errorf("scenarioChallenge: %d optimal options, want exactly 1", optimal)
	}
	return nil
}

// StoryCard is a short narrative closing on a one-line teaching.
type StoryCard struct {
	Title            string `json:"title"`
	TitleHi          string `json:"titleHi"`
	Story            string `json:"story"`
	StoryHi          string `json:"storyHi"`
	KrishnaMessage   string `json:"krishnaMessage"`
	KrishnaMessageHi string `json:"krishnaMessageHi"`
}

func (StoryCard) QuestionType() QuestionType { return QuestionStoryCard }

func (p StoryCard) Validate() error {
	if p.Title == "" || p.Story == "" || p.KrishnaMessage == "" {
		return fmt.Errorf("storyCard: title, story and krishnaMessage are required")
	}
	return nil
}

// MultipleChoice asks a question with a single correct answer index.
type MultipleChoice struct {
	QuestionText          string   `json:"questionText"`
	QuestionTextHi        string   `json:"questionTextHi"`
	Options               []string `json:"options"`
	OptionsHi             []string `json:"optionsHi"`
	CorrectAnswerIndex    int      `json:"correctAnswerIndex"`
	Explanation           string   `json:"explanation"`
	ExplanationHi         string   `json:"explanationHi"`
	RealLifeApplication   string   `json:"realLifeApplication"`
	RealLifeApplicationHi string   `json:"realLifeApplicationHi"`
}

func (MultipleChoice) QuestionType() QuestionType { return QuestionMultipleChoice }

func (p MultipleChoice) Validate() error {
	if len(p.Options) < MinChoiceOptions {
		return fmt.Errorf("multipleChoice: %d options, need at least %d", len(p.Options), MinChoiceOptions)
	}
	if p.CorrectAnswerIndex < 0 || p.CorrectAnswerIndex >= len(p.Options) {
		return fmt.Errorf("multipleChoice: correctAnswerIndex %d out of range [0,%d)", p.CorrectAnswerIndex, len(p.Options))
	}
	return nil
}

// ReflectionPrompt is an open prompt with guiding sub-questions.
type ReflectionPrompt struct {
	Prompt             string   `json:"prompt"`
	PromptHi           string   `json:"promptHi"`
	GuidingQuestions   []string `json:"guidingQuestions"`
	GuidingQuestionsHi []string `json:"guidingQuestionsHi"`
	KrishnaWisdom      string   `json:"krishnaWisdom"`
	KrishnaWisdomHi    string   `json:"krishnaWisdomHi"`
}

func (ReflectionPrompt) QuestionType() QuestionType { return QuestionReflectionPrompt }

func (p ReflectionPrompt) Validate() error {
	switch {
	case p.Prompt == "":
		return fmt.Errorf("reflectionPrompt: prompt is required")
	case len(p.GuidingQuestions) == 0:
		return fmt.Errorf("reflectionPrompt: at least one guiding question is required")
	case p.KrishnaWisdom == "":
		return fmt.Errorf("reflectionPrompt: krishnaWisdom is required")
	}
	return nil
}

// questionJSON is the on-disk shape of a Question.
type questionJSON struct {
	QuestionID string          `json:"questionId"`
	LessonID   string          `json:"lessonId"`
	Type       QuestionType    `json:"type"`
	Order      int             `json:"order"`
	XPReward   int             `json:"xpReward"`
	Status     QuestionStatus  `json:"status,omitempty"`
	Content    json.RawMessage `json:"content"`
}

func (q Question) MarshalJSON() ([]byte, error) {
	content := json.RawMessage("null")
	if q.Content != nil {
		b, err := json.Marshal(q.Content)
		if err != nil {
			return nil, fmt.Errorf("question %s: marshal content: %w", q.ID, err)
		}
		content = b
	}
	return json.Marshal(questionJSON{
		QuestionID: q.ID,
		LessonID:   q.LessonID,
		Type:       q.Type,
		Order:      q.Order,
		XPReward:   q.XPReward,
		Status:     q.Status,
		Content:    content,
	})
}

func (q *Question) UnmarshalJSON(data []byte) error {
	var raw questionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	payload, err := DecodePayload(raw.Type, raw.Content)
	if err != nil {
		return fmt.Errorf("question %s: %w", raw.QuestionID, err)
	}
	*q = Question{
		ID:       raw.QuestionID,
		LessonID: raw.LessonID,
		Type:     raw.Type,
		Order:    raw.Order,
		XPReward: raw.XPReward,
		Status:   raw.Status,
		Content:  payload,
	}
	return nil
}

// DecodePayload decodes raw content into the payload variant selected by t.
func DecodePayload(t QuestionType, raw json.RawMessage) (Payload, error) {
	var p Payload
	switch t {
	case QuestionScenarioChallenge:
		p = &ScenarioChallenge{}
	case QuestionStoryCard:
		p = &StoryCard{}
	case QuestionMultipleChoice:
		p = &MultipleChoice{}
	case QuestionReflectionPrompt:
		p = &ReflectionPrompt{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidQuestionType, t)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return derefPayload(p), nil
	}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("decode %s content: %w", t, err)
	}
	return derefPayload(p), nil
}

// derefPayload stores payloads by value so equality and copies behave like plain data.
func derefPayload(p Payload) Payload {
	switch v := p.(type) {
	case *ScenarioChallenge:
		return *v
	case *StoryCard:
		return *v
	case *MultipleChoice:
		return *v
	case *ReflectionPrompt:
		return *v
	}
	return p
}
