package domain

import (
	"math/rand"
	"strings"
)

const (
	MinQuestionCount = 1
	MaxQuestionCount = 50
	// DefaultQuestionCount matches the settings screen's initial slider value.
	DefaultQuestionCount = 10

	// QuestionTypeMultiple is the only question type the client asks for.
	QuestionTypeMultiple = "multiple"

	AnyCategoryName = "Any Category"
)

// Difficulty filters questions by difficulty. The zero value means any difficulty.
type Difficulty string

const (
	DifficultyAny    Difficulty = ""
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty accepts easy/medium/hard in any case; "" and "any" map to DifficultyAny.
func ParseDifficulty(raw string) (Difficulty, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "any":
		return DifficultyAny, true
	case "easy":
		return DifficultyEasy, true
	case "medium":
		return DifficultyMedium, true
	case "hard":
		return DifficultyHard, true
	}
	return DifficultyAny, false
}

// Question is a decoded multiple choice question with exactly one correct answer.
type Question struct {
	Text             string   `json:"text"`
	CorrectAnswer    string   `json:"correctAnswer"`
	IncorrectAnswers []string `json:"incorrectAnswers"`
}

// Options returns every answer of the question in random order.
func (q Question) Options(rng *rand.Rand) []string {
	options := make([]string, 0, len(q.IncorrectAnswers)+1)
	options = append(options, q.IncorrectAnswers...)
	options = append(options, q.CorrectAnswer)
	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})
	return options
}

// RawQuestion is a question as returned by the trivia API, still HTML-encoded.
type RawQuestion struct {
	Category         string   `json:"category"`
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

// QuestionsResult is the payload of a questions request.
type QuestionsResult struct {
	ResponseCode int           `json:"response_code"`
	Results      []RawQuestion `json:"results"`
}

// Category is trivia reference data used to filter questions.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CategoriesResult is the payload of a categories request.
type CategoriesResult struct {
	Categories []Category `json:"trivia_categories"`
}

// QuizSettings configures the next quiz. A nil CategoryID means any category.
type QuizSettings struct {
	QuestionCount int        `json:"questionCount"`
	Difficulty    Difficulty `json:"difficulty"`
	CategoryID    *int       `json:"categoryId,omitempty"`
}

// DefaultSettings returns the settings a fresh process starts with.
func DefaultSettings() QuizSettings {
	return QuizSettings{
		QuestionCount: DefaultQuestionCount,
		Difficulty:    DifficultyEasy,
	}
}

// Clone returns a copy that does not share the category pointer.
func (s QuizSettings) Clone() QuizSettings {
	if s.CategoryID != nil {
		id := *s.CategoryID
		s.CategoryID = &id
	}
	return s
}

// ClampQuestionCount coerces n into [MinQuestionCount, MaxQuestionCount].
func ClampQuestionCount(n int) int {
	if n < MinQuestionCount {
		return MinQuestionCount
	}
	if n > MaxQuestionCount {
		return MaxQuestionCount
	}
	return n
}

// SessionState is the observable phase of a quiz session.
type SessionState string

const (
	SessionEmpty      SessionState = "empty"
	SessionInProgress SessionState = "in_progress"
	SessionCompleted  SessionState = "completed"
)

// ResultsSummary is the final outcome of a completed quiz.
type ResultsSummary struct {
	Score int `json:"score"`
	Total int `json:"total"`
}

// Percent returns the share of correct answers in [0, 100].
func (r ResultsSummary) Percent() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Score) * 100 / float64(r.Total)
}

// SessionSnapshot is a read-only copy of a session for presentation layers.
type SessionSnapshot struct {
	Generation     uint64       `json:"generation"`
	State          SessionState `json:"state"`
	Loading        bool         `json:"loading"`
	Error          string       `json:"error,omitempty"`
	Index          int          `json:"index"`
	Total          int          `json:"total"`
	Score          int          `json:"score"`
	Question       *Question    `json:"question,omitempty"`
	SelectedAnswer string       `json:"selectedAnswer,omitempty"`
	AnswerLocked   bool         `json:"answerLocked"`
	LastQuestion   bool         `json:"lastQuestion"`
}

// QuestionQuery is a questions request as sent to the trivia API.
type QuestionQuery struct {
	Amount     int
	CategoryID *int
	Difficulty Difficulty
	Type       string
}
