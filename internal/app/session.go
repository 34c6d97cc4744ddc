package app

import (
	"trivia-quiz-client/internal/domain"
)

// FetchRequest is the questions request issued by Session.Start.
type FetchRequest struct {
	Generation uint64
	Amount     int
	CategoryID *int
	Difficulty domain.Difficulty
}

// FetchOutcome is the result of a FetchRequest, tagged with the generation that issued it.
type FetchOutcome struct {
	Generation uint64
	Questions  []domain.Question
	Err        error
}

// Session is the state of one quiz run.
//
// Session does no locking: all methods must be called from the single context
// that owns the session. Network results reach it through Complete, which
// drops outcomes of any generation but the latest.
type Session struct {
	id         string
	generation uint64
	loading    bool
	err        error

	questions []domain.Question
	index     int
	score     int
	selected  string
	locked    bool
}

func NewSession(id string) *Session {
	return &Session{id: id}
}

func (s *Session) ID() string {
	return s.id
}

// Start resets the session and returns the request that will populate it.
// The amount is clamped into [1,50] regardless of what the caller validated.
func (s *Session) Start(settings domain.QuizSettings) FetchRequest {
	s.reset()
	s.loading = true

	settings = settings.Clone()
	return FetchRequest{
		Generation: s.generation,
		Amount:     domain.ClampQuestionCount(settings.QuestionCount),
		CategoryID: settings.CategoryID,
		Difficulty: settings.Difficulty,
	}
}

// Reset discards the quiz, e.g. when the user goes back home. An outstanding
// fetch is not cancelled but its outcome will be ignored.
func (s *Session) Reset() {
	s.reset()
}

func (s *Session) reset() {
	s.generation++
	s.loading = false
	s.err = nil
	s.questions = nil
	s.index = 0
	s.score = 0
	s.selected = ""
	s.locked = false
}

// Complete applies a fetch outcome. It reports false when the outcome is stale
// (issued by an earlier Start) or was already applied.
func (s *Session) Complete(outcome FetchOutcome) bool {
	if outcome.Generation != s.generation || !s.loading {
		return false
	}
	s.loading = false
	if outcome.Err != nil {
		s.onFetchFailed(outcome.Err)
		return true
	}
	s.onFetchSucceeded(outcome.Questions)
	return true
}

func (s *Session) onFetchSucceeded(questions []domain.Question) {
	s.questions = append([]domain.Question(nil), questions...)
	s.err = nil
}

func (s *Session) onFetchFailed(err error) {
	s.questions = nil
	s.err = err
}

// SelectAnswer records the answer to the current question and scores it.
// Only the first selection per question counts; it reports whether this call did.
func (s *Session) SelectAnswer(answer string) bool {
	if s.locked {
		return false
	}
	question, ok := s.CurrentQuestion()
	if !ok {
		return false
	}
	s.selected = answer
	s.locked = true
	if answer == question.CorrectAnswer {
		s.score++
	}
	return true
}

// Advance moves to the next question. It is a no-op on the last question.
func (s *Session) Advance() bool {
	if s.index >= len(s.questions)-1 {
		return false
	}
	s.index++
	s.selected = ""
	s.locked = false
	return true
}

// CurrentQuestion returns the question at the current index, if any.
func (s *Session) CurrentQuestion() (domain.Question, bool) {
	if s.index < 0 || s.index >= len(s.questions) {
		return domain.Question{}, false
	}
	return s.questions[s.index], true
}

func (s *Session) Questions() []domain.Question {
	return append([]domain.Question(nil), s.questions...)
}

func (s *Session) Index() int {
	return s.index
}

func (s *Session) Score() int {
	return s.score
}

func (s *Session) AnswerLocked() bool {
	return s.locked
}

// Generation identifies the most recent Start or Reset.
func (s *Session) Generation() uint64 {
	return s.generation
}

// Loading reports whether a fetch for the current generation is outstanding.
func (s *Session) Loading() bool {
	return s.loading
}

// Err returns the failure of the last fetch, if it failed.
func (s *Session) Err() error {
	return s.err
}

func (s *Session) QuestionCount() int {
	return len(s.questions)
}

// SelectedAnswer returns the locked-in answer for the current question.
func (s *Session) SelectedAnswer() (string, bool) {
	return s.selected, s.locked
}

// IsLastQuestion reports whether the current question is the final one.
func (s *Session) IsLastQuestion() bool {
	return len(s.questions) > 0 && s.index == len(s.questions)-1
}

// State derives the session phase. Completed is the last question with its answer locked.
func (s *Session) State() domain.SessionState {
	switch {
	case len(s.questions) == 0:
		return domain.SessionEmpty
	case s.IsLastQuestion() && s.locked:
		return domain.SessionCompleted
	default:
		return domain.SessionInProgress
	}
}

func (s *Session) Snapshot() domain.SessionSnapshot {
	snapshot := domain.SessionSnapshot{
		Generation:     s.generation,
		State:          s.State(),
		Loading:        s.loading,
		Index:          s.index,
		Total:          len(s.questions),
		Score:          s.score,
		SelectedAnswer: s.selected,
		AnswerLocked:   s.locked,
		LastQuestion:   s.IsLastQuestion(),
	}
	if s.err != nil {
		snapshot.Error = s.err.Error()
	}
	if question, ok := s.CurrentQuestion(); ok {
		snapshot.Question = &question
	}
	return snapshot
}
