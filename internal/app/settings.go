package app

import (
	"sync"

	"trivia-quiz-client/internal/domain"
)

// SettingsStore holds the pending settings for the next quiz. Settings outlive
// sessions: going back home and starting again reuses them until updated.
type SettingsStore struct {
	mu       sync.RWMutex
	settings domain.QuizSettings
}

func NewSettingsStore(initial domain.QuizSettings) *SettingsStore {
	initial = initial.Clone()
	initial.QuestionCount = domain.ClampQuestionCount(initial.QuestionCount)
	return &SettingsStore{settings: initial}
}

// Update replaces the pending settings. The question count is clamped into
// [1,50]; difficulty and category are stored as given.
func (s *SettingsStore) Update(questionCount int, difficulty domain.Difficulty, categoryID *int) domain.QuizSettings {
	next := domain.QuizSettings{
		QuestionCount: domain.ClampQuestionCount(questionCount),
		Difficulty:    difficulty,
		CategoryID:    categoryID,
	}.Clone()

	s.mu.Lock()
	s.settings = next
	s.mu.Unlock()
	return next.Clone()
}

// Settings returns a copy of the pending settings.
func (s *SettingsStore) Settings() domain.QuizSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Clone()
}
