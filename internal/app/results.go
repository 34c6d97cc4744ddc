package app

import "trivia-quiz-client/internal/domain"

// Summarize derives the results view from a session. It has no state of its own,
// so summarizing the same session twice yields the same value.
func Summarize(s *Session) domain.ResultsSummary {
	return domain.ResultsSummary{
		Score: s.Score(),
		Total: s.QuestionCount(),
	}
}

// Results returns the summary once the session is completed.
func Results(s *Session) (domain.ResultsSummary, bool) {
	if s.State() != domain.SessionCompleted {
		return domain.ResultsSummary{}, false
	}
	return Summarize(s), true
}
