package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"trivia-quiz-client/internal/domain"
)

// TriviaClient performs the two trivia API calls.
type TriviaClient interface {
	FetchQuestions(ctx context.Context, query domain.QuestionQuery) (domain.QuestionsResult, error)
	FetchCategories(ctx context.Context) (domain.CategoriesResult, error)
}

// TextDecoder turns HTML-entity encoded text into plain text.
type TextDecoder interface {
	Decode(text string) string
}

// SessionRepository abstracts where live sessions are kept (in-memory, Redis-marked, etc).
// A session is attached to at most one owner at a time.
type SessionRepository interface {
	GetOrCreate(sessionID string) (*Session, error)
	Get(sessionID string) (*Session, bool)
	Release(sessionID string)
	Delete(sessionID string)
}

// CategoryRepository provides the category reference list (directly or from a cache).
type CategoryRepository interface {
	GetCategories(ctx context.Context) ([]domain.Category, error)
}

// CategoryLoaderFunc adapts a plain function to CategoryRepository.
type CategoryLoaderFunc func(ctx context.Context) ([]domain.Category, error)

func (f CategoryLoaderFunc) GetCategories(ctx context.Context) ([]domain.Category, error) {
	return f(ctx)
}

// QuizService orchestrates fetching and decoding for quiz sessions.
type QuizService struct {
	client  TriviaClient
	decoder TextDecoder
	log     zerolog.Logger
}

func NewQuizService(client TriviaClient, decoder TextDecoder, log zerolog.Logger) *QuizService {
	return &QuizService{client: client, decoder: decoder, log: log}
}

// Start resets the session and fetches its questions in the background. The
// outcome is delivered on the returned channel and must be applied with
// session.Complete by the session's owner; outcomes of superseded starts are
// dropped there.
func (s *QuizService) Start(ctx context.Context, session *Session, settings domain.QuizSettings) <-chan FetchOutcome {
	req := session.Start(settings)
	s.logRequest(session.ID(), req)

	out := make(chan FetchOutcome, 1)
	go func() {
		defer close(out)
		out <- s.Fetch(ctx, req)
	}()
	return out
}

// StartAndWait starts the session and applies the outcome before returning.
// The returned error is the fetch failure, if any.
func (s *QuizService) StartAndWait(ctx context.Context, session *Session, settings domain.QuizSettings) error {
	select {
	case outcome := <-s.Start(ctx, session, settings):
		session.Complete(outcome)
		return session.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Fetch issues one questions request and decodes the reply. It never retries.
func (s *QuizService) Fetch(ctx context.Context, req FetchRequest) FetchOutcome {
	outcome := FetchOutcome{Generation: req.Generation}

	result, err := s.client.FetchQuestions(ctx, domain.QuestionQuery{
		Amount:     domain.ClampQuestionCount(req.Amount),
		CategoryID: req.CategoryID,
		Difficulty: req.Difficulty,
		Type:       domain.QuestionTypeMultiple,
	})
	switch {
	case err != nil:
		outcome.Err = fetchFailure(err)
	case result.ResponseCode != 0:
		outcome.Err = domain.APIResponseError(result.ResponseCode)
	case len(result.Results) == 0:
		outcome.Err = domain.ErrEmptyBody
	default:
		outcome.Questions = s.decodeQuestions(result.Results)
	}

	if outcome.Err != nil {
		s.log.Error().Err(outcome.Err).Uint64("generation", req.Generation).Msg("error fetching questions")
	} else {
		s.log.Debug().Int("count", len(outcome.Questions)).Uint64("generation", req.Generation).Msg("fetched questions")
	}
	return outcome
}

// LoadCategories fetches the category list once.
func (s *QuizService) LoadCategories(ctx context.Context) ([]domain.Category, error) {
	result, err := s.client.FetchCategories(ctx)
	if err != nil {
		return nil, fetchFailure(err)
	}
	if len(result.Categories) == 0 {
		return nil, domain.ErrEmptyBody
	}

	categories := make([]domain.Category, 0, len(result.Categories))
	for _, c := range result.Categories {
		categories = append(categories, domain.Category{ID: c.ID, Name: s.decoder.Decode(c.Name)})
	}
	return categories, nil
}

func (s *QuizService) decodeQuestions(raw []domain.RawQuestion) []domain.Question {
	questions := make([]domain.Question, 0, len(raw))
	for _, q := range raw {
		incorrect := make([]string, 0, len(q.IncorrectAnswers))
		for _, answer := range q.IncorrectAnswers {
			incorrect = append(incorrect, s.decoder.Decode(answer))
		}
		questions = append(questions, domain.Question{
			Text:             s.decoder.Decode(q.Question),
			CorrectAnswer:    s.decoder.Decode(q.CorrectAnswer),
			IncorrectAnswers: incorrect,
		})
	}
	return questions
}

func (s *QuizService) logRequest(sessionID string, req FetchRequest) {
	event := s.log.Info().
		Str("session", sessionID).
		Uint64("generation", req.Generation).
		Int("amount", req.Amount).
		Str("difficulty", string(req.Difficulty))
	if req.CategoryID != nil {
		event = event.Int("category", *req.CategoryID)
	}
	event.Msg("fetching questions")
}

// fetchFailure makes sure err matches domain.ErrFetchFailed.
func fetchFailure(err error) error {
	if errors.Is(err, domain.ErrFetchFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrFetchFailed, err)
}
