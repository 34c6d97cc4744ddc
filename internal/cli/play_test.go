package cli

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trivia-quiz-client/internal/app"
	"trivia-quiz-client/internal/domain"
	"trivia-quiz-client/internal/infra/htmltext"
)

func init() {
	color.NoColor = true
}

type stubClient struct {
	questions  []domain.RawQuestion
	categories []domain.Category
	err        error
	calls      int
}

func (c *stubClient) FetchQuestions(_ context.Context, query domain.QuestionQuery) (domain.QuestionsResult, error) {
	c.calls++
	if c.err != nil {
		return domain.QuestionsResult{}, c.err
	}
	questions := c.questions
	if query.Amount < len(questions) {
		questions = questions[:query.Amount]
	}
	return domain.QuestionsResult{Results: questions}, nil
}

func (c *stubClient) FetchCategories(context.Context) (domain.CategoriesResult, error) {
	if c.err != nil {
		return domain.CategoriesResult{}, c.err
	}
	return domain.CategoriesResult{Categories: c.categories}, nil
}

func twoQuestions() []domain.RawQuestion {
	return []domain.RawQuestion{
		{Question: "What is 2 + 2?", CorrectAnswer: "4", IncorrectAnswers: []string{"3", "5", "22"}},
		{Question: "Who wrote &quot;Hamlet&quot;?", CorrectAnswer: "Shakespeare", IncorrectAnswers: []string{"Dickens", "Austen", "Tolstoy"}},
	}
}

func runPlayer(t *testing.T, client *stubClient, count int, input string) string {
	t.Helper()
	service := app.NewQuizService(client, htmltext.NewDecoder(), zerolog.Nop())
	settings := app.NewSettingsStore(domain.QuizSettings{QuestionCount: count, Difficulty: domain.DifficultyEasy})
	var out bytes.Buffer
	p := newPlayer(service, settings, strings.NewReader(input), &out, rand.New(rand.NewSource(1)))
	require.NoError(t, p.Run(context.Background()))
	return out.String()
}

func TestPlayerPerfectRun(t *testing.T) {
	client := &stubClient{questions: twoQuestions()}
	out := runPlayer(t, client, 2, "4\n\nshakespeare\n\nn\n")

	assert.Contains(t, out, "Question 1 of 2")
	assert.Contains(t, out, `Who wrote "Hamlet"?`)
	assert.Contains(t, out, "Next Question")
	assert.Contains(t, out, "Finish Quiz")
	assert.Contains(t, out, "You answered 2 out of 2 questions correctly.")
	assert.Equal(t, 1, client.calls)
}

func TestPlayerRevealsCorrectAnswer(t *testing.T) {
	client := &stubClient{questions: twoQuestions()[:1]}
	out := runPlayer(t, client, 1, "22\n\nn\n")

	assert.Contains(t, out, "Incorrect. The answer was 4.")
	assert.Contains(t, out, "You answered 0 out of 1 questions correctly.")
}

func TestPlayerAnswersByLetter(t *testing.T) {
	client := &stubClient{questions: []domain.RawQuestion{
		{Question: "Only one choice", CorrectAnswer: "yes"},
	}}
	out := runPlayer(t, client, 1, "z\na\n\nn\n")

	assert.Contains(t, out, "Pick a letter between A and A.")
	assert.Contains(t, out, "Correct!")
	assert.Contains(t, out, "You answered 1 out of 1 questions correctly.")
}

func TestPlayerReplayKeepsSettings(t *testing.T) {
	client := &stubClient{questions: twoQuestions()}
	out := runPlayer(t, client, 1, "4\n\ny\n3\n\nn\n")

	assert.Equal(t, 2, client.calls)
	assert.Equal(t, 2, strings.Count(out, "Question 1 of 1"))
	assert.Contains(t, out, "You answered 0 out of 1 questions correctly.")
}

func TestPlayerFetchFailure(t *testing.T) {
	client := &stubClient{err: errors.New("connection refused")}
	out := runPlayer(t, client, 5, "n\n")

	assert.Contains(t, out, "Could not load questions.")
	assert.Contains(t, out, "connection refused")
	assert.Equal(t, 1, client.calls)
}

func TestPlayerStopsAtEndOfInput(t *testing.T) {
	client := &stubClient{questions: twoQuestions()}
	out := runPlayer(t, client, 2, "4\n")

	assert.NotContains(t, out, "You answered")
}

func TestPrintCategories(t *testing.T) {
	client := &stubClient{categories: []domain.Category{{ID: 9, Name: "General Knowledge"}, {ID: 10, Name: "Entertainment: Books"}}}
	service := app.NewQuizService(client, htmltext.NewDecoder(), zerolog.Nop())

	var out bytes.Buffer
	printCategories(context.Background(), &out, app.NewCategoryCatalog(app.CategoryLoaderFunc(service.LoadCategories), zerolog.Nop()))
	assert.Contains(t, out.String(), "General Knowledge")
	assert.Contains(t, out.String(), "  10  Entertainment: Books")

	failing := &stubClient{err: errors.New("boom")}
	service = app.NewQuizService(failing, htmltext.NewDecoder(), zerolog.Nop())
	out.Reset()
	printCategories(context.Background(), &out, app.NewCategoryCatalog(app.CategoryLoaderFunc(service.LoadCategories), zerolog.Nop()))
	assert.Equal(t, "no categories available\n", out.String())
}
