package opentdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trivia-quiz-client/internal/domain"
)

func TestFetchQuestionsSendsWireParams(t *testing.T) {
	var got url.Values
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response_code":0,"results":[{"category":"Science","type":"multiple","difficulty":"easy","question":"What is H&lt;sub&gt;2&lt;/sub&gt;O?","correct_answer":"Water","incorrect_answers":["Salt","Sand","Air"]}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	category := 17
	result, err := client.FetchQuestions(context.Background(), domain.QuestionQuery{
		Amount:     5,
		CategoryID: &category,
		Difficulty: domain.DifficultyHard,
		Type:       domain.QuestionTypeMultiple,
	})
	require.NoError(t, err)

	assert.Equal(t, "/api.php", path)
	assert.Equal(t, "5", got.Get("amount"))
	assert.Equal(t, "17", got.Get("category"))
	assert.Equal(t, "hard", got.Get("difficulty"))
	assert.Equal(t, "multiple", got.Get("type"))

	require.Len(t, result.Results, 1)
	assert.Equal(t, 0, result.ResponseCode)
	assert.Equal(t, "What is H&lt;sub&gt;2&lt;/sub&gt;O?", result.Results[0].Question)
	assert.Equal(t, []string{"Salt", "Sand", "Air"}, result.Results[0].IncorrectAnswers)
}

func TestFetchQuestionsOmitsUnsetFilters(t *testing.T) {
	var got url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		_, _ = w.Write([]byte(`{"response_code":0,"results":[]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.FetchQuestions(context.Background(), domain.QuestionQuery{Amount: 10})
	require.NoError(t, err)

	assert.False(t, got.Has("category"))
	assert.False(t, got.Has("difficulty"))
	assert.Equal(t, "multiple", got.Get("type"))
}

func TestFetchCategories(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api_category.php" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"trivia_categories":[{"id":9,"name":"General Knowledge"},{"id":10,"name":"Entertainment: Books"}]}`))
	}))
	defer server.Close()

	result, err := NewClient(server.URL, time.Second).FetchCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Category{
		{ID: 9, Name: "General Knowledge"},
		{ID: 10, Name: "Entertainment: Books"},
	}, result.Categories)
}

func TestFetchFailures(t *testing.T) {
	t.Run("NonSuccessStatus", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		_, err := NewClient(server.URL, time.Second).FetchQuestions(context.Background(), domain.QuestionQuery{Amount: 1})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrFetchFailed))
	})

	t.Run("EmptyBody", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		_, err := NewClient(server.URL, time.Second).FetchCategories(context.Background())
		require.ErrorIs(t, err, domain.ErrEmptyBody)
		assert.ErrorIs(t, err, domain.ErrFetchFailed)
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{not json`))
		}))
		defer server.Close()

		_, err := NewClient(server.URL, time.Second).FetchQuestions(context.Background(), domain.QuestionQuery{Amount: 1})
		assert.ErrorIs(t, err, domain.ErrFetchFailed)
	})

	t.Run("Transport", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		addr := server.URL
		server.Close()

		_, err := NewClient(addr, time.Second).FetchQuestions(context.Background(), domain.QuestionQuery{Amount: 1})
		assert.ErrorIs(t, err, domain.ErrFetchFailed)
	})
}

func TestFetchDoesNotRetry(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, time.Second).FetchQuestions(context.Background(), domain.QuestionQuery{Amount: 3})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
