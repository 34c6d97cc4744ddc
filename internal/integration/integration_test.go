package integration

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"trivia-quiz-client/internal/app"
	"trivia-quiz-client/internal/domain"
	"trivia-quiz-client/internal/infra/htmltext"
	"trivia-quiz-client/internal/infra/opentdb"
	infraredis "trivia-quiz-client/internal/infra/redis"
)

func TestQuizAgainstRealRedis(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	var categoryCalls atomic.Int32
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api_category.php":
			categoryCalls.Add(1)
			fmt.Fprint(w, `{"trivia_categories":[{"id":9,"name":"General Knowledge"},{"id":11,"name":"Entertainment: Film"}]}`)
		case "/api.php":
			fmt.Fprint(w, `{"response_code":0,"results":[{"type":"multiple","difficulty":"easy","category":"General Knowledge",`+
				`"question":"What is 2 &amp; 2?","correct_answer":"4","incorrect_answers":["3","5","22"]}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer api.Close()

	service := app.NewQuizService(opentdb.NewClient(api.URL, 5*time.Second), htmltext.NewDecoder(), zerolog.Nop())
	categories := infraredis.NewCategoryRepository(redisClient, service, 5*time.Minute)
	sessions := infraredis.NewSessionStore(redisClient, 5*time.Minute, 30*time.Minute)

	for i := 0; i < 2; i++ {
		list, err := categories.GetCategories(ctx)
		if err != nil {
			t.Fatalf("categories: %v", err)
		}
		if len(list) != 2 || list[0].ID != 9 {
			t.Fatalf("unexpected categories %+v", list)
		}
	}
	if got := categoryCalls.Load(); got != 1 {
		t.Fatalf("expected categories to be cached in redis, api called %d times", got)
	}

	session, err := sessions.GetOrCreate("s1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if _, err := sessions.GetOrCreate("s1"); !errors.Is(err, domain.ErrSessionBusy) {
		t.Fatalf("expected busy session, got %v", err)
	}
	if n, err := redisClient.Exists(ctx, "trivia:session:s1").Result(); err != nil || n != 1 {
		t.Fatalf("expected liveness key, got n=%d err=%v", n, err)
	}

	if err := service.StartAndWait(ctx, session, domain.DefaultSettings()); err != nil {
		t.Fatalf("start: %v", err)
	}
	question, ok := session.CurrentQuestion()
	if !ok || question.Text != "What is 2 & 2?" {
		t.Fatalf("unexpected question %+v", question)
	}
	session.SelectAnswer(question.CorrectAnswer)
	summary, ok := app.Results(session)
	if !ok || summary.Score != 1 || summary.Total != 1 {
		t.Fatalf("expected 1/1, got %+v ok=%v", summary, ok)
	}

	sessions.Release("s1")
	if n, _ := redisClient.Exists(ctx, "trivia:session:s1").Result(); n != 0 {
		t.Fatalf("expected liveness key to be cleared")
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
