package opentdb

import (
	"context"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-multierror"
	"github.com/imroc/req/v3"
	"github.com/pkg/errors"

	"trivia-quiz-client/internal/domain"
)

const (
	DefaultBaseURL = "https://opentdb.com"
	DefaultTimeout = 10 * time.Second

	questionsPath  = "/api.php"
	categoriesPath = "/api_category.php"
)

// Client talks to the Open Trivia DB API. It issues exactly one request per call.
type Client struct {
	http *req.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := req.C().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetUserAgent("trivia-quiz-client").
		SetJsonMarshal(json.Marshal).
		SetJsonUnmarshal(json.Unmarshal)

	return &Client{http: httpClient}
}

// FetchQuestions calls GET /api.php. Category and difficulty are only sent when set.
func (c *Client) FetchQuestions(ctx context.Context, query domain.QuestionQuery) (domain.QuestionsResult, error) {
	request := c.http.R().
		SetContext(ctx).
		SetQueryParam("amount", strconv.Itoa(query.Amount))
	if query.CategoryID != nil {
		request.SetQueryParam("category", strconv.Itoa(*query.CategoryID))
	}
	if query.Difficulty != domain.DifficultyAny {
		request.SetQueryParam("difficulty", string(query.Difficulty))
	}
	questionType := query.Type
	if questionType == "" {
		questionType = domain.QuestionTypeMultiple
	}
	request.SetQueryParam("type", questionType)

	var result domain.QuestionsResult
	if err := c.get(ctx, request, questionsPath, &result); err != nil {
		return domain.QuestionsResult{}, err
	}
	return result, nil
}

// FetchCategories calls GET /api_category.php.
func (c *Client) FetchCategories(ctx context.Context) (domain.CategoriesResult, error) {
	var result domain.CategoriesResult
	if err := c.get(ctx, c.http.R().SetContext(ctx), categoriesPath, &result); err != nil {
		return domain.CategoriesResult{}, err
	}
	return result, nil
}

func (c *Client) get(ctx context.Context, request *req.Request, path string, dst any) error {
	resp, err := request.Get(path)
	if err != nil {
		return fetchFailed(errors.Wrapf(err, "GET %v", path))
	}
	if !resp.IsSuccessState() {
		return fetchFailed(errors.Errorf("GET %v: unexpected status %v", path, resp.Status))
	}
	data, err := resp.ToBytes()
	if err != nil {
		return fetchFailed(errors.Wrapf(err, "failed to read body of GET %v", path))
	}
	if len(data) == 0 {
		return domain.ErrEmptyBody
	}
	if err = json.UnmarshalContext(ctx, data, dst); err != nil {
		return fetchFailed(errors.Wrapf(err, "failed to unmarshal body of GET %v", path))
	}
	return nil
}

// fetchFailed joins the cause onto domain.ErrFetchFailed so callers can match it with errors.Is.
func fetchFailed(cause error) error {
	merr := multierror.Append(domain.ErrFetchFailed, cause)
	merr.ErrorFormat = func(errs []error) string {
		msg := errs[0].Error()
		for _, err := range errs[1:] {
			msg += ": " + err.Error()
		}
		return msg
	}
	return merr
}
