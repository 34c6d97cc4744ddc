package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrFetchFailed is returned when the trivia API could not be reached or answered with a non-success status.
	ErrFetchFailed = errors.New("trivia fetch failed")
	// ErrEmptyBody indicates a success status without a usable payload.
	ErrEmptyBody = fmt.Errorf("%w: empty response body", ErrFetchFailed)
	// ErrAPIResponse indicates the API reported a non-zero response code.
	ErrAPIResponse = fmt.Errorf("%w: api response code", ErrFetchFailed)
	// ErrSessionBusy is returned when a session is already attached to another connection.
	ErrSessionBusy = errors.New("quiz session already attached")
	// ErrNoQuestion indicates there is no current question to act on.
	ErrNoQuestion = errors.New("no current question")
)

// APIResponseError reports the response code of an unsuccessful trivia API reply.
func APIResponseError(code int) error {
	return fmt.Errorf("%w %d (%s)", ErrAPIResponse, code, responseCodeText(code))
}

func responseCodeText(code int) string {
	switch code {
	case 1:
		return "no results"
	case 2:
		return "invalid parameter"
	case 3:
		return "token not found"
	case 4:
		return "token empty"
	case 5:
		return "rate limit"
	default:
		return "unknown"
	}
}
