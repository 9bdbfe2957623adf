package collector

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"MarketOverview/internal/model"
)

// ErrorCode classifies a gateway failure.
type ErrorCode string

const (
	Timeout      ErrorCode = "timeout"
	HTTPStatus   ErrorCode = "http_status"
	ParseError   ErrorCode = "parse_error"
	RateLimited  ErrorCode = "rate_limited"
	EmptyPayload ErrorCode = "empty_payload"
)

// FetchError is the only error type a gateway fetch returns. Status holds
// the HTTP code for HTTPStatus failures; 0 means no response was received.
type FetchError struct {
	Gateway string
	Kind    model.FetchKind
	Ticker  string
	Code    ErrorCode
	Status  int
	Err     error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("%s %s %s: %s", e.Gateway, e.Kind, e.Ticker, e.Code)
	if e.Code == HTTPStatus {
		msg += fmt.Sprintf("(%d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error { return e.Err }

// Retryable reports whether a later attempt at the same source may succeed.
func (e *FetchError) Retryable() bool {
	return e.Code == Timeout || e.Code == RateLimited
}

// CodeOf returns the code of a FetchError anywhere in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Code, true
	}
	return "", false
}

// statusError maps a non-2xx response to a FetchError.
func statusError(gateway string, kind model.FetchKind, ticker string, status int, body []byte) *FetchError {
	code := HTTPStatus
	if status == http.StatusTooManyRequests {
		code = RateLimited
	}
	var err error
	if len(body) > 0 {
		if len(body) > 200 {
			body = body[:200]
		}
		err = errors.New(string(body))
	}
	return &FetchError{Gateway: gateway, Kind: kind, Ticker: ticker, Code: code, Status: status, Err: err}
}

// Classify converts any error into a *FetchError.
func Classify(gateway string, kind model.FetchKind, ticker string, err error) error {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	out := &FetchError{Gateway: gateway, Kind: kind, Ticker: ticker, Code: HTTPStatus, Err: err}
	var ne net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		out.Code = Timeout
	case errors.As(err, &ne) && ne.Timeout():
		out.Code = Timeout
	}
	return out
}
