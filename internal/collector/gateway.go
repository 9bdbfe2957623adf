package collector

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"MarketOverview/internal/model"
)

// RawPayload is an undecoded upstream response body.
type RawPayload []byte

// Empty reports whether the payload carries no data: blank, null, [] or {}.
func (p RawPayload) Empty() bool {
	b := bytes.TrimSpace(p)
	if len(b) == 0 {
		return true
	}
	switch string(b) {
	case "null", "[]", "{}", `""`:
		return true
	}
	return false
}

// Params narrows a fetch. Zero values mean provider defaults.
type Params struct {
	From  time.Time
	To    time.Time
	Limit int
}

// Gateway issues one logical fetch against a provider. Implementations
// return a *FetchError on every failure and never retry.
type Gateway interface {
	Name() string
	Supports(kind model.FetchKind) bool
	Fetch(ctx context.Context, kind model.FetchKind, ticker string, p Params) (RawPayload, error)
}

// Guard runs a gateway fetch, converting panics into ParseError and
// foreign errors into a FetchError.
func Guard(ctx context.Context, g Gateway, kind model.FetchKind, ticker string, p Params) (payload RawPayload, err error) {
	defer func() {
		if r := recover(); r != nil {
			payload = nil
			err = &FetchError{Gateway: g.Name(), Kind: kind, Ticker: ticker, Code: ParseError, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	payload, err = g.Fetch(ctx, kind, ticker, p)
	if err != nil {
		return nil, Classify(g.Name(), kind, ticker, err)
	}
	if payload.Empty() {
		return nil, &FetchError{Gateway: g.Name(), Kind: kind, Ticker: ticker, Code: EmptyPayload}
	}
	return payload, nil
}

// newHTTPClient builds a client with a fixed timeout and optional proxy.
func newHTTPClient(timeout time.Duration, proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
