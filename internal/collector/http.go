package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"MarketOverview/internal/model"
)

// getBody performs a GET and returns the body of a 200 response.
func getBody(ctx context.Context, client *http.Client, gateway string, kind model.FetchKind, ticker, endpoint string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &FetchError{Gateway: gateway, Kind: kind, Ticker: ticker, Code: HTTPStatus, Err: err}
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, Classify(gateway, kind, ticker, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Classify(gateway, kind, ticker, fmt.Errorf("read body: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(gateway, kind, ticker, resp.StatusCode, body)
	}
	return body, nil
}
