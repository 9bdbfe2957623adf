package collector

import (
	"context"
	"sync"

	"MarketOverview/internal/model"
)

// MockGateway returns controllable fixed payloads for development and testing.
// A kind with neither a payload nor an error fails with EmptyPayload.
type MockGateway struct {
	GatewayName string
	Payloads    map[model.FetchKind]map[string]RawPayload
	Errors      map[model.FetchKind]error
	// Hook, when set, runs before every fetch; it may block to simulate latency.
	Hook func(ctx context.Context, kind model.FetchKind, ticker string) error

	mu    sync.Mutex
	calls map[model.FetchKind]int
}

// NewMockGateway creates an empty mock.
func NewMockGateway(name string) *MockGateway {
	return &MockGateway{
		GatewayName: name,
		Payloads:    map[model.FetchKind]map[string]RawPayload{},
		Errors:      map[model.FetchKind]error{},
	}
}

// Set registers a payload for kind and ticker.
func (m *MockGateway) Set(kind model.FetchKind, ticker string, payload string) *MockGateway {
	if m.Payloads[kind] == nil {
		m.Payloads[kind] = map[string]RawPayload{}
	}
	m.Payloads[kind][ticker] = RawPayload(payload)
	return m
}

// Fail makes every fetch of kind return err.
func (m *MockGateway) Fail(kind model.FetchKind, err error) *MockGateway {
	m.Errors[kind] = err
	return m
}

// Calls returns how many fetches of kind were issued.
func (m *MockGateway) Calls(kind model.FetchKind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[kind]
}

func (m *MockGateway) Name() string {
	if m.GatewayName == "" {
		return "mock"
	}
	return m.GatewayName
}

func (m *MockGateway) Supports(_ model.FetchKind) bool { return true }

func (m *MockGateway) Fetch(ctx context.Context, kind model.FetchKind, ticker string, _ Params) (RawPayload, error) {
	m.mu.Lock()
	if m.calls == nil {
		m.calls = map[model.FetchKind]int{}
	}
	m.calls[kind]++
	m.mu.Unlock()

	if m.Hook != nil {
		if err := m.Hook(ctx, kind, ticker); err != nil {
			return nil, Classify(m.Name(), kind, ticker, err)
		}
	}
	if err := m.Errors[kind]; err != nil {
		return nil, Classify(m.Name(), kind, ticker, err)
	}
	if p, ok := m.Payloads[kind][ticker]; ok {
		return p, nil
	}
	return nil, &FetchError{Gateway: m.Name(), Kind: kind, Ticker: ticker, Code: EmptyPayload}
}
