package core

import (
	"context"
	"sync"
	"time"
)

type stubLogger struct{}

func (stubLogger) Trace(string, ...any) {}
func (stubLogger) Debug(string, ...any) {}
func (stubLogger) Info(string, ...any)  {}
func (stubLogger) Warn(string, ...any)  {}
func (stubLogger) Error(string, ...any) {}
func (stubLogger) Fatal(string, ...any) {}
func (s stubLogger) WithContext(context.Context) Logger {
	return s
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

type mapRawLoader struct {
	values map[string]any
}

func (l mapRawLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.values))
	for key, value := range l.values {
		out[key] = value
	}
	return out, nil
}

type stubTransport struct {
	mu        sync.Mutex
	requests  []TransportRequest
	responses []TransportResponse
	err       error
}

func (t *stubTransport) Kind() string {
	return "stub"
}

func (t *stubTransport) Do(_ context.Context, req TransportRequest) (TransportResponse, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.requests = append(t.requests, req)
	if t.err != nil {
		return TransportResponse{}, t.err
	}
	if len(t.responses) == 0 {
		return TransportResponse{StatusCode: 200, Body: []byte(`{}`)}, nil
	}
	response := t.responses[0]
	if len(t.responses) > 1 {
		t.responses = t.responses[1:]
	}
	return response, nil
}

func (t *stubTransport) calls() []TransportRequest {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TransportRequest, len(t.requests))
	copy(out, t.requests)
	return out
}

func jsonResponse(status int, body string) TransportResponse {
	return TransportResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       []byte(body),
	}
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func testConfig() Config {
	return Config{APIKey: "ak_test", BaseURL: "https://api.example.test/"}
}

// emptyEnv keeps tests independent of APPNIGMA_* in the developer's shell.
func emptyEnv() Option {
	return WithConfigProvider(NewCfgxConfigProvider(&EnvConfigLoader{
		LookupEnv: func(string) (string, bool) { return "", false },
	}))
}
