package core

import (
	"context"
	"fmt"
	"strings"
)

// APIKeySigner authenticates requests to the integrations API with the
// account API key.
type APIKeySigner struct {
	APIKey string
}

func (s APIKeySigner) Sign(_ context.Context, req *TransportRequest) error {
	if req == nil {
		return fmt.Errorf("core: transport request is required")
	}
	key := strings.TrimSpace(s.APIKey)
	if key == "" {
		return fmt.Errorf("core: api key is required for signing")
	}
	if req.Headers == nil {
		req.Headers = map[string]string{}
	}
	req.Headers["Authorization"] = "Bearer " + key
	return nil
}

// SignerFunc adapts a function to Signer.
type SignerFunc func(ctx context.Context, req *TransportRequest) error

func (f SignerFunc) Sign(ctx context.Context, req *TransportRequest) error {
	if f == nil {
		return nil
	}
	return f(ctx, req)
}

var _ Signer = SignerFunc(nil)
