package core

import (
	"encoding/json"
	"fmt"
)

const (
	CredentialPayloadFormatJSONV1 = "connection_credentials_json"
	CredentialPayloadVersionV1    = 1
)

// CredentialCodec serializes credentials for persistent caches. Encoded
// payloads use the same camelCase wire shape as the API.
type CredentialCodec interface {
	Format() string
	Version() int
	Encode(credentials ConnectionCredentials) ([]byte, error)
	Decode(payload []byte) (ConnectionCredentials, error)
}

type JSONCredentialCodec struct{}

func (JSONCredentialCodec) Format() string {
	return CredentialPayloadFormatJSONV1
}

func (JSONCredentialCodec) Version() int {
	return CredentialPayloadVersionV1
}

func (JSONCredentialCodec) Encode(credentials ConnectionCredentials) ([]byte, error) {
	if err := credentials.Validate(); err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(credentials)
	if err != nil {
		return nil, fmt.Errorf("core: encode credential payload: %w", err)
	}
	return encoded, nil
}

func (JSONCredentialCodec) Decode(payload []byte) (ConnectionCredentials, error) {
	return DecodeConnectionCredentials(payload)
}

var _ CredentialCodec = JSONCredentialCodec{}
