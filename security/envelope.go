package security

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	envelopePrefix    = "appnigma.secret.v1:"
	envelopeAlgorithm = "aes-256-gcm"
)

type envelope struct {
	KeyID      string `json:"kid"`
	Version    int    `json:"ver"`
	Algorithm  string `json:"alg"`
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"`
}

// EnvelopeMetadata describes a sealed payload without decrypting it.
type EnvelopeMetadata struct {
	KeyID     string
	Version   int
	Algorithm string
}

// ParseEnvelopeMetadata reads the key id and version of a sealed payload, for
// example to pick a key during rotation.
func ParseEnvelopeMetadata(ciphertext []byte) (EnvelopeMetadata, error) {
	env, err := decodeEnvelope(ciphertext)
	if err != nil {
		return EnvelopeMetadata{}, err
	}
	return EnvelopeMetadata{
		KeyID:     env.KeyID,
		Version:   env.Version,
		Algorithm: env.Algorithm,
	}, nil
}

func encodeEnvelope(env envelope) ([]byte, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("security: encode envelope: %w", err)
	}
	return append([]byte(envelopePrefix), data...), nil
}

func decodeEnvelope(ciphertext []byte) (envelope, error) {
	if len(ciphertext) == 0 {
		return envelope{}, fmt.Errorf("security: ciphertext is required")
	}
	if !bytes.HasPrefix(ciphertext, []byte(envelopePrefix)) {
		return envelope{}, fmt.Errorf("security: payload is not a sealed envelope")
	}
	var env envelope
	if err := json.Unmarshal(ciphertext[len(envelopePrefix):], &env); err != nil {
		return envelope{}, fmt.Errorf("security: decode envelope: %w", err)
	}
	if strings.TrimSpace(env.Algorithm) != envelopeAlgorithm {
		return envelope{}, fmt.Errorf("security: unsupported algorithm %q", env.Algorithm)
	}
	return env, nil
}

func (e envelope) nonce() ([]byte, error) {
	nonce, err := base64.StdEncoding.DecodeString(e.Nonce)
	if err != nil {
		return nil, fmt.Errorf("security: decode nonce: %w", err)
	}
	return nonce, nil
}

func (e envelope) sealed() ([]byte, error) {
	sealed, err := base64.StdEncoding.DecodeString(e.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("security: decode ciphertext payload: %w", err)
	}
	return sealed, nil
}

// additionalData binds the key id and version into the GCM tag so they
// cannot be swapped without failing authentication.
func additionalData(keyID string, version int) []byte {
	return []byte(fmt.Sprintf("%s|%d", keyID, version))
}
