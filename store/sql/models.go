package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type credentialRecord struct {
	bun.BaseModel `bun:"table:appnigma_connection_credentials,alias:acc"`

	ID                string     `bun:"id,pk"`
	ConnectionID      string     `bun:"connection_id,notnull"`
	InstanceURL       string     `bun:"instance_url,notnull"`
	Environment       string     `bun:"environment,notnull"`
	TokenType         string     `bun:"token_type,notnull"`
	EncryptedPayload  []byte     `bun:"encrypted_payload,notnull"`
	PayloadFormat     string     `bun:"payload_format,notnull"`
	PayloadVersion    int        `bun:"payload_version,notnull"`
	EncryptionKeyID   string     `bun:"encryption_key_id,notnull"`
	EncryptionVersion int        `bun:"encryption_version,notnull"`
	ExpiresAt         *time.Time `bun:"expires_at,nullzero"`
	FetchedAt         time.Time  `bun:"fetched_at,nullzero,notnull,default:current_timestamp"`
	CreatedAt         time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt         time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// keyedSecretProvider is satisfied by providers that expose the key used to
// seal payloads, such as security.AppKeySecretProvider.
type keyedSecretProvider interface {
	KeyID() string
	Version() int
}
