package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/appnigma/go-integrations-client/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CredentialStore persists connection credentials with the token payload
// sealed by a core.SecretProvider. It implements core.CredentialCache.
type CredentialStore struct {
	db      *bun.DB
	repo    repository.Repository[*credentialRecord]
	secrets core.SecretProvider
	codec   core.CredentialCodec
	now     func() time.Time
}

func NewCredentialStore(db *bun.DB, secrets core.SecretProvider, codec core.CredentialCodec) (*CredentialStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	if secrets == nil {
		return nil, fmt.Errorf("sqlstore: secret provider is required")
	}
	if codec == nil {
		codec = core.JSONCredentialCodec{}
	}
	repo := repository.NewRepository[*credentialRecord](db, credentialHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid credential repository wiring: %w", err)
		}
	}
	return &CredentialStore{
		db:      db,
		repo:    repo,
		secrets: secrets,
		codec:   codec,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *CredentialStore) Get(ctx context.Context, connectionID string) (core.ConnectionCredentials, error) {
	if s == nil || s.repo == nil {
		return core.ConnectionCredentials{}, fmt.Errorf("sqlstore: credential store is not configured")
	}
	connectionID = strings.TrimSpace(connectionID)
	if connectionID == "" {
		return core.ConnectionCredentials{}, core.ErrCredentialsNotCached
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("connection_id", "=", connectionID),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return core.ConnectionCredentials{}, err
	}
	if len(records) == 0 {
		return core.ConnectionCredentials{}, core.ErrCredentialsNotCached
	}
	return s.open(ctx, records[0])
}

// Put stores the credentials for connectionID, replacing any previous row.
func (s *CredentialStore) Put(ctx context.Context, connectionID string, credentials core.ConnectionCredentials) error {
	if s == nil || s.repo == nil || s.db == nil {
		return fmt.Errorf("sqlstore: credential store is not configured")
	}
	connectionID = strings.TrimSpace(connectionID)
	if connectionID == "" {
		return fmt.Errorf("sqlstore: connection id is required")
	}
	record, err := s.seal(ctx, connectionID, credentials)
	if err != nil {
		return err
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing, findErr := findCredentialTx(ctx, tx, connectionID)
		if findErr != nil {
			return findErr
		}
		if existing == nil {
			record.ID = uuid.NewString()
			record.CreatedAt = record.UpdatedAt
			_, createErr := s.repo.CreateTx(ctx, tx, record)
			return createErr
		}
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
		_, updateErr := tx.NewUpdate().
			Model(record).
			Where("id = ?", record.ID).
			Exec(ctx)
		return updateErr
	})
}

func (s *CredentialStore) Invalidate(ctx context.Context, connectionID string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: credential store is not configured")
	}
	_, err := s.db.NewDelete().
		Model((*credentialRecord)(nil)).
		Where("connection_id = ?", strings.TrimSpace(connectionID)).
		Exec(ctx)
	return err
}

// DeleteExpired removes rows whose expiry is before cutoff and returns the
// number of rows removed.
func (s *CredentialStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: credential store is not configured")
	}
	result, err := s.db.NewDelete().
		Model((*credentialRecord)(nil)).
		Where("expires_at IS NOT NULL").
		Where("expires_at < ?", cutoff.UTC()).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (s *CredentialStore) seal(ctx context.Context, connectionID string, credentials core.ConnectionCredentials) (*credentialRecord, error) {
	payload, err := s.codec.Encode(credentials)
	if err != nil {
		return nil, err
	}
	encrypted, err := s.secrets.Encrypt(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: encrypt credential payload: %w", err)
	}

	now := s.now()
	record := &credentialRecord{
		ConnectionID:     connectionID,
		InstanceURL:      credentials.InstanceURL,
		Environment:      credentials.Environment,
		TokenType:        credentials.TokenType,
		EncryptedPayload: encrypted,
		PayloadFormat:    s.codec.Format(),
		PayloadVersion:   s.codec.Version(),
		FetchedAt:        now,
		UpdatedAt:        now,
	}
	if keyed, ok := s.secrets.(keyedSecretProvider); ok {
		record.EncryptionKeyID = keyed.KeyID()
		record.EncryptionVersion = keyed.Version()
	}
	if expiresAt, expErr := credentials.ExpiresAtTime(); expErr == nil {
		value := expiresAt.UTC()
		record.ExpiresAt = &value
	}
	return record, nil
}

func (s *CredentialStore) open(ctx context.Context, record *credentialRecord) (core.ConnectionCredentials, error) {
	if record.PayloadFormat != s.codec.Format() || record.PayloadVersion != s.codec.Version() {
		return core.ConnectionCredentials{}, fmt.Errorf(
			"sqlstore: unsupported credential payload %s v%d",
			record.PayloadFormat,
			record.PayloadVersion,
		)
	}
	payload, err := s.secrets.Decrypt(ctx, record.EncryptedPayload)
	if err != nil {
		return core.ConnectionCredentials{}, fmt.Errorf("sqlstore: decrypt credential payload: %w", err)
	}
	return s.codec.Decode(payload)
}

func findCredentialTx(ctx context.Context, tx bun.Tx, connectionID string) (*credentialRecord, error) {
	record := &credentialRecord{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.connection_id = ?", connectionID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}
