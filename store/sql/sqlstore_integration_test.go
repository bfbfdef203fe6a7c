package sqlstore_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/appnigma/go-integrations-client/core"
	"github.com/appnigma/go-integrations-client/security"
	sqlstore "github.com/appnigma/go-integrations-client/store/sql"
	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/google/go-cmp/cmp"
)

func TestMigrationSmokeApplySQLite(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	var tableName string
	if err := client.DB().NewRaw(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
		"appnigma_connection_credentials",
	).Scan(context.Background(), &tableName); err != nil {
		t.Fatalf("query sqlite master: %v", err)
	}
	if tableName != "appnigma_connection_credentials" {
		t.Fatalf("expected appnigma_connection_credentials table, got %q", tableName)
	}
}

func TestCredentialStore_PutGetRoundTripIsSealed(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	store := newCredentialStore(t, client, "cache-key")
	want := sampleCredentials("tok_abc", "2025-01-01T00:00:00Z")
	if err := store.Put(ctx, "conn_1", want); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, "conn_1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("credentials mismatch (-want +got):\n%s", diff)
	}

	var payload []byte
	if err := client.DB().NewRaw(
		"SELECT encrypted_payload FROM appnigma_connection_credentials WHERE connection_id = ?",
		"conn_1",
	).Scan(ctx, &payload); err != nil {
		t.Fatalf("read raw payload: %v", err)
	}
	if bytes.Contains(payload, []byte("tok_abc")) {
		t.Fatalf("expected access token to be encrypted at rest")
	}
}

func TestCredentialStore_PutReplacesExistingRow(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	store := newCredentialStore(t, client, "cache-key")
	if err := store.Put(ctx, "conn_1", sampleCredentials("tok_old", "2025-01-01T00:00:00Z")); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if err := store.Put(ctx, "conn_1", sampleCredentials("tok_new", "2025-02-01T00:00:00Z")); err != nil {
		t.Fatalf("second put: %v", err)
	}

	got, err := store.Get(ctx, "conn_1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.AccessToken != "tok_new" {
		t.Fatalf("expected replaced token, got %q", got.AccessToken)
	}

	var count int
	if err := client.DB().NewRaw(
		"SELECT COUNT(*) FROM appnigma_connection_credentials WHERE connection_id = ?",
		"conn_1",
	).Scan(ctx, &count); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single row per connection, got %d", count)
	}
}

func TestCredentialStore_InvalidateAndMiss(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	store := newCredentialStore(t, client, "cache-key")
	if _, err := store.Get(ctx, "conn_missing"); !errors.Is(err, core.ErrCredentialsNotCached) {
		t.Fatalf("expected ErrCredentialsNotCached on miss, got %v", err)
	}

	if err := store.Put(ctx, "conn_1", sampleCredentials("tok_abc", "2025-01-01T00:00:00Z")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Invalidate(ctx, "conn_1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := store.Get(ctx, "conn_1"); !errors.Is(err, core.ErrCredentialsNotCached) {
		t.Fatalf("expected ErrCredentialsNotCached after invalidate, got %v", err)
	}
}

func TestCredentialStore_RejectsInvalidCredentials(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	store := newCredentialStore(t, client, "cache-key")
	invalid := sampleCredentials("", "2025-01-01T00:00:00Z")
	if err := store.Put(context.Background(), "conn_1", invalid); err == nil {
		t.Fatalf("expected validation error for empty access token")
	}
}

func TestCredentialStore_DecryptFailsWithDifferentKey(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	writer := newCredentialStore(t, client, "key-one")
	if err := writer.Put(ctx, "conn_1", sampleCredentials("tok_abc", "2025-01-01T00:00:00Z")); err != nil {
		t.Fatalf("put: %v", err)
	}
	reader := newCredentialStore(t, client, "key-two")
	if _, err := reader.Get(ctx, "conn_1"); err == nil {
		t.Fatalf("expected decrypt failure with a different key")
	}
}

func TestCredentialStore_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	store := newCredentialStore(t, client, "cache-key")
	if err := store.Put(ctx, "conn_old", sampleCredentials("tok_old", "2025-01-01T00:00:00Z")); err != nil {
		t.Fatalf("put old: %v", err)
	}
	if err := store.Put(ctx, "conn_new", sampleCredentials("tok_new", "2030-01-01T00:00:00Z")); err != nil {
		t.Fatalf("put new: %v", err)
	}

	removed, err := store.DeleteExpired(ctx, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected one expired row removed, got %d", removed)
	}
	if _, err := store.Get(ctx, "conn_new"); err != nil {
		t.Fatalf("expected unexpired row to remain: %v", err)
	}
}

func TestCredentialStore_BacksClientCache(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	store := newCredentialStore(t, client, "cache-key")
	transport := &countingTransport{body: []byte(`{
		"accessToken": "tok_abc",
		"instanceUrl": "https://org.example.com",
		"environment": "production",
		"region": "us-east",
		"tokenType": "Bearer",
		"expiresAt": "2030-01-01T00:00:00Z"
	}`)}

	api, err := core.NewClient(core.Config{APIKey: "ak_test", BaseURL: "https://api.example.test"},
		core.WithTransport(transport),
		core.WithCredentialCache(store),
		core.WithClock(func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	request := core.GetConnectionCredentialsRequest{ConnectionID: "conn_1"}
	if _, err := api.GetConnectionCredentials(ctx, request); err != nil {
		t.Fatalf("first get: %v", err)
	}
	got, err := api.GetConnectionCredentials(ctx, request)
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if transport.calls != 1 {
		t.Fatalf("expected the persisted cache to serve the second call, transport calls=%d", transport.calls)
	}
	if got.AccessToken != "tok_abc" {
		t.Fatalf("unexpected token %q", got.AccessToken)
	}
}

type countingTransport struct {
	calls int
	body  []byte
}

func (t *countingTransport) Kind() string {
	return "counting"
}

func (t *countingTransport) Do(context.Context, core.TransportRequest) (core.TransportResponse, error) {
	t.calls++
	return core.TransportResponse{
		StatusCode: 200,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       t.body,
	}, nil
}

func sampleCredentials(token string, expiresAt string) core.ConnectionCredentials {
	return core.ConnectionCredentials{
		AccessToken: token,
		InstanceURL: "https://org.example.com",
		Environment: "production",
		Region:      "us-east",
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	}
}

func newCredentialStore(t *testing.T, client *persistence.Client, key string) *sqlstore.CredentialStore {
	t.Helper()
	secrets, err := security.NewAppKeySecretProviderFromString(key)
	if err != nil {
		t.Fatalf("new secret provider: %v", err)
	}
	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client, secrets)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	store := factory.CredentialStore()
	if store == nil {
		t.Fatalf("expected credential store from factory")
	}
	return store
}

func newSQLiteClient(t *testing.T) (*persistence.Client, func()) {
	t.Helper()
	client, err := sqlstore.Open(context.Background(), sqlstore.SQLiteConfig(":memory:"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	return client, func() {
		_ = client.Close()
	}
}
