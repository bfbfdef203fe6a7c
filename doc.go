// Package integrations is the Go client for the Appnigma integrations API.
//
// It fetches connection credentials and proxies requests to Salesforce on
// behalf of a connection:
//
//	client, err := integrations.NewClient(integrations.Config{APIKey: key})
//	if err != nil {
//		return err
//	}
//	creds, err := client.GetConnectionCredentials(ctx, integrations.GetConnectionCredentialsRequest{
//		ConnectionID: "conn_1",
//	})
//
// Responses that do not match the expected shape fail with a *DecodeError.
// Failures reported by the API, or in reaching it, are *AppnigmaAPIError.
// The two never overlap.
//
// Credentials can be cached in process with NewMemoryCredentialCache or
// persisted encrypted with the store/sql package.
package integrations
