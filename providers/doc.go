// Package providers groups request helpers for the systems reachable through
// the Appnigma proxy. Only Salesforce is supported.
package providers
