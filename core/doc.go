// Package core contains the integrations API data contracts, the client and
// its supporting contracts. Transport and storage adapters depend on this
// package; core must not depend on them.
package core
