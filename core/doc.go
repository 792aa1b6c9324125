// Package core holds the Plaid client: configuration, the request dispatcher,
// the declarative operation catalog and the typed methods built on it.
// Transport implementations live in adapter packages; core only depends on
// the TransportAdapter contract.
package core
