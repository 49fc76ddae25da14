// Package storage defines the Store interface implemented by the
// relational adapters (memory, postgres, sqlite) together with the
// sentinel errors and client-scope context helpers they share.
package storage
