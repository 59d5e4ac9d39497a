// Package store defines the document store port shared by the memory and
// Postgres implementations. Stores are addressed by collection name and domain
// keys, never by storage identity.
package store

import (
	"context"
	"regexp"

	"clientview/internal/document"
)

// Collection names as laid out by the original data set.
const (
	PartyCollection   = "OPT_Party"
	AddressCollection = "OPT_Address"
	StateCollection   = "SYS_State"
)

// Domain key fields.
const (
	PartyKey        = "PTY_ID"
	AddressKey      = "Add_ID"
	AddressPartyKey = "Add_PartyID"
	AddressStateKey = "Add_State"
	StateKey        = "Stt_ID"
)

var keyFields = map[string][]string{
	PartyCollection:   {PartyKey},
	AddressCollection: {AddressKey, AddressPartyKey, AddressStateKey},
	StateCollection:   {StateKey},
}

// KeyFields lists the domain key fields of a known collection. Unknown
// collections have none.
func KeyFields(collection string) []string {
	return keyFields[collection]
}

// IsKnownCollection reports whether collection is one of the three entity collections.
func IsKnownCollection(collection string) bool {
	_, ok := keyFields[collection]
	return ok
}

var collectionName = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidCollectionName reports whether name may be used as a collection.
func ValidCollectionName(name string) bool {
	return collectionName.MatchString(name)
}

// UpdateResult reports counts for a filtered update.
type UpdateResult struct {
	Matched  int64 `json:"matched"`
	Modified int64 `json:"modified"`
}

// UpsertResult reports whether an upsert inserted a new document.
type UpsertResult struct {
	Matched  int64
	Inserted bool
}

// Store is a set of named collections of schema-less documents. Find returns
// documents in store order (insertion order). Implementations normalize the
// domain key fields of known collections on every write.
type Store interface {
	Find(ctx context.Context, collection string, filter document.Filter) ([]document.Document, error)
	Insert(ctx context.Context, collection string, doc document.Document) (document.Document, error)
	Upsert(ctx context.Context, collection string, filter document.Filter, doc document.Document) (UpsertResult, error)
	UpdateMany(ctx context.Context, collection string, filter document.Filter, update document.Update) (UpdateResult, error)
	DeleteOne(ctx context.Context, collection string, filter document.Filter) (int64, error)
	DeleteMany(ctx context.Context, collection string, filter document.Filter) (int64, error)
	// RunInTx runs fn against a transactional view; any error rolls back every
	// write fn made through that view. fn must use the context it is given.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
	Ping(ctx context.Context) error
	Close()
}

// NormalizeKeys rewrites the domain key fields of a known collection to their
// canonical string form.
func NormalizeKeys(collection string, doc document.Document) document.Document {
	return doc.Normalize(KeyFields(collection)...)
}
