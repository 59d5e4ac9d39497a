// Package models holds the commands and results exchanged between the client
// handler and service.
package models

import (
	"clientview/internal/clients/join"
	"clientview/internal/document"
)

// DataSource tells callers whether a read came from the store or the built-in
// sample set.
type DataSource string

const (
	SourceStore  DataSource = "store"
	SourceSample DataSource = "sample"
)

// CreateClientCommand carries a party and its address payloads. Only the
// first address is stored. Legacy marks the {party, address} request shape,
// which changes the wording of validation messages.
type CreateClientCommand struct {
	Client    document.Document
	Addresses []document.Document
	Legacy    bool
}

// KeyLabel is the request field that must carry the party key.
func (c CreateClientCommand) KeyLabel() string {
	if c.Legacy {
		return "party.PTY_ID"
	}
	return "client.PTY_ID"
}

type ListResult struct {
	Clients []join.ClientView
	Source  DataSource
}

type DeleteClientResult struct {
	DeletedPartyCount   int64
	DeletedAddressCount int64
}

// SeedCounts reports what the seed did to one collection.
type SeedCounts struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
}

type SeedResult struct {
	Collections map[string]SeedCounts
}

type DebugDump struct {
	Parties   []document.Document
	Addresses []document.Document
}
