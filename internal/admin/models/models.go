// Package models holds the gateway's operation types.
package models

import "clientview/internal/document"

// Scope selects which collections an operation may address.
type Scope int

const (
	// ScopeAllowListed admits only the three entity collections.
	ScopeAllowListed Scope = iota
	// ScopeRaw admits any well-formed collection name.
	ScopeRaw
)

func (s Scope) String() string {
	if s == ScopeRaw {
		return "raw"
	}
	return "allow_listed"
}

// Op names a gateway operation in metrics and audit records.
type Op string

const (
	OpSet    Op = "set"
	OpUnset  Op = "unset"
	OpDelete Op = "delete"
)

// Mutation is one gateway request after decoding.
type Mutation struct {
	Scope      Scope
	Collection string
	Filter     document.Filter
	Set        document.Document
	Unset      []string
}

// UpdateResult mirrors the store counts for set and unset.
type UpdateResult struct {
	Matched  int64
	Modified int64
}
