// Package join composes the nested client view from the three flat
// collections. Relationships are resolved by canonical domain-key equality.
package join

import (
	"clientview/internal/document"
	"clientview/internal/store"
)

// AddressView pairs an address with its resolved state. State is nil (JSON
// null) when Add_State matches no state.
type AddressView struct {
	Address document.Document `json:"address"`
	State   document.Document `json:"state"`
}

// ClientView is one party with every address that references it.
type ClientView struct {
	Client    document.Document `json:"client"`
	Addresses []AddressView     `json:"addresses"`
}

// Stats describes what the join dropped.
type Stats struct {
	Orphans int
}

// StateIndex resolves Add_State values to the first state with that Stt_ID.
type StateIndex map[string]document.Document

// NewStateIndex indexes states by canonical Stt_ID. Earlier states win.
func NewStateIndex(states []document.Document) StateIndex {
	idx := make(StateIndex, len(states))
	for _, st := range states {
		key, ok := st.Key(store.StateKey)
		if !ok {
			continue
		}
		if _, seen := idx[key]; !seen {
			idx[key] = st
		}
	}
	return idx
}

// Lookup returns the state referenced by addr, or nil.
func (idx StateIndex) Lookup(addr document.Document) document.Document {
	key, ok := addr.Key(store.AddressStateKey)
	if !ok {
		return nil
	}
	return idx[key]
}

// Join returns one ClientView per party, in party order.
func Join(parties, addresses, states []document.Document) []ClientView {
	views, _ := JoinWithStats(parties, addresses, states)
	return views
}

// JoinWithStats runs in O(P+A+S): addresses are bucketed by party key in store
// order, states are indexed once, then every party reads its bucket.
func JoinWithStats(parties, addresses, states []document.Document) ([]ClientView, Stats) {
	byParty := make(map[string][]document.Document, len(addresses))
	for _, a := range addresses {
		key, ok := a.Key(store.AddressPartyKey)
		if !ok {
			continue
		}
		byParty[key] = append(byParty[key], a)
	}
	stateIdx := NewStateIndex(states)

	views := make([]ClientView, 0, len(parties))
	claimed := make(map[string]struct{}, len(parties))
	for _, p := range parties {
		view := ClientView{Client: p, Addresses: []AddressView{}}
		if key, ok := p.Key(store.PartyKey); ok {
			claimed[key] = struct{}{}
			for _, a := range byParty[key] {
				view.Addresses = append(view.Addresses, AddressView{
					Address: a,
					State:   stateIdx.Lookup(a),
				})
			}
		}
		views = append(views, view)
	}

	var stats Stats
	for key, bucket := range byParty {
		if _, ok := claimed[key]; !ok {
			stats.Orphans += len(bucket)
		}
	}
	for _, a := range addresses {
		if _, ok := a.Key(store.AddressPartyKey); !ok {
			stats.Orphans++
		}
	}
	return views, stats
}
