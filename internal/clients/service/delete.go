package service

import (
	"context"
	"strings"

	"clientview/internal/clients/models"
	"clientview/internal/document"
	"clientview/internal/store"
	dErrors "clientview/pkg/domain-errors"
	"clientview/pkg/platform/audit"
)

// DeleteClient removes the first party with partyID and every address that
// references it. Missing records yield zero counts.
func (s *Service) DeleteClient(ctx context.Context, partyID string) (*models.DeleteClientResult, error) {
	partyID = strings.TrimSpace(partyID)
	if partyID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "partyId is required")
	}
	if !s.connected() {
		return nil, errDisconnected()
	}

	var res models.DeleteClientResult
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		n, err := tx.DeleteOne(ctx, store.PartyCollection, document.Filter{store.PartyKey: partyID})
		if err != nil {
			return err
		}
		res.DeletedPartyCount = n
		n, err = tx.DeleteMany(ctx, store.AddressCollection, document.Filter{store.AddressPartyKey: partyID})
		if err != nil {
			return err
		}
		res.DeletedAddressCount = n
		return nil
	})
	if err != nil {
		return nil, storeError(err, "failed to delete client")
	}

	s.logAudit(ctx, audit.EventClientDeleted,
		map[string]any{
			"deleted_party_count":   res.DeletedPartyCount,
			"deleted_address_count": res.DeletedAddressCount,
		},
		"party_id", partyID,
	)
	if s.metrics != nil {
		s.metrics.AddClientsDeleted(res.DeletedPartyCount)
	}
	return &res, nil
}

// DeleteAddress removes at most one address matching both keys.
func (s *Service) DeleteAddress(ctx context.Context, partyID, addressID string) (int64, error) {
	partyID = strings.TrimSpace(partyID)
	addressID = strings.TrimSpace(addressID)
	if partyID == "" || addressID == "" {
		return 0, dErrors.New(dErrors.CodeValidation, "partyId and addressId are required")
	}
	if !s.connected() {
		return 0, errDisconnected()
	}

	n, err := s.store.DeleteOne(ctx, store.AddressCollection, document.Filter{
		store.AddressPartyKey: partyID,
		store.AddressKey:      addressID,
	})
	if err != nil {
		return 0, storeError(err, "failed to delete address")
	}

	s.logAudit(ctx, audit.EventAddressDeleted,
		map[string]any{"address_id": addressID, "deleted_count": n},
		"party_id", partyID,
	)
	return n, nil
}
