package service

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"clientview/internal/clients/join"
	"clientview/internal/clients/models"
	"clientview/internal/document"
	"clientview/internal/store"
	dErrors "clientview/pkg/domain-errors"
	"clientview/pkg/platform/audit"
)

// Create stores a party and its first address in one transaction. The stored
// address always carries Add_ID == Add_PartyID == PTY_ID; any address payload
// values for those fields are overwritten.
func (s *Service) Create(ctx context.Context, cmd models.CreateClientCommand) (*join.ClientView, error) {
	ctx, span := s.tracer.Start(ctx, "clients.Create")
	defer span.End()

	partyID, ok := cmd.Client.Key(store.PartyKey)
	if !ok || strings.TrimSpace(partyID) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "Missing "+cmd.KeyLabel())
	}
	if !s.connected() {
		return nil, errDisconnected()
	}
	span.SetAttributes(attribute.String("clientview.party_id", partyID))

	party := cmd.Client.Clone()
	address := document.Document{}
	if len(cmd.Addresses) > 0 && cmd.Addresses[0] != nil {
		address = cmd.Addresses[0].Clone()
	}
	address[store.AddressPartyKey] = partyID
	address[store.AddressKey] = partyID

	var view join.ClientView
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		storedParty, err := tx.Insert(ctx, store.PartyCollection, party)
		if err != nil {
			return err
		}
		storedAddress, err := tx.Insert(ctx, store.AddressCollection, address)
		if err != nil {
			return err
		}
		state, err := resolveState(ctx, tx, storedAddress)
		if err != nil {
			return err
		}
		view = join.ClientView{
			Client:    storedParty,
			Addresses: []join.AddressView{{Address: storedAddress, State: state}},
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		return nil, storeError(err, "failed to create client")
	}

	s.logAudit(ctx, audit.EventClientCreated,
		map[string]any{"address_id": partyID},
		"party_id", partyID,
	)

	if s.metrics != nil {
		s.metrics.IncrementClientsCreated()
	}
	return &view, nil
}

// resolveState finds the first state referenced by address, or nil.
func resolveState(ctx context.Context, st store.Store, address document.Document) (document.Document, error) {
	key, ok := address.Key(store.AddressStateKey)
	if !ok {
		return nil, nil
	}
	states, err := st.Find(ctx, store.StateCollection, document.Filter{store.StateKey: key})
	if err != nil {
		return nil, err
	}
	return join.NewStateIndex(states).Lookup(address), nil
}
