package service

import (
	"context"

	"clientview/internal/clients/models"
	"clientview/internal/document"
	"clientview/internal/store"
	"clientview/pkg/platform/audit"
)

type seedSet struct {
	collection string
	key        string
	docs       []document.Document
}

// seedData is applied in dependency order: states, parties, addresses.
func seedData() []seedSet {
	return []seedSet{
		{
			collection: store.StateCollection,
			key:        store.StateKey,
			docs: []document.Document{
				{"Stt_ID": "01", "Stt_Name": "California", "Stt_Code": "CA"},
				{"Stt_ID": "02", "Stt_Name": "Texas", "Stt_Code": "TX"},
			},
		},
		{
			collection: store.PartyCollection,
			key:        store.PartyKey,
			docs: []document.Document{
				{"PTY_ID": "01", "PTY_FirstName": "Muppidi", "PTY_LastName": "srishanth", "PTY_Phone": "+91 7801003403", "PTY_SSN": "111-11-1111"},
				{"PTY_ID": "02", "PTY_FirstName": "Mani", "PTY_LastName": "deep", "PTY_Phone": "+91 9676282206", "PTY_SSN": "222-22-2222"},
			},
		},
		{
			collection: store.AddressCollection,
			key:        store.AddressKey,
			docs: []document.Document{
				{"Add_ID": "aaa1", "Add_Line1": "123 Market St", "Add_Line2": "", "Add_City": "Warangal", "Add_State": "TS", "Add_Zip": "506002", "Add_PartyID": "01"},
				{"Add_ID": "bbb1", "Add_Line1": "400 Ranch Rd", "Add_Line2": "", "Add_City": "Delhi galli", "Add_State": "DC", "Add_Zip": "506003", "Add_PartyID": "02"},
			},
		},
	}
}

// Seed upserts the demo dataset by domain key. Running it twice changes
// nothing the second time.
func (s *Service) Seed(ctx context.Context) (*models.SeedResult, error) {
	if !s.connected() {
		return nil, errDisconnected()
	}

	res := &models.SeedResult{Collections: map[string]models.SeedCounts{}}
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Store) error {
		for _, set := range seedData() {
			var counts models.SeedCounts
			for _, doc := range set.docs {
				up, err := tx.Upsert(ctx, set.collection, document.Filter{set.key: doc[set.key]}, doc)
				if err != nil {
					return err
				}
				if up.Inserted {
					counts.Inserted++
				} else {
					counts.Updated++
				}
			}
			res.Collections[set.collection] = counts
		}
		return nil
	})
	if err != nil {
		return nil, storeError(err, "failed to seed")
	}

	details := make(map[string]any, len(res.Collections))
	for c, counts := range res.Collections {
		details[c] = map[string]int{"inserted": counts.Inserted, "updated": counts.Updated}
	}
	s.logAudit(ctx, audit.EventSeedApplied, details)
	return res, nil
}
