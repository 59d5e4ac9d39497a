// Package storetest holds the behavioral contract every store.Store
// implementation must satisfy. Implementations embed Suite and provide a fresh
// store per test.
package storetest

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/stretchr/testify/suite"

	"clientview/internal/document"
	"clientview/internal/store"
)

// Suite runs the store contract against the store returned by NewStore.
type Suite struct {
	suite.Suite
	NewStore func() store.Store

	store store.Store
	ctx   context.Context
}

func (s *Suite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.NewStore()
}

func (s *Suite) insert(collection string, docs ...document.Document) {
	for _, d := range docs {
		_, err := s.store.Insert(s.ctx, collection, d)
		s.Require().NoError(err)
	}
}

func (s *Suite) TestFindPreservesInsertionOrder() {
	s.insert(store.AddressCollection,
		document.Document{"Add_ID": "a1", "Add_PartyID": "03"},
		document.Document{"Add_ID": "a2", "Add_PartyID": "04"},
		document.Document{"Add_ID": "a3", "Add_PartyID": "03"},
	)

	docs, err := s.store.Find(s.ctx, store.AddressCollection, document.Filter{"Add_PartyID": "03"})
	s.Require().NoError(err)
	s.Require().Len(docs, 2)
	s.Equal("a1", docs[0]["Add_ID"])
	s.Equal("a3", docs[1]["Add_ID"])
}

func (s *Suite) TestFindOnEmptyCollectionReturnsEmptySlice() {
	docs, err := s.store.Find(s.ctx, "NoSuchCollection", nil)
	s.Require().NoError(err)
	s.NotNil(docs)
	s.Empty(docs)
}

func (s *Suite) TestInsertCanonicalizesKnownKeys() {
	stored, err := s.store.Insert(s.ctx, store.PartyCollection, document.Document{
		"PTY_ID":   json.Number("42"),
		"PTY_Name": "ABC Corp",
	})
	s.Require().NoError(err)
	s.Equal("42", stored["PTY_ID"])

	docs, err := s.store.Find(s.ctx, store.PartyCollection, document.Filter{"PTY_ID": "42"})
	s.Require().NoError(err)
	s.Require().Len(docs, 1)
	s.Equal("42", docs[0]["PTY_ID"])
}

func (s *Suite) TestFilterComparesCanonically() {
	s.insert("Legacy", document.Document{"ref": json.Number("7"), "oid": map[string]any{"$oid": "65f1"}})

	for name, filter := range map[string]document.Filter{
		"string for number":  {"ref": "7"},
		"number for number":  {"ref": json.Number("7")},
		"hex for identifier": {"oid": "65f1"},
	} {
		s.Run(name, func() {
			docs, err := s.store.Find(s.ctx, "Legacy", filter)
			s.Require().NoError(err)
			s.Len(docs, 1)
		})
	}
}

func (s *Suite) TestNullFilterMatchesAbsentAndNull() {
	s.insert(store.AddressCollection,
		document.Document{"Add_ID": "a1", "Add_Line2": nil},
		document.Document{"Add_ID": "a2"},
		document.Document{"Add_ID": "a3", "Add_Line2": "Suite 4"},
	)

	docs, err := s.store.Find(s.ctx, store.AddressCollection, document.Filter{"Add_Line2": nil})
	s.Require().NoError(err)
	s.Len(docs, 2)
}

func (s *Suite) TestUpdateManyCountsMatchedAndModified() {
	s.insert(store.PartyCollection,
		document.Document{"PTY_ID": "1", "PTY_Phone": "111"},
		document.Document{"PTY_ID": "2", "PTY_Phone": "999"},
		document.Document{"PTY_ID": "3", "PTY_Phone": "999"},
	)

	res, err := s.store.UpdateMany(s.ctx, store.PartyCollection, document.Filter{},
		document.Update{Set: document.Document{"PTY_Phone": "999"}})
	s.Require().NoError(err)
	s.Equal(store.UpdateResult{Matched: 3, Modified: 1}, res)

	res, err = s.store.UpdateMany(s.ctx, store.PartyCollection, document.Filter{"PTY_ID": "2"},
		document.Update{Unset: []string{"PTY_Phone", "PTY_Email"}})
	s.Require().NoError(err)
	s.Equal(store.UpdateResult{Matched: 1, Modified: 1}, res)

	docs, err := s.store.Find(s.ctx, store.PartyCollection, document.Filter{"PTY_ID": "2"})
	s.Require().NoError(err)
	s.NotContains(docs[0], "PTY_Phone")
}

func (s *Suite) TestUpdateManyWithNoMatch() {
	res, err := s.store.UpdateMany(s.ctx, store.StateCollection, document.Filter{"Stt_ID": "none"},
		document.Update{Set: document.Document{"Stt_Name": "x"}})
	s.Require().NoError(err)
	s.Equal(store.UpdateResult{}, res)
}

func (s *Suite) TestDeleteOneRemovesFirstMatchOnly() {
	s.insert(store.PartyCollection,
		document.Document{"PTY_ID": "5", "PTY_Name": "first"},
		document.Document{"PTY_ID": "5", "PTY_Name": "second"},
	)

	n, err := s.store.DeleteOne(s.ctx, store.PartyCollection, document.Filter{"PTY_ID": "5"})
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	docs, err := s.store.Find(s.ctx, store.PartyCollection, nil)
	s.Require().NoError(err)
	s.Require().Len(docs, 1)
	s.Equal("second", docs[0]["PTY_Name"])

	n, err = s.store.DeleteOne(s.ctx, store.PartyCollection, document.Filter{"PTY_ID": "missing"})
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *Suite) TestDeleteManyRemovesAllMatches() {
	s.insert(store.AddressCollection,
		document.Document{"Add_ID": "03", "Add_PartyID": "03"},
		document.Document{"Add_ID": "b", "Add_PartyID": "03"},
		document.Document{"Add_ID": "c", "Add_PartyID": "04"},
	)

	n, err := s.store.DeleteMany(s.ctx, store.AddressCollection, document.Filter{"Add_PartyID": "03"})
	s.Require().NoError(err)
	s.Equal(int64(2), n)

	docs, err := s.store.Find(s.ctx, store.AddressCollection, nil)
	s.Require().NoError(err)
	s.Len(docs, 1)
}

func (s *Suite) TestUpsertInsertsThenUpdates() {
	filter := document.Filter{"Stt_ID": "s1"}

	res, err := s.store.Upsert(s.ctx, store.StateCollection, filter, document.Document{"Stt_Name": "California"})
	s.Require().NoError(err)
	s.True(res.Inserted)

	res, err = s.store.Upsert(s.ctx, store.StateCollection, filter, document.Document{"Stt_Code": "CA"})
	s.Require().NoError(err)
	s.False(res.Inserted)
	s.Equal(int64(1), res.Matched)

	docs, err := s.store.Find(s.ctx, store.StateCollection, filter)
	s.Require().NoError(err)
	s.Require().Len(docs, 1)
	s.Equal("California", docs[0]["Stt_Name"])
	s.Equal("CA", docs[0]["Stt_Code"])
}

func (s *Suite) TestRunInTxRollsBackOnError() {
	boom := errors.New("boom")
	err := s.store.RunInTx(s.ctx, func(ctx context.Context, tx store.Store) error {
		if _, err := tx.Insert(ctx, store.PartyCollection, document.Document{"PTY_ID": "9"}); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	docs, err := s.store.Find(s.ctx, store.PartyCollection, nil)
	s.Require().NoError(err)
	s.Empty(docs)
}

func (s *Suite) TestRunInTxCommits() {
	err := s.store.RunInTx(s.ctx, func(ctx context.Context, tx store.Store) error {
		if _, err := tx.Insert(ctx, store.PartyCollection, document.Document{"PTY_ID": "9"}); err != nil {
			return err
		}
		docs, err := tx.Find(ctx, store.PartyCollection, nil)
		if err != nil {
			return err
		}
		s.Len(docs, 1)
		_, err = tx.Insert(ctx, store.AddressCollection, document.Document{"Add_ID": "9", "Add_PartyID": "9"})
		return err
	})
	s.Require().NoError(err)

	parties, err := s.store.Find(s.ctx, store.PartyCollection, nil)
	s.Require().NoError(err)
	addresses, err := s.store.Find(s.ctx, store.AddressCollection, nil)
	s.Require().NoError(err)
	s.Len(parties, 1)
	s.Len(addresses, 1)
}

func (s *Suite) TestFindReturnsIndependentCopies() {
	s.insert(store.StateCollection, document.Document{"Stt_ID": "s1", "Stt_Name": "California"})

	docs, err := s.store.Find(s.ctx, store.StateCollection, nil)
	s.Require().NoError(err)
	docs[0]["Stt_Name"] = "changed"

	docs, err = s.store.Find(s.ctx, store.StateCollection, nil)
	s.Require().NoError(err)
	s.Equal("California", docs[0]["Stt_Name"])
}
