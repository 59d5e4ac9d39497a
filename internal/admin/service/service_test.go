package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"clientview/internal/admin/models"
	"clientview/internal/clients/service/mocks"
	"clientview/internal/connection"
	"clientview/internal/document"
	"clientview/internal/store"
	"clientview/internal/store/memory"
	dErrors "clientview/pkg/domain-errors"
	"clientview/pkg/platform/audit"
	"clientview/pkg/platform/sentinel"
)

type recordingPublisher struct {
	events []audit.Event
}

func (p *recordingPublisher) Emit(_ context.Context, e audit.Event) error {
	p.events = append(p.events, e)
	return nil
}

type GatewaySuite struct {
	suite.Suite
	ctx     context.Context
	store   *memory.Store
	audit   *recordingPublisher
	service *Service
}

func TestGatewaySuite(t *testing.T) {
	suite.Run(t, new(GatewaySuite))
}

func (s *GatewaySuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.New()
	s.audit = &recordingPublisher{}
	s.service = New(s.store, connection.Static(connection.Connected), WithAuditPublisher(s.audit))

	for _, d := range []document.Document{
		{"PTY_ID": "01", "PTY_Phone": "1"},
		{"PTY_ID": "02", "PTY_Phone": "2"},
		{"PTY_ID": "03"},
	} {
		_, err := s.store.Insert(s.ctx, store.PartyCollection, d)
		s.Require().NoError(err)
	}
}

func (s *GatewaySuite) TestSetCountsMatchedAndModified() {
	res, err := s.service.SetFields(s.ctx, models.Mutation{
		Collection: store.PartyCollection,
		Filter:     document.Filter{},
		Set:        document.Document{"PTY_Phone": "1"},
	})
	s.Require().NoError(err)
	s.Equal(int64(3), res.Matched)
	s.Equal(int64(2), res.Modified)

	s.Require().Len(s.audit.events, 1)
	ev := s.audit.events[0]
	s.Equal(string(audit.EventAdminSetApplied), ev.Action)
	s.Equal(store.PartyCollection, ev.Subject)
	s.Empty(ev.Reason)
}

func (s *GatewaySuite) TestSetCanonicalizesKeyFields() {
	res, err := s.service.SetFields(s.ctx, models.Mutation{
		Collection: store.PartyCollection,
		Filter:     document.Filter{"PTY_ID": json.Number("3")},
		Set:        document.Document{"PTY_ID": json.Number("7")},
	})
	s.Require().NoError(err)
	s.Equal(int64(0), res.Matched, "03 and 3 are different keys")

	res, err = s.service.SetFields(s.ctx, models.Mutation{
		Collection: store.PartyCollection,
		Filter:     document.Filter{"PTY_ID": "03"},
		Set:        document.Document{"PTY_ID": json.Number("7")},
	})
	s.Require().NoError(err)
	s.Equal(int64(1), res.Modified)

	docs, err := s.store.Find(s.ctx, store.PartyCollection, document.Filter{"PTY_ID": "7"})
	s.Require().NoError(err)
	s.Require().Len(docs, 1)
	s.Equal("7", docs[0]["PTY_ID"])
}

func (s *GatewaySuite) TestUnset() {
	res, err := s.service.UnsetFields(s.ctx, models.Mutation{
		Collection: store.PartyCollection,
		Filter:     document.Filter{"PTY_ID": "01"},
		Unset:      []string{"PTY_Phone", " "},
	})
	s.Require().NoError(err)
	s.Equal(int64(1), res.Matched)
	s.Equal(int64(1), res.Modified)

	_, err = s.service.UnsetFields(s.ctx, models.Mutation{Collection: store.PartyCollection, Unset: []string{""}})
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *GatewaySuite) TestDeleteManyWithNullFilter() {
	n, err := s.service.DeleteMany(s.ctx, models.Mutation{
		Collection: store.PartyCollection,
		Filter:     document.Filter{"PTY_Phone": nil},
	})
	s.Require().NoError(err)
	s.Equal(int64(1), n)
	s.Equal(2, s.store.Len(store.PartyCollection))
}

func (s *GatewaySuite) TestValidation() {
	tests := []struct {
		name     string
		mutation models.Mutation
		code     dErrors.Code
	}{
		{name: "missing collection", mutation: models.Mutation{Set: document.Document{"a": 1}}, code: dErrors.CodeBadRequest},
		{name: "not allow-listed", mutation: models.Mutation{Collection: "users", Set: document.Document{"a": 1}}, code: dErrors.CodeBadRequest},
		{name: "empty set", mutation: models.Mutation{Collection: store.PartyCollection}, code: dErrors.CodeBadRequest},
		{name: "raw bad name", mutation: models.Mutation{Scope: models.ScopeRaw, Collection: "a b", Set: document.Document{"a": 1}}, code: dErrors.CodeBadRequest},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.SetFields(s.ctx, tt.mutation)
			s.True(dErrors.HasCode(err, tt.code), "got %v", err)
		})
	}
	s.Empty(s.audit.events)
}

func (s *GatewaySuite) TestRawScopeAcceptsAnyCollection() {
	_, err := s.store.Insert(s.ctx, "audit_scratch", document.Document{"k": "v"})
	s.Require().NoError(err)

	n, err := s.service.DeleteMany(s.ctx, models.Mutation{Scope: models.ScopeRaw, Collection: "audit_scratch"})
	s.Require().NoError(err)
	s.Equal(int64(1), n)
	s.Require().Len(s.audit.events, 1)
	s.Equal("raw_access", s.audit.events[0].Reason)
}

func (s *GatewaySuite) TestDisconnected() {
	svc := New(s.store, connection.Static(connection.Disconnected))
	_, err := svc.DeleteMany(s.ctx, models.Mutation{Collection: store.PartyCollection})
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	s.Equal(3, s.store.Len(store.PartyCollection))
}

func TestStoreErrorsAreTranslated(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := mocks.NewMockStore(ctrl)
	st.EXPECT().DeleteMany(gomock.Any(), store.StateCollection, gomock.Any()).
		Return(int64(0), errors.Join(sentinel.ErrUnavailable, errors.New("dial tcp: refused")))

	svc := New(st, connection.Static(connection.Connected))
	_, err := svc.DeleteMany(context.Background(), models.Mutation{Collection: store.StateCollection})
	if !dErrors.HasCode(err, dErrors.CodeUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}
