//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/suite"

	audit "clientview/pkg/platform/audit"
	"clientview/pkg/platform/audit/store/postgres"
	txcontext "clientview/pkg/platform/tx"
	"clientview/pkg/testutil/containers"
)

type AuditStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *postgres.Store
}

func TestAuditStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(AuditStoreSuite))
}

func (s *AuditStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = postgres.New(s.postgres.Pool)
	s.Require().NoError(s.store.Migrate(context.Background()))
}

func (s *AuditStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "audit_events"))
}

func (s *AuditStoreSuite) event(subject string, at time.Time) audit.Event {
	return audit.Event{
		ID:        uuid.New(),
		Category:  audit.CategoryCompliance,
		Timestamp: at,
		Action:    string(audit.EventClientCreated),
		Subject:   subject,
		ActorID:   "ops",
		Details:   map[string]any{"addresses": float64(1)},
	}
}

func (s *AuditStoreSuite) TestAppendAndList() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	s.Require().NoError(s.store.Append(ctx, s.event("01", now)))
	s.Require().NoError(s.store.Append(ctx, s.event("02", now.Add(time.Second))))

	events, err := s.store.ListBySubject(ctx, "01")
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal("ops", events[0].ActorID)
	s.Equal(float64(1), events[0].Details["addresses"])

	recent, err := s.store.ListRecent(ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(recent, 1)
	s.Equal("02", recent[0].Subject)
}

func (s *AuditStoreSuite) TestAppendJoinsContextTransaction() {
	ctx := context.Background()
	rollback := errors.New("rollback")

	err := pgx.BeginFunc(ctx, s.postgres.Pool, func(tx pgx.Tx) error {
		if err := s.store.Append(txcontext.WithTx(ctx, tx), s.event("03", time.Now())); err != nil {
			return err
		}
		return rollback
	})
	s.ErrorIs(err, rollback)

	events, err := s.store.ListBySubject(ctx, "03")
	s.Require().NoError(err)
	s.Empty(events)
}
