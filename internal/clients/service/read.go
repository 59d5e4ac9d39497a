package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"clientview/internal/clients/join"
	"clientview/internal/clients/models"
	"clientview/internal/document"
	"clientview/internal/store"
)

// List returns every party with its addresses and their states. While the
// store is disconnected it joins the sample data instead.
func (s *Service) List(ctx context.Context) (*models.ListResult, error) {
	ctx, span := s.tracer.Start(ctx, "clients.List")
	defer span.End()

	if !s.connected() {
		span.SetAttributes(attribute.String("clientview.data_source", string(models.SourceSample)))
		if s.metrics != nil {
			s.metrics.IncrementSampleReads()
		}
		return &models.ListResult{
			Clients: join.Join(sampleParties(), sampleAddresses(), sampleStates()),
			Source:  models.SourceSample,
		}, nil
	}

	start := time.Now()
	var parties, addresses, states []document.Document
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		parties, err = s.store.Find(gctx, store.PartyCollection, nil)
		return err
	})
	g.Go(func() (err error) {
		addresses, err = s.store.Find(gctx, store.AddressCollection, nil)
		return err
	})
	g.Go(func() (err error) {
		states, err = s.store.Find(gctx, store.StateCollection, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, storeError(err, "failed to load clients")
	}

	views, stats := join.JoinWithStats(parties, addresses, states)
	if s.metrics != nil {
		s.metrics.ObserveJoin(time.Since(start).Seconds(), stats.Orphans)
	}
	span.SetAttributes(
		attribute.String("clientview.data_source", string(models.SourceStore)),
		attribute.Int("clientview.parties", len(parties)),
		attribute.Int("clientview.orphans", stats.Orphans),
	)
	if stats.Orphans > 0 {
		s.logger.DebugContext(ctx, "orphan addresses excluded from client view",
			"orphans", stats.Orphans,
		)
	}
	return &models.ListResult{Clients: views, Source: models.SourceStore}, nil
}

// Debug dumps the raw party and address collections.
func (s *Service) Debug(ctx context.Context) (*models.DebugDump, error) {
	if !s.connected() {
		return nil, errDisconnected()
	}
	parties, err := s.store.Find(ctx, store.PartyCollection, nil)
	if err != nil {
		return nil, storeError(err, "failed to load parties")
	}
	addresses, err := s.store.Find(ctx, store.AddressCollection, nil)
	if err != nil {
		return nil, storeError(err, "failed to load addresses")
	}
	return &models.DebugDump{Parties: parties, Addresses: addresses}, nil
}
