//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "clientview/pkg/platform/audit"
	"clientview/pkg/platform/audit/store/kafka"
	"clientview/pkg/testutil/containers"
)

const topic = "clientview.audit.test"

type SinkSuite struct {
	suite.Suite
	broker string
	sink   *kafka.Sink
}

func TestSinkSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(SinkSuite))
}

func (s *SinkSuite) SetupSuite() {
	s.broker = containers.GetManager().GetRedpanda(s.T()).Broker

	admin, err := kgo.NewClient(kgo.SeedBrokers(s.broker))
	s.Require().NoError(err)
	defer admin.Close()
	_, err = kadm.NewClient(admin).CreateTopic(context.Background(), 1, 1, nil, topic)
	s.Require().NoError(err)

	s.sink, err = kafka.New([]string{s.broker}, topic)
	s.Require().NoError(err)
}

func (s *SinkSuite) TearDownSuite() {
	if s.sink != nil {
		s.sink.Close()
	}
}

func (s *SinkSuite) TestAppendProducesKeyedRecord() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.Require().NoError(s.sink.Ping(ctx))

	event := audit.Event{
		ID:        uuid.New(),
		Category:  audit.CategorySecurity,
		Timestamp: time.Now(),
		Action:    string(audit.EventAdminDeleteApplied),
		Subject:   "OPT_Party",
		Details:   map[string]any{"deleted": 2},
	}
	s.Require().NoError(s.sink.Append(ctx, event))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	var got *kgo.Record
	for got == nil && ctx.Err() == nil {
		fetches := consumer.PollFetches(ctx)
		fetches.EachRecord(func(r *kgo.Record) {
			if string(r.Key) == "OPT_Party" {
				got = r
			}
		})
	}
	s.Require().NotNil(got)

	var body map[string]any
	s.Require().NoError(json.Unmarshal(got.Value, &body))
	s.Equal(event.ID.String(), body["id"])
	s.Equal("admin_delete_applied", body["action"])
	s.Equal("security", body["category"])
}
