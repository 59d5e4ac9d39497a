package admin

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GetLastResponseStatus() int
	GetLastResponseHeader(name string) string
}

// RegisterSteps registers gateway and rate limit step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &adminSteps{tc: tc}

	ctx.Step(`^I send (\d+) delete requests for collection "([^"]*)"$`, steps.sendDeletes)
	ctx.Step(`^at least one request should be rate limited$`, steps.someRequestLimited)
}

type adminSteps struct {
	tc       TestContext
	statuses []int
}

func (s *adminSteps) sendDeletes(ctx context.Context, n int, collection string) error {
	s.statuses = s.statuses[:0]
	for i := 0; i < n; i++ {
		err := s.tc.POST("/admin/delete", map[string]any{
			"collection": collection,
			"filter":     map[string]any{"PTY_ID": "e2e-nonexistent"},
		})
		if err != nil {
			return err
		}
		s.statuses = append(s.statuses, s.tc.GetLastResponseStatus())
	}
	return nil
}

func (s *adminSteps) someRequestLimited(ctx context.Context) error {
	for _, status := range s.statuses {
		if status == 429 {
			if s.tc.GetLastResponseHeader("Retry-After") == "" {
				return fmt.Errorf("rate limited response without Retry-After")
			}
			return nil
		}
	}
	return fmt.Errorf("no request rate limited: %v", s.statuses)
}
