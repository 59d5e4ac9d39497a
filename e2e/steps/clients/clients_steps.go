package clients

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	GET(path string) error
	POST(path string, body any) error
	GetLastResponseBody() []byte
}

// RegisterSteps registers client join view step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &clientSteps{tc: tc}

	ctx.Step(`^the store has been seeded$`, steps.storeSeeded)
	ctx.Step(`^I create client "([^"]*)" with an address in state "([^"]*)"$`, steps.createClient)
	ctx.Step(`^the client list should contain "([^"]*)" with state "([^"]*)"$`, steps.listContainsWithState)
	ctx.Step(`^the client list should contain "([^"]*)" with no state$`, steps.listContainsWithoutState)
	ctx.Step(`^the client list should not contain "([^"]*)"$`, steps.listDoesNotContain)
}

type clientSteps struct {
	tc TestContext
}

type clientView struct {
	Client    map[string]any `json:"client"`
	Addresses []struct {
		Address map[string]any `json:"address"`
		State   map[string]any `json:"state"`
	} `json:"addresses"`
}

func (s *clientSteps) storeSeeded(ctx context.Context) error {
	return s.tc.POST("/seed", map[string]any{})
}

func (s *clientSteps) createClient(ctx context.Context, partyID, stateID string) error {
	return s.tc.POST("/clients", map[string]any{
		"client":    map[string]any{"PTY_ID": partyID, "PTY_FirstName": "E2E"},
		"addresses": []any{map[string]any{"address": map[string]any{"Add_State": stateID}}},
	})
}

func (s *clientSteps) list() ([]clientView, error) {
	if err := s.tc.GET("/clients"); err != nil {
		return nil, err
	}
	var views []clientView
	if err := json.Unmarshal(s.tc.GetLastResponseBody(), &views); err != nil {
		return nil, fmt.Errorf("decode client list: %w", err)
	}
	return views, nil
}

func (s *clientSteps) find(partyID string) (*clientView, error) {
	views, err := s.list()
	if err != nil {
		return nil, err
	}
	for i := range views {
		if fmt.Sprint(views[i].Client["PTY_ID"]) == partyID {
			return &views[i], nil
		}
	}
	return nil, nil
}

func (s *clientSteps) listContainsWithState(ctx context.Context, partyID, stateName string) error {
	v, err := s.find(partyID)
	if err != nil {
		return err
	}
	if v == nil {
		return fmt.Errorf("client %s not listed", partyID)
	}
	for _, a := range v.Addresses {
		if a.State != nil && fmt.Sprint(a.State["Stt_Name"]) == stateName {
			return nil
		}
	}
	return fmt.Errorf("client %s has no address in state %s", partyID, stateName)
}

func (s *clientSteps) listContainsWithoutState(ctx context.Context, partyID string) error {
	v, err := s.find(partyID)
	if err != nil {
		return err
	}
	if v == nil || len(v.Addresses) == 0 {
		return fmt.Errorf("client %s not listed with an address", partyID)
	}
	for _, a := range v.Addresses {
		if a.State != nil {
			return fmt.Errorf("client %s: expected null state, got %v", partyID, a.State)
		}
	}
	return nil
}

func (s *clientSteps) listDoesNotContain(ctx context.Context, partyID string) error {
	v, err := s.find(partyID)
	if err != nil {
		return err
	}
	if v != nil {
		return fmt.Errorf("client %s still listed", partyID)
	}
	return nil
}
