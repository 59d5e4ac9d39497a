package e2e

import (
	"github.com/cucumber/godog"

	"clientview/e2e/steps/admin"
	"clientview/e2e/steps/clients"
	"clientview/e2e/steps/common"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	clients.RegisterSteps(ctx, tc)
	admin.RegisterSteps(ctx, tc)
}
