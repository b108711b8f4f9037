// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/groomhub/internal/app/resources"
	agentstore "github.com/dalemusser/groomhub/internal/app/store/agents"
	userstore "github.com/dalemusser/groomhub/internal/app/store/users"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It is the
// place to load shared resources (like templates), warm caches, or perform
// any app-wide setup that depends on config and backends.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	if err := ensureSuperAdmin(ctx, deps, appCfg.SuperAdminEmail, logger); err != nil {
		return err
	}

	return seedDefaultAgents(ctx, deps, logger)
}

// ensureSuperAdmin promotes or creates the configured superadmin
// account. A blank email skips the step.
func ensureSuperAdmin(ctx context.Context, deps DBDeps, email string, logger *zap.Logger) error {
	if email == "" {
		return nil
	}
	if err := userstore.New(deps.GroomHubMongoDatabase).EnsureSuperAdmin(ctx, email); err != nil {
		logger.Error("superadmin bootstrap failed", zap.Error(err))
		return err
	}
	logger.Info("superadmin ensured", zap.String("email", email))
	return nil
}

// defaultAgents are the telephony lines the call center started with.
// They seed the agents collection on an empty database so the dashboard
// has display names from day one; admins manage the list afterwards.
var defaultAgents = map[string]string{
	"919656420060": "Sivagauri",
	"919188896915": "Pavithra",
	"919037556420": "Shane",
}

func seedDefaultAgents(ctx context.Context, deps DBDeps, logger *zap.Logger) error {
	agents := agentstore.New(deps.GroomHubMongoDatabase)

	n, err := agents.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	for number, name := range defaultAgents {
		if err := agents.Upsert(ctx, number, name); err != nil {
			return err
		}
	}
	logger.Info("seeded default agents", zap.Int("count", len(defaultAgents)))
	return nil
}
