package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/odontix/odontix/internal/activation"
	"github.com/odontix/odontix/internal/audit"
	"github.com/odontix/odontix/internal/catalog"
	"github.com/odontix/odontix/internal/config"
	"github.com/odontix/odontix/internal/event"
	"github.com/odontix/odontix/internal/graph"
	"github.com/odontix/odontix/internal/logger"
	"github.com/odontix/odontix/internal/migration"
	"github.com/odontix/odontix/internal/observability/metrics"
	"github.com/odontix/odontix/internal/server"
	"github.com/odontix/odontix/internal/subscription"
	"github.com/odontix/odontix/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		metrics.Module,
		event.Module,

		// Functional domains
		catalog.Module,
		graph.Module,
		subscription.Module,
		activation.Module,
		audit.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
