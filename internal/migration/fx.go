package migration

import (
	auditdomain "github.com/odontix/odontix/internal/audit/domain"
	catalogdomain "github.com/odontix/odontix/internal/catalog/domain"
	"github.com/odontix/odontix/internal/config"
	"github.com/odontix/odontix/internal/event"
	graphdomain "github.com/odontix/odontix/internal/graph/domain"
	"github.com/odontix/odontix/internal/seed"
	subscriptiondomain "github.com/odontix/odontix/internal/subscription/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if conn.Dialector.Name() == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// MySQL and SQLite deployments fall back to schema sync from the
			// models; the SQL migrations are written for Postgres.
			if err := conn.AutoMigrate(
				&catalogdomain.Module{},
				&graphdomain.DependencyEdge{},
				&subscriptiondomain.TenantModule{},
				&auditdomain.ModuleAuditLog{},
				&event.DomainEvent{},
			); err != nil {
				return err
			}
		}

		if cfg.SeedCatalog {
			return seed.EnsureDefaultCatalog(conn)
		}
		return nil
	}),
)
