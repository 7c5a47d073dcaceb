package audit

import (
	"github.com/odontix/odontix/internal/audit/repository"
	"github.com/odontix/odontix/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
