package catalog

import (
	"github.com/odontix/odontix/internal/catalog/repository"
	"github.com/odontix/odontix/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
