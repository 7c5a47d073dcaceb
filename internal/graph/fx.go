package graph

import (
	"github.com/odontix/odontix/internal/graph/repository"
	"github.com/odontix/odontix/internal/graph/service"
	"go.uber.org/fx"
)

var Module = fx.Module("graph.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
