package subscription

import (
	"github.com/odontix/odontix/internal/subscription/repository"
	"github.com/odontix/odontix/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
