package activation

import (
	"github.com/odontix/odontix/internal/activation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("activation.service",
	fx.Provide(service.New),
)
