package bootstrap

import (
	"class-booking/internal/pkg/config"

	"go.uber.org/fx"
)

// ConfigModule reads the server configuration, PORT included, from the environment.
var ConfigModule = fx.Module("config",
	fx.Provide(config.LoadConfig),
)
