package bootstrap

import (
	"class-booking/cmd/bootstrap/components"

	"go.uber.org/fx"
)

var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	StoreModule,
	components.UseCaseModule,
	components.HandlerModule,
)
