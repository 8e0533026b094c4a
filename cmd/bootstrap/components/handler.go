package components

import (
	"class-booking/internal/handler"
	"class-booking/internal/handler/api"
	"class-booking/internal/usecase/state"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		fx.Annotate(
			func(s *state.Store) *state.Store { return s },
			fx.As(new(api.SlotState)),
		),
		api.NewSlotHandler,
		api.NewBookingHandler,
		api.NewSessionHandler,
		func(s *api.SlotHandler, b *api.BookingHandler, sess *api.SessionHandler) handler.Handlers {
			return handler.Handlers{Slots: s, Bookings: b, Sessions: sess}
		},
	),
	fx.Invoke(handler.NewRouter),
)
