package routes

import (
	"talent-match/internal/delivery/http/handler"
	"talent-match/internal/usecase"
	"talent-match/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type Registry struct {
	health *handler.HealthHandler
	match  *handler.MatchHandler
	track  *handler.TrackHandler
	wsh    *ws.Handler
}

func NewRegistry(
	matching usecase.MatchingUsecase,
	dispatch usecase.DispatchUsecase,
	stats usecase.StatsUsecase,
	engagement usecase.EngagementUsecase,
	wsh *ws.Handler,
) *Registry {
	return &Registry{
		health: handler.NewHealthHandler(),
		match:  handler.NewMatchHandler(matching, dispatch, stats),
		track:  handler.NewTrackHandler(engagement),
		wsh:    wsh,
	}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.health.RegisterRoutes(app)

	// Tracking endpoints live at the root: the URLs are baked into
	// notification bodies and must stay short and stable.
	r.track.RegisterRoutes(app)

	api := app.Group("/api")
	r.match.RegisterRoutes(api.Group("/v1"))

	if r.wsh != nil {
		app.Get("/ws/events", r.wsh.HandleEventsWS)
	}
}
