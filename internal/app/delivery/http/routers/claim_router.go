package routers

import (
	"claimlens-service/internal/app/delivery/http/controllers"
	"claimlens-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
)

func attachClaimRoutes(router chi.Router, middlewares *middlewares.Middlewares, claimController *controllers.ClaimController) {
	router.With(middlewares.APIKeyAuth, middlewares.DailyQuota).Post("/", claimController.SubmitClaim)
	router.With(middlewares.APIKeyAuth).Get("/", claimController.ListClaims)
	router.With(middlewares.APIKeyAuth).Get("/{claimID}", claimController.FindClaimByID)
	router.With(middlewares.APIKeyAuth).Get("/events/{sessionID}", claimController.Events)
}
