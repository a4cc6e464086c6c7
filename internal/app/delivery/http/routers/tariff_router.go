package routers

import (
	"claimlens-service/internal/app/delivery/http/controllers"
	"claimlens-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
)

func attachTariffRoutes(router chi.Router, middlewares *middlewares.Middlewares, tariffController *controllers.TariffController) {
	router.With(middlewares.APIKeyAuth).Post("/", tariffController.CreateTariffs)
}
