package controllers

import (
	"net/http"
	"sync"

	"claimlens-service/internal/app/config"
	"claimlens-service/internal/pkg/constvars"
	"claimlens-service/internal/pkg/utils"

	"go.uber.org/zap"
)

type HealthController struct {
	Log            *zap.Logger
	InternalConfig *config.InternalConfig
}

var (
	healthControllerInstance *HealthController
	onceHealthController     sync.Once
)

func NewHealthController(logger *zap.Logger, internalConfig *config.InternalConfig) *HealthController {
	onceHealthController.Do(func() {
		healthControllerInstance = &HealthController{
			Log:            logger,
			InternalConfig: internalConfig,
		}
	})
	return healthControllerInstance
}

func (ctrl *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.HealthCheckSuccess, map[string]string{
		"status":  "up",
		"version": ctrl.InternalConfig.App.Version,
	})
}
