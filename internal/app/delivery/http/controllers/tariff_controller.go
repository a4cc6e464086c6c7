package controllers

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"claimlens-service/internal/app/contracts"
	"claimlens-service/internal/pkg/constvars"
	"claimlens-service/internal/pkg/dto/requests"
	"claimlens-service/internal/pkg/exceptions"
	"claimlens-service/internal/pkg/utils"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type TariffController struct {
	Log           *zap.Logger
	TariffUsecase contracts.TariffUsecase
}

var (
	tariffControllerInstance *TariffController
	onceTariffController     sync.Once
)

func NewTariffController(logger *zap.Logger, tariffUsecase contracts.TariffUsecase) *TariffController {
	onceTariffController.Do(func() {
		tariffControllerInstance = &TariffController{
			Log:           logger,
			TariffUsecase: tariffUsecase,
		}
	})
	return tariffControllerInstance
}

func (ctrl *TariffController) CreateTariffs(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok || requestID == "" {
		ctrl.Log.Error("TariffController.CreateTariffs requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}
	ctrl.Log.Info("TariffController.CreateTariffs called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}

	request := new(requests.CreateTariffs)
	if err := json.Unmarshal(body, request); err != nil || len(request.Entries) == 0 {
		// Accept a bare array of entries as well.
		var entries []requests.TariffEntry
		if arrErr := json.Unmarshal(body, &entries); arrErr != nil {
			ctrl.Log.Error("TariffController.CreateTariffs error decoding JSON",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(arrErr),
			)
			utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseJSON(arrErr))
			return
		}
		request.Entries = entries
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	response, err := ctrl.TariffUsecase.CreateTariffs(ctx, request)
	if err != nil {
		ctrl.Log.Error("TariffController.CreateTariffs error from usecase",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusCreated, constvars.TariffCreatedSuccess, response)
}
