package controllers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"claimlens-service/internal/app/config"
	"claimlens-service/internal/app/contracts"
	"claimlens-service/internal/app/models"
	"claimlens-service/internal/pkg/constvars"
	"claimlens-service/internal/pkg/dto/requests"
	"claimlens-service/internal/pkg/exceptions"
	"claimlens-service/internal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type ClaimController struct {
	Log            *zap.Logger
	ClaimUsecase   contracts.ClaimUsecase
	Progress       contracts.ProgressPublisher
	InternalConfig *config.InternalConfig
}

var (
	claimControllerInstance *ClaimController
	onceClaimController     sync.Once
)

func NewClaimController(
	logger *zap.Logger,
	claimUsecase contracts.ClaimUsecase,
	progress contracts.ProgressPublisher,
	internalConfig *config.InternalConfig,
) *ClaimController {
	onceClaimController.Do(func() {
		claimControllerInstance = &ClaimController{
			Log:            logger,
			ClaimUsecase:   claimUsecase,
			Progress:       progress,
			InternalConfig: internalConfig,
		}
	})
	return claimControllerInstance
}

// SubmitClaim accepts a multipart form with one or more files plus the
// claim parameters and responds as soon as the claim is queued.
func (ctrl *ClaimController) SubmitClaim(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok || requestID == "" {
		ctrl.Log.Error("ClaimController.SubmitClaim requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}
	ctrl.Log.Info("ClaimController.SubmitClaim called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	maxBytes := ctrl.InternalConfig.Pipeline.MaxUploadSizeInMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes*8)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		ctrl.Log.Error("ClaimController.SubmitClaim error parsing multipart form",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrCannotParseMultipartForm(err))
		return
	}

	request, err := ctrl.buildSubmitRequest(r)
	if err != nil {
		ctrl.Log.Error("ClaimController.SubmitClaim error building request",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	response, err := ctrl.ClaimUsecase.SubmitClaim(ctx, request)
	if err != nil {
		ctrl.Log.Error("ClaimController.SubmitClaim error from usecase",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		if err == context.DeadlineExceeded {
			utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrServerDeadlineExceeded(err))
			return
		}
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	ctrl.Log.Info("ClaimController.SubmitClaim succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingClaimIDKey, response.ClaimID),
	)
	utils.BuildSuccessResponse(w, constvars.StatusAccepted, constvars.ClaimAcceptedMessage, response)
}

func (ctrl *ClaimController) buildSubmitRequest(r *http.Request) (*requests.SubmitClaim, error) {
	form := r.MultipartForm
	if form == nil || len(form.File["files"]) == 0 {
		return nil, exceptions.ErrNoDocumentsProvided(fmt.Errorf("multipart form carries no files field"))
	}

	request := &requests.SubmitClaim{
		SessionID:    r.FormValue("session_id"),
		AnalysisMode: r.FormValue("analysis_mode"),
	}
	if amount := r.FormValue("claimed_amount"); amount != "" {
		parsed, err := strconv.ParseFloat(amount, 64)
		if err != nil {
			return nil, exceptions.ErrInputValidation(fmt.Errorf("claimed_amount is not a number: %w", err))
		}
		request.ClaimedAmount = parsed
	}
	if include := r.FormValue("include_payer_checklist"); include != "" {
		parsed, err := strconv.ParseBool(include)
		if err != nil {
			return nil, exceptions.ErrInputValidation(fmt.Errorf("include_payer_checklist is not a boolean: %w", err))
		}
		request.IncludePayerChecklist = parsed
	}
	if tariffs := r.FormValue("tariffs"); tariffs != "" {
		entries, err := parseTariffField(tariffs)
		if err != nil {
			return nil, err
		}
		request.Tariffs = entries
	}

	for _, header := range form.File["files"] {
		file, err := header.Open()
		if err != nil {
			return nil, exceptions.ErrCannotParseMultipartForm(err)
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, exceptions.ErrCannotParseMultipartForm(err)
		}
		request.Files = append(request.Files, models.DocumentFile{
			Name:     header.Filename,
			MIMEType: header.Header.Get(constvars.HeaderContentType),
			Data:     data,
		})
	}
	return request, nil
}

// parseTariffField accepts either a JSON object or a JSON array of tariff
// entries, matching what spreadsheet exports typically produce.
func parseTariffField(raw string) ([]requests.TariffEntry, error) {
	var entries []requests.TariffEntry
	if err := json.Unmarshal([]byte(raw), &entries); err == nil {
		return entries, nil
	}
	var single requests.TariffEntry
	if err := json.Unmarshal([]byte(raw), &single); err != nil {
		return nil, exceptions.ErrInvalidTariffPayload(err)
	}
	return []requests.TariffEntry{single}, nil
}

func (ctrl *ClaimController) FindClaimByID(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok || requestID == "" {
		ctrl.Log.Error("ClaimController.FindClaimByID requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}

	request := &requests.FindClaimByID{ClaimID: chi.URLParam(r, "claimID")}
	ctrl.Log.Info("ClaimController.FindClaimByID called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingClaimIDKey, request.ClaimID),
	)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	response, err := ctrl.ClaimUsecase.FindClaimByID(ctx, request)
	if err != nil {
		ctrl.Log.Error("ClaimController.FindClaimByID error from usecase",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ClaimGetSuccess, response)
}

func (ctrl *ClaimController) ListClaims(w http.ResponseWriter, r *http.Request) {
	requestID, ok := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	if !ok || requestID == "" {
		ctrl.Log.Error("ClaimController.ListClaims requestID not found in context")
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrMissingRequestID(nil))
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 20
	}
	request := &requests.ListClaims{Page: page, PageSize: pageSize}

	ctrl.Log.Info("ClaimController.ListClaims called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int("page", page),
		zap.Int("page_size", pageSize),
	)

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	response, total, err := ctrl.ClaimUsecase.ListClaims(ctx, request)
	if err != nil {
		ctrl.Log.Error("ClaimController.ListClaims error from usecase",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}

	pagination := utils.BuildPaginationResponse(total, page, pageSize, r.URL.Path)
	utils.BuildSuccessResponseWithPagination(w, constvars.StatusOK, constvars.ClaimListSuccess, pagination, response)
}

// Events streams progress updates for one session over SSE until the
// terminal event arrives or the client disconnects.
func (ctrl *ClaimController) Events(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrInputValidation(fmt.Errorf("session id is required")))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.BuildErrorResponse(ctrl.Log, w, exceptions.ErrServerProcess(fmt.Errorf("response writer does not support streaming")))
		return
	}

	events, cancel, err := ctrl.Progress.Subscribe(r.Context(), sessionID)
	if err != nil {
		utils.BuildErrorResponse(ctrl.Log, w, err)
		return
	}
	defer cancel()

	ctrl.Log.Info("ClaimController.Events stream opened",
		zap.String(constvars.LoggingSessionIDKey, sessionID),
	)

	w.Header().Set(constvars.HeaderContentType, constvars.MIMEEventStream)
	w.Header().Set(constvars.HeaderCacheControl, "no-cache")
	w.Header().Set(constvars.HeaderConnection, "keep-alive")
	flusher.Flush()

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		case event, open := <-events:
			if !open {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				ctrl.Log.Error("ClaimController.Events marshal failed", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
			if event.Step == constvars.StageCompleted || event.Step == constvars.StageError {
				return
			}
		}
	}
}
