package claims

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"claimlens-service/internal/app/config"
	"claimlens-service/internal/app/contracts"
	"claimlens-service/internal/app/models"
	"claimlens-service/internal/app/services/core/pipeline"
	"claimlens-service/internal/pkg/constvars"
	"claimlens-service/internal/pkg/dto/requests"
	"claimlens-service/internal/pkg/dto/responses"
	"claimlens-service/internal/pkg/exceptions"
	"claimlens-service/internal/pkg/utils"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var allowedMIMETypes = map[string]struct{}{
	"application/pdf": {},
	"image/jpeg":      {},
	"image/png":       {},
	"image/tiff":      {},
	"image/bmp":       {},
}

type claimUsecase struct {
	ClaimRepository  contracts.ClaimRepository
	TariffRepository contracts.TariffRepository
	Storage          contracts.DocumentStorage
	Queue            contracts.ClaimQueue
	Orchestrator     *pipeline.Orchestrator
	InternalConfig   *config.InternalConfig
	Log              *zap.Logger
}

func NewClaimUsecase(
	claimRepository contracts.ClaimRepository,
	tariffRepository contracts.TariffRepository,
	storage contracts.DocumentStorage,
	queue contracts.ClaimQueue,
	orchestrator *pipeline.Orchestrator,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.ClaimUsecase {
	return &claimUsecase{
		ClaimRepository:  claimRepository,
		TariffRepository: tariffRepository,
		Storage:          storage,
		Queue:            queue,
		Orchestrator:     orchestrator,
		InternalConfig:   internalConfig,
		Log:              logger,
	}
}

// SubmitClaim validates the submission, parks the files in object storage,
// and enqueues the claim for background processing. The response returns
// immediately; progress flows over the session's event stream.
func (uc *claimUsecase) SubmitClaim(ctx context.Context, request *requests.SubmitClaim) (*responses.ClaimAccepted, error) {
	uc.Log.Info("ClaimUsecase.SubmitClaim called", zap.Int("file_count", len(request.Files)))

	if request.AnalysisMode == "" {
		request.AnalysisMode = uc.InternalConfig.Pipeline.AnalysisMode
	}
	if err := utils.ValidateStruct(request); err != nil {
		return nil, exceptions.ErrInputValidation(err)
	}
	if err := uc.validateFiles(request.Files); err != nil {
		return nil, err
	}

	sessionID := request.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	claimNumber := fmt.Sprintf(constvars.ClaimNumberFormat, strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8]))

	now := time.Now().UTC()
	objectNames := make([]string, 0, len(request.Files))
	fileNames := make([]string, 0, len(request.Files))
	for i, file := range request.Files {
		objectNames = append(objectNames, fmt.Sprintf("%s/%d_%s", sessionID, i, filepath.Base(file.Name)))
		fileNames = append(fileNames, file.Name)
	}

	claim := &models.Claim{
		ClaimNumber:   claimNumber,
		SessionID:     sessionID,
		Status:        constvars.ClaimStatusProcessing,
		AnalysisMode:  request.AnalysisMode,
		FileCount:     len(request.Files),
		ObjectNames:   objectNames,
		FileNames:     fileNames,
		ClaimedAmount: request.ClaimedAmount,
		TimeModel:     models.TimeModel{CreatedAt: now, UpdatedAt: now},
	}
	claimID, err := uc.ClaimRepository.InsertClaim(ctx, claim)
	if err != nil {
		return nil, err
	}

	for i, file := range request.Files {
		if err := uc.Storage.Upload(ctx, objectNames[i], file.MIMEType, file.Data); err != nil {
			return nil, err
		}
	}

	if len(request.Tariffs) > 0 {
		if err := uc.insertTariffs(ctx, request.Tariffs); err != nil {
			return nil, err
		}
	}

	message := &requests.ProcessClaim{
		ClaimID:               claimID,
		SessionID:             sessionID,
		AnalysisMode:          request.AnalysisMode,
		ClaimedAmount:         request.ClaimedAmount,
		IncludePayerChecklist: request.IncludePayerChecklist,
		ObjectNames:           objectNames,
		FileNames:             fileNames,
	}
	if err := uc.Queue.Enqueue(ctx, message); err != nil {
		uc.failClaim(ctx, claimID, "could not enqueue claim for processing")
		return nil, err
	}

	return &responses.ClaimAccepted{
		ClaimID:     claimID,
		ClaimNumber: claimNumber,
		SessionID:   sessionID,
		Status:      constvars.ClaimStatusProcessing,
		FileCount:   len(request.Files),
	}, nil
}

// ProcessClaim is the worker-side entry point. It pulls the parked files,
// runs the pipeline, persists the report, and always removes the stored
// objects once processing finished either way.
func (uc *claimUsecase) ProcessClaim(ctx context.Context, message *requests.ProcessClaim) error {
	uc.Log.Info("ClaimUsecase.ProcessClaim called", zap.String("claim_id", message.ClaimID))

	if err := utils.ValidateStruct(message); err != nil {
		return exceptions.ErrInputValidation(err)
	}

	claim, err := uc.ClaimRepository.FindClaimByID(ctx, message.ClaimID)
	if err != nil {
		return err
	}
	if claim == nil {
		return exceptions.ErrClaimNotFound(fmt.Errorf("claim %s not in store", message.ClaimID))
	}

	defer func() {
		for _, objectName := range message.ObjectNames {
			if err := uc.Storage.Remove(ctx, objectName); err != nil {
				uc.Log.Warn("ClaimUsecase.ProcessClaim object cleanup failed",
					zap.String("object_name", objectName), zap.Error(err))
			}
		}
	}()

	files := make([]models.DocumentFile, 0, len(message.ObjectNames))
	for i, objectName := range message.ObjectNames {
		data, err := uc.Storage.Get(ctx, objectName)
		if err != nil {
			uc.failClaim(ctx, claim.ID, "stored claim document could not be read")
			return err
		}
		name := objectName
		if i < len(message.FileNames) {
			name = message.FileNames[i]
		}
		files = append(files, models.DocumentFile{
			Name:     name,
			MIMEType: mimeTypeForFile(name),
			Data:     data,
		})
	}

	tariffCount, err := uc.TariffRepository.CountTariffs(ctx)
	if err != nil {
		uc.Log.Warn("ClaimUsecase.ProcessClaim tariff count failed, skipping tariff check", zap.Error(err))
		tariffCount = 0
	}

	report, err := uc.Orchestrator.Run(ctx, pipeline.RunInput{
		ClaimID:               claim.ID,
		ClaimNumber:           claim.ClaimNumber,
		SessionID:             message.SessionID,
		AnalysisMode:          message.AnalysisMode,
		ClaimedAmount:         message.ClaimedAmount,
		IncludePayerChecklist: message.IncludePayerChecklist,
		TariffCheckEnabled:    tariffCount > 0,
		Files:                 files,
	})
	if err != nil {
		uc.failClaim(ctx, claim.ID, "claim analysis failed")
		return err
	}

	payload, err := json.Marshal(report)
	if err != nil {
		uc.failClaim(ctx, claim.ID, "claim report could not be serialized")
		return exceptions.ErrCannotMarshalJSON(err)
	}
	if err := uc.ClaimRepository.InsertClaimResult(ctx, &models.ClaimResult{
		ClaimID:    claim.ID,
		ResultType: constvars.ResultTypeReport,
		Payload:    string(payload),
		CreatedAt:  time.Now().UTC(),
	}); err != nil {
		return err
	}

	completedAt := time.Now().UTC()
	claim.Status = constvars.ClaimStatusCompleted
	claim.AccuracyScore = report.Score.AccuracyScore
	claim.Passed = report.Score.Passed
	claim.CompletedAt = &completedAt
	claim.UpdatedAt = completedAt
	return uc.ClaimRepository.UpdateClaim(ctx, claim)
}

func (uc *claimUsecase) FindClaimByID(ctx context.Context, request *requests.FindClaimByID) (*responses.ClaimDetail, error) {
	uc.Log.Info("ClaimUsecase.FindClaimByID called", zap.String("claim_id", request.ClaimID))

	if err := utils.ValidateStruct(request); err != nil {
		return nil, exceptions.ErrInputValidation(err)
	}

	claim, err := uc.ClaimRepository.FindClaimByID(ctx, request.ClaimID)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, exceptions.ErrClaimNotFound(fmt.Errorf("claim %s not in store", request.ClaimID))
	}

	detail := &responses.ClaimDetail{
		ClaimSummary: buildClaimSummary(claim),
		ErrorMessage: claim.ErrorMessage,
	}
	if claim.Status == constvars.ClaimStatusCompleted {
		result, err := uc.ClaimRepository.FindClaimResult(ctx, claim.ID, constvars.ResultTypeReport)
		if err != nil {
			return nil, err
		}
		if result != nil {
			if payload, ok := result.Payload.(string); ok {
				var report models.ClaimReport
				if err := json.Unmarshal([]byte(payload), &report); err == nil {
					detail.Report = &report
				}
			}
		}
	}
	return detail, nil
}

func (uc *claimUsecase) ListClaims(ctx context.Context, request *requests.ListClaims) ([]responses.ClaimSummary, int, error) {
	uc.Log.Info("ClaimUsecase.ListClaims called", zap.Int("page", request.Page), zap.Int("page_size", request.PageSize))

	if err := utils.ValidateStruct(request); err != nil {
		return nil, 0, exceptions.ErrInputValidation(err)
	}

	claims, total, err := uc.ClaimRepository.FindClaims(ctx, request.Page, request.PageSize)
	if err != nil {
		return nil, 0, err
	}
	summaries := make([]responses.ClaimSummary, 0, len(claims))
	for i := range claims {
		summaries = append(summaries, buildClaimSummary(&claims[i]))
	}
	return summaries, int(total), nil
}

func (uc *claimUsecase) validateFiles(files []models.DocumentFile) error {
	maxBytes := uc.InternalConfig.Pipeline.MaxUploadSizeInMB * 1024 * 1024
	for _, file := range files {
		if len(file.Data) == 0 {
			return exceptions.ErrNoDocumentsProvided(fmt.Errorf("file %s is empty", file.Name))
		}
		mimeType := file.MIMEType
		if mimeType == "" {
			mimeType = mimeTypeForFile(file.Name)
		}
		if _, ok := allowedMIMETypes[strings.ToLower(mimeType)]; !ok {
			return exceptions.ErrUnsupportedFileType(fmt.Errorf("file %s has type %s", file.Name, mimeType))
		}
		if maxBytes > 0 && int64(len(file.Data)) > maxBytes {
			return exceptions.ErrFileTooLarge(fmt.Errorf("file %s exceeds %dMB", file.Name, uc.InternalConfig.Pipeline.MaxUploadSizeInMB))
		}
	}
	return nil
}

func (uc *claimUsecase) insertTariffs(ctx context.Context, entries []requests.TariffEntry) error {
	now := time.Now().UTC()
	tariffs := make([]models.Tariff, 0, len(entries))
	for _, entry := range entries {
		tariffs = append(tariffs, models.Tariff{
			ItemCode:  entry.ItemCode,
			ItemName:  entry.ItemName,
			Price:     entry.Price,
			CreatedAt: now,
		})
	}
	_, err := uc.TariffRepository.InsertTariffs(ctx, tariffs)
	return err
}

func (uc *claimUsecase) failClaim(ctx context.Context, claimID, message string) {
	claim, err := uc.ClaimRepository.FindClaimByID(ctx, claimID)
	if err != nil || claim == nil {
		uc.Log.Error("ClaimUsecase.failClaim could not load claim", zap.String("claim_id", claimID), zap.Error(err))
		return
	}
	now := time.Now().UTC()
	claim.Status = constvars.ClaimStatusFailed
	claim.ErrorMessage = message
	claim.CompletedAt = &now
	claim.UpdatedAt = now
	if err := uc.ClaimRepository.UpdateClaim(ctx, claim); err != nil {
		uc.Log.Error("ClaimUsecase.failClaim update failed", zap.String("claim_id", claimID), zap.Error(err))
	}
}

func buildClaimSummary(claim *models.Claim) responses.ClaimSummary {
	return responses.ClaimSummary{
		ClaimID:       claim.ID,
		ClaimNumber:   claim.ClaimNumber,
		Status:        claim.Status,
		AccuracyScore: claim.AccuracyScore,
		Passed:        claim.Passed,
		FileCount:     claim.FileCount,
		CreatedAt:     claim.CreatedAt,
		CompletedAt:   claim.CompletedAt,
	}
}

func mimeTypeForFile(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".tiff", ".tif":
		return "image/tiff"
	case ".bmp":
		return "image/bmp"
	default:
		return "application/octet-stream"
	}
}
