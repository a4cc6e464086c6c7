package contracts

import (
	"context"

	"claimlens-service/internal/app/models"
	"claimlens-service/internal/pkg/dto/requests"
	"claimlens-service/internal/pkg/dto/responses"
)

type ClaimUsecase interface {
	SubmitClaim(ctx context.Context, request *requests.SubmitClaim) (*responses.ClaimAccepted, error)
	FindClaimByID(ctx context.Context, request *requests.FindClaimByID) (*responses.ClaimDetail, error)
	ListClaims(ctx context.Context, request *requests.ListClaims) ([]responses.ClaimSummary, int, error)
	ProcessClaim(ctx context.Context, message *requests.ProcessClaim) error
}

type ClaimRepository interface {
	InsertClaim(ctx context.Context, claim *models.Claim) (string, error)
	FindClaimByID(ctx context.Context, claimID string) (*models.Claim, error)
	FindClaims(ctx context.Context, page, pageSize int) ([]models.Claim, int64, error)
	UpdateClaim(ctx context.Context, claim *models.Claim) error
	InsertClaimResult(ctx context.Context, result *models.ClaimResult) error
	FindClaimResult(ctx context.Context, claimID, resultType string) (*models.ClaimResult, error)
}

type TariffUsecase interface {
	CreateTariffs(ctx context.Context, request *requests.CreateTariffs) (*responses.TariffsCreated, error)
	FindTariffs(ctx context.Context, entries []requests.TariffEntry) ([]models.Tariff, error)
}

type TariffRepository interface {
	InsertTariffs(ctx context.Context, tariffs []models.Tariff) (int, error)
	FindTariffByCode(ctx context.Context, itemCode string) (*models.Tariff, error)
	FindTariffByName(ctx context.Context, itemName string) (*models.Tariff, error)
	CountTariffs(ctx context.Context) (int64, error)
}
