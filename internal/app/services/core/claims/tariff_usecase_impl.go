package claims

import (
	"context"
	"time"

	"claimlens-service/internal/app/contracts"
	"claimlens-service/internal/app/models"
	"claimlens-service/internal/pkg/dto/requests"
	"claimlens-service/internal/pkg/dto/responses"
	"claimlens-service/internal/pkg/exceptions"
	"claimlens-service/internal/pkg/utils"

	"go.uber.org/zap"
)

type tariffUsecase struct {
	TariffRepository contracts.TariffRepository
	Log              *zap.Logger
}

func NewTariffUsecase(tariffRepository contracts.TariffRepository, logger *zap.Logger) contracts.TariffUsecase {
	return &tariffUsecase{TariffRepository: tariffRepository, Log: logger}
}

func (uc *tariffUsecase) CreateTariffs(ctx context.Context, request *requests.CreateTariffs) (*responses.TariffsCreated, error) {
	uc.Log.Info("TariffUsecase.CreateTariffs called", zap.Int("entries", len(request.Entries)))

	if err := utils.ValidateStruct(request); err != nil {
		return nil, exceptions.ErrInvalidTariffPayload(err)
	}

	now := time.Now().UTC()
	tariffs := make([]models.Tariff, 0, len(request.Entries))
	for _, entry := range request.Entries {
		tariffs = append(tariffs, models.Tariff{
			ItemCode:  entry.ItemCode,
			ItemName:  entry.ItemName,
			Price:     entry.Price,
			CreatedAt: now,
		})
	}
	inserted, err := uc.TariffRepository.InsertTariffs(ctx, tariffs)
	if err != nil {
		return nil, err
	}
	return &responses.TariffsCreated{Inserted: inserted}, nil
}

func (uc *tariffUsecase) FindTariffs(ctx context.Context, entries []requests.TariffEntry) ([]models.Tariff, error) {
	found := make([]models.Tariff, 0, len(entries))
	for _, entry := range entries {
		var tariff *models.Tariff
		var err error
		if entry.ItemCode != "" {
			tariff, err = uc.TariffRepository.FindTariffByCode(ctx, entry.ItemCode)
		} else {
			tariff, err = uc.TariffRepository.FindTariffByName(ctx, entry.ItemName)
		}
		if err != nil {
			return nil, err
		}
		if tariff != nil {
			found = append(found, *tariff)
		}
	}
	return found, nil
}
