package requests

import "claimlens-service/internal/app/models"

// SubmitClaim carries the parsed multipart submission into the usecase.
type SubmitClaim struct {
	SessionID             string                `json:"session_id" validate:"omitempty,uuid4"`
	AnalysisMode          string                `json:"analysis_mode" validate:"analysis_mode"`
	ClaimedAmount         float64               `json:"claimed_amount" validate:"gte=0"`
	IncludePayerChecklist bool                  `json:"include_payer_checklist"`
	Tariffs               []TariffEntry         `json:"tariffs" validate:"omitempty,dive"`
	Files                 []models.DocumentFile `json:"-" validate:"required,min=1"`
}

// ProcessClaim is the queue payload handed to the background worker.
type ProcessClaim struct {
	ClaimID               string   `json:"claim_id" validate:"required"`
	SessionID             string   `json:"session_id" validate:"required"`
	AnalysisMode          string   `json:"analysis_mode"`
	ClaimedAmount         float64  `json:"claimed_amount"`
	IncludePayerChecklist bool     `json:"include_payer_checklist"`
	ObjectNames           []string `json:"object_names" validate:"required,min=1"`
	FileNames             []string `json:"file_names" validate:"required,min=1"`
}

type FindClaimByID struct {
	ClaimID string `json:"claim_id" validate:"required"`
}

type ListClaims struct {
	Page     int `json:"page" validate:"gte=1"`
	PageSize int `json:"page_size" validate:"gte=1,lte=100"`
}

// TariffEntry is one reference price row, supplied inline with a submission
// or persisted through the tariff endpoint.
type TariffEntry struct {
	ItemCode string  `json:"item_code" validate:"required_without=ItemName"`
	ItemName string  `json:"item_name" validate:"required_without=ItemCode"`
	Price    float64 `json:"price" validate:"gte=0"`
}

type CreateTariffs struct {
	Entries []TariffEntry `json:"entries" validate:"required,min=1,dive"`
}
