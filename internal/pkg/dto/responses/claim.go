package responses

import (
	"time"

	"claimlens-service/internal/app/models"
)

// ClaimAccepted acknowledges a submission. Processing continues in the
// background; SessionID is the correlation id for the progress stream.
type ClaimAccepted struct {
	ClaimID     string `json:"claim_id"`
	ClaimNumber string `json:"claim_number"`
	SessionID   string `json:"session_id"`
	Status      string `json:"status"`
	FileCount   int    `json:"file_count"`
}

type ClaimSummary struct {
	ClaimID       string     `json:"claim_id"`
	ClaimNumber   string     `json:"claim_number"`
	Status        string     `json:"status"`
	AccuracyScore float64    `json:"accuracy_score"`
	Passed        bool       `json:"passed"`
	FileCount     int        `json:"file_count"`
	CreatedAt     time.Time  `json:"created_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// ClaimDetail includes the report only once the claim reached a terminal
// status.
type ClaimDetail struct {
	ClaimSummary
	ErrorMessage string              `json:"error_message,omitempty"`
	Report       *models.ClaimReport `json:"report,omitempty"`
}

type TariffsCreated struct {
	Inserted int `json:"inserted"`
}
