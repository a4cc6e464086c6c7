package pipeline

import (
	"context"
	"math"

	"claimlens-service/internal/app/contracts"
	"claimlens-service/internal/app/models"
	"claimlens-service/internal/pkg/utils"

	"go.uber.org/zap"
)

// amountEpsilon is the tolerance for comparing monetary values. Differences
// of a full paisa or more are mismatches.
const amountEpsilon = 0.01

type ApprovalVerifier struct {
	oracle contracts.Extractor
	log    *zap.Logger
}

func NewApprovalVerifier(oracle contracts.Extractor, log *zap.Logger) *ApprovalVerifier {
	return &ApprovalVerifier{oracle: oracle, log: log}
}

type approvalResponse struct {
	ApprovalFound     bool    `json:"approval_found"`
	ApprovalType      string  `json:"approval_type"`
	ApprovalReference string  `json:"approval_reference"`
	ApprovalDate      string  `json:"approval_date"`
	ApprovalValidFrom string  `json:"approval_valid_from"`
	ApprovalValidTo   string  `json:"approval_valid_to"`
	ApprovedAmount    float64 `json:"approved_amount"`
	AuthorizedAmount  float64 `json:"authorized_amount"`
	SanctionedAmount  float64 `json:"sanctioned_amount"`
	AdmissibleAmount  float64 `json:"admissible_amount"`
	PayerInfo         struct {
		PayerType string `json:"payer_type"`
		PayerName string `json:"payer_name"`
	} `json:"payer_info"`
	PatientInformation struct {
		PatientName string `json:"patient_name"`
		PatientID   string `json:"patient_id"`
		DateOfBirth string `json:"date_of_birth"`
		Gender      string `json:"gender"`
	} `json:"patient_information"`
	ApprovalConditions []string `json:"approval_conditions"`
}

// Verify scans every claim file for an approval or authorization letter and
// compares its amount against the claimed amount. Returns a not-found record
// on oracle failure, never an error.
func (v *ApprovalVerifier) Verify(ctx context.Context, files []models.DocumentFile, claimedAmount float64) models.ApprovalRecord {
	if len(files) == 0 {
		return models.ApprovalRecord{}
	}

	raw, err := v.oracle.Extract(ctx, files, approvalTask(len(files), claimedAmount))
	if err != nil {
		v.log.Warn("ApprovalVerifier.Verify oracle call failed, treating approval as absent", zap.Error(err))
		return models.ApprovalRecord{}
	}

	var parsed approvalResponse
	if err := utils.DecodeOracleJSON(raw, &parsed); err != nil {
		v.log.Warn("ApprovalVerifier.Verify unrepairable response, treating approval as absent", zap.Error(err))
		return models.ApprovalRecord{}
	}

	record := models.ApprovalRecord{
		Found:          parsed.ApprovalFound,
		Type:           parsed.ApprovalType,
		ReferenceID:    parsed.ApprovalReference,
		ApprovedAmount: maxAmount(parsed.ApprovedAmount, parsed.AuthorizedAmount, parsed.SanctionedAmount, parsed.AdmissibleAmount),
		PayerName:      parsed.PayerInfo.PayerName,
		PayerType:      parsed.PayerInfo.PayerType,
		ApprovalDate:   parsed.ApprovalDate,
		ApprovalFrom:   parsed.ApprovalValidFrom,
		ApprovalTo:     parsed.ApprovalValidTo,
		Patient: models.PatientIdentity{
			Name:        parsed.PatientInformation.PatientName,
			PatientID:   parsed.PatientInformation.PatientID,
			DateOfBirth: parsed.PatientInformation.DateOfBirth,
			Gender:      parsed.PatientInformation.Gender,
		},
		Conditions: parsed.ApprovalConditions,
	}
	if record.Found && record.ApprovedAmount > 0 {
		record.AmountMatch = math.Abs(record.ApprovedAmount-claimedAmount) < amountEpsilon
	}
	return record
}

// maxAmount returns the highest of the synonymous amount fields. Approval
// letters label the same figure differently, and when several are present
// the highest one is the sanctioned value.
func maxAmount(amounts ...float64) float64 {
	highest := 0.0
	for _, amount := range amounts {
		if amount > highest {
			highest = amount
		}
	}
	return highest
}
