package pipeline

import (
	"context"
	"strings"

	"claimlens-service/internal/app/contracts"
	"claimlens-service/internal/app/models"
	"claimlens-service/internal/pkg/utils"

	"go.uber.org/zap"
)

type InvoiceExtractor struct {
	oracle contracts.Extractor
	log    *zap.Logger
}

func NewInvoiceExtractor(oracle contracts.Extractor, log *zap.Logger) *InvoiceExtractor {
	return &InvoiceExtractor{oracle: oracle, log: log}
}

type invoiceLineItem struct {
	ItemName   string  `json:"item_name"`
	ItemCode   string  `json:"item_code"`
	CodeValid  *bool   `json:"code_valid"`
	Date       string  `json:"date"`
	Units      float64 `json:"units"`
	UnitPrice  float64 `json:"unit_price"`
	TotalPrice float64 `json:"total_price"`
	Type       string  `json:"type"`
	Category   string  `json:"category"`
}

type invoiceResponse struct {
	PayerInformation struct {
		PayerType string `json:"payer_type"`
		PayerName string `json:"payer_name"`
	} `json:"payer_information"`
	HospitalInformation struct {
		HospitalName string `json:"hospital_name"`
		HospitalID   string `json:"hospital_id"`
	} `json:"hospital_information"`
	PatientInformation struct {
		PatientName string `json:"patient_name"`
		PatientID   string `json:"patient_id"`
		DateOfBirth string `json:"date_of_birth"`
		Gender      string `json:"gender"`
	} `json:"patient_information"`
	InvoiceNumber      string            `json:"invoice_number"`
	InvoiceDate        string            `json:"invoice_date"`
	TotalClaimedAmount float64           `json:"total_claimed_amount"`
	LineItems          []invoiceLineItem `json:"line_items"`
}

// Extract pulls the financial view and every billed line item out of the
// invoice bucket. Returns an empty invoice on oracle failure, never an error.
func (e *InvoiceExtractor) Extract(ctx context.Context, files []models.DocumentFile) models.Invoice {
	if len(files) == 0 {
		return models.Invoice{LineItems: []models.LineItem{}}
	}

	raw, err := e.oracle.Extract(ctx, files, invoiceTask(len(files)))
	if err != nil {
		e.log.Warn("InvoiceExtractor.Extract oracle call failed, returning empty invoice", zap.Error(err))
		return models.Invoice{LineItems: []models.LineItem{}}
	}

	var parsed invoiceResponse
	if err := utils.DecodeOracleJSON(raw, &parsed); err != nil {
		e.log.Warn("InvoiceExtractor.Extract unrepairable response, returning empty invoice", zap.Error(err))
		return models.Invoice{LineItems: []models.LineItem{}}
	}

	inv := models.Invoice{
		Payer: models.PayerDetails{
			PayerName: parsed.PayerInformation.PayerName,
			PayerType: parsed.PayerInformation.PayerType,
		},
		Hospital: models.HospitalDetails{
			HospitalName:       parsed.HospitalInformation.HospitalName,
			RegistrationNumber: parsed.HospitalInformation.HospitalID,
		},
		Patient: models.PatientIdentity{
			Name:        parsed.PatientInformation.PatientName,
			PatientID:   parsed.PatientInformation.PatientID,
			DateOfBirth: parsed.PatientInformation.DateOfBirth,
			Gender:      parsed.PatientInformation.Gender,
		},
		InvoiceNumber: parsed.InvoiceNumber,
		InvoiceDate:   parsed.InvoiceDate,
		TotalClaimed:  parsed.TotalClaimedAmount,
		LineItems:     []models.LineItem{},
	}

	for _, li := range parsed.LineItems {
		if strings.TrimSpace(li.ItemName) == "" {
			continue
		}
		item := models.LineItem{
			Name:       li.ItemName,
			Code:       li.ItemCode,
			CodeValid:  li.CodeValid,
			Category:   li.Category,
			Type:       normalizeItemType(li.Type),
			Date:       li.Date,
			Units:      li.Units,
			UnitPrice:  li.UnitPrice,
			TotalPrice: li.TotalPrice,
		}
		item.IsImplant = IsImplantItem(item.Name, item.Category)
		item.ProofRequired = item.Type == "investigative" || item.IsImplant
		inv.LineItems = append(inv.LineItems, item)
	}
	return inv
}

var knownItemTypes = map[string]struct{}{
	"procedure":         {},
	"investigative":     {},
	"administrative":    {},
	"non_medical":       {},
	"support_services":  {},
	"room_charges":      {},
	"clinical_services": {},
	"other":             {},
}

func normalizeItemType(itemType string) string {
	t := strings.ToLower(strings.TrimSpace(itemType))
	if _, ok := knownItemTypes[t]; ok {
		return t
	}
	return "other"
}

// InvestigativeItems returns the names of line items that need a matching
// investigation report.
func InvestigativeItems(items []models.LineItem) []string {
	var names []string
	for _, item := range items {
		if item.Type == "investigative" {
			names = append(names, item.Name)
		}
	}
	return names
}
