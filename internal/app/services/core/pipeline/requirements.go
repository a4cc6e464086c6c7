package pipeline

import (
	"context"
	"fmt"
	"strings"

	"claimlens-service/internal/app/contracts"
	"claimlens-service/internal/app/models"
	"claimlens-service/internal/pkg/constvars"
	"claimlens-service/internal/pkg/utils"

	"go.uber.org/zap"
)

type RequirementsPlanner struct {
	oracle contracts.Extractor
	log    *zap.Logger
}

func NewRequirementsPlanner(oracle contracts.Extractor, log *zap.Logger) *RequirementsPlanner {
	return &RequirementsPlanner{oracle: oracle, log: log}
}

// PlanInput carries everything the rule engine needs to decide which
// documents the claim must enclose.
type PlanInput struct {
	Classification *Classification
	CaseContext    models.CaseContext
	Invoice        models.Invoice
	Approval       models.ApprovalRecord
	ReportsByItem  map[string]bool
}

// Plan builds the case-specific document checklist from deterministic rules.
// Same inputs always yield the same checklist.
func (p *RequirementsPlanner) Plan(in PlanInput) []models.ChecklistItem {
	hasInvoice := len(in.Classification.Category(constvars.CategoryInvoice)) > 0
	hasDischarge := len(in.Classification.Category(constvars.CategoryDischargeSummary)) > 0

	checklist := []models.ChecklistItem{
		{DocumentName: "Cover Letter", Required: true, Reason: "Mandatory for all cashless claims"},
		{DocumentName: "Final Bill", Required: true, Present: hasInvoice, Reason: "Mandatory for all cashless claims"},
		{DocumentName: "Itemized Bill", Required: true, Present: hasInvoice, Reason: "Mandatory for all cashless claims"},
		{DocumentName: "Discharge Summary", Required: true, Present: hasDischarge, Reason: "Mandatory for all cashless claims"},
		{DocumentName: "Final Approval Letter", Required: true, Present: in.Approval.Found, Reason: "Mandatory for all cashless claims"},
		{DocumentName: "Government ID", Required: true, Reason: "Identity proof is mandatory for all cashless claims"},
	}

	if len(in.CaseContext.ProceduresPerformed) > 0 {
		checklist = append(checklist, models.ChecklistItem{
			DocumentName: "OT Notes",
			Required:     true,
			Reason:       "Procedures were performed during this admission",
		})
	}

	payerType := strings.ToLower(firstNonEmpty(in.Approval.PayerType, in.Invoice.Payer.PayerType))
	isGovt := strings.Contains(payerType, "govt") || strings.Contains(payerType, "government")
	isCorporate := strings.Contains(payerType, "corporate")

	if hasImplant(in.CaseContext.ProceduresPerformed, in.Invoice.LineItems) {
		checklist = append(checklist,
			models.ChecklistItem{DocumentName: "Implant Vendor Invoice", Required: true, Reason: "An implant device was used in this case"},
			models.ChecklistItem{DocumentName: "Implant Sticker", Required: true, Reason: "An implant device was used in this case"},
			models.ChecklistItem{DocumentName: "Implant Certificate", Required: true, Reason: "An implant device was used in this case"},
		)
		if isGovt || isCorporate {
			checklist = append(checklist, models.ChecklistItem{
				DocumentName: "Implant Pouch",
				Required:     true,
				Reason:       "Payer scheme requires the physical implant pouch",
			})
		}
	}

	switch {
	case strings.Contains(payerType, "tpa"), strings.Contains(payerType, "insurer"), strings.Contains(payerType, "insurance"):
		checklist = append(checklist, models.ChecklistItem{
			DocumentName: "Pre-Authorization Letter",
			Required:     true,
			Reason:       "TPA and insurer claims need prior authorization",
		})
	case isGovt, isCorporate:
		checklist = append(checklist, models.ChecklistItem{
			DocumentName: "Referral Letter",
			Required:     true,
			Reason:       "Scheme claims need a referral from the sponsoring body",
		})
	}
	if isCorporate {
		checklist = append(checklist, models.ChecklistItem{
			DocumentName: "Employee ID",
			Required:     true,
			Reason:       "Corporate claims need proof of employment",
		})
	}

	for _, name := range InvestigativeItems(in.Invoice.LineItems) {
		checklist = append(checklist, models.ChecklistItem{
			DocumentName: fmt.Sprintf("%s Report", name),
			Required:     true,
			Present:      reportFound(in.ReportsByItem, name),
			Reason:       "Billed investigation needs its report enclosed",
		})
	}
	return checklist
}

// Enrich asks the oracle for additional case-specific requirements and
// merges them into the rule-based checklist. Oracle failure leaves the
// rule-based checklist untouched.
func (p *RequirementsPlanner) Enrich(ctx context.Context, checklist []models.ChecklistItem, in PlanInput) []models.ChecklistItem {
	summary := caseSummaryLine(in.CaseContext)
	payerType := firstNonEmpty(in.Approval.PayerType, in.Invoice.Payer.PayerType, "Unknown")

	raw, err := p.oracle.Extract(ctx, nil, checklistTask(summary, len(in.Invoice.LineItems), payerType))
	if err != nil {
		p.log.Warn("RequirementsPlanner.Enrich oracle call failed, keeping rule-based checklist", zap.Error(err))
		return checklist
	}

	var parsed struct {
		Checklist []struct {
			DocumentName string `json:"document_name"`
			Required     bool   `json:"required"`
			Enclosed     bool   `json:"enclosed"`
			Reason       string `json:"reason"`
			Notes        string `json:"notes"`
		} `json:"checklist"`
	}
	if err := utils.DecodeOracleJSON(raw, &parsed); err != nil {
		p.log.Warn("RequirementsPlanner.Enrich unrepairable response, keeping rule-based checklist", zap.Error(err))
		return checklist
	}

	extra := make([]models.ChecklistItem, 0, len(parsed.Checklist))
	for _, item := range parsed.Checklist {
		if strings.TrimSpace(item.DocumentName) == "" {
			continue
		}
		extra = append(extra, models.ChecklistItem{
			DocumentName: item.DocumentName,
			Required:     item.Required,
			Present:      item.Enclosed,
			Reason:       item.Reason,
			Notes:        item.Notes,
		})
	}
	return MergeChecklists(checklist, extra)
}

// MergeChecklists combines rule-based and oracle checklists, deduplicated by
// document name. The rule-based entry wins; a duplicate can only flip its
// presence to true or contribute notes.
func MergeChecklists(base, extra []models.ChecklistItem) []models.ChecklistItem {
	index := make(map[string]int, len(base))
	merged := append([]models.ChecklistItem{}, base...)
	for i, item := range merged {
		index[strings.ToLower(strings.TrimSpace(item.DocumentName))] = i
	}
	for _, item := range extra {
		key := strings.ToLower(strings.TrimSpace(item.DocumentName))
		if i, ok := index[key]; ok {
			merged[i].Present = merged[i].Present || item.Present
			if merged[i].Notes == "" {
				merged[i].Notes = item.Notes
			}
			continue
		}
		index[key] = len(merged)
		merged = append(merged, item)
	}
	return merged
}

// hasImplant reports whether an implant device shows up either on the
// invoice or in the performed procedures.
func hasImplant(procedures []string, items []models.LineItem) bool {
	for _, item := range items {
		if item.IsImplant {
			return true
		}
	}
	for _, procedure := range procedures {
		if IsImplantItem(procedure, "") {
			return true
		}
	}
	return false
}

func reportFound(reportsByItem map[string]bool, itemName string) bool {
	for name, found := range reportsByItem {
		if strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(itemName)) {
			return found
		}
	}
	return false
}

func caseSummaryLine(cc models.CaseContext) string {
	parts := []string{}
	if len(cc.PrimaryDiagnosis) > 0 {
		parts = append(parts, "Diagnosis: "+strings.Join(cc.PrimaryDiagnosis, "; "))
	}
	if len(cc.ProceduresPerformed) > 0 {
		parts = append(parts, "Procedures: "+strings.Join(cc.ProceduresPerformed, "; "))
	}
	if cc.IsSurgeryCase {
		parts = append(parts, "Surgery case")
	}
	if len(parts) == 0 {
		return "No clinical context available"
	}
	return strings.Join(parts, ". ")
}
