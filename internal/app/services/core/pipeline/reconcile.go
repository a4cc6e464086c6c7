package pipeline

import (
	"context"
	"fmt"
	"math"
	"strings"

	"claimlens-service/internal/app/contracts"
	"claimlens-service/internal/app/models"
	"claimlens-service/internal/pkg/utils"

	"go.uber.org/zap"
)

// Scoring weights per check category. Tariff weight is redistributed when
// no tariff table is configured for the claim.
var categoryWeights = map[string]float64{
	"patient_details": 0.25,
	"dates":           0.20,
	"reports":         0.15,
	"line_items":      0.30,
	"tariffs":         0.10,
}

type ReconciliationEngine struct {
	tariffs   contracts.TariffRepository
	threshold float64
	log       *zap.Logger
}

func NewReconciliationEngine(tariffs contracts.TariffRepository, threshold float64, log *zap.Logger) *ReconciliationEngine {
	return &ReconciliationEngine{tariffs: tariffs, threshold: threshold, log: log}
}

// ReconcileInput is the union of all extraction outputs the cross checks
// run over. LineItems in Invoice are mutated in place with tariff matches.
type ReconcileInput struct {
	CaseContext        models.CaseContext
	Invoice            *models.Invoice
	Approval           models.ApprovalRecord
	ReportDates        map[string]string
	ClaimedAmount      float64
	TariffCheckEnabled bool
}

// reportDateDeltaDays is the widest gap tolerated between the date printed
// on a report and the invoice date before the delta is flagged.
const reportDateDeltaDays = 30

type tally struct {
	matched int
	total   int
}

func (t *tally) record(ok bool) {
	t.total++
	if ok {
		t.matched++
	}
}

func (t *tally) score() float64 {
	if t.total == 0 {
		return 100
	}
	return float64(t.matched) / float64(t.total) * 100
}

// Reconcile runs every deterministic cross check, collects discrepancies,
// and produces the weighted accuracy score. Checks never call the oracle,
// so the same inputs always reconcile identically.
func (e *ReconciliationEngine) Reconcile(ctx context.Context, in ReconcileInput) ([]models.Discrepancy, models.ScoreBreakdown) {
	tallies := map[string]*tally{
		"patient_details": {},
		"dates":           {},
		"reports":         {},
		"line_items":      {},
		"tariffs":         {},
	}
	var findings []models.Discrepancy

	findings = append(findings, e.checkIdentity(in, tallies["patient_details"])...)
	findings = append(findings, e.checkDates(in, tallies["dates"])...)
	findings = append(findings, e.checkReports(in, tallies["reports"])...)
	findings = append(findings, e.checkAmounts(in, tallies["line_items"])...)
	findings = append(findings, e.checkCodes(in, tallies["line_items"])...)
	if in.TariffCheckEnabled {
		findings = append(findings, e.checkTariffs(ctx, in, tallies["tariffs"])...)
	}

	findings = filterDiscrepancies(findings)
	score := e.buildScore(tallies, in.TariffCheckEnabled)
	return findings, score
}

func (e *ReconciliationEngine) buildScore(tallies map[string]*tally, tariffEnabled bool) models.ScoreBreakdown {
	breakdown := make(map[string]float64, len(tallies))
	var accuracy, weightSum float64
	for category, weight := range categoryWeights {
		if category == "tariffs" && !tariffEnabled {
			continue
		}
		score := tallies[category].score()
		breakdown[category] = math.Round(score*100) / 100
		accuracy += weight * score
		weightSum += weight
	}
	if weightSum > 0 {
		accuracy /= weightSum
	}
	accuracy = math.Round(accuracy*100) / 100

	return models.ScoreBreakdown{
		AccuracyScore:    accuracy,
		Passed:           accuracy >= e.threshold,
		Threshold:        e.threshold,
		PerCategoryScore: breakdown,
	}
}

// checkIdentity compares patient identity across the clinical record, the
// invoice, and the approval letter. The approval letter carries the payer
// side member identifier, so its patient id is deliberately not compared
// against the hospital side ids.
func (e *ReconciliationEngine) checkIdentity(in ReconcileInput, t *tally) []models.Discrepancy {
	var findings []models.Discrepancy
	clinical := in.CaseContext.Patient

	if clinical.Name != "" && in.Invoice.Patient.Name != "" {
		ok := NamesEquivalent(clinical.Name, in.Invoice.Patient.Name)
		t.record(ok)
		if !ok {
			findings = append(findings, models.Discrepancy{
				Category:    "patient_details",
				Severity:    "high",
				Description: "Patient name on invoice does not match discharge summary",
				Expected:    clinical.Name,
				Actual:      in.Invoice.Patient.Name,
				Source:      "invoice",
			})
		}
	}
	if in.Approval.Found && clinical.Name != "" && in.Approval.Patient.Name != "" {
		ok := NamesEquivalent(clinical.Name, in.Approval.Patient.Name)
		t.record(ok)
		if !ok {
			findings = append(findings, models.Discrepancy{
				Category:    "patient_details",
				Severity:    "high",
				Description: "Patient name on approval letter does not match discharge summary",
				Expected:    clinical.Name,
				Actual:      in.Approval.Patient.Name,
				Source:      "approval",
			})
		}
	}
	// With no clinical record to anchor on, the invoice and the approval
	// letter are still compared against each other.
	if in.Approval.Found && clinical.Name == "" && in.Invoice.Patient.Name != "" && in.Approval.Patient.Name != "" {
		ok := NamesEquivalent(in.Invoice.Patient.Name, in.Approval.Patient.Name)
		t.record(ok)
		if !ok {
			findings = append(findings, models.Discrepancy{
				Category:    "patient_details",
				Severity:    "high",
				Description: "Patient name on approval letter does not match the invoice",
				Expected:    in.Invoice.Patient.Name,
				Actual:      in.Approval.Patient.Name,
				Source:      "approval",
			})
		}
	}
	if clinical.PatientID != "" && in.Invoice.Patient.PatientID != "" {
		ok := strings.EqualFold(strings.TrimSpace(clinical.PatientID), strings.TrimSpace(in.Invoice.Patient.PatientID))
		t.record(ok)
		if !ok {
			findings = append(findings, models.Discrepancy{
				Category:    "patient_details",
				Severity:    "medium",
				Description: "Patient id on invoice does not match discharge summary",
				Expected:    clinical.PatientID,
				Actual:      in.Invoice.Patient.PatientID,
				Source:      "invoice",
			})
		}
	}
	if clinical.Gender != "" && in.Invoice.Patient.Gender != "" {
		ok := strings.EqualFold(clinical.Gender, in.Invoice.Patient.Gender)
		t.record(ok)
		if !ok {
			findings = append(findings, models.Discrepancy{
				Category:    "patient_details",
				Severity:    "low",
				Description: "Patient gender on invoice does not match discharge summary",
				Expected:    clinical.Gender,
				Actual:      in.Invoice.Patient.Gender,
				Source:      "invoice",
			})
		}
	}
	if ok, checked := sameBirthDate(clinical.DateOfBirth, in.Invoice.Patient.DateOfBirth); checked {
		t.record(ok)
		if !ok {
			findings = append(findings, models.Discrepancy{
				Category:    "patient_details",
				Severity:    "medium",
				Description: "Patient date of birth on invoice does not match discharge summary",
				Expected:    clinical.DateOfBirth,
				Actual:      in.Invoice.Patient.DateOfBirth,
				Source:      "invoice",
			})
		}
	}
	if in.Approval.Found {
		if ok, checked := sameBirthDate(clinical.DateOfBirth, in.Approval.Patient.DateOfBirth); checked {
			t.record(ok)
			if !ok {
				findings = append(findings, models.Discrepancy{
					Category:    "patient_details",
					Severity:    "medium",
					Description: "Patient date of birth on approval letter does not match discharge summary",
					Expected:    clinical.DateOfBirth,
					Actual:      in.Approval.Patient.DateOfBirth,
					Source:      "approval",
				})
			}
		}
	}
	return findings
}

// sameBirthDate reports whether two birth dates name the same day. The
// check is skipped, not failed, when either side is missing or unreadable.
func sameBirthDate(a, b string) (ok, checked bool) {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return false, false
	}
	left, right := utils.ParseDate(a), utils.ParseDate(b)
	if left == nil || right == nil {
		return false, false
	}
	return utils.WithinRange(*left, *right, *right), true
}

// checkDates validates each billed service date against the admission stay
// and, when present, the approval validity window. Both windows are
// inclusive of their boundary days.
func (e *ReconciliationEngine) checkDates(in ReconcileInput, t *tally) []models.Discrepancy {
	var findings []models.Discrepancy

	admission := utils.ParseDate(in.CaseContext.AdmissionDate)
	discharge := utils.ParseDate(in.CaseContext.DischargeDate)
	approvalFrom := utils.ParseDate(in.Approval.ApprovalFrom)
	approvalTo := utils.ParseDate(in.Approval.ApprovalTo)

	for _, item := range in.Invoice.LineItems {
		if strings.TrimSpace(item.Date) == "" {
			t.record(false)
			findings = append(findings, models.Discrepancy{
				Category:    "dates",
				Severity:    "medium",
				Description: fmt.Sprintf("Line item %q has no service date", item.Name),
				Expected:    "service date on every line item",
				Actual:      "missing",
				Source:      "invoice",
			})
			continue
		}
		serviceDate := utils.ParseDate(item.Date)
		if serviceDate == nil {
			t.record(false)
			findings = append(findings, models.Discrepancy{
				Category:    "dates",
				Severity:    "medium",
				Description: fmt.Sprintf("Line item %q has an unreadable service date", item.Name),
				Expected:    "parseable date",
				Actual:      item.Date,
				Source:      "invoice",
			})
			continue
		}

		if admission != nil && discharge != nil {
			ok := utils.WithinRange(*serviceDate, *admission, *discharge)
			t.record(ok)
			if !ok {
				findings = append(findings, models.Discrepancy{
					Category:    "dates",
					Severity:    "high",
					Description: fmt.Sprintf("Line item %q dated outside the admission stay", item.Name),
					Expected:    fmt.Sprintf("between %s and %s", in.CaseContext.AdmissionDate, in.CaseContext.DischargeDate),
					Actual:      item.Date,
					Source:      "invoice",
				})
			}
		}
		if in.Approval.Found && approvalFrom != nil && approvalTo != nil {
			ok := utils.WithinRange(*serviceDate, *approvalFrom, *approvalTo)
			t.record(ok)
			if !ok {
				findings = append(findings, models.Discrepancy{
					Category:    "dates",
					Severity:    "high",
					Description: fmt.Sprintf("Line item %q dated outside the approval validity window", item.Name),
					Expected:    fmt.Sprintf("between %s and %s", in.Approval.ApprovalFrom, in.Approval.ApprovalTo),
					Actual:      item.Date,
					Source:      "approval",
				})
			}
		}
	}
	return findings
}

func (e *ReconciliationEngine) checkReports(in ReconcileInput, t *tally) []models.Discrepancy {
	var findings []models.Discrepancy
	invoiceDate := utils.ParseDate(in.Invoice.InvoiceDate)

	for _, item := range in.Invoice.LineItems {
		if item.Type != "investigative" || !item.ProofRequired {
			continue
		}
		t.record(item.ProofPresent)
		if !item.ProofPresent {
			findings = append(findings, models.Discrepancy{
				Category:    "reports",
				Severity:    "high",
				Description: fmt.Sprintf("No report found for billed investigation %q", item.Name),
				Expected:    "report enclosed in claim documents",
				Actual:      "not found",
				Source:      "reports",
			})
			continue
		}

		rawDate := lookupReportDate(in.ReportDates, item.Name)
		reportDate := utils.ParseDate(rawDate)
		if invoiceDate == nil || reportDate == nil {
			continue
		}
		deltaDays := int(math.Abs(invoiceDate.Sub(*reportDate).Hours()) / 24)
		ok := deltaDays <= reportDateDeltaDays
		t.record(ok)
		if !ok {
			findings = append(findings, models.Discrepancy{
				Category:    "reports",
				Severity:    "medium",
				Description: fmt.Sprintf("Report for %q is dated %d days from the invoice", item.Name, deltaDays),
				Expected:    fmt.Sprintf("within %d days of %s", reportDateDeltaDays, in.Invoice.InvoiceDate),
				Actual:      rawDate,
				Source:      "reports",
			})
		}
	}
	return findings
}

func lookupReportDate(reportDates map[string]string, itemName string) string {
	for name, date := range reportDates {
		if strings.EqualFold(strings.TrimSpace(name), strings.TrimSpace(itemName)) {
			return date
		}
	}
	return ""
}

// checkAmounts verifies line item arithmetic, the invoice total, and the
// approved amount against the claimed amount.
func (e *ReconciliationEngine) checkAmounts(in ReconcileInput, t *tally) []models.Discrepancy {
	var findings []models.Discrepancy
	var lineSum float64

	for _, item := range in.Invoice.LineItems {
		lineSum += item.TotalPrice
		if item.Units <= 0 || item.UnitPrice <= 0 {
			continue
		}
		expected := item.Units * item.UnitPrice
		ok := math.Abs(expected-item.TotalPrice) < amountEpsilon
		t.record(ok)
		if !ok {
			findings = append(findings, models.Discrepancy{
				Category:    "line_items",
				Severity:    "medium",
				Description: fmt.Sprintf("Line item %q total does not equal units times unit price", item.Name),
				Expected:    fmt.Sprintf("%.2f", expected),
				Actual:      fmt.Sprintf("%.2f", item.TotalPrice),
				Source:      "invoice",
			})
		}
	}

	if len(in.Invoice.LineItems) > 0 && in.Invoice.TotalClaimed > 0 {
		ok := math.Abs(lineSum-in.Invoice.TotalClaimed) < amountEpsilon
		t.record(ok)
		if !ok {
			findings = append(findings, models.Discrepancy{
				Category:    "line_items",
				Severity:    "high",
				Description: "Sum of line items does not equal the invoice total",
				Expected:    fmt.Sprintf("%.2f", in.Invoice.TotalClaimed),
				Actual:      fmt.Sprintf("%.2f", lineSum),
				Source:      "invoice",
			})
		}
	}

	if in.Approval.Found && in.Approval.ApprovedAmount > 0 && in.ClaimedAmount > 0 {
		t.record(in.Approval.AmountMatch)
		if !in.Approval.AmountMatch {
			findings = append(findings, models.Discrepancy{
				Category:    "line_items",
				Severity:    "high",
				Description: "Claimed amount does not match the approved amount",
				Expected:    fmt.Sprintf("%.2f", in.Approval.ApprovedAmount),
				Actual:      fmt.Sprintf("%.2f", in.ClaimedAmount),
				Source:      "approval",
			})
		}
	}
	return findings
}

// checkCodes verifies billing codes per line item. Procedure items must
// carry a code; any item whose extracted code was judged malformed is
// flagged. The outcomes fold into the line_items score alongside the
// amount checks.
func (e *ReconciliationEngine) checkCodes(in ReconcileInput, t *tally) []models.Discrepancy {
	var findings []models.Discrepancy
	for _, item := range in.Invoice.LineItems {
		hasCode := strings.TrimSpace(item.Code) != ""

		if item.Type == "procedure" && !hasCode {
			t.record(false)
			findings = append(findings, models.Discrepancy{
				Category:    "codes",
				Severity:    "medium",
				Description: fmt.Sprintf("Procedure %q is billed without a procedure code", item.Name),
				Expected:    "ICD-11/CGHS/internal procedure code",
				Actual:      "missing",
				Source:      "invoice",
			})
			continue
		}
		if !hasCode {
			continue
		}

		ok := item.CodeValid == nil || *item.CodeValid
		t.record(ok)
		if !ok {
			findings = append(findings, models.Discrepancy{
				Category:    "codes",
				Severity:    "medium",
				Description: fmt.Sprintf("Code %q on line item %q does not look valid for the item", item.Code, item.Name),
				Expected:    "well-formed code matching the billed item",
				Actual:      item.Code,
				Source:      "invoice",
			})
		}
	}
	return findings
}

// checkTariffs compares billed prices against the configured tariff table,
// looking up by item code first and item name second. Items with no tariff
// entry are annotated but not counted against the score.
func (e *ReconciliationEngine) checkTariffs(ctx context.Context, in ReconcileInput, t *tally) []models.Discrepancy {
	var findings []models.Discrepancy
	for i := range in.Invoice.LineItems {
		item := &in.Invoice.LineItems[i]
		tariff := e.lookupTariff(ctx, item.Code, item.Name)
		if tariff == nil {
			item.TariffMatch = &models.TariffMatch{Match: false, Note: "No tariff found"}
			continue
		}

		billed := item.UnitPrice
		if billed <= 0 {
			billed = item.TotalPrice
		}
		diff := billed - tariff.Price
		price := tariff.Price
		item.TariffMatch = &models.TariffMatch{
			Match:          math.Abs(diff) < amountEpsilon,
			ReferencePrice: &price,
			Difference:     &diff,
		}
		t.record(item.TariffMatch.Match)
		if !item.TariffMatch.Match {
			findings = append(findings, models.Discrepancy{
				Category:    "tariffs",
				Severity:    "medium",
				Description: fmt.Sprintf("Billed price for %q differs from the tariff", item.Name),
				Expected:    fmt.Sprintf("%.2f", tariff.Price),
				Actual:      fmt.Sprintf("%.2f", billed),
				Source:      "tariff",
			})
		}
	}
	return findings
}

func (e *ReconciliationEngine) lookupTariff(ctx context.Context, code, name string) *models.Tariff {
	if strings.TrimSpace(code) != "" {
		tariff, err := e.tariffs.FindTariffByCode(ctx, code)
		if err != nil {
			e.log.Warn("ReconciliationEngine.lookupTariff code lookup failed", zap.Error(err))
		} else if tariff != nil {
			return tariff
		}
	}
	if strings.TrimSpace(name) == "" {
		return nil
	}
	tariff, err := e.tariffs.FindTariffByName(ctx, name)
	if err != nil {
		e.log.Warn("ReconciliationEngine.lookupTariff name lookup failed", zap.Error(err))
		return nil
	}
	return tariff
}

// filterDiscrepancies drops entries that carry no information and collapses
// duplicates reported by more than one check.
func filterDiscrepancies(findings []models.Discrepancy) []models.Discrepancy {
	seen := make(map[string]struct{}, len(findings))
	out := make([]models.Discrepancy, 0, len(findings))
	for _, f := range findings {
		if f.Description == "" && f.Expected == "" && f.Actual == "" {
			continue
		}
		key := f.Category + "|" + strings.ToLower(strings.TrimSpace(f.Description)) + "|" + f.Source
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, f)
	}
	return out
}

// SeverityCounts summarizes filtered discrepancies for the report header.
func SeverityCounts(findings []models.Discrepancy) map[string]int {
	counts := map[string]int{"high": 0, "medium": 0, "low": 0}
	for _, f := range findings {
		counts[f.Severity]++
	}
	return counts
}
