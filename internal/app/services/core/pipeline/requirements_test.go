package pipeline

import (
	"testing"

	"claimlens-service/internal/app/models"
	"claimlens-service/internal/pkg/constvars"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func checklistNames(items []models.ChecklistItem) []string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.DocumentName)
	}
	return names
}

func basePlanInput() PlanInput {
	return PlanInput{
		Classification: &Classification{Buckets: map[string][]models.DocumentFile{
			constvars.CategoryDischargeSummary: {pdfFile("discharge.pdf")},
			constvars.CategoryInvoice:          {pdfFile("bill.pdf")},
		}},
		Invoice:       models.Invoice{LineItems: []models.LineItem{}},
		ReportsByItem: map[string]bool{},
	}
}

func TestPlanAlwaysIncludesMandatoryDocuments(t *testing.T) {
	planner := NewRequirementsPlanner(&fakeOracle{}, zap.NewNop())

	checklist := planner.Plan(basePlanInput())

	names := checklistNames(checklist)
	for _, want := range []string{
		"Cover Letter", "Final Bill", "Itemized Bill",
		"Discharge Summary", "Final Approval Letter", "Government ID",
	} {
		assert.Contains(t, names, want)
	}
	assert.NotContains(t, names, "OT Notes", "no procedures means no OT notes")
	assert.NotContains(t, names, "Implant Sticker")
}

func TestPlanMarksPresenceFromClassification(t *testing.T) {
	planner := NewRequirementsPlanner(&fakeOracle{}, zap.NewNop())
	in := basePlanInput()
	in.Approval = models.ApprovalRecord{Found: true}

	checklist := planner.Plan(in)

	byName := map[string]models.ChecklistItem{}
	for _, item := range checklist {
		byName[item.DocumentName] = item
	}
	assert.True(t, byName["Final Bill"].Present)
	assert.True(t, byName["Discharge Summary"].Present)
	assert.True(t, byName["Final Approval Letter"].Present)
	assert.False(t, byName["Cover Letter"].Present)
}

func TestPlanSurgicalImplantCase(t *testing.T) {
	planner := NewRequirementsPlanner(&fakeOracle{}, zap.NewNop())
	in := basePlanInput()
	in.CaseContext = models.CaseContext{
		ProceduresPerformed: []string{"Total Knee Replacement"},
		IsSurgeryCase:       true,
	}
	in.Invoice = models.Invoice{
		Payer: models.PayerDetails{PayerType: "Corporate"},
		LineItems: []models.LineItem{
			{Name: "Knee Prosthesis", Type: "procedure", IsImplant: true},
		},
	}

	checklist := planner.Plan(in)

	names := checklistNames(checklist)
	assert.Contains(t, names, "OT Notes")
	assert.Contains(t, names, "Implant Vendor Invoice")
	assert.Contains(t, names, "Implant Sticker")
	assert.Contains(t, names, "Implant Certificate")
	assert.Contains(t, names, "Implant Pouch", "corporate payer requires the pouch")
	assert.Contains(t, names, "Referral Letter")
	assert.Contains(t, names, "Employee ID")
}

func TestPlanImplantProcedureWithoutImplantLineItem(t *testing.T) {
	planner := NewRequirementsPlanner(&fakeOracle{}, zap.NewNop())
	in := basePlanInput()
	in.CaseContext = models.CaseContext{
		ProceduresPerformed: []string{"Total Knee Joint Replacement with prosthesis"},
		IsSurgeryCase:       true,
	}

	checklist := planner.Plan(in)

	names := checklistNames(checklist)
	assert.Contains(t, names, "Implant Vendor Invoice", "the procedure name alone identifies the implant")
	assert.Contains(t, names, "Implant Sticker")
	assert.Contains(t, names, "Implant Certificate")
}

func TestPlanNonSurgicalCaseSkipsImplantItems(t *testing.T) {
	planner := NewRequirementsPlanner(&fakeOracle{}, zap.NewNop())
	in := basePlanInput()
	in.Invoice = models.Invoice{
		Payer: models.PayerDetails{PayerType: "TPA"},
		LineItems: []models.LineItem{
			{Name: "Physiotherapy Session", Type: "clinical_services", Category: "implant-adjacent-care"},
		},
	}

	checklist := planner.Plan(in)

	names := checklistNames(checklist)
	assert.NotContains(t, names, "Implant Vendor Invoice")
	assert.NotContains(t, names, "Implant Pouch")
	assert.Contains(t, names, "Pre-Authorization Letter", "TPA payer needs pre-auth")
}

func TestPlanInvestigativeItemsGetReportRequirements(t *testing.T) {
	planner := NewRequirementsPlanner(&fakeOracle{}, zap.NewNop())
	in := basePlanInput()
	in.Invoice = models.Invoice{LineItems: []models.LineItem{
		{Name: "CBC", Type: "investigative"},
		{Name: "MRI Brain", Type: "investigative"},
	}}
	in.ReportsByItem = map[string]bool{"CBC": true, "MRI Brain": false}

	checklist := planner.Plan(in)

	byName := map[string]models.ChecklistItem{}
	for _, item := range checklist {
		byName[item.DocumentName] = item
	}
	assert.True(t, byName["CBC Report"].Present)
	assert.False(t, byName["MRI Brain Report"].Present)
}

func TestMergeChecklistsDeduplicatesByDocumentName(t *testing.T) {
	base := []models.ChecklistItem{
		{DocumentName: "Final Bill", Required: true, Present: false, Reason: "mandatory"},
		{DocumentName: "Government ID", Required: true},
	}
	extra := []models.ChecklistItem{
		{DocumentName: "final bill", Required: true, Present: true, Notes: "seen on page 3"},
		{DocumentName: "Insurance Card Copy", Required: true},
	}

	merged := MergeChecklists(base, extra)

	assert.Len(t, merged, 3)
	assert.True(t, merged[0].Present, "duplicate can flip presence to true")
	assert.Equal(t, "seen on page 3", merged[0].Notes)
	assert.Equal(t, "Insurance Card Copy", merged[2].DocumentName)
}
