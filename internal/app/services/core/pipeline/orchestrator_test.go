package pipeline

import (
	"context"
	"errors"
	"testing"

	"claimlens-service/internal/app/models"
	"claimlens-service/internal/pkg/constvars"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProgress struct {
	events []models.ProgressEvent
}

func (f *fakeProgress) Publish(_ context.Context, _ string, event models.ProgressEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeProgress) Subscribe(_ context.Context, _ string) (<-chan models.ProgressEvent, func(), error) {
	ch := make(chan models.ProgressEvent)
	close(ch)
	return ch, func() {}, nil
}

// scriptedOracle answers every pipeline stage for a clean three-document
// claim. Markers are substrings unique to each stage's task text.
func scriptedOracle() *fakeOracle {
	return &fakeOracle{responses: map[string]string{
		"Classify each of the": `{"documents": [
			{"file_index": 0, "document_type": "discharge_summary", "confidence": "high", "reason": "discharge summary"},
			{"file_index": 1, "document_type": "invoice", "confidence": "high", "reason": "final bill"},
			{"file_index": 2, "document_type": "approval", "confidence": "high", "reason": "authorization letter"}
		]}`,
		"complete case context": `{
			"case_summary": {
				"patient_name": "Ramesh Kumar",
				"primary_diagnosis": ["Acute appendicitis"],
				"procedures_performed": [{"procedure_name": "Laparoscopic Appendectomy", "date": "2024-02-03", "is_surgery": true}],
				"investigations_done": [{"investigation_name": "CBC", "date": "2024-02-02"}],
				"admission_date": "2024-02-02",
				"discharge_date": "2024-02-05",
				"is_surgery_case": true
			},
			"patient_information": {"patient_name": "Ramesh Kumar", "patient_id": "H1001", "gender": "Male"}
		}`,
		"financial information": `{
			"payer_information": {"payer_type": "TPA", "payer_name": "MediAssist"},
			"hospital_information": {"hospital_name": "City Hospital"},
			"patient_information": {"patient_name": "Ramesh Kumar", "patient_id": "H1001", "gender": "Male"},
			"invoice_number": "INV-77",
			"invoice_date": "2024-02-05",
			"total_claimed_amount": 20500.0,
			"line_items": [
				{"item_name": "Surgeon Fee", "item_code": "SURG-APP", "code_valid": true, "date": "2024-02-03", "units": 1, "unit_price": 20000, "total_price": 20000, "type": "procedure"},
				{"item_name": "CBC", "date": "2024-02-02", "units": 1, "unit_price": 500, "total_price": 500, "type": "investigative"}
			]
		}`,
		"billed investigations": `{"reports_by_item": {"CBC": true}, "report_dates": {"CBC": "2024-02-02"}, "reports_found": ["CBC report"]}`,
		"CLAIMED AMOUNT:": `{
			"approval_found": true,
			"approval_type": "Final Approval",
			"approval_reference": "AUTH-42",
			"approved_amount": 20500.0,
			"approval_valid_from": "2024-02-01",
			"approval_valid_to": "2024-02-10",
			"payer_info": {"payer_type": "TPA", "payer_name": "MediAssist"},
			"patient_information": {"patient_name": "Ramesh Kumar"}
		}`,
	}}
}

func newTestOrchestrator(oracle *fakeOracle, progress *fakeProgress, concurrency int) *Orchestrator {
	log := zap.NewNop()
	return NewOrchestrator(
		NewClassifier(oracle, log),
		NewCaseContextExtractor(oracle, log),
		NewInvoiceExtractor(oracle, log),
		NewReportAssessor(oracle, log),
		NewApprovalVerifier(oracle, log),
		NewRequirementsPlanner(oracle, log),
		NewReconciliationEngine(&fakeTariffRepo{}, 80, log),
		progress,
		OrchestratorConfig{OracleConcurrency: concurrency, CostPerPageINR: 2.0},
		log,
	)
}

func claimFiles() []models.DocumentFile {
	return []models.DocumentFile{
		pdfFile("discharge.pdf"),
		pdfFile("final_bill.pdf"),
		pdfFile("approval.pdf"),
	}
}

func eventSteps(events []models.ProgressEvent) []string {
	steps := make([]string, 0, len(events))
	for _, e := range events {
		steps = append(steps, e.Step)
	}
	return steps
}

func TestOrchestratorSequentialRun(t *testing.T) {
	progress := &fakeProgress{}
	orchestrator := newTestOrchestrator(scriptedOracle(), progress, 1)

	report, err := orchestrator.Run(context.Background(), RunInput{
		ClaimID:       "claim-1",
		ClaimNumber:   "CLM-AB12CD34",
		SessionID:     "sess-1",
		AnalysisMode:  constvars.AnalysisModeSequential,
		ClaimedAmount: 20500.0,
		Files:         claimFiles(),
	})

	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, 100.0, report.Score.AccuracyScore)
	assert.True(t, report.Score.Passed)
	assert.Empty(t, report.Discrepancies)
	assert.Empty(t, report.Warnings)

	assert.True(t, report.Cashless.HasFinalApproval)
	assert.Equal(t, "Final Approval", report.Cashless.ApprovalStage)
	assert.True(t, report.CaseContext.IsSurgeryCase)
	assert.Equal(t, 6.0, report.CostEstimate, "three one-page pdfs at 2.0 per page")
	assert.NotEmpty(t, report.Checklist)

	steps := eventSteps(progress.events)
	assert.Equal(t, []string{
		constvars.StageInitializing,
		constvars.StageClassify,
		constvars.StageClinical,
		constvars.StageInvoice,
		constvars.StageReports,
		constvars.StageApproval,
		constvars.StageRequirements,
		constvars.StageCalculating,
		constvars.StageCompleted,
	}, steps)

	last := progress.events[len(progress.events)-1]
	assert.Equal(t, 100, last.Percent)
	assert.Equal(t, constvars.ClaimStatusCompleted, last.Status)
	require.NotNil(t, last.Result, "terminal event carries the report")
	assert.Equal(t, "claim-1", last.Result.ClaimID)

	for i := 1; i < len(progress.events); i++ {
		assert.GreaterOrEqual(t, progress.events[i].Percent, progress.events[i-1].Percent,
			"progress percentages never move backwards")
	}
}

func TestOrchestratorChunkedRunPairsStages(t *testing.T) {
	progress := &fakeProgress{}
	orchestrator := newTestOrchestrator(scriptedOracle(), progress, 2)

	report, err := orchestrator.Run(context.Background(), RunInput{
		ClaimID:       "claim-2",
		SessionID:     "sess-2",
		AnalysisMode:  constvars.AnalysisModeChunked,
		ClaimedAmount: 20500.0,
		Files:         claimFiles(),
	})

	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, 100.0, report.Score.AccuracyScore)

	steps := eventSteps(progress.events)
	assert.Equal(t, []string{
		constvars.StageInitializing,
		constvars.StageClassify,
		constvars.StageClinical,
		constvars.StageReports,
		constvars.StageRequirements,
		constvars.StageCalculating,
		constvars.StageCompleted,
	}, steps, "chunked mode announces each stage pair once")
}

func TestOrchestratorTariffStageAnnouncedWhenEnabled(t *testing.T) {
	progress := &fakeProgress{}
	orchestrator := newTestOrchestrator(scriptedOracle(), progress, 1)

	_, err := orchestrator.Run(context.Background(), RunInput{
		ClaimID:            "claim-3",
		SessionID:          "sess-3",
		AnalysisMode:       constvars.AnalysisModeSequential,
		ClaimedAmount:      20500.0,
		TariffCheckEnabled: true,
		Files:              claimFiles(),
	})

	require.NoError(t, err)
	assert.Contains(t, eventSteps(progress.events), constvars.StageTariff)
}

func TestOrchestratorDegradesWhenOracleIsDown(t *testing.T) {
	progress := &fakeProgress{}
	orchestrator := newTestOrchestrator(&fakeOracle{err: errors.New("oracle unavailable")}, progress, 1)

	report, err := orchestrator.Run(context.Background(), RunInput{
		ClaimID:       "claim-4",
		SessionID:     "sess-4",
		AnalysisMode:  constvars.AnalysisModeSequential,
		ClaimedAmount: 1000.0,
		Files:         claimFiles(),
	})

	require.NoError(t, err, "stage failures degrade, they never abort the run")
	require.NotNil(t, report)
	assert.Empty(t, report.Invoice.LineItems)
	assert.False(t, report.Approval.Found)
	assert.Contains(t, report.Warnings, "No discharge summary or clinical documents identified")
	assert.Contains(t, report.Warnings, "No approval or authorization letter found in claim documents")

	last := progress.events[len(progress.events)-1]
	assert.Equal(t, constvars.StageCompleted, last.Step)
}

func TestOrchestratorClampsOracleConcurrency(t *testing.T) {
	assert.Equal(t, 1, cap(newTestOrchestrator(scriptedOracle(), &fakeProgress{}, 0).sem))
	assert.Equal(t, 3, cap(newTestOrchestrator(scriptedOracle(), &fakeProgress{}, 9).sem))
}
