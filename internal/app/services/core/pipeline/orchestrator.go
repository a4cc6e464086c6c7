package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"claimlens-service/internal/app/contracts"
	"claimlens-service/internal/app/models"
	"claimlens-service/internal/pkg/constvars"
	"claimlens-service/internal/pkg/exceptions"

	"go.uber.org/zap"
)

const reportVersion = "1.0"

// Progress percentages per stage. The stream is monotonic; completed and
// error both land on 100.
var stagePercent = map[string]int{
	constvars.StageInitializing: 0,
	constvars.StageClassify:     10,
	constvars.StageClinical:     20,
	constvars.StageInvoice:      30,
	constvars.StageReports:      40,
	constvars.StageApproval:     50,
	constvars.StageRequirements: 60,
	constvars.StageTariff:       85,
	constvars.StageCalculating:  90,
	constvars.StageCompleted:    100,
	constvars.StageError:        100,
}

// Orchestrator sequences the extraction stages over one claim's files and
// assembles the final report. Classification always runs first; the
// remaining stages run one at a time in sequential mode or in pairs in
// chunked mode.
type Orchestrator struct {
	classifier  *Classifier
	caseContext *CaseContextExtractor
	invoice     *InvoiceExtractor
	reports     *ReportAssessor
	approval    *ApprovalVerifier
	planner     *RequirementsPlanner
	engine      *ReconciliationEngine
	progress    contracts.ProgressPublisher
	sem         chan struct{}
	costPerPage float64
	log         *zap.Logger
}

type OrchestratorConfig struct {
	OracleConcurrency int
	CostPerPageINR    float64
}

func NewOrchestrator(
	classifier *Classifier,
	caseContext *CaseContextExtractor,
	invoice *InvoiceExtractor,
	reports *ReportAssessor,
	approval *ApprovalVerifier,
	planner *RequirementsPlanner,
	engine *ReconciliationEngine,
	progress contracts.ProgressPublisher,
	cfg OrchestratorConfig,
	log *zap.Logger,
) *Orchestrator {
	concurrency := cfg.OracleConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > 3 {
		concurrency = 3
	}
	return &Orchestrator{
		classifier:  classifier,
		caseContext: caseContext,
		invoice:     invoice,
		reports:     reports,
		approval:    approval,
		planner:     planner,
		engine:      engine,
		progress:    progress,
		sem:         make(chan struct{}, concurrency),
		costPerPage: cfg.CostPerPageINR,
		log:         log,
	}
}

// RunInput is one claim ready for analysis. Files are already fetched from
// storage.
type RunInput struct {
	ClaimID               string
	ClaimNumber           string
	SessionID             string
	AnalysisMode          string
	ClaimedAmount         float64
	IncludePayerChecklist bool
	TariffCheckEnabled    bool
	Files                 []models.DocumentFile
}

// Run executes the full pipeline for one claim. A panic in any stage is
// recovered and surfaced as a terminal error event so the claim never
// stays stuck in processing.
func (o *Orchestrator) Run(ctx context.Context, in RunInput) (report *models.ClaimReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("Orchestrator.Run panic recovered", zap.Any("panic", r), zap.String("claim_id", in.ClaimID))
			err = exceptions.ErrServerProcess(fmt.Errorf("pipeline panic: %v", r))
			report = nil
			o.publish(ctx, in, constvars.StageError, "Analysis failed", constvars.ClaimStatusFailed, nil)
		}
	}()

	o.publish(ctx, in, constvars.StageInitializing, "Preparing claim documents", constvars.ClaimStatusProcessing, nil)

	o.publish(ctx, in, constvars.StageClassify, "Classifying uploaded documents", constvars.ClaimStatusProcessing, nil)
	classification := o.withSlot(func() *Classification {
		return o.classifier.Classify(ctx, in.Files)
	})

	var (
		caseContext   models.CaseContext
		invoice       models.Invoice
		reportsByItem map[string]bool
		reportDates   map[string]string
		approval      models.ApprovalRecord
	)

	contextFiles := filesForContext(classification, in.Files)
	invoiceFiles := classification.Category(constvars.CategoryInvoice)
	if len(invoiceFiles) == 0 {
		invoiceFiles = in.Files
	}

	if in.AnalysisMode == constvars.AnalysisModeChunked {
		o.publish(ctx, in, constvars.StageClinical, "Extracting case context and invoice", constvars.ClaimStatusProcessing, nil)
		o.runPair(
			func() { caseContext = o.caseContext.Extract(ctx, contextFiles) },
			func() { invoice = o.invoice.Extract(ctx, invoiceFiles) },
		)
		o.publish(ctx, in, constvars.StageReports, "Matching reports and locating approval", constvars.ClaimStatusProcessing, nil)
		o.runPair(
			func() { reportsByItem, reportDates = o.reports.Assess(ctx, in.Files, invoice.LineItems) },
			func() { approval = o.approval.Verify(ctx, in.Files, in.ClaimedAmount) },
		)
	} else {
		o.publish(ctx, in, constvars.StageClinical, "Extracting case context", constvars.ClaimStatusProcessing, nil)
		caseContext = o.caseContext.Extract(ctx, contextFiles)

		o.publish(ctx, in, constvars.StageInvoice, "Extracting invoice line items", constvars.ClaimStatusProcessing, nil)
		invoice = o.invoice.Extract(ctx, invoiceFiles)

		o.publish(ctx, in, constvars.StageReports, "Matching investigation reports", constvars.ClaimStatusProcessing, nil)
		reportsByItem, reportDates = o.reports.Assess(ctx, in.Files, invoice.LineItems)

		o.publish(ctx, in, constvars.StageApproval, "Locating approval letter", constvars.ClaimStatusProcessing, nil)
		approval = o.approval.Verify(ctx, in.Files, in.ClaimedAmount)
	}

	FillProofPresence(invoice.LineItems, reportsByItem)

	o.publish(ctx, in, constvars.StageRequirements, "Building document checklist", constvars.ClaimStatusProcessing, nil)
	planInput := PlanInput{
		Classification: classification,
		CaseContext:    caseContext,
		Invoice:        invoice,
		Approval:       approval,
		ReportsByItem:  reportsByItem,
	}
	checklist := o.planner.Plan(planInput)
	if in.IncludePayerChecklist {
		checklist = o.withSlotChecklist(func() []models.ChecklistItem {
			return o.planner.Enrich(ctx, checklist, planInput)
		})
	}

	if in.TariffCheckEnabled {
		o.publish(ctx, in, constvars.StageTariff, "Comparing billed prices against tariffs", constvars.ClaimStatusProcessing, nil)
	}
	o.publish(ctx, in, constvars.StageCalculating, "Reconciling and scoring", constvars.ClaimStatusProcessing, nil)
	discrepancies, score := o.engine.Reconcile(ctx, ReconcileInput{
		CaseContext:        caseContext,
		Invoice:            &invoice,
		Approval:           approval,
		ReportDates:        reportDates,
		ClaimedAmount:      in.ClaimedAmount,
		TariffCheckEnabled: in.TariffCheckEnabled,
	})

	report = &models.ClaimReport{
		Version:     reportVersion,
		ClaimID:     in.ClaimID,
		ClaimNumber: in.ClaimNumber,
		Metadata: models.ReportMetadata{
			GeneratedAt:           time.Now().UTC(),
			AnalysisMode:          in.AnalysisMode,
			TariffCheckExecuted:   in.TariffCheckEnabled,
			IncludePayerChecklist: in.IncludePayerChecklist,
		},
		Cashless:      buildCashlessAssessment(approval),
		CaseContext:   caseContext,
		Invoice:       invoice,
		Approval:      approval,
		ReportMap:     reportsByItem,
		Checklist:     checklist,
		Discrepancies: discrepancies,
		Score:         score,
		CostEstimate:  EstimateCost(in.Files, o.costPerPage),
		Warnings:      buildWarnings(classification, approval),
	}

	o.publish(ctx, in, constvars.StageCompleted, "Analysis completed", constvars.ClaimStatusCompleted, report)
	return report, nil
}

func (o *Orchestrator) publish(ctx context.Context, in RunInput, stage, message, status string, result *models.ClaimReport) {
	event := models.ProgressEvent{
		Step:    stage,
		Message: message,
		Percent: stagePercent[stage],
		Status:  status,
		ClaimID: in.ClaimID,
		Result:  result,
	}
	if err := o.progress.Publish(ctx, in.SessionID, event); err != nil {
		o.log.Warn("Orchestrator.publish progress event dropped", zap.Error(err), zap.String("stage", stage))
	}
}

// runPair executes two stages concurrently, each holding one oracle slot.
func (o *Orchestrator) runPair(first, second func()) {
	var wg sync.WaitGroup
	for _, fn := range []func(){first, second} {
		wg.Add(1)
		go func(stage func()) {
			defer wg.Done()
			o.sem <- struct{}{}
			defer func() { <-o.sem }()
			stage()
		}(fn)
	}
	wg.Wait()
}

func (o *Orchestrator) withSlot(fn func() *Classification) *Classification {
	o.sem <- struct{}{}
	defer func() { <-o.sem }()
	return fn()
}

func (o *Orchestrator) withSlotChecklist(fn func() []models.ChecklistItem) []models.ChecklistItem {
	o.sem <- struct{}{}
	defer func() { <-o.sem }()
	return fn()
}

func buildCashlessAssessment(approval models.ApprovalRecord) models.CashlessAssessment {
	stage := "None"
	if approval.Found {
		stage = approval.Type
		if stage == "" || stage == "None" {
			stage = "Final Approval"
		}
	}
	return models.CashlessAssessment{
		HasFinalApproval: approval.Found,
		ApprovalStage:    stage,
		PayerType:        approval.PayerType,
		PayerName:        approval.PayerName,
	}
}

func buildWarnings(classification *Classification, approval models.ApprovalRecord) []string {
	var warnings []string
	if len(classification.Category(constvars.CategoryInvoice)) == 0 {
		warnings = append(warnings, "No invoice documents identified; all files were scanned for billing data")
	}
	if len(classification.Category(constvars.CategoryDischargeSummary)) == 0 &&
		len(classification.Category(constvars.CategoryClinical)) == 0 {
		warnings = append(warnings, "No discharge summary or clinical documents identified")
	}
	if !approval.Found {
		warnings = append(warnings, "No approval or authorization letter found in claim documents")
	}
	return warnings
}
