package models

import "time"

// DocumentFile is one uploaded document held in memory for the duration of
// a pipeline run. Data is read-only once the run starts.
type DocumentFile struct {
	Name     string
	MIMEType string
	Data     []byte
}

// ClassifiedFile assigns one uploaded file to a category bucket.
type ClassifiedFile struct {
	Index      int    `json:"index"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	Confidence string `json:"confidence,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

type PatientIdentity struct {
	Name        string `json:"patient_name,omitempty"`
	PatientID   string `json:"patient_id,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	Age         *int   `json:"age,omitempty"`
	Gender      string `json:"gender,omitempty"`
}

// CaseContext is the clinical summary extracted from discharge and clinical
// documents. Missing fields stay empty, they are never fabricated.
type CaseContext struct {
	Patient             PatientIdentity `json:"patient_details"`
	AdmissionDate       string          `json:"admission_date,omitempty"`
	DischargeDate       string          `json:"discharge_date,omitempty"`
	PrimaryDiagnosis    []string        `json:"primary_diagnosis,omitempty"`
	ProceduresPerformed []string        `json:"procedures_performed,omitempty"`
	InvestigationsDone  []string        `json:"investigations_done,omitempty"`
	TreatingDoctor      string          `json:"treating_doctor,omitempty"`
	DischargeCondition  string          `json:"discharge_condition,omitempty"`
	IsSurgeryCase       bool            `json:"is_surgery_case"`
}

type PayerDetails struct {
	PayerName    string `json:"payer_name,omitempty"`
	PayerType    string `json:"payer_type,omitempty"`
	PolicyNumber string `json:"policy_number,omitempty"`
	MemberID     string `json:"member_id,omitempty"`
}

type HospitalDetails struct {
	HospitalName       string `json:"hospital_name,omitempty"`
	Address            string `json:"address,omitempty"`
	RegistrationNumber string `json:"registration_number,omitempty"`
}

// TariffMatch records the outcome of comparing a billed price against a
// reference tariff entry. Reference and Difference stay nil when no tariff
// entry exists for the item.
type TariffMatch struct {
	Match          bool     `json:"match"`
	ReferencePrice *float64 `json:"tariff_price,omitempty"`
	Difference     *float64 `json:"difference,omitempty"`
	Note           string   `json:"note,omitempty"`
}

// LineItem is one billed entry on the hospital invoice. It is created by
// invoice extraction and filled in additively by later stages.
type LineItem struct {
	Name          string       `json:"item_name"`
	Code          string       `json:"item_code,omitempty"`
	CodeValid     *bool        `json:"code_valid,omitempty"`
	Category      string       `json:"category,omitempty"`
	Type          string       `json:"type"`
	Date          string       `json:"date,omitempty"`
	Units         float64      `json:"units,omitempty"`
	UnitPrice     float64      `json:"unit_price,omitempty"`
	TotalPrice    float64      `json:"total_price"`
	ProofRequired bool         `json:"proof_required"`
	ProofPresent  bool         `json:"proof_present"`
	ProofAccurate bool         `json:"proof_accurate"`
	IsImplant     bool         `json:"is_implant"`
	TariffMatch   *TariffMatch `json:"tariff_match,omitempty"`
}

// Invoice is the financial view of the claim extracted from invoice files.
type Invoice struct {
	Payer         PayerDetails    `json:"payer_details"`
	Hospital      HospitalDetails `json:"hospital_details"`
	Patient       PatientIdentity `json:"patient_details"`
	InvoiceNumber string          `json:"invoice_number,omitempty"`
	InvoiceDate   string          `json:"invoice_date,omitempty"`
	TotalClaimed  float64         `json:"total_claimed"`
	LineItems     []LineItem      `json:"line_items"`
}

// ApprovalRecord is the authorization artifact located among all files.
// At most one per claim.
type ApprovalRecord struct {
	Found          bool            `json:"found"`
	Type           string          `json:"approval_type,omitempty"`
	ReferenceID    string          `json:"approval_reference,omitempty"`
	ApprovedAmount float64         `json:"approved_amount"`
	AmountMatch    bool            `json:"amount_match"`
	PayerName      string          `json:"payer_name,omitempty"`
	PayerType      string          `json:"payer_type,omitempty"`
	ApprovalDate   string          `json:"approval_date,omitempty"`
	ApprovalFrom   string          `json:"approval_from,omitempty"`
	ApprovalTo     string          `json:"approval_to,omitempty"`
	Patient        PatientIdentity `json:"patient_details"`
	Conditions     []string        `json:"conditions,omitempty"`
}

type Discrepancy struct {
	Category    string `json:"category"`
	Severity    string `json:"severity"`
	Description string `json:"description,omitempty"`
	Expected    string `json:"expected,omitempty"`
	Actual      string `json:"actual,omitempty"`
	Source      string `json:"source,omitempty"`
}

type ChecklistItem struct {
	DocumentName string `json:"document_name"`
	Required     bool   `json:"required"`
	Present      bool   `json:"present"`
	Reason       string `json:"reason,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// ScoreBreakdown is recomputed on every run, never persisted incrementally.
type ScoreBreakdown struct {
	AccuracyScore    float64            `json:"accuracy_score"`
	Passed           bool               `json:"passed"`
	Threshold        float64            `json:"threshold"`
	PerCategoryScore map[string]float64 `json:"breakdown"`
}

// CashlessAssessment records the approval posture of the claim. Every claim
// is treated as cashless; a missing approval degrades, it never rejects.
type CashlessAssessment struct {
	HasFinalApproval bool   `json:"has_final_or_discharge_approval"`
	ApprovalStage    string `json:"approval_stage"`
	PayerType        string `json:"payer_type,omitempty"`
	PayerName        string `json:"payer_name,omitempty"`
}

type ReportMetadata struct {
	GeneratedAt           time.Time `json:"generated_at"`
	AnalysisMode          string    `json:"analysis_mode"`
	TariffCheckExecuted   bool      `json:"tariff_check_executed"`
	IncludePayerChecklist bool      `json:"include_payer_checklist"`
}

// ClaimReport is the terminal aggregate of one pipeline run. Immutable once
// produced.
type ClaimReport struct {
	Version       string             `json:"version"`
	ClaimID       string             `json:"claim_id"`
	ClaimNumber   string             `json:"claim_number"`
	Metadata      ReportMetadata     `json:"metadata"`
	Cashless      CashlessAssessment `json:"cashless_verification"`
	CaseContext   CaseContext        `json:"case_context"`
	Invoice       Invoice            `json:"invoice"`
	Approval      ApprovalRecord     `json:"approval"`
	ReportMap     map[string]bool    `json:"reports_by_item,omitempty"`
	Checklist     []ChecklistItem    `json:"case_specific_checklist"`
	Discrepancies []Discrepancy      `json:"discrepancies"`
	Score         ScoreBreakdown     `json:"overall_score"`
	CostEstimate  float64            `json:"cost_estimate_inr,omitempty"`
	Warnings      []string           `json:"warnings,omitempty"`
}

// ProgressEvent is one entry on a claim's progress stream. The terminal
// completed or error event carries the full report or error message.
type ProgressEvent struct {
	Step    string       `json:"step"`
	Message string       `json:"message"`
	Percent int          `json:"progress"`
	Status  string       `json:"status,omitempty"`
	ClaimID string       `json:"claim_id,omitempty"`
	Result  *ClaimReport `json:"result,omitempty"`
}
