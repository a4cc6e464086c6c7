package constvars

type ContextKey string

const (
	CONTEXT_REQUEST_ID_KEY ContextKey = "request_id"
	CONTEXT_API_KEY_AUTH   ContextKey = "api_key_auth"
)

// Claim lifecycle states persisted alongside each claim document.
const (
	ClaimStatusProcessing = "processing"
	ClaimStatusCompleted  = "completed"
	ClaimStatusFailed     = "failed"
)

// Document categories produced by classification. Every uploaded file lands in
// exactly one of these buckets.
const (
	CategoryDischargeSummary = "discharge_summary"
	CategoryClinical         = "clinical"
	CategoryInvoice          = "invoice"
	CategoryReports          = "reports"
	CategoryApproval         = "approval"
	CategoryOther            = "other"
)

// Line item types as returned by invoice extraction.
const (
	LineItemTypeProcedure       = "procedure"
	LineItemTypeInvestigative   = "investigative"
	LineItemTypeAdministrative  = "administrative"
	LineItemTypeNonMedical      = "non_medical"
	LineItemTypeSupportServices = "support_services"
	LineItemTypeRoomCharges     = "room_charges"
	LineItemTypeClinical        = "clinical_services"
	LineItemTypeOther           = "other"
)

const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Pipeline stage identifiers carried on progress events.
const (
	StageInitializing = "initializing"
	StageClassify     = "classify"
	StageClinical     = "clinical"
	StageInvoice      = "invoice"
	StageReports      = "reports"
	StageApproval     = "approval"
	StageRequirements = "requirements"
	StageTariff       = "tariff_check"
	StageCalculating  = "calculating"
	StageCompleted    = "completed"
	StageError        = "error"
	StageWarning      = "warning"
)

// Reconciliation result types. These keys select the scoring weight for each
// check category.
const (
	CheckPatientDetails = "patient_details"
	CheckDates          = "dates"
	CheckReports        = "reports"
	CheckLineItems      = "line_items"
	CheckTariffs        = "tariffs"
)

const (
	AccuracyPassThreshold = 80.0
	AmountMatchEpsilon    = 0.01
	CostPerPageINR        = 1.1
)

const (
	AnalysisModeSequential = "sequential"
	AnalysisModeChunked    = "chunked"
)

const (
	ClaimNumberFormat      = "CLM-%s"
	AppPaginationUrlFormat = "%s?page=%d&pageSize=%d"
)

const (
	MongoCollectionClaims       = "claims"
	MongoCollectionClaimResults = "claim_results"
	MongoCollectionTariffs      = "tariffs"
)

// Result payload types stored per claim.
const (
	ResultTypeReport = "report"
)
