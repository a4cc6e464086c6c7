package pipeline

import (
	"context"
	"strings"

	"claimlens-service/internal/app/contracts"
	"claimlens-service/internal/app/models"
	"claimlens-service/internal/pkg/constvars"
	"claimlens-service/internal/pkg/utils"

	"go.uber.org/zap"
)

// Surgery keyword ontology. ANY match marks the case surgical.
var surgeryKeywords = []string{
	"surgery", "surgical", "operation", "operative",
	"ot ", "ot notes", "operation theatre", "operating room", "operating theatre",
	"appendectomy", "cholecystectomy", "hysterectomy", "laparotomy",
	"arthroscopy", "endoscopy", "angioplasty",
	"stent", "fixation", "replacement", "implant", "graft",
	"pre-operative", "post-operative", "intra-operative",
	"surgeon", "anesthesia", "anaesthesia",
	"incision", "sutures",
}

type CaseContextExtractor struct {
	oracle contracts.Extractor
	log    *zap.Logger
}

func NewCaseContextExtractor(oracle contracts.Extractor, log *zap.Logger) *CaseContextExtractor {
	return &CaseContextExtractor{oracle: oracle, log: log}
}

type namedProcedure struct {
	ProcedureName string `json:"procedure_name"`
	Date          string `json:"date"`
	IsSurgery     bool   `json:"is_surgery"`
}

type namedInvestigation struct {
	InvestigationName string `json:"investigation_name"`
	Date              string `json:"date"`
}

type caseContextResponse struct {
	CaseSummary struct {
		PatientName         string               `json:"patient_name"`
		PrimaryDiagnosis    []string             `json:"primary_diagnosis"`
		ProceduresPerformed []namedProcedure     `json:"procedures_performed"`
		InvestigationsDone  []namedInvestigation `json:"investigations_done"`
		AdmissionDate       string               `json:"admission_date"`
		DischargeDate       string               `json:"discharge_date"`
		DischargeCondition  string               `json:"discharge_condition"`
		TreatingDoctor      string               `json:"treating_doctor"`
		IsSurgeryCase       bool                 `json:"is_surgery_case"`
		SurgeryIndicators   []string             `json:"surgery_indicators"`
	} `json:"case_summary"`
	PatientInformation struct {
		PatientName string `json:"patient_name"`
		PatientID   string `json:"patient_id"`
		DateOfBirth string `json:"date_of_birth"`
		AgeYears    *int   `json:"age_years"`
		Gender      string `json:"gender"`
	} `json:"patient_information"`
}

// Extract derives the clinical case context. Called with discharge and
// clinical files when classification found any, otherwise with all files.
// Returns an empty context on oracle failure, never an error.
func (e *CaseContextExtractor) Extract(ctx context.Context, files []models.DocumentFile) models.CaseContext {
	if len(files) == 0 {
		return models.CaseContext{}
	}

	raw, err := e.oracle.Extract(ctx, files, caseContextTask(len(files)))
	if err != nil {
		e.log.Warn("CaseContextExtractor.Extract oracle call failed, returning empty context", zap.Error(err))
		return models.CaseContext{}
	}

	var parsed caseContextResponse
	if err := utils.DecodeOracleJSON(raw, &parsed); err != nil {
		e.log.Warn("CaseContextExtractor.Extract unrepairable response, returning empty context", zap.Error(err))
		return models.CaseContext{}
	}

	cc := models.CaseContext{
		Patient: models.PatientIdentity{
			Name:        firstNonEmpty(parsed.PatientInformation.PatientName, parsed.CaseSummary.PatientName),
			PatientID:   parsed.PatientInformation.PatientID,
			DateOfBirth: parsed.PatientInformation.DateOfBirth,
			Age:         parsed.PatientInformation.AgeYears,
			Gender:      parsed.PatientInformation.Gender,
		},
		AdmissionDate:      parsed.CaseSummary.AdmissionDate,
		DischargeDate:      parsed.CaseSummary.DischargeDate,
		PrimaryDiagnosis:   parsed.CaseSummary.PrimaryDiagnosis,
		TreatingDoctor:     parsed.CaseSummary.TreatingDoctor,
		DischargeCondition: parsed.CaseSummary.DischargeCondition,
	}
	for _, p := range parsed.CaseSummary.ProceduresPerformed {
		if p.ProcedureName != "" {
			cc.ProceduresPerformed = append(cc.ProceduresPerformed, p.ProcedureName)
		}
	}
	for _, inv := range parsed.CaseSummary.InvestigationsDone {
		if inv.InvestigationName != "" {
			cc.InvestigationsDone = append(cc.InvestigationsDone, inv.InvestigationName)
		}
	}

	cc.IsSurgeryCase = parsed.CaseSummary.IsSurgeryCase ||
		IsSurgeryCase(cc.ProceduresPerformed, parsed.CaseSummary.SurgeryIndicators, cc.PrimaryDiagnosis)
	return cc
}

// IsSurgeryCase applies the keyword ontology over procedure names, surgery
// indicators, and diagnoses. A single match is enough.
func IsSurgeryCase(procedures, indicators, diagnoses []string) bool {
	for _, group := range [][]string{procedures, indicators, diagnoses} {
		for _, entry := range group {
			lower := " " + strings.ToLower(entry) + " "
			for _, keyword := range surgeryKeywords {
				if strings.Contains(lower, keyword) {
					return true
				}
			}
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// filesForContext picks discharge and clinical buckets when present, else
// all files. Never returns an empty set for a non-empty claim.
func filesForContext(classification *Classification, all []models.DocumentFile) []models.DocumentFile {
	files := append([]models.DocumentFile{},
		classification.Category(constvars.CategoryDischargeSummary)...)
	files = append(files, classification.Category(constvars.CategoryClinical)...)
	if len(files) == 0 {
		return all
	}
	return files
}
