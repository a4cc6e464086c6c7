package pipeline

import (
	"context"
	"strings"

	"claimlens-service/internal/app/contracts"
	"claimlens-service/internal/app/models"
	"claimlens-service/internal/pkg/utils"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type ReportAssessor struct {
	oracle contracts.Extractor
	log    *zap.Logger
}

func NewReportAssessor(oracle contracts.Extractor, log *zap.Logger) *ReportAssessor {
	return &ReportAssessor{oracle: oracle, log: log}
}

type reportsResponse struct {
	ReportsByItem map[string]bool   `json:"reports_by_item"`
	ReportDates   map[string]string `json:"report_dates"`
	ReportsFound  []string          `json:"reports_found"`
}

// Assess scans all claim files for investigation reports matching the
// billed investigative items. It short-circuits when nothing on the
// invoice needs a report. The first map keys item names to whether a
// matching report was found; the second carries the date printed on the
// report, when one was legible.
func (a *ReportAssessor) Assess(ctx context.Context, files []models.DocumentFile, items []models.LineItem) (map[string]bool, map[string]string) {
	investigative := InvestigativeItems(items)
	if len(investigative) == 0 || len(files) == 0 {
		return map[string]bool{}, map[string]string{}
	}

	raw, err := a.oracle.Extract(ctx, files, reportsTask(investigative))
	if err != nil {
		a.log.Warn("ReportAssessor.Assess oracle call failed, marking reports missing", zap.Error(err))
		return map[string]bool{}, map[string]string{}
	}

	var parsed reportsResponse
	if err := utils.DecodeOracleJSON(raw, &parsed); err != nil {
		recovered, ok := utils.RecoverPartialObject(raw, "reports_by_item")
		if !ok {
			a.log.Warn("ReportAssessor.Assess unrepairable response, marking reports missing", zap.Error(err))
			return map[string]bool{}, map[string]string{}
		}
		if err := json.Unmarshal(recovered, &parsed); err != nil {
			a.log.Warn("ReportAssessor.Assess partial recovery failed, marking reports missing", zap.Error(err))
			return map[string]bool{}, map[string]string{}
		}
	}

	if parsed.ReportsByItem == nil {
		parsed.ReportsByItem = map[string]bool{}
	}
	if parsed.ReportDates == nil {
		parsed.ReportDates = map[string]string{}
	}
	return parsed.ReportsByItem, parsed.ReportDates
}

// FillProofPresence writes the report scan outcome back onto investigative
// line items. Lookup ignores case and surrounding whitespace.
func FillProofPresence(items []models.LineItem, reportsByItem map[string]bool) {
	normalized := make(map[string]bool, len(reportsByItem))
	for name, found := range reportsByItem {
		normalized[strings.ToLower(strings.TrimSpace(name))] = found
	}
	for i := range items {
		if items[i].Type != "investigative" {
			continue
		}
		items[i].ProofPresent = normalized[strings.ToLower(strings.TrimSpace(items[i].Name))]
		items[i].ProofAccurate = items[i].ProofPresent
	}
}
