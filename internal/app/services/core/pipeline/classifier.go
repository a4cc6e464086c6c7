package pipeline

import (
	"context"
	"strconv"

	"claimlens-service/internal/app/contracts"
	"claimlens-service/internal/app/models"
	"claimlens-service/internal/pkg/constvars"
	"claimlens-service/internal/pkg/utils"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

var categoryOrder = []string{
	constvars.CategoryDischargeSummary,
	constvars.CategoryClinical,
	constvars.CategoryInvoice,
	constvars.CategoryReports,
	constvars.CategoryApproval,
	constvars.CategoryOther,
}

// Classification is the result of bucketing every uploaded file into
// exactly one category. Buckets always account for every input file.
type Classification struct {
	Buckets map[string][]models.DocumentFile
	Files   []models.ClassifiedFile
}

// Category returns the files bucketed under category, never nil.
func (c *Classification) Category(category string) []models.DocumentFile {
	return c.Buckets[category]
}

type Classifier struct {
	oracle contracts.Extractor
	log    *zap.Logger
}

func NewClassifier(oracle contracts.Extractor, log *zap.Logger) *Classifier {
	return &Classifier{oracle: oracle, log: log}
}

// flexIndex tolerates the model returning file_index as a string.
type flexIndex int

func (f *flexIndex) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexIndex(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*f = flexIndex(-1)
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		*f = flexIndex(-1)
		return nil
	}
	*f = flexIndex(n)
	return nil
}

type classifiedDoc struct {
	FileIndex    *flexIndex `json:"file_index"`
	DocumentType string     `json:"document_type"`
	Confidence   string     `json:"confidence"`
	Reason       string     `json:"reason"`
}

type classificationResponse struct {
	Documents []classifiedDoc `json:"documents"`
}

// Classify buckets every file into exactly one category in a single oracle
// call. Missing, out-of-range, or malformed index entries default the file
// to other; on oracle failure every file falls back to invoice so the
// pipeline still runs.
func (c *Classifier) Classify(ctx context.Context, files []models.DocumentFile) *Classification {
	result := &Classification{Buckets: map[string][]models.DocumentFile{}}
	if len(files) == 0 {
		return result
	}

	raw, err := c.oracle.Extract(ctx, files, classificationTask(len(files)))
	if err != nil {
		c.log.Warn("Classifier.Classify oracle call failed, defaulting all files to invoice", zap.Error(err))
		return c.fallback(files)
	}

	docs, err := decodeClassification(raw)
	if err != nil {
		c.log.Warn("Classifier.Classify unrepairable response, defaulting all files to invoice", zap.Error(err))
		return c.fallback(files)
	}

	assigned := make([]string, len(files))
	reasons := make([]classifiedDoc, len(files))
	for _, doc := range docs {
		if doc.FileIndex == nil {
			continue
		}
		idx := int(*doc.FileIndex)
		if idx < 0 || idx >= len(files) || assigned[idx] != "" {
			continue
		}
		category := doc.DocumentType
		if !validCategory(category) {
			category = constvars.CategoryOther
		}
		assigned[idx] = category
		reasons[idx] = doc
	}

	for idx := range files {
		category := assigned[idx]
		if category == "" {
			category = constvars.CategoryOther
		}
		result.Buckets[category] = append(result.Buckets[category], files[idx])
		result.Files = append(result.Files, models.ClassifiedFile{
			Index:      idx,
			Name:       files[idx].Name,
			Category:   category,
			Confidence: reasons[idx].Confidence,
			Reason:     reasons[idx].Reason,
		})
	}
	return result
}

// decodeClassification accepts both the documented {"documents": [...]}
// wrapper and the bare list the model sometimes returns instead.
func decodeClassification(raw string) ([]classifiedDoc, error) {
	var wrapped classificationResponse
	if err := utils.DecodeOracleJSON(raw, &wrapped); err == nil && len(wrapped.Documents) > 0 {
		return wrapped.Documents, nil
	}

	var bare []classifiedDoc
	if err := json.Unmarshal([]byte(utils.SanitizeOracleJSON(raw)), &bare); err != nil {
		return nil, err
	}
	return bare, nil
}

func (c *Classifier) fallback(files []models.DocumentFile) *Classification {
	result := &Classification{Buckets: map[string][]models.DocumentFile{
		constvars.CategoryInvoice: files,
	}}
	for idx, f := range files {
		result.Files = append(result.Files, models.ClassifiedFile{
			Index:    idx,
			Name:     f.Name,
			Category: constvars.CategoryInvoice,
			Reason:   "classification unavailable",
		})
	}
	return result
}

func validCategory(category string) bool {
	for _, c := range categoryOrder {
		if c == category {
			return true
		}
	}
	return false
}
