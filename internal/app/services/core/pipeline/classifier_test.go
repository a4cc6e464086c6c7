package pipeline

import (
	"context"
	"errors"
	"testing"

	"claimlens-service/internal/app/models"
	"claimlens-service/internal/pkg/constvars"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestClassifierBucketsEveryFile(t *testing.T) {
	oracle := &fakeOracle{responses: map[string]string{
		"Classify each": `{"documents":[
			{"file_index":0,"document_type":"discharge_summary","confidence":"high","reason":"discharge header"},
			{"file_index":"1","document_type":"invoice","confidence":"high","reason":"itemized bill"},
			{"file_index":2,"document_type":"approval","confidence":"medium","reason":"authorization language"}
		]}`,
	}}
	classifier := NewClassifier(oracle, zap.NewNop())
	files := []models.DocumentFile{pdfFile("discharge.pdf"), pdfFile("bill.pdf"), pdfFile("approval.pdf")}

	result := classifier.Classify(context.Background(), files)

	assert.Len(t, result.Files, 3)
	assert.Len(t, result.Category(constvars.CategoryDischargeSummary), 1)
	assert.Len(t, result.Category(constvars.CategoryInvoice), 1)
	assert.Len(t, result.Category(constvars.CategoryApproval), 1)
	assert.Equal(t, "bill.pdf", result.Category(constvars.CategoryInvoice)[0].Name)

	total := 0
	for _, bucket := range result.Buckets {
		total += len(bucket)
	}
	assert.Equal(t, len(files), total, "every file must land in exactly one bucket")
}

func TestClassifierSkippedAndOutOfRangeIndicesDefaultToOther(t *testing.T) {
	oracle := &fakeOracle{responses: map[string]string{
		"Classify each": `{"documents":[
			{"file_index":0,"document_type":"invoice","confidence":"high","reason":"bill"},
			{"file_index":7,"document_type":"reports","confidence":"high","reason":"out of range"},
			{"file_index":2,"document_type":"no_such_category","confidence":"low","reason":"unknown"}
		]}`,
	}}
	classifier := NewClassifier(oracle, zap.NewNop())
	files := []models.DocumentFile{pdfFile("a.pdf"), pdfFile("b.pdf"), pdfFile("c.pdf")}

	result := classifier.Classify(context.Background(), files)

	assert.Len(t, result.Category(constvars.CategoryInvoice), 1)
	assert.Len(t, result.Category(constvars.CategoryReports), 0)
	assert.Len(t, result.Category(constvars.CategoryOther), 2, "unlisted and invalid-category files default to other")
}

func TestClassifierAcceptsBareListResponse(t *testing.T) {
	oracle := &fakeOracle{responses: map[string]string{
		"Classify each": "```json\n[{\"file_index\":0,\"document_type\":\"invoice\",\"confidence\":\"high\",\"reason\":\"bill\"}]\n```",
	}}
	classifier := NewClassifier(oracle, zap.NewNop())

	result := classifier.Classify(context.Background(), []models.DocumentFile{pdfFile("bill.pdf")})

	assert.Len(t, result.Category(constvars.CategoryInvoice), 1)
}

func TestClassifierFallsBackToInvoiceOnOracleFailure(t *testing.T) {
	oracle := &fakeOracle{err: errors.New("quota exceeded")}
	classifier := NewClassifier(oracle, zap.NewNop())
	files := []models.DocumentFile{pdfFile("a.pdf"), pdfFile("b.pdf")}

	result := classifier.Classify(context.Background(), files)

	assert.Len(t, result.Category(constvars.CategoryInvoice), 2)
	assert.Equal(t, "classification unavailable", result.Files[0].Reason)
}
