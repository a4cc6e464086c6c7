package pipeline

import (
	"context"
	"errors"
	"strings"

	"claimlens-service/internal/app/models"
)

// fakeOracle returns a canned response chosen by a substring of the task
// text, so one fake can serve every stage in a test.
type fakeOracle struct {
	responses map[string]string
	err       error
	calls     []string
}

func (f *fakeOracle) Extract(_ context.Context, _ []models.DocumentFile, task string) (string, error) {
	f.calls = append(f.calls, task)
	if f.err != nil {
		return "", f.err
	}
	for marker, response := range f.responses {
		if strings.Contains(task, marker) {
			return response, nil
		}
	}
	return "", errors.New("no canned response for task")
}

func pdfFile(name string) models.DocumentFile {
	return models.DocumentFile{
		Name:     name,
		MIMEType: "application/pdf",
		Data:     []byte("%PDF-1.4\n/Type /Page\n%%EOF"),
	}
}
