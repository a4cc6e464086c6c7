package pipeline

import (
	"testing"

	"claimlens-service/internal/app/models"

	"github.com/stretchr/testify/assert"
)

func TestCountPDFPages(t *testing.T) {
	tests := []struct {
		name string
		data string
		want int
	}{
		{
			name: "counts page objects and skips the page tree node",
			data: "%PDF-1.4\n/Type /Pages\n/Type /Page\n/Type /Page\n/Type /Page\n%%EOF",
			want: 3,
		},
		{
			name: "accepts the compact form without a space",
			data: "%PDF-1.7\n/Type/Pages /Type/Page /Type/Page\n%%EOF",
			want: 2,
		},
		{
			name: "pdf without page objects counts as one",
			data: "%PDF-1.4\n%%EOF",
			want: 1,
		},
		{
			name: "non-pdf data counts as one",
			data: "not a pdf at all",
			want: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, countPDFPages([]byte(tt.data)))
		})
	}
}

func TestEstimateCost(t *testing.T) {
	files := []models.DocumentFile{
		{
			Name:     "discharge.pdf",
			MIMEType: "application/pdf",
			Data:     []byte("%PDF-1.4\n/Type /Pages\n/Type /Page\n/Type /Page\n%%EOF"),
		},
		{Name: "xray.jpg", MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8}},
	}

	assert.Equal(t, 7.5, EstimateCost(files, 2.5), "2 pdf pages plus 1 image page")
	assert.Equal(t, 0.0, EstimateCost(nil, 2.5))
}
