package pipeline

import (
	"bytes"
	"math"
	"strings"

	"claimlens-service/internal/app/models"
)

var pdfPageMarkers = [][]byte{
	[]byte("/Type /Page"),
	[]byte("/Type/Page"),
}

// countPDFPages counts page objects in a raw PDF body. Files that are not
// PDFs, or PDFs with no recognizable page objects, count as one page.
func countPDFPages(data []byte) int {
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		return 1
	}
	pages := 0
	for _, marker := range pdfPageMarkers {
		offset := 0
		for {
			i := bytes.Index(data[offset:], marker)
			if i < 0 {
				break
			}
			next := offset + i + len(marker)
			// "/Type /Pages" is the page tree node, not a page.
			if next >= len(data) || data[next] != 's' {
				pages++
			}
			offset = next
		}
	}
	if pages == 0 {
		return 1
	}
	return pages
}

// EstimateCost prices a claim by total page count. Images and unreadable
// files count as a single page each.
func EstimateCost(files []models.DocumentFile, costPerPageINR float64) float64 {
	pages := 0
	for _, f := range files {
		if strings.EqualFold(f.MIMEType, "application/pdf") {
			pages += countPDFPages(f.Data)
			continue
		}
		pages++
	}
	return math.Round(float64(pages)*costPerPageINR*100) / 100
}
