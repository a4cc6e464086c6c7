package claims

import (
	"testing"

	"claimlens-service/internal/app/config"
	"claimlens-service/internal/app/models"
	"claimlens-service/internal/pkg/constvars"
	"claimlens-service/internal/pkg/exceptions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newValidationUsecase(maxUploadMB int64) *claimUsecase {
	cfg := &config.InternalConfig{}
	cfg.Pipeline.MaxUploadSizeInMB = maxUploadMB
	return &claimUsecase{
		InternalConfig: cfg,
		Log:            zap.NewNop(),
	}
}

func TestValidateFilesAllowlist(t *testing.T) {
	uc := newValidationUsecase(16)

	t.Run("accepts every supported document type", func(t *testing.T) {
		files := []models.DocumentFile{
			{Name: "invoice.pdf", MIMEType: "application/pdf", Data: []byte("pdf")},
			{Name: "scan.jpg", MIMEType: "image/jpeg", Data: []byte("jpg")},
			{Name: "scan.png", MIMEType: "image/png", Data: []byte("png")},
			{Name: "scan.tiff", MIMEType: "image/tiff", Data: []byte("tiff")},
			{Name: "scan.bmp", MIMEType: "image/bmp", Data: []byte("bmp")},
		}
		require.NoError(t, uc.validateFiles(files))
	})

	t.Run("rejects types outside the allowlist", func(t *testing.T) {
		for _, file := range []models.DocumentFile{
			{Name: "photo.webp", MIMEType: "image/webp", Data: []byte("webp")},
			{Name: "notes.docx", MIMEType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", Data: []byte("docx")},
		} {
			err := uc.validateFiles([]models.DocumentFile{file})
			require.Error(t, err, "file %s should be rejected", file.Name)
			customErr, ok := err.(*exceptions.CustomError)
			require.True(t, ok)
			assert.Equal(t, constvars.StatusBadRequest, customErr.StatusCode)
			assert.Equal(t, constvars.ErrClientUnsupportedFileType, customErr.ClientMessage)
		}
	})

	t.Run("falls back to the extension when no type is sent", func(t *testing.T) {
		ok := []models.DocumentFile{
			{Name: "report.tif", Data: []byte("tif")},
			{Name: "xray.bmp", Data: []byte("bmp")},
		}
		require.NoError(t, uc.validateFiles(ok))

		err := uc.validateFiles([]models.DocumentFile{{Name: "photo.webp", Data: []byte("webp")}})
		require.Error(t, err)
	})

	t.Run("rejects empty files", func(t *testing.T) {
		err := uc.validateFiles([]models.DocumentFile{{Name: "invoice.pdf", MIMEType: "application/pdf"}})
		require.Error(t, err)
		customErr, ok := err.(*exceptions.CustomError)
		require.True(t, ok)
		assert.Equal(t, constvars.ErrClientNoDocumentsProvided, customErr.ClientMessage)
	})

	t.Run("rejects files over the upload limit", func(t *testing.T) {
		small := newValidationUsecase(1)
		err := small.validateFiles([]models.DocumentFile{{
			Name:     "invoice.pdf",
			MIMEType: "application/pdf",
			Data:     make([]byte, 2*1024*1024),
		}})
		require.Error(t, err)
		customErr, ok := err.(*exceptions.CustomError)
		require.True(t, ok)
		assert.Equal(t, constvars.StatusRequestEntityTooBig, customErr.StatusCode)
	})
}

func TestMimeTypeForFile(t *testing.T) {
	cases := map[string]string{
		"claim.PDF":    "application/pdf",
		"scan.jpeg":    "image/jpeg",
		"scan.jpg":     "image/jpeg",
		"scan.png":     "image/png",
		"report.tiff":  "image/tiff",
		"report.tif":   "image/tiff",
		"xray.bmp":     "image/bmp",
		"photo.webp":   "application/octet-stream",
		"archive.zip":  "application/octet-stream",
		"no-extension": "application/octet-stream",
	}
	for name, want := range cases {
		assert.Equal(t, want, mimeTypeForFile(name), name)
	}
}
