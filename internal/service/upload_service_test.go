package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "taskhub/internal/errors"
	"taskhub/internal/model"
	"taskhub/internal/storage"
)

var (
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")
	pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)
	jpgBytes = append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, make([]byte, 32)...)
)

func uploadInput(name string, content []byte) UploadInput {
	return UploadInput{Filename: name, Size: int64(len(content)), Content: bytes.NewReader(content)}
}

func storedFiles(t *testing.T, root string) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(root, "uploads"))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestUploadService_CreateExtractsText(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	repo := new(MockUploadRepository)
	extractor := new(MockExtractor)

	extractor.On("Text", ctx, model.FileTypePDF, mock.AnythingOfType("string")).Return(strPtr("Invoice 42"))
	repo.On("Create", ctx, mock.AnythingOfType("*model.Upload")).Return(nil)

	svc := NewUploadService(repo, storage.NewDiskStore(root), extractor, false)
	upload, err := svc.Create(ctx, owner, uploadInput("Report.PDF", pdfBytes))

	require.NoError(t, err)
	assert.Equal(t, owner.UserID, upload.UserID)
	assert.Equal(t, "Report.PDF", upload.OriginalFilename)
	assert.Equal(t, model.FileTypePDF, upload.FileType)
	assert.True(t, strings.HasPrefix(upload.FilePath, "uploads/"))
	assert.True(t, strings.HasSuffix(upload.FilePath, ".pdf"))
	require.NotNil(t, upload.ExtractedText)
	assert.Equal(t, "Invoice 42", *upload.ExtractedText)

	data, err := os.ReadFile(filepath.Join(root, upload.FilePath))
	require.NoError(t, err)
	assert.Equal(t, pdfBytes, data)
}

func TestUploadService_CreateSurvivesFailedExtraction(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUploadRepository)
	extractor := new(MockExtractor)

	extractor.On("Text", ctx, model.FileTypeImage, mock.Anything).Return(nil)
	repo.On("Create", ctx, mock.Anything).Return(nil)

	svc := NewUploadService(repo, storage.NewDiskStore(t.TempDir()), extractor, false)

	for _, in := range []UploadInput{uploadInput("scan.png", pngBytes), uploadInput("photo.jpeg", jpgBytes)} {
		upload, err := svc.Create(ctx, owner, in)
		require.NoError(t, err)
		assert.Equal(t, model.FileTypeImage, upload.FileType)
		assert.Nil(t, upload.ExtractedText)
	}
	repo.AssertNumberOfCalls(t, "Create", 2)
}

func TestUploadService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		in      UploadInput
		wantMsg string
	}{
		{"missing file", UploadInput{}, "The file field is required."},
		{"too large", UploadInput{Filename: "big.pdf", Size: MaxUploadSize + 1, Content: bytes.NewReader(pdfBytes)}, "The file field must not be greater than 5120 kilobytes."},
		{"bad extension", uploadInput("notes.txt", []byte("hello")), "The file field must be a file of type: pdf, jpg, jpeg, png."},
		{"content does not match", uploadInput("fake.pdf", []byte("just some text")), "The file field must be a file of type: pdf, jpg, jpeg, png."},
		{"empty content", uploadInput("empty.png", nil), "The file field is required."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			repo := new(MockUploadRepository)
			svc := NewUploadService(repo, storage.NewDiskStore(root), new(MockExtractor), false)

			_, err := svc.Create(ctx, owner, tt.in)

			var verr *apperrors.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, []string{tt.wantMsg}, verr.Fields["file"])
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			assert.Empty(t, storedFiles(t, root))
		})
	}
}

func TestUploadService_CreateRemovesFileWhenInsertFails(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	repo := new(MockUploadRepository)
	extractor := new(MockExtractor)
	extractor.On("Text", ctx, mock.Anything, mock.Anything).Return(nil)
	repo.On("Create", ctx, mock.Anything).Return(errors.New("db down"))

	svc := NewUploadService(repo, storage.NewDiskStore(root), extractor, false)
	_, err := svc.Create(ctx, owner, uploadInput("scan.png", pngBytes))

	assert.Error(t, err)
	assert.Empty(t, storedFiles(t, root))
}

func TestUploadService_Delete(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := storage.NewDiskStore(root)
	rel, err := store.Put(bytes.NewReader(pngBytes), "png")
	require.NoError(t, err)

	stored := &model.Upload{ID: 3, UserID: owner.UserID, FilePath: rel, FileType: model.FileTypeImage}

	t.Run("stranger is forbidden", func(t *testing.T) {
		repo := new(MockUploadRepository)
		repo.On("FindByID", ctx, uint(3)).Return(stored, nil)

		err := NewUploadService(repo, store, nil, false).Delete(ctx, stranger, 3)

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		assert.Len(t, storedFiles(t, root), 1)
	})

	t.Run("missing upload", func(t *testing.T) {
		repo := new(MockUploadRepository)
		repo.On("FindByID", ctx, uint(4)).Return(nil, gorm.ErrRecordNotFound)

		err := NewUploadService(repo, store, nil, false).Delete(ctx, owner, 4)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("admin deletes row then file", func(t *testing.T) {
		repo := new(MockUploadRepository)
		repo.On("FindByID", ctx, uint(3)).Return(stored, nil)
		repo.On("Delete", ctx, uint(3)).Return(nil)

		require.NoError(t, NewUploadService(repo, store, nil, false).Delete(ctx, admin, 3))
		assert.Empty(t, storedFiles(t, root))
	})
}

func TestUploadService_AsyncExtraction(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUploadRepository)
	extractor := new(MockExtractor)

	repo.On("Create", ctx, mock.Anything).
		Run(func(args mock.Arguments) { args.Get(1).(*model.Upload).ID = 11 }).
		Return(nil)
	extractor.On("Text", mock.Anything, model.FileTypePDF, mock.Anything).Return(strPtr("later"))
	repo.On("SetExtractedText", mock.Anything, uint(11), mock.MatchedBy(func(s *string) bool { return s != nil && *s == "later" })).Return(nil)

	svc := NewUploadService(repo, storage.NewDiskStore(t.TempDir()), extractor, true)
	upload, err := svc.Create(ctx, owner, uploadInput("doc.pdf", pdfBytes))
	require.NoError(t, err)
	assert.Nil(t, upload.ExtractedText)

	svc.Close()
	repo.AssertCalled(t, "SetExtractedText", mock.Anything, uint(11), mock.Anything)
}

func TestUploadService_CreateAfterClose(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUploadRepository)
	extractor := new(MockExtractor)

	repo.On("Create", ctx, mock.Anything).
		Run(func(args mock.Arguments) { args.Get(1).(*model.Upload).ID = 12 }).
		Return(nil)
	extractor.On("Text", ctx, model.FileTypePDF, mock.Anything).Return(strPtr("inline"))
	repo.On("SetExtractedText", ctx, uint(12), mock.Anything).Return(nil)

	svc := NewUploadService(repo, storage.NewDiskStore(t.TempDir()), extractor, true)
	svc.Close()
	svc.Close()

	var upload *model.Upload
	require.NotPanics(t, func() {
		var err error
		upload, err = svc.Create(ctx, owner, uploadInput("late.pdf", pdfBytes))
		require.NoError(t, err)
	})
	require.NotNil(t, upload.ExtractedText)
	assert.Equal(t, "inline", *upload.ExtractedText)
	repo.AssertCalled(t, "SetExtractedText", ctx, uint(12), mock.Anything)
}
