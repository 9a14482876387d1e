package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"gorm.io/gorm"

	"taskhub/internal/auth"
	apperrors "taskhub/internal/errors"
	"taskhub/internal/model"
	"taskhub/internal/repository"
	"taskhub/internal/storage"
)

const (
	// MaxUploadSize is the largest accepted upload, 5120 KiB.
	MaxUploadSize = 5 * 1024 * 1024

	sniffLen         = 3072
	extractQueueSize = 100
)

var (
	allowedUploadExtensions = map[string]bool{"pdf": true, "jpg": true, "jpeg": true, "png": true}
	allowedUploadMIMETypes  = []string{"application/pdf", "image/jpeg", "image/png"}
)

// UploadTooLarge is the validation failure for a file over MaxUploadSize.
func UploadTooLarge() error {
	return apperrors.FieldError("file", "The file field must not be greater than 5120 kilobytes.")
}

// TextExtractor returns the text of a stored file, or nil when it cannot.
type TextExtractor interface {
	Text(ctx context.Context, fileType model.FileType, path string) *string
}

// UploadInput is one file received from a client.
type UploadInput struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// UploadService stores files, extracts their text and guards access.
type UploadService interface {
	List(ctx context.Context, caller auth.Identity) ([]model.Upload, error)
	Get(ctx context.Context, caller auth.Identity, id uint) (*model.Upload, error)
	Create(ctx context.Context, caller auth.Identity, in UploadInput) (*model.Upload, error)
	Delete(ctx context.Context, caller auth.Identity, id uint) error
	// Close stops the background extraction worker, if any, after draining it.
	Close()
}

type extractionJob struct {
	uploadID uint
	fileType model.FileType
	path     string
}

type uploadService struct {
	repo      repository.UploadRepository
	store     storage.FileStore
	extractor TextExtractor

	// Channel for background extraction; nil when extraction runs inline.
	extractChannel chan extractionJob
	workerDone     sync.WaitGroup

	// Guards sends on extractChannel against Close.
	mu     sync.RWMutex
	closed bool
}

// NewUploadService creates an upload service. With async set, text is
// extracted by a background worker after the record is created.
func NewUploadService(repo repository.UploadRepository, store storage.FileStore, extractor TextExtractor, async bool) UploadService {
	s := &uploadService{
		repo:      repo,
		store:     store,
		extractor: extractor,
	}

	if async {
		s.extractChannel = make(chan extractionJob, extractQueueSize)
		s.workerDone.Add(1)
		go s.extractWorker(context.Background())
	}

	return s
}

func (s *uploadService) List(ctx context.Context, caller auth.Identity) ([]model.Upload, error) {
	uploads, err := s.repo.List(ctx, auth.OwnerScope(caller))
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	return uploads, nil
}

func (s *uploadService) Get(ctx context.Context, caller auth.Identity, id uint) (*model.Upload, error) {
	return s.authorized(ctx, caller, id)
}

// Create validates and stores the file, then records it. Extraction failures
// never fail the request; they leave extracted_text null.
func (s *uploadService) Create(ctx context.Context, caller auth.Identity, in UploadInput) (*model.Upload, error) {
	ext, content, err := validateUpload(in)
	if err != nil {
		return nil, err
	}

	fileType := model.FileTypeImage
	if ext == "pdf" {
		fileType = model.FileTypePDF
	}

	rel, err := s.store.Put(content, ext)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	upload := &model.Upload{
		UserID:           caller.UserID,
		OriginalFilename: in.Filename,
		FilePath:         rel,
		FileType:         fileType,
	}

	if s.extractChannel == nil {
		upload.ExtractedText = s.extract(ctx, fileType, rel)
	}

	if err := s.repo.Create(ctx, upload); err != nil {
		if rmErr := s.store.Delete(rel); rmErr != nil {
			slog.Warn("could not remove orphaned upload", "path", rel, "error", rmErr)
		}
		return nil, fmt.Errorf("create upload: %w", err)
	}

	if s.extractChannel != nil {
		job := extractionJob{uploadID: upload.ID, fileType: fileType, path: rel}
		if !s.enqueue(job) {
			upload.ExtractedText = s.runJob(ctx, job)
		}
	}

	return upload, nil
}

// Delete removes the record first and then the stored file. A file that
// cannot be removed is logged and left behind.
func (s *uploadService) Delete(ctx context.Context, caller auth.Identity, id uint) error {
	upload, err := s.authorized(ctx, caller, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, upload.ID); err != nil {
		return fmt.Errorf("delete upload: %w", err)
	}
	if err := s.store.Delete(upload.FilePath); err != nil {
		slog.Warn("could not remove stored upload", "upload_id", upload.ID, "path", upload.FilePath, "error", err)
	}
	return nil
}

func (s *uploadService) Close() {
	if s.extractChannel == nil {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.extractChannel)
	s.mu.Unlock()
	s.workerDone.Wait()
}

// enqueue hands job to the worker. It reports false when the queue is full
// or the worker has stopped, in which case the caller extracts inline.
func (s *uploadService) enqueue(job extractionJob) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false
	}
	select {
	case s.extractChannel <- job:
		return true
	default:
		return false
	}
}

func (s *uploadService) authorized(ctx context.Context, caller auth.Identity, id uint) (*model.Upload, error) {
	upload, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find upload: %w", err)
	}
	if !auth.CanAccess(caller, upload.UserID) {
		return nil, apperrors.ErrForbidden
	}
	return upload, nil
}

func (s *uploadService) extract(ctx context.Context, fileType model.FileType, rel string) *string {
	if s.extractor == nil {
		return nil
	}
	path, err := s.store.Path(rel)
	if err != nil {
		slog.Warn("cannot resolve stored upload", "path", rel, "error", err)
		return nil
	}
	return s.extractor.Text(ctx, fileType, path)
}

// extractWorker fills extracted_text for queued uploads.
func (s *uploadService) extractWorker(ctx context.Context) {
	defer s.workerDone.Done()
	for job := range s.extractChannel {
		s.runJob(ctx, job)
	}
}

func (s *uploadService) runJob(ctx context.Context, job extractionJob) *string {
	text := s.extract(ctx, job.fileType, job.path)
	if text == nil {
		return nil
	}
	if err := s.repo.SetExtractedText(ctx, job.uploadID, text); err != nil {
		slog.Warn("could not save extracted text", "upload_id", job.uploadID, "error", err)
		return nil
	}
	return text
}

// validateUpload checks size, extension and sniffed content type. It returns
// the lowercased extension and a reader replaying the sniffed bytes.
func validateUpload(in UploadInput) (string, io.Reader, error) {
	if in.Content == nil || in.Filename == "" {
		return "", nil, apperrors.FieldError("file", "The file field is required.")
	}
	if in.Size > MaxUploadSize {
		return "", nil, UploadTooLarge()
	}

	mimesErr := apperrors.FieldError("file", "The file field must be a file of type: pdf, jpg, jpeg, png.")

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(in.Filename), "."))
	if !allowedUploadExtensions[ext] {
		return "", nil, mimesErr
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(in.Content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return "", nil, apperrors.FieldError("file", "The file field is required.")
	}

	detected := mimetype.Detect(head)
	if !mimetype.EqualsAny(detected.String(), allowedUploadMIMETypes...) {
		return "", nil, mimesErr
	}

	return ext, io.MultiReader(bytes.NewReader(head), in.Content), nil
}
