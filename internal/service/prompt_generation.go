package service

import (
	"context"
	"fmt"
	"time"

	"github.com/timmy/promptgen/internal/apperr"
	"github.com/timmy/promptgen/internal/domain"
	"github.com/timmy/promptgen/internal/logger"
)

// Stage is a step of the prompt generation pipeline.
type Stage string

const (
	StageReceived  Stage = "received"
	StageSanitized Stage = "sanitized"
	StageStored    Stage = "stored"
	StageDescribed Stage = "described"
	StagePersisted Stage = "persisted"
	StageResponded Stage = "responded"
)

// GenerationError reports the stage at which a generation request failed.
// The wrapped error carries the apperr kind.
type GenerationError struct {
	Stage Stage
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("prompt generation failed at %s: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Upload is an image received from a client.
type Upload struct {
	Filename     string
	Data         []byte
	DeclaredSize int64
}

// NameSanitizer turns client filenames into unique safe names.
type NameSanitizer interface {
	Sanitize(originalName string) (string, error)
}

// BlobStorer writes upload bytes and resolves stored paths to URLs.
type BlobStorer interface {
	Store(ctx context.Context, data []byte, safeName, contentType string) (string, error)
	URL(storagePath string) string
}

// ImageDescriber produces a text description of an image.
type ImageDescriber interface {
	DescribeImage(ctx context.Context, imageData []byte, mimeType string) (string, error)
	Supports(mimeType string) bool
}

// GenerationStore persists and lists generation records.
type GenerationStore interface {
	Create(ctx context.Context, rec *domain.GenerationRecord) error
	List(ctx context.Context, ownerID string, q domain.ListQuery) (domain.Page[domain.GenerationRecord], error)
}

// PromptGenerationConfig holds limits for the generation pipeline.
type PromptGenerationConfig struct {
	MaxUploadBytes int64
}

// PromptGenerationService runs the store, describe, persist pipeline for an
// uploaded image. A record becomes visible only after every stage succeeds.
type PromptGenerationService struct {
	sanitizer NameSanitizer
	blobs     BlobStorer
	describer ImageDescriber
	records   GenerationStore
	maxBytes  int64
}

// NewPromptGenerationService creates a new prompt generation service.
// Parameters:
//   - sanitizer: produces unique safe object names.
//   - blobs: durable store for upload bytes.
//   - describer: vision model client.
//   - records: generation record repository.
//   - cfg: pipeline limits.
//
// Returns:
//   - *PromptGenerationService: orchestrator ready to serve requests.
func NewPromptGenerationService(
	sanitizer NameSanitizer,
	blobs BlobStorer,
	describer ImageDescriber,
	records GenerationStore,
	cfg *PromptGenerationConfig,
) *PromptGenerationService {
	maxBytes := cfg.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = 10 * 1024 * 1024
	}
	return &PromptGenerationService{
		sanitizer: sanitizer,
		blobs:     blobs,
		describer: describer,
		records:   records,
		maxBytes:  maxBytes,
	}
}

// MaxUploadBytes returns the largest accepted upload.
func (s *PromptGenerationService) MaxUploadBytes() int64 {
	return s.maxBytes
}

// Generate stores the upload, asks the vision model for a prompt and saves
// the resulting record.
// Parameters:
//   - ctx: request context; it is detached from cancellation once the blob is stored.
//   - ownerID: authenticated owner of the new record.
//   - up: uploaded image.
//
// Returns:
//   - *domain.GenerationRecord: the persisted record.
//   - error: *GenerationError wrapping a validation, storage, AI service or persistence error.
func (s *PromptGenerationService) Generate(ctx context.Context, ownerID string, up Upload) (*domain.GenerationRecord, error) {
	start := time.Now()
	ctx = logger.WithFields(ctx, logger.Fields{logger.FieldComponent: "prompt_generation"})

	// Received
	info, err := s.receive(ownerID, up)
	if err != nil {
		return nil, s.fail(ctx, StageReceived, err)
	}

	// Sanitized
	safeName, err := s.sanitizer.Sanitize(up.Filename)
	if err != nil {
		return nil, s.fail(ctx, StageSanitized, apperr.Internal("failed to name upload", err))
	}

	// Stored
	storeStart := time.Now()
	storagePath, err := s.blobs.Store(ctx, up.Data, safeName, info.MimeType)
	if err != nil {
		return nil, s.fail(ctx, StageStored, err)
	}
	ctx = logger.WithField(ctx, logger.FieldStoragePath, storagePath)
	logger.With(logger.Fields{logger.FieldStage: StageStored}).
		WithDuration(time.Since(storeStart).Milliseconds()).
		WithSize(int64(len(up.Data))).
		Debug(ctx, "Image stored")

	// The bytes are durable now; a client disconnect must not abort the AI
	// call or the insert.
	ctx = context.WithoutCancel(ctx)

	// Described
	describeStart := time.Now()
	text, err := s.describer.DescribeImage(ctx, up.Data, info.MimeType)
	if err != nil {
		logger.FromContext(ctx).Warn("Stored image left without a record")
		return nil, s.fail(ctx, StageDescribed, err)
	}
	logger.With(logger.Fields{logger.FieldStage: StageDescribed}).
		WithDuration(time.Since(describeStart).Milliseconds()).
		Info(ctx, "Image described")

	// Persisted
	rec := &domain.GenerationRecord{
		OwnerID:          ownerID,
		StoragePath:      storagePath,
		GeneratedText:    text,
		FileSize:         int64(len(up.Data)),
		OriginalFilename: up.Filename,
		MimeType:         info.MimeType,
	}
	if err := s.records.Create(ctx, rec); err != nil {
		logger.FromContext(ctx).Warn("Stored image and AI output left without a record")
		return nil, s.fail(ctx, StagePersisted, err)
	}

	// Responded
	logger.With(logger.Fields{
		logger.FieldStage:        StageResponded,
		logger.FieldGenerationID: rec.ID,
	}).WithDuration(time.Since(start).Milliseconds()).Info(ctx, "Prompt generated")

	return rec, nil
}

// receive validates the upload before anything is written.
func (s *PromptGenerationService) receive(ownerID string, up Upload) (*ImageInfo, error) {
	if ownerID == "" {
		return nil, apperr.Unauthorized("Unauthenticated.")
	}
	if len(up.Data) == 0 {
		return nil, apperr.Validation("image", "The image field is required.")
	}

	size := max(int64(len(up.Data)), up.DeclaredSize)
	if size > s.maxBytes {
		return nil, apperr.Validation("image",
			fmt.Sprintf("The image must not be greater than %d kilobytes.", s.maxBytes/1024))
	}

	info, err := InspectImage(up.Data)
	if err != nil {
		return nil, err
	}
	if !s.describer.Supports(info.MimeType) {
		return nil, apperr.Validation("image",
			fmt.Sprintf("The image type %s is not supported by the configured AI provider.", info.MimeType))
	}
	return info, nil
}

func (s *PromptGenerationService) fail(ctx context.Context, stage Stage, err error) error {
	if _, ok := apperr.As(err); !ok {
		err = classify(stage, err)
	}

	log := logger.FromContext(ctx).WithField(logger.FieldStage, stage).WithError(err)
	if apperr.Is(err, apperr.KindValidation) || apperr.Is(err, apperr.KindUnauthorized) {
		log.Info("Prompt generation rejected")
	} else {
		log.Error("Prompt generation failed")
	}
	return &GenerationError{Stage: stage, Err: err}
}

// classify assigns the stage's error kind to an unclassified error.
func classify(stage Stage, err error) error {
	switch stage {
	case StageStored:
		return apperr.Storage("failed to store image", err)
	case StageDescribed:
		return apperr.AIService("AI service request failed", err)
	case StagePersisted:
		return apperr.Persistence("failed to save generation record", err)
	default:
		return apperr.Internal("prompt generation failed", err)
	}
}

// List returns the owner's records matching q.
func (s *PromptGenerationService) List(ctx context.Context, ownerID string, q domain.ListQuery) (domain.Page[domain.GenerationRecord], error) {
	if ownerID == "" {
		return domain.Page[domain.GenerationRecord]{}, apperr.Unauthorized("Unauthenticated.")
	}
	return s.records.List(ctx, ownerID, q)
}

// ImageURL resolves a record's storage path to a client-facing URL.
func (s *PromptGenerationService) ImageURL(storagePath string) string {
	return s.blobs.URL(storagePath)
}
