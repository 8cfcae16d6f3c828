package service

import (
	"context"
	"errors"
	"testing"

	"github.com/timmy/promptgen/internal/apperr"
	"github.com/timmy/promptgen/internal/domain"
	"github.com/timmy/promptgen/internal/filename"
)

type fakeBlobs struct {
	stored  map[string][]byte
	err     error
	onStore func()
}

func (f *fakeBlobs) Store(ctx context.Context, data []byte, safeName, contentType string) (string, error) {
	if f.onStore != nil {
		f.onStore()
	}
	if f.err != nil {
		return "", f.err
	}
	if f.stored == nil {
		f.stored = map[string][]byte{}
	}
	path := "uploads/images/" + safeName
	f.stored[path] = data
	return path, nil
}

func (f *fakeBlobs) URL(storagePath string) string { return "/storage/" + storagePath }

type fakeDescriber struct {
	text      string
	err       error
	calls     int
	ctxErr    error
	supported map[string]bool
}

func (f *fakeDescriber) DescribeImage(ctx context.Context, data []byte, mimeType string) (string, error) {
	f.calls++
	f.ctxErr = ctx.Err()
	return f.text, f.err
}

func (f *fakeDescriber) Supports(mimeType string) bool {
	if f.supported == nil {
		return true
	}
	return f.supported[mimeType]
}

type fakeRecords struct {
	created []*domain.GenerationRecord
	err     error
}

func (f *fakeRecords) Create(ctx context.Context, rec *domain.GenerationRecord) error {
	if f.err != nil {
		return f.err
	}
	rec.ID = "rec-1"
	f.created = append(f.created, rec)
	return nil
}

func (f *fakeRecords) List(ctx context.Context, ownerID string, q domain.ListQuery) (domain.Page[domain.GenerationRecord], error) {
	var items []domain.GenerationRecord
	for _, rec := range f.created {
		if rec.OwnerID == ownerID {
			items = append(items, *rec)
		}
	}
	return domain.Page[domain.GenerationRecord]{Items: items, Total: int64(len(items)), Number: 1, Size: 10}, nil
}

func newTestPipeline(blobs *fakeBlobs, describer *fakeDescriber, records *fakeRecords) *PromptGenerationService {
	return NewPromptGenerationService(filename.New(), blobs, describer, records, &PromptGenerationConfig{MaxUploadBytes: 1 << 20})
}

func stageOf(t *testing.T, err error) Stage {
	t.Helper()
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("error %v is not a *GenerationError", err)
	}
	return genErr.Stage
}

func TestGenerate_Success(t *testing.T) {
	blobs := &fakeBlobs{}
	describer := &fakeDescriber{text: "A red square on white"}
	records := &fakeRecords{}
	svc := newTestPipeline(blobs, describer, records)

	data := encodeJPEG(t)
	rec, err := svc.Generate(context.Background(), "alice", Upload{Filename: "my photo!.jpg", Data: data, DeclaredSize: int64(len(data))})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if rec.OwnerID != "alice" || rec.OriginalFilename != "my photo!.jpg" || rec.MimeType != "image/jpeg" {
		t.Errorf("record = %+v", rec)
	}
	if rec.FileSize != int64(len(data)) {
		t.Errorf("FileSize = %d, want %d", rec.FileSize, len(data))
	}
	if rec.GeneratedText != "A red square on white" {
		t.Errorf("GeneratedText = %q", rec.GeneratedText)
	}
	if _, ok := blobs.stored[rec.StoragePath]; !ok {
		t.Errorf("StoragePath %q was not stored", rec.StoragePath)
	}
	if svc.ImageURL(rec.StoragePath) != "/storage/"+rec.StoragePath {
		t.Errorf("ImageURL = %q", svc.ImageURL(rec.StoragePath))
	}
}

func TestGenerate_AIFailureCreatesNoRecord(t *testing.T) {
	blobs := &fakeBlobs{}
	describer := &fakeDescriber{err: apperr.AIService("AI service request failed", errors.New("quota exceeded"))}
	records := &fakeRecords{}
	svc := newTestPipeline(blobs, describer, records)

	_, err := svc.Generate(context.Background(), "alice", Upload{Filename: "a.jpg", Data: encodeJPEG(t)})
	if err == nil {
		t.Fatal("expected error")
	}
	if stageOf(t, err) != StageDescribed {
		t.Errorf("stage = %s, want described", stageOf(t, err))
	}
	if !apperr.Is(err, apperr.KindAIService) {
		t.Errorf("kind = %s, want ai_service", apperr.KindOf(err))
	}
	if len(records.created) != 0 {
		t.Fatal("repository Create must not be invoked when the AI call fails")
	}
	if len(blobs.stored) != 1 {
		t.Errorf("expected the stored blob to remain as an orphan, got %d", len(blobs.stored))
	}
}

func TestGenerate_StorageFailureSkipsAI(t *testing.T) {
	blobs := &fakeBlobs{err: errors.New("disk full")}
	describer := &fakeDescriber{text: "x"}
	records := &fakeRecords{}
	svc := newTestPipeline(blobs, describer, records)

	_, err := svc.Generate(context.Background(), "alice", Upload{Filename: "a.png", Data: encodePNG(t)})
	if stageOf(t, err) != StageStored || !apperr.Is(err, apperr.KindStorage) {
		t.Fatalf("error = %v, want storage failure at stored", err)
	}
	if describer.calls != 0 || len(records.created) != 0 {
		t.Fatalf("describer calls = %d, records = %d; want none", describer.calls, len(records.created))
	}
}

func TestGenerate_PersistenceFailure(t *testing.T) {
	records := &fakeRecords{err: errors.New("database is locked")}
	svc := newTestPipeline(&fakeBlobs{}, &fakeDescriber{text: "x"}, records)

	_, err := svc.Generate(context.Background(), "alice", Upload{Filename: "a.png", Data: encodePNG(t)})
	if stageOf(t, err) != StagePersisted || !apperr.Is(err, apperr.KindPersistence) {
		t.Fatalf("error = %v, want persistence failure at persisted", err)
	}
}

func TestGenerate_RejectsBeforeSideEffects(t *testing.T) {
	big := append(encodeJPEG(t), make([]byte, 1<<20)...)

	tests := []struct {
		name      string
		owner     string
		upload    Upload
		supported map[string]bool
		kind      apperr.Kind
	}{
		{name: "missing image", owner: "alice", upload: Upload{Filename: "a.jpg"}, kind: apperr.KindValidation},
		{name: "too large", owner: "alice", upload: Upload{Filename: "a.jpg", Data: big}, kind: apperr.KindValidation},
		{name: "declared too large", owner: "alice", upload: Upload{Filename: "a.jpg", Data: encodeJPEG(t), DeclaredSize: 2 << 20}, kind: apperr.KindValidation},
		{name: "not an image", owner: "alice", upload: Upload{Filename: "a.jpg", Data: []byte("hello world")}, kind: apperr.KindValidation},
		{name: "provider cannot read gif", owner: "alice", upload: Upload{Filename: "a.gif", Data: encodeGIF(t)}, supported: map[string]bool{"image/jpeg": true}, kind: apperr.KindValidation},
		{name: "no owner", owner: "", upload: Upload{Filename: "a.jpg", Data: encodeJPEG(t)}, kind: apperr.KindUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blobs := &fakeBlobs{}
			describer := &fakeDescriber{text: "x", supported: tt.supported}
			records := &fakeRecords{}
			svc := newTestPipeline(blobs, describer, records)

			_, err := svc.Generate(context.Background(), tt.owner, tt.upload)
			if stageOf(t, err) != StageReceived {
				t.Errorf("stage = %s, want received", stageOf(t, err))
			}
			if !apperr.Is(err, tt.kind) {
				t.Errorf("kind = %s, want %s", apperr.KindOf(err), tt.kind)
			}
			if len(blobs.stored) != 0 || describer.calls != 0 || len(records.created) != 0 {
				t.Error("rejected upload caused side effects")
			}
		})
	}
}

func TestGenerate_ClientCancelAfterStoreDoesNotCancelAI(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	blobs := &fakeBlobs{onStore: cancel}
	describer := &fakeDescriber{text: "still described"}
	records := &fakeRecords{}
	svc := newTestPipeline(blobs, describer, records)

	rec, err := svc.Generate(ctx, "alice", Upload{Filename: "a.jpg", Data: encodeJPEG(t)})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if describer.ctxErr != nil {
		t.Errorf("describer saw cancelled context: %v", describer.ctxErr)
	}
	if rec.GeneratedText != "still described" {
		t.Errorf("GeneratedText = %q", rec.GeneratedText)
	}
}

func TestList_ScopedToOwner(t *testing.T) {
	records := &fakeRecords{created: []*domain.GenerationRecord{
		{ID: "1", OwnerID: "alice"},
		{ID: "2", OwnerID: "bob"},
	}}
	svc := newTestPipeline(&fakeBlobs{}, &fakeDescriber{}, records)

	page, err := svc.List(context.Background(), "alice", domain.ListQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != "1" {
		t.Errorf("List() = %+v", page.Items)
	}
	if _, err := svc.List(context.Background(), "", domain.ListQuery{}); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Errorf("List without owner error = %v", err)
	}
}
