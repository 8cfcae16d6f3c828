package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfThroughWrapping(t *testing.T) {
	base := errors.New("disk full")
	err := fmt.Errorf("store blob: %w", Storage("failed to store image", base))

	if got := KindOf(err); got != KindStorage {
		t.Fatalf("KindOf = %s, want %s", got, KindStorage)
	}
	if !errors.Is(err, base) {
		t.Error("expected underlying error to stay reachable through Unwrap")
	}
	if !Is(err, KindStorage) || Is(err, KindAIService) {
		t.Error("Is reported the wrong kind")
	}
}

func TestKindOfUnclassified(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != KindInternal {
		t.Fatalf("KindOf = %s, want %s", got, KindInternal)
	}
	if Is(nil, KindInternal) {
		t.Fatal("nil error must not match any kind")
	}
}

func TestValidationCarriesField(t *testing.T) {
	err := Validation("image", "The image field is required.")
	if got := err.Fields["image"]; len(got) != 1 || got[0] != "The image field is required." {
		t.Fatalf("Fields = %v", err.Fields)
	}
	if err.Message != "The image field is required." {
		t.Fatalf("Message = %q", err.Message)
	}
}
