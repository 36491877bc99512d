package blob

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	data := []byte{0x89, 'P', 'N', 'G'}
	n, err := s.PutObject(ctx, "screenshots/u1/1.png", data, "image/png")
	if err != nil || n != 4 {
		t.Fatalf("put: n=%d err=%v", n, err)
	}
	data[0] = 0

	got, err := s.GetObject(ctx, "screenshots/u1/1.png")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got[0] != 0x89 {
		t.Fatal("store must keep its own copy of the data")
	}

	if _, err := s.PresignGet(ctx, "screenshots/u1/1.png", 60); !errors.Is(err, ErrPresignUnsupported) {
		t.Fatalf("expected ErrPresignUnsupported, got %v", err)
	}

	if err := s.DeleteObject(ctx, "screenshots/u1/1.png"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetObject(ctx, "screenshots/u1/1.png"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteObject(ctx, "missing"); err != nil {
		t.Fatalf("delete of missing key should succeed, got %v", err)
	}
}
