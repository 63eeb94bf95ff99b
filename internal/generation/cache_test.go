//go:build unit

package generation

import (
	"context"
	"errors"
	"testing"
)

type countingGenerator struct {
	caption      string
	image        string
	failWith     error
	captionCalls int
	imageCalls   int
}

var _ Generator = (*countingGenerator)(nil)

func (g *countingGenerator) GenerateCaption(ctx context.Context, title, categoryName string) (string, error) {
	g.captionCalls++
	if g.failWith != nil {
		return "", g.failWith
	}
	return g.caption, nil
}

func (g *countingGenerator) GenerateImage(ctx context.Context, title, categoryName string) (string, error) {
	g.imageCalls++
	if g.failWith != nil {
		return "", g.failWith
	}
	return g.image, nil
}

func TestCachedGenerator(t *testing.T) {
	ctx := context.Background()

	t.Run("repeat draft served from cache", func(t *testing.T) {
		inner := &countingGenerator{caption: "Testo", image: "data:image/png;base64,aGVsbG8="}
		cached, err := NewCachedGenerator(inner, 4)
		if err != nil {
			t.Fatalf("NewCachedGenerator() error = %v", err)
		}

		for i := 0; i < 3; i++ {
			if _, err := cached.GenerateCaption(ctx, "Offerta", "Cosmetica"); err != nil {
				t.Fatalf("GenerateCaption() error = %v", err)
			}
		}
		if inner.captionCalls != 1 {
			t.Errorf("expected 1 upstream caption call, got %d", inner.captionCalls)
		}

		// Captions and images cache independently.
		if _, err := cached.GenerateImage(ctx, "Offerta", "Cosmetica"); err != nil {
			t.Fatalf("GenerateImage() error = %v", err)
		}
		if inner.imageCalls != 1 {
			t.Errorf("expected 1 upstream image call, got %d", inner.imageCalls)
		}
	})

	t.Run("different draft misses", func(t *testing.T) {
		inner := &countingGenerator{caption: "Testo"}
		cached, _ := NewCachedGenerator(inner, 4)

		cached.GenerateCaption(ctx, "Offerta", "Cosmetica")
		cached.GenerateCaption(ctx, "Offerta", "Integratori")
		if inner.captionCalls != 2 {
			t.Errorf("expected 2 upstream calls for distinct drafts, got %d", inner.captionCalls)
		}
	})

	t.Run("failures are not cached", func(t *testing.T) {
		inner := &countingGenerator{failWith: errors.New("quota exceeded")}
		cached, _ := NewCachedGenerator(inner, 4)

		if _, err := cached.GenerateCaption(ctx, "Offerta", "Cosmetica"); err == nil {
			t.Fatal("expected error")
		}
		inner.failWith = nil
		inner.caption = "Testo"
		caption, err := cached.GenerateCaption(ctx, "Offerta", "Cosmetica")
		if err != nil || caption != "Testo" {
			t.Fatalf("retry after failure should go upstream, got %q, %v", caption, err)
		}
		if inner.captionCalls != 2 {
			t.Errorf("expected 2 upstream calls, got %d", inner.captionCalls)
		}
	})
}
