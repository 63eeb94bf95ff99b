package generation

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds each result cache when the configured size
// is missing or invalid.
const DefaultCacheSize = 128

// CachedGenerator decorates a Generator with bounded LRU caches so
// that retrying the same draft does not re-bill the generation API.
// Failures are never cached; the next attempt always goes upstream.
type CachedGenerator struct {
	inner    Generator
	captions *lru.Cache[string, string]
	images   *lru.Cache[string, string]
}

// NewCachedGenerator wraps inner with caches holding up to size
// entries each.
func NewCachedGenerator(inner Generator, size int) (*CachedGenerator, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	captions, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	images, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &CachedGenerator{inner: inner, captions: captions, images: images}, nil
}

func (g *CachedGenerator) GenerateCaption(ctx context.Context, title, categoryName string) (string, error) {
	key := cacheKey(title, categoryName)
	if cached, ok := g.captions.Get(key); ok {
		return cached, nil
	}
	caption, err := g.inner.GenerateCaption(ctx, title, categoryName)
	if err != nil {
		return "", err
	}
	g.captions.Add(key, caption)
	return caption, nil
}

func (g *CachedGenerator) GenerateImage(ctx context.Context, title, categoryName string) (string, error) {
	key := cacheKey(title, categoryName)
	if cached, ok := g.images.Get(key); ok {
		return cached, nil
	}
	image, err := g.inner.GenerateImage(ctx, title, categoryName)
	if err != nil {
		return "", err
	}
	g.images.Add(key, image)
	return image, nil
}

func cacheKey(title, categoryName string) string {
	return title + "\x00" + categoryName
}
