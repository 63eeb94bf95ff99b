package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const (
	postsKey      = "pharmasocial_posts"
	categoriesKey = "pharmasocial_categories"
)

// LocalStore persists each collection as a single JSON blob in a
// SQLite key/value table, the synchronous local backend. All methods
// are read-modify-write over the whole blob, serialized by a mutex so
// first-run seeding and concurrent mutations stay atomic.
type LocalStore struct {
	db *sqlx.DB
	mu sync.Mutex
}

// NewLocalStore opens (or creates) the SQLite database at filePath and
// ensures the collections table exists.
func NewLocalStore(filePath string) (*LocalStore, error) {
	db, err := sqlx.Connect("sqlite", filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite store: %w", err)
	}

	// WAL mode is generally better for concurrency.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to set WAL mode on sqlite store: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS collections (
		key TEXT PRIMARY KEY,
		value BLOB
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create collections schema: %w", err)
	}

	return &LocalStore{db: db}, nil
}

// Close closes the database connection.
func (s *LocalStore) Close() error {
	return s.db.Close()
}

// ListPosts returns all posts, seeding the collection on first access.
func (s *LocalStore) ListPosts(ctx context.Context) ([]Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadPosts(ctx)
}

// CreatePost assigns a fresh id, prepends the post and persists the
// whole collection.
func (s *LocalStore) CreatePost(ctx context.Context, p Post) ([]Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.loadPosts(ctx)
	if err != nil {
		return nil, err
	}

	taken := make(map[string]bool, len(posts))
	for _, existing := range posts {
		taken[existing.ID] = true
	}
	p.ID = nextTimestampID(taken)

	posts = append([]Post{p}, posts...)
	if err := s.writeBlob(ctx, postsKey, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// UpdatePost replaces the post matching p.ID; unknown ids are a no-op.
func (s *LocalStore) UpdatePost(ctx context.Context, p Post) ([]Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.loadPosts(ctx)
	if err != nil {
		return nil, err
	}

	replaced := false
	for i := range posts {
		if posts[i].ID == p.ID {
			posts[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		return posts, nil
	}

	if err := s.writeBlob(ctx, postsKey, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// DeletePost removes the post with the given id; unknown ids are a no-op.
func (s *LocalStore) DeletePost(ctx context.Context, id string) ([]Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts, err := s.loadPosts(ctx)
	if err != nil {
		return nil, err
	}

	kept := posts[:0:0]
	for _, p := range posts {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(posts) {
		return posts, nil
	}

	if err := s.writeBlob(ctx, postsKey, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

// ListCategories returns all categories in insertion order, seeding on
// first access.
func (s *LocalStore) ListCategories(ctx context.Context) ([]Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadCategories(ctx)
}

// CreateCategory assigns a fresh id and appends the category.
func (s *LocalStore) CreateCategory(ctx context.Context, c Category) ([]Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	categories, err := s.loadCategories(ctx)
	if err != nil {
		return nil, err
	}

	taken := make(map[string]bool, len(categories))
	for _, existing := range categories {
		taken[existing.ID] = true
	}
	c.ID = nextTimestampID(taken)

	categories = append(categories, c)
	if err := s.writeBlob(ctx, categoriesKey, categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// DeleteCategory removes the category with the given id; unknown ids
// are a no-op. Posts referencing the category are left untouched.
func (s *LocalStore) DeleteCategory(ctx context.Context, id string) ([]Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	categories, err := s.loadCategories(ctx)
	if err != nil {
		return nil, err
	}

	kept := categories[:0:0]
	for _, c := range categories {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	if len(kept) == len(categories) {
		return categories, nil
	}

	if err := s.writeBlob(ctx, categoriesKey, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

// loadPosts reads and decodes the posts blob, writing the seed dataset
// first if the key is missing. Callers must hold the mutex.
func (s *LocalStore) loadPosts(ctx context.Context) ([]Post, error) {
	raw, found, err := s.readBlob(ctx, postsKey)
	if err != nil {
		return nil, err
	}
	if !found {
		seed := SeedPosts()
		if err := s.writeBlob(ctx, postsKey, seed); err != nil {
			return nil, err
		}
		return seed, nil
	}

	var posts []Post
	if err := json.Unmarshal(raw, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode posts blob: %w", err)
	}
	return posts, nil
}

func (s *LocalStore) loadCategories(ctx context.Context) ([]Category, error) {
	raw, found, err := s.readBlob(ctx, categoriesKey)
	if err != nil {
		return nil, err
	}
	if !found {
		seed := SeedCategories()
		if err := s.writeBlob(ctx, categoriesKey, seed); err != nil {
			return nil, err
		}
		return seed, nil
	}

	var categories []Category
	if err := json.Unmarshal(raw, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories blob: %w", err)
	}
	return categories, nil
}

func (s *LocalStore) readBlob(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.GetContext(ctx, &value, "SELECT value FROM collections WHERE key = ?", key)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: failed to read %s: %v", ErrUnavailable, key, err)
	}
	return value, true, nil
}

func (s *LocalStore) writeBlob(ctx context.Context, key string, collection interface{}) error {
	raw, err := json.Marshal(collection)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	query := `INSERT OR REPLACE INTO collections (key, value) VALUES (?, ?)`
	if _, err := s.db.ExecContext(ctx, query, key, raw); err != nil {
		return fmt.Errorf("%w: failed to write %s: %v", ErrUnavailable, key, err)
	}
	return nil
}

// nextTimestampID derives a record id from the creation time in epoch
// milliseconds, bumping until it does not collide with a taken id.
func nextTimestampID(taken map[string]bool) string {
	base := time.Now().UnixMilli()
	for {
		id := strconv.FormatInt(base, 10)
		if !taken[id] {
			return id
		}
		base++
	}
}
