//go:build integration

package store

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestLocalStore(t *testing.T) *LocalStore {
	t.Helper()
	s, err := NewLocalStore(filepath.Join(t.TempDir(), "content.db"))
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLocalStoreSeeding(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	posts, err := s.ListPosts(ctx)
	if err != nil {
		t.Fatalf("ListPosts() error = %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 seed posts, got %d", len(posts))
	}
	if posts[0].Title != "Misurazione Pressione Gratuita" {
		t.Errorf("expected newest seed post first, got %q", posts[0].Title)
	}
	if posts[0].CreatedAt <= posts[1].CreatedAt {
		t.Errorf("seed posts not newest first: %d <= %d", posts[0].CreatedAt, posts[1].CreatedAt)
	}

	categories, err := s.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories() error = %v", err)
	}
	if len(categories) != 4 {
		t.Fatalf("expected 4 seed categories, got %d", len(categories))
	}
	if categories[0].Name != "Prevenzione" || categories[3].Name != "Servizi" {
		t.Errorf("seed categories out of order: %v", categories)
	}

	// A second read must return the persisted seed, not re-seed.
	again, err := s.ListPosts(ctx)
	if err != nil {
		t.Fatalf("second ListPosts() error = %v", err)
	}
	if len(again) != 2 || again[0].ID != posts[0].ID {
		t.Errorf("re-reading posts changed the collection: %v", again)
	}
}

func TestLocalStoreCreatePost(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	posts, err := s.CreatePost(ctx, Post{Title: "Nuovo arrivo", Content: "testo", ImageURL: "https://example.com/a.jpg", CategoryID: "1"})
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("expected 3 posts after create, got %d", len(posts))
	}
	if posts[0].Title != "Nuovo arrivo" {
		t.Errorf("new post should be first, got %q", posts[0].Title)
	}
	if posts[0].ID == "" {
		t.Error("store did not assign an id")
	}

	// Two rapid creates must still get distinct ids.
	posts, err = s.CreatePost(ctx, Post{Title: "Secondo", Content: "testo", ImageURL: "https://example.com/b.jpg", CategoryID: "1"})
	if err != nil {
		t.Fatalf("second CreatePost() error = %v", err)
	}
	if posts[0].ID == posts[1].ID {
		t.Errorf("consecutive creates share id %q", posts[0].ID)
	}
	if posts[0].Title != "Secondo" {
		t.Errorf("latest post should be first, got %q", posts[0].Title)
	}
}

func TestLocalStoreUpdatePost(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	seed, err := s.ListPosts(ctx)
	if err != nil {
		t.Fatalf("ListPosts() error = %v", err)
	}
	target := seed[0]
	target.Title = "Titolo aggiornato"

	posts, err := s.UpdatePost(ctx, target)
	if err != nil {
		t.Fatalf("UpdatePost() error = %v", err)
	}
	if posts[0].Title != "Titolo aggiornato" {
		t.Errorf("update not applied, got %q", posts[0].Title)
	}
	if posts[0].CreatedAt != target.CreatedAt {
		t.Errorf("update changed CreatedAt: %d != %d", posts[0].CreatedAt, target.CreatedAt)
	}

	// Unknown id is a no-op returning the unchanged collection.
	posts, err = s.UpdatePost(ctx, Post{ID: "missing", Title: "fantasma"})
	if err != nil {
		t.Fatalf("UpdatePost(unknown) error = %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("no-op update changed the collection size: %d", len(posts))
	}
	for _, p := range posts {
		if p.ID == "missing" {
			t.Error("no-op update inserted the unknown post")
		}
	}
}

func TestLocalStoreDeletePost(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	seed, err := s.ListPosts(ctx)
	if err != nil {
		t.Fatalf("ListPosts() error = %v", err)
	}

	posts, err := s.DeletePost(ctx, seed[0].ID)
	if err != nil {
		t.Fatalf("DeletePost() error = %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("expected 1 post after delete, got %d", len(posts))
	}
	if posts[0].ID == seed[0].ID {
		t.Error("deleted post still present")
	}

	posts, err = s.DeletePost(ctx, "missing")
	if err != nil {
		t.Fatalf("DeletePost(unknown) error = %v", err)
	}
	if len(posts) != 1 {
		t.Errorf("no-op delete changed the collection size: %d", len(posts))
	}
}

func TestLocalStoreCategories(t *testing.T) {
	s := newTestLocalStore(t)
	ctx := context.Background()

	categories, err := s.CreateCategory(ctx, Category{Name: "Omeopatia", Color: "bg-teal-100 text-teal-800"})
	if err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}
	if len(categories) != 5 {
		t.Fatalf("expected 5 categories after create, got %d", len(categories))
	}
	if categories[4].Name != "Omeopatia" {
		t.Errorf("new category should be appended last, got %q", categories[4].Name)
	}
	if categories[4].ID == "" {
		t.Error("store did not assign a category id")
	}

	categories, err = s.DeleteCategory(ctx, "2")
	if err != nil {
		t.Fatalf("DeleteCategory() error = %v", err)
	}
	if len(categories) != 4 {
		t.Fatalf("expected 4 categories after delete, got %d", len(categories))
	}

	// Posts referencing the deleted category keep their reference.
	posts, err := s.ListPosts(ctx)
	if err != nil {
		t.Fatalf("ListPosts() error = %v", err)
	}
	found := false
	for _, p := range posts {
		if p.CategoryID == "2" {
			found = true
		}
	}
	if !found {
		t.Error("deleting a category should leave referencing posts untouched")
	}
}
