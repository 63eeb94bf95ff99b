package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"pharmasocial/internal/generation"
	"pharmasocial/internal/logger"
	"pharmasocial/internal/store"
)

// Role is the authenticated capability level.
type Role string

const (
	RoleAnonymous Role = "anonymous"
	RoleStaff     Role = "staff"
	RoleAdmin     Role = "admin"
)

// ErrInvalidCredentials is returned by Login for any pair outside the
// two fixed accounts.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrValidation marks a rejected draft; no state was changed.
var ErrValidation = errors.New("validation failed")

// The two fixed demo accounts. There is no other account surface, no
// hashing and no token issuance.
var credentials = []struct {
	email    string
	password string
	role     Role
	welcome  string
}{
	{"admin@social.it", "admin", RoleAdmin, "Benvenuto Admin!"},
	{"farmacia@rossi.it", "farmacia", RoleStaff, "Benvenuto Farmacia Rossi"},
}

// PostDraft is the in-progress field set for a post being created or
// edited. Ids and timestamps are never supplied by drafts.
type PostDraft struct {
	Title      string
	Content    string
	ImageURL   string
	CategoryID string
}

// ContentServicer is the controller surface consumed by the HTTP
// handlers.
type ContentServicer interface {
	Login(ctx context.Context, email, password string) (Role, error)
	Posts() []store.Post
	Categories() []store.Category
	FilteredPosts(query, categoryID string) []store.Post
	PostByID(id string) (store.Post, bool)
	CategoryByID(id string) (store.Category, bool)
	PostsInCategory(id string) int
	CreatePost(ctx context.Context, d PostDraft) error
	UpdatePost(ctx context.Context, id string, d PostDraft) error
	DeletePost(ctx context.Context, id string) error
	CreateCategory(ctx context.Context, name, color string) error
	DeleteCategory(ctx context.Context, id string) error
	GenerateCaption(ctx context.Context, title, categoryID string) (string, error)
	GenerateImage(ctx context.Context, title, categoryID string) (string, error)
	Notifications(ctx context.Context) []Notification
}

// ContentService is the application state controller. It owns the
// in-memory copies of both collections, mediates every mutation
// through the Store, derives the filtered view and feeds the
// notification queue. Snapshots are replaced wholesale with whatever
// collection the store returns; on a store failure the snapshot is
// left untouched so nothing is silently discarded.
type ContentService struct {
	mu         sync.RWMutex
	store      store.Store
	generator  generation.Generator
	notifier   *Notifier
	sanitizer  *bluemonday.Policy
	log        logger.Logger
	posts      []store.Post
	categories []store.Category
}

// NewContentService wires the controller. Captions are plain text by
// contract, so the strict policy strips every scrap of markup at save
// time.
func NewContentService(st store.Store, gen generation.Generator, notifier *Notifier, log logger.Logger) *ContentService {
	return &ContentService{
		store:     st,
		generator: gen,
		notifier:  notifier,
		sanitizer: bluemonday.StrictPolicy(),
		log:       log,
	}
}

// Load pulls both collections from the store, seeding an empty backing
// store as a side effect. Call once at startup.
func (s *ContentService) Load(ctx context.Context) error {
	posts, err := s.store.ListPosts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load posts: %w", err)
	}
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}

	s.mu.Lock()
	s.posts = posts
	s.categories = categories
	s.mu.Unlock()
	return nil
}

// Login checks the pair against the fixed accounts and returns the
// granted role. Failures notify and leave the caller unauthenticated.
func (s *ContentService) Login(ctx context.Context, email, password string) (Role, error) {
	for _, c := range credentials {
		if c.email == email && c.password == password {
			s.notifier.Push(ctx, c.welcome, SeveritySuccess)
			return c.role, nil
		}
	}
	s.notifier.Push(ctx, "Credenziali non valide", SeverityError)
	return RoleAnonymous, ErrInvalidCredentials
}

// Posts returns a copy of the current post snapshot, newest first.
func (s *ContentService) Posts() []store.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.Post, len(s.posts))
	copy(out, s.posts)
	return out
}

// Categories returns a copy of the current category snapshot in
// insertion order.
func (s *ContentService) Categories() []store.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// FilteredPosts derives the catalog view. A post is included when the
// category filter is "all" or matches its category, and the query is
// empty or a case-insensitive substring of its title or content. Pure
// derivation; never mutates the snapshot.
func (s *ContentService) FilteredPosts(query, categoryID string) []store.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(query)
	out := make([]store.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if categoryID != "all" && categoryID != "" && p.CategoryID != categoryID {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Title), needle) &&
			!strings.Contains(strings.ToLower(p.Content), needle) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// PostByID looks a post up in the current snapshot.
func (s *ContentService) PostByID(id string) (store.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.posts {
		if p.ID == id {
			return p, true
		}
	}
	return store.Post{}, false
}

// CategoryByID looks a category up in the current snapshot.
func (s *ContentService) CategoryByID(id string) (store.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if c.ID == id {
			return c, true
		}
	}
	return store.Category{}, false
}

// PostsInCategory counts snapshot posts referencing the category, used
// to warn before a category delete.
func (s *ContentService) PostsInCategory(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, p := range s.posts {
		if p.CategoryID == id {
			count++
		}
	}
	return count
}

// CreatePost validates the draft, stamps the creation time and
// persists it. The store assigns the id and returns the refreshed
// collection with the new record first.
func (s *ContentService) CreatePost(ctx context.Context, d PostDraft) error {
	if d.Title == "" || d.Content == "" || d.ImageURL == "" || d.CategoryID == "" {
		s.notifier.Push(ctx, "Compila tutti i campi obbligatori.", SeverityError)
		return fmt.Errorf("%w: all post fields are required", ErrValidation)
	}

	post := store.Post{
		Title:      d.Title,
		Content:    s.sanitizer.Sanitize(d.Content),
		ImageURL:   d.ImageURL,
		CategoryID: d.CategoryID,
		CreatedAt:  time.Now().UnixMilli(),
	}

	posts, err := s.store.CreatePost(ctx, post)
	if err != nil {
		s.log.Error(err, "failed to create post")
		s.notifier.Push(ctx, "Errore durante il salvataggio. Riprova.", SeverityError)
		return err
	}

	s.replacePosts(posts)
	s.notifier.Push(ctx, "Contenuto pubblicato con successo!", SeveritySuccess)
	return nil
}

// UpdatePost validates the draft and replaces the stored record. The
// original creation timestamp is looked up from the snapshot and kept
// no matter what the draft carries.
func (s *ContentService) UpdatePost(ctx context.Context, id string, d PostDraft) error {
	if d.Title == "" || d.Content == "" || d.ImageURL == "" || d.CategoryID == "" {
		s.notifier.Push(ctx, "Compila tutti i campi obbligatori.", SeverityError)
		return fmt.Errorf("%w: all post fields are required", ErrValidation)
	}

	createdAt := time.Now().UnixMilli()
	if existing, ok := s.PostByID(id); ok {
		createdAt = existing.CreatedAt
	}

	post := store.Post{
		ID:         id,
		Title:      d.Title,
		Content:    s.sanitizer.Sanitize(d.Content),
		ImageURL:   d.ImageURL,
		CategoryID: d.CategoryID,
		CreatedAt:  createdAt,
	}

	posts, err := s.store.UpdatePost(ctx, post)
	if err != nil {
		s.log.Error(err, "failed to update post")
		s.notifier.Push(ctx, "Errore durante il salvataggio. Riprova.", SeverityError)
		return err
	}

	s.replacePosts(posts)
	s.notifier.Push(ctx, "Contenuto modificato con successo!", SeveritySuccess)
	return nil
}

// DeletePost removes the post. Confirmation is the caller's job; an
// unconfirmed delete never reaches this method.
func (s *ContentService) DeletePost(ctx context.Context, id string) error {
	posts, err := s.store.DeletePost(ctx, id)
	if err != nil {
		s.log.Error(err, "failed to delete post")
		s.notifier.Push(ctx, "Errore durante l'eliminazione. Riprova.", SeverityError)
		return err
	}

	s.replacePosts(posts)
	s.notifier.Push(ctx, "Contenuto eliminato definitivamente.", SeveritySuccess)
	return nil
}

// CreateCategory validates the name, defaults the color to the first
// palette preset and persists the category (appended last).
func (s *ContentService) CreateCategory(ctx context.Context, name, color string) error {
	if strings.TrimSpace(name) == "" {
		s.notifier.Push(ctx, "Il nome della categoria è obbligatorio.", SeverityError)
		return fmt.Errorf("%w: category name is required", ErrValidation)
	}
	if color == "" {
		color = store.Palette[0].Value
	}
	if !store.ValidColor(color) {
		s.notifier.Push(ctx, "Colore non valido.", SeverityError)
		return fmt.Errorf("%w: color %q is not in the palette", ErrValidation, color)
	}

	categories, err := s.store.CreateCategory(ctx, store.Category{Name: name, Color: color})
	if err != nil {
		s.log.Error(err, "failed to create category")
		s.notifier.Push(ctx, "Errore durante il salvataggio. Riprova.", SeverityError)
		return err
	}

	s.replaceCategories(categories)
	s.notifier.Push(ctx, "Nuova categoria creata!", SeveritySuccess)
	return nil
}

// DeleteCategory removes the category. Referencing posts keep their
// CategoryID and render as uncategorized from then on.
func (s *ContentService) DeleteCategory(ctx context.Context, id string) error {
	categories, err := s.store.DeleteCategory(ctx, id)
	if err != nil {
		s.log.Error(err, "failed to delete category")
		s.notifier.Push(ctx, "Errore durante l'eliminazione. Riprova.", SeverityError)
		return err
	}

	s.replaceCategories(categories)
	s.notifier.Push(ctx, "Categoria eliminata.", SeveritySuccess)
	return nil
}

// GenerateCaption produces a caption for the draft. Title and category
// must already be set; the category name falls back to "Generale" when
// the referenced category no longer exists.
func (s *ContentService) GenerateCaption(ctx context.Context, title, categoryID string) (string, error) {
	if title == "" || categoryID == "" {
		s.notifier.Push(ctx, "Inserisci un titolo e seleziona una categoria per usare l'AI.", SeverityError)
		return "", fmt.Errorf("%w: title and category are required for generation", ErrValidation)
	}

	caption, err := s.generator.GenerateCaption(ctx, title, s.categoryName(categoryID))
	if err != nil {
		s.log.Error(err, "caption generation failed")
		s.notifier.Push(ctx, "Errore nella generazione AI. Riprova più tardi.", SeverityError)
		return "", err
	}

	s.notifier.Push(ctx, "Testo generato con successo!", SeveritySuccess)
	return caption, nil
}

// GenerateImage produces a square image for the draft as a data URI,
// under the same precondition as GenerateCaption.
func (s *ContentService) GenerateImage(ctx context.Context, title, categoryID string) (string, error) {
	if title == "" || categoryID == "" {
		s.notifier.Push(ctx, "Inserisci un titolo e seleziona una categoria per generare l'immagine.", SeverityError)
		return "", fmt.Errorf("%w: title and category are required for generation", ErrValidation)
	}

	image, err := s.generator.GenerateImage(ctx, title, s.categoryName(categoryID))
	if err != nil {
		s.log.Error(err, "image generation failed")
		s.notifier.Push(ctx, "Impossibile generare l'immagine. Riprova più tardi.", SeverityError)
		return "", err
	}

	s.notifier.Push(ctx, "Immagine generata con successo!", SeveritySuccess)
	return image, nil
}

// Notifications drains the pending toast queue of the session carried
// by ctx. Each notification renders at most once.
func (s *ContentService) Notifications(ctx context.Context) []Notification {
	return s.notifier.Pop(ctx)
}

func (s *ContentService) categoryName(id string) string {
	if c, ok := s.CategoryByID(id); ok {
		return c.Name
	}
	return "Generale"
}

func (s *ContentService) replacePosts(posts []store.Post) {
	s.mu.Lock()
	s.posts = posts
	s.mu.Unlock()
}

func (s *ContentService) replaceCategories(categories []store.Category) {
	s.mu.Lock()
	s.categories = categories
	s.mu.Unlock()
}
