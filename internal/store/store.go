package store

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable wraps backend failures so callers can tell "the store
// broke" apart from "the collection is empty". List and mutation
// methods never hide an I/O failure behind an empty slice.
var ErrUnavailable = errors.New("store unavailable")

// Store is the persistence contract for the two content collections.
//
// Every mutating operation persists the change and returns the entire
// refreshed collection; callers replace their in-memory copy wholesale.
// This costs an extra read per write but hides read-after-write
// differences between backends, and the collections are small.
//
// Id assignment belongs to the implementation: CreatePost and
// CreateCategory ignore any id already set on the record. Updating or
// deleting an id that does not exist is a no-op that still returns the
// unchanged collection.
type Store interface {
	// ListPosts returns all posts, newest first. On the first call
	// against an empty backing store it seeds the initial dataset and
	// returns the seed.
	ListPosts(ctx context.Context) ([]Post, error)
	// CreatePost persists p with a store-assigned id; the new record
	// is first in the returned collection.
	CreatePost(ctx context.Context, p Post) ([]Post, error)
	// UpdatePost replaces the record matching p.ID.
	UpdatePost(ctx context.Context, p Post) ([]Post, error)
	// DeletePost removes the post with the given id.
	DeletePost(ctx context.Context, id string) ([]Post, error)

	// ListCategories returns all categories in insertion order,
	// seeding on first call as ListPosts does.
	ListCategories(ctx context.Context) ([]Category, error)
	// CreateCategory persists c with a store-assigned id; the new
	// record is last in the returned collection.
	CreateCategory(ctx context.Context, c Category) ([]Category, error)
	// DeleteCategory removes the category with the given id. Posts
	// referencing it are left untouched.
	DeleteCategory(ctx context.Context, id string) ([]Category, error)

	Close() error
}

// SeedCategories is the initial category dataset written to an empty
// backing store on first access.
func SeedCategories() []Category {
	return []Category{
		{ID: "1", Name: "Prevenzione", Color: "bg-blue-100 text-blue-800"},
		{ID: "2", Name: "Cosmetica", Color: "bg-pink-100 text-pink-800"},
		{ID: "3", Name: "Integratori", Color: "bg-green-100 text-green-800"},
		{ID: "4", Name: "Servizi", Color: "bg-purple-100 text-purple-800"},
	}
}

// SeedPosts is the initial post dataset, newest first.
func SeedPosts() []Post {
	now := time.Now().UnixMilli()
	return []Post{
		{
			ID:         "102",
			Title:      "Misurazione Pressione Gratuita",
			Content:    "🩺 La prevenzione passa dal controllo costante.\n\nPassa in farmacia per misurare gratuitamente la tua pressione arteriosa. I nostri farmacisti sono a tua disposizione per un consulto.\n\n#Salute #Cuore #Prevenzione #FarmaciaDiFiducia",
			ImageURL:   "https://picsum.photos/id/24/800/800",
			CategoryID: "4",
			CreatedAt:  now,
		},
		{
			ID:         "101",
			Title:      "Offerta Solari 2024",
			Content:    "☀️ Proteggi la tua pelle quest'estate! \n\nApprofitta della nostra promozione sui solari dermatologici. Acquistando due prodotti, il terzo è in omaggio! \n\n#Farmacia #Estate #ProtezioneSolare #Salute",
			ImageURL:   "https://picsum.photos/id/12/800/800",
			CategoryID: "2",
			CreatedAt:  now - 100000,
		},
	}
}
