// Package store persists the photo catalog and the price list. Two
// implementations sit behind one interface: an embedded document store and
// a relational one, selected by configuration.
package store

import (
	"fmt"

	"github.com/mrogers/photofolio/internal/model"
	"github.com/mrogers/photofolio/internal/store/document"
	"github.com/mrogers/photofolio/internal/store/relational"
)

// Store kinds accepted by Open.
const (
	KindDocument   = "document"
	KindRelational = "relational"
)

// PhotoStore is the photo catalog. Create assigns the ID and creation time
// when the caller left them empty. Updating an id that does not exist is a
// no-op. Listings come back newest first with the ID as tiebreaker.
type PhotoStore interface {
	CreatePhoto(p *model.Photo) error
	GetPhoto(id string) (*model.Photo, error) // (nil, nil) when absent
	ListPhotos() ([]model.Photo, error)
	ListPhotosByCategory(category string) ([]model.Photo, error)
	ListFeaturedPhotos() ([]model.Photo, error)
	PhotoCategories() ([]string, error) // distinct, sorted
	UpdatePhoto(id string, upd model.PhotoUpdate) error
}

// PriceStore is the price list. Listings come back cheapest first with the
// label as tiebreaker, which reproduces the menu order of the seed data.
type PriceStore interface {
	CreatePrices(entries []model.PriceEntry) error // one batch
	ListPrices() ([]model.PriceEntry, error)
	ListPricesByType(itemType string) ([]model.PriceEntry, error)
	UpdatePrice(id, label string, amount float64) error
}

type Store interface {
	PhotoStore
	PriceStore
	Close() error
}

// Open returns the implementation named by kind. path is the database
// directory for the document store and the SQLite path for the relational
// one.
func Open(kind, path string) (Store, error) {
	switch kind {
	case KindDocument:
		return document.Open(path)
	case KindRelational:
		return relational.Open(path)
	default:
		return nil, fmt.Errorf("unknown store kind %q", kind)
	}
}
