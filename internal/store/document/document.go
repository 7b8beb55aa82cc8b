// Package document stores photos and prices as JSON documents in an
// embedded Badger database. Keys are "photo:<id>" and "price:<id>";
// listings walk the prefix and sort in memory.
package document

import (
	"errors"
	"fmt"
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/mrogers/photofolio/internal/model"
)

const (
	photoPrefix = "photo:"
	pricePrefix = "price:"
)

type Store struct {
	db *badger.DB
}

// Open opens (or creates) the Badger database at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open document store at %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) CreatePhoto(p *model.Photo) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal photo: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(photoPrefix+p.ID), data)
	})
}

func (s *Store) GetPhoto(id string) (*model.Photo, error) {
	var p model.Photo
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(photoPrefix + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListPhotos() ([]model.Photo, error) {
	return s.listPhotos(nil)
}

func (s *Store) ListPhotosByCategory(category string) ([]model.Photo, error) {
	return s.listPhotos(func(p *model.Photo) bool { return p.Category == category })
}

func (s *Store) ListFeaturedPhotos() ([]model.Photo, error) {
	return s.listPhotos(func(p *model.Photo) bool { return p.IsFeatured })
}

func (s *Store) listPhotos(keep func(*model.Photo) bool) ([]model.Photo, error) {
	var photos []model.Photo
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(photoPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var p model.Photo
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			})
			if err != nil {
				return err
			}
			if keep == nil || keep(&p) {
				photos = append(photos, p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(photos, func(i, j int) bool {
		if !photos[i].CreatedAt.Equal(photos[j].CreatedAt) {
			return photos[i].CreatedAt.After(photos[j].CreatedAt)
		}
		return photos[i].ID < photos[j].ID
	})
	return photos, nil
}

func (s *Store) PhotoCategories() ([]string, error) {
	photos, err := s.listPhotos(nil)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var categories []string
	for i := range photos {
		c := photos[i].Category
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories, nil
}

func (s *Store) UpdatePhoto(id string, upd model.PhotoUpdate) error {
	key := []byte(photoPrefix + id)
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		var p model.Photo
		if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &p) }); err != nil {
			return err
		}
		p.IsFeatured = upd.IsFeatured
		p.Price = upd.Price
		if upd.Category != "" {
			p.Category = upd.Category
		}
		data, err := json.Marshal(&p)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	return err
}

func (s *Store) CreatePrices(entries []model.PriceEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return s.db.Update(func(txn *badger.Txn) error {
		for i := range entries {
			e := &entries[i]
			if e.ID == "" {
				e.ID = uuid.NewString()
			}
			if e.CreatedAt.IsZero() {
				e.CreatedAt = time.Now().UTC()
			}
			data, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("marshal price: %w", err)
			}
			if err := txn.Set([]byte(pricePrefix+e.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) ListPrices() ([]model.PriceEntry, error) {
	return s.listPrices(func(*model.PriceEntry) bool { return true })
}

func (s *Store) ListPricesByType(itemType string) ([]model.PriceEntry, error) {
	return s.listPrices(func(e *model.PriceEntry) bool { return e.ItemType == itemType })
}

func (s *Store) listPrices(keep func(*model.PriceEntry) bool) ([]model.PriceEntry, error) {
	var entries []model.PriceEntry
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(pricePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var e model.PriceEntry
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			})
			if err != nil {
				return err
			}
			if keep(&e) {
				entries = append(entries, e)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Amount != entries[j].Amount {
			return entries[i].Amount < entries[j].Amount
		}
		return entries[i].Label < entries[j].Label
	})
	return entries, nil
}

func (s *Store) UpdatePrice(id, label string, amount float64) error {
	key := []byte(pricePrefix + id)
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		var e model.PriceEntry
		if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &e) }); err != nil {
			return err
		}
		e.Label = label
		e.Amount = amount
		data, err := json.Marshal(&e)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	return err
}
