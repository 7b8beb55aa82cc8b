// Package relational stores photos and prices in SQLite through GORM,
// using the pure-Go driver. Row types are private twins of the public
// models; conversion happens at the package boundary.
package relational

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrogers/photofolio/internal/model"
)

type photoRow struct {
	ID          string `gorm:"primaryKey;size:64"`
	Filename    string `gorm:"size:255;not null"`
	Category    string `gorm:"size:64;index"`
	IsFeatured  bool   `gorm:"index"`
	Price       float64
	StorageURL  string `gorm:"size:512"`
	ContentType string `gorm:"size:128"`
	SizeBytes   int64
	CreatedAt   time.Time
}

func (photoRow) TableName() string { return "photos" }

type priceRow struct {
	ID        string `gorm:"primaryKey;size:64"`
	ItemType  string `gorm:"size:32;index"`
	Label     string `gorm:"size:128"`
	Amount    float64
	CreatedAt time.Time
}

func (priceRow) TableName() string { return "prices" }

type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the SQLite database at dsn and migrates the
// schema.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open relational store at %s: %w", dsn, err)
	}
	if err := db.AutoMigrate(&photoRow{}, &priceRow{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) CreatePhoto(p *model.Photo) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	row := photoRow(*p)
	if err := s.db.Create(&row).Error; err != nil {
		return fmt.Errorf("create photo: %w", err)
	}
	return nil
}

func (s *Store) GetPhoto(id string) (*model.Photo, error) {
	var row photoRow
	err := s.db.First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p := model.Photo(row)
	return &p, nil
}

func (s *Store) ListPhotos() ([]model.Photo, error) {
	return s.listPhotos(s.db)
}

func (s *Store) ListPhotosByCategory(category string) ([]model.Photo, error) {
	return s.listPhotos(s.db.Where("category = ?", category))
}

func (s *Store) ListFeaturedPhotos() ([]model.Photo, error) {
	return s.listPhotos(s.db.Where("is_featured = ?", true))
}

func (s *Store) listPhotos(tx *gorm.DB) ([]model.Photo, error) {
	var rows []photoRow
	if err := tx.Order("created_at DESC, id").Find(&rows).Error; err != nil {
		return nil, err
	}
	photos := make([]model.Photo, len(rows))
	for i := range rows {
		photos[i] = model.Photo(rows[i])
	}
	return photos, nil
}

func (s *Store) PhotoCategories() ([]string, error) {
	var categories []string
	err := s.db.Model(&photoRow{}).
		Where("category <> ''").
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *Store) UpdatePhoto(id string, upd model.PhotoUpdate) error {
	updates := map[string]interface{}{
		"is_featured": upd.IsFeatured,
		"price":       upd.Price,
	}
	if upd.Category != "" {
		updates["category"] = upd.Category
	}
	return s.db.Model(&photoRow{}).Where("id = ?", id).Updates(updates).Error
}

func (s *Store) CreatePrices(entries []model.PriceEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]priceRow, len(entries))
	for i := range entries {
		e := &entries[i]
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = time.Now().UTC()
		}
		rows[i] = priceRow(*e)
	}
	if err := s.db.Create(&rows).Error; err != nil {
		return fmt.Errorf("create prices: %w", err)
	}
	return nil
}

func (s *Store) ListPrices() ([]model.PriceEntry, error) {
	return s.listPrices(s.db)
}

func (s *Store) ListPricesByType(itemType string) ([]model.PriceEntry, error) {
	return s.listPrices(s.db.Where("item_type = ?", itemType))
}

func (s *Store) listPrices(tx *gorm.DB) ([]model.PriceEntry, error) {
	var rows []priceRow
	if err := tx.Order("amount, label").Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]model.PriceEntry, len(rows))
	for i := range rows {
		entries[i] = model.PriceEntry(rows[i])
	}
	return entries, nil
}

func (s *Store) UpdatePrice(id, label string, amount float64) error {
	return s.db.Model(&priceRow{}).Where("id = ?", id).
		Updates(map[string]interface{}{"label": label, "amount": amount}).Error
}
