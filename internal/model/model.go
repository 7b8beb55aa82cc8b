package model

import "time"

// Photo is one gallery image. StorageURL is the public URL of the
// watermarked rendition in the configured blob store; the un-watermarked
// original is never persisted.
type Photo struct {
	ID          string
	Filename    string
	Category    string
	IsFeatured  bool
	Price       float64
	StorageURL  string
	ContentType string
	SizeBytes   int64
	CreatedAt   time.Time
}

// PhotoUpdate carries the fields the admin page may change on a photo.
// An empty Category leaves the stored category untouched.
type PhotoUpdate struct {
	IsFeatured bool
	Price      float64
	Category   string
}

// PriceEntry is one row of the pricing page, either a session ("Service")
// or a physical/digital copy ("Print").
type PriceEntry struct {
	ID        string
	ItemType  string
	Label     string
	Amount    float64
	CreatedAt time.Time
}

const (
	ItemTypeService = "Service"
	ItemTypePrint   = "Print"
)

// Categories is the fixed allow-list for uploads. The gallery filter is
// built from stored data instead, so retired categories keep working.
var Categories = []string{"animals", "people", "landscape"}

// SeedPrices returns the canonical price list inserted by the admin
// seed endpoint. IDs and timestamps are assigned by the store.
func SeedPrices() []PriceEntry {
	return []PriceEntry{
		{ItemType: ItemTypeService, Label: "Corporate Head Shot", Amount: 25.00},
		{ItemType: ItemTypeService, Label: "20min Mini Session Indoor or Out", Amount: 60.00},
		{ItemType: ItemTypeService, Label: "1hr Session 2-Locations", Amount: 150.00},
		{ItemType: ItemTypeService, Label: "2hr Multiple Locations", Amount: 250.00},
		{ItemType: ItemTypePrint, Label: "Digital Copy E-mail", Amount: 10.00},
		{ItemType: ItemTypePrint, Label: "5x7 Print", Amount: 15.00},
		{ItemType: ItemTypePrint, Label: "8x10 Print", Amount: 25.00},
		{ItemType: ItemTypePrint, Label: "11x14 Print", Amount: 30.00},
		{ItemType: ItemTypePrint, Label: "13x19 Print", Amount: 35.00},
	}
}
