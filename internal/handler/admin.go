package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mrogers/photofolio/internal/model"
)

type storageCard struct {
	TotalBytes       uint64
	FreeBytes        uint64
	AppBytes         uint64
	OriginalsBytes   uint64
	WatermarkedBytes uint64
	UploadsBytes     uint64
	PctFree          float64
	PctUsed          float64
	CapturedAt       string
}

type adminPage struct {
	Photos  []model.Photo
	Prices  []model.PriceEntry
	Storage *storageCard
}

func (h *Handler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	photos, err := h.Store.ListPhotos()
	if err != nil {
		slog.Error("list photos", "error", err)
		http.Error(w, "Internal error", 500)
		return
	}
	prices, err := h.Store.ListPrices()
	if err != nil {
		slog.Error("list prices", "error", err)
		http.Error(w, "Internal error", 500)
		return
	}

	page := adminPage{Photos: photos, Prices: prices}
	if h.Disk != nil {
		stats := h.Disk.Get()
		pctFree := stats.PctFree()
		page.Storage = &storageCard{
			TotalBytes:       stats.TotalBytes,
			FreeBytes:        stats.FreeBytes,
			AppBytes:         stats.AppBytes,
			OriginalsBytes:   stats.OriginalsBytes,
			WatermarkedBytes: stats.WatermarkedBytes,
			UploadsBytes:     stats.UploadsBytes,
			PctFree:          pctFree,
			PctUsed:          100 - pctFree,
			CapturedAt:       stats.CapturedAt.Format("2006-01-02 15:04:05 UTC"),
		}
	}
	h.renderPage(w, r, "admin.html", "Admin", page)
}

func (h *Handler) AdminUpdatePhoto(w http.ResponseWriter, r *http.Request) {
	photoID := r.FormValue("photo_id")
	isFeatured := r.FormValue("is_featured") == "1"
	price, err := parseAmount(r.FormValue("price"))
	if err != nil {
		http.Error(w, "Invalid price", http.StatusBadRequest)
		return
	}

	if photoID != "" {
		upd := model.PhotoUpdate{
			IsFeatured: isFeatured,
			Price:      price,
			Category:   r.FormValue("category"),
		}
		if err := h.Store.UpdatePhoto(photoID, upd); err != nil {
			slog.Error("update photo", "id", photoID, "error", err)
			http.Error(w, "Internal error", 500)
			return
		}
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (h *Handler) AdminUpdatePrice(w http.ResponseWriter, r *http.Request) {
	priceID := r.FormValue("price_id")
	label := r.FormValue("label")
	amount, err := parseAmount(r.FormValue("amount"))
	if err != nil {
		http.Error(w, "Invalid amount", http.StatusBadRequest)
		return
	}

	if priceID != "" {
		if err := h.Store.UpdatePrice(priceID, label, amount); err != nil {
			slog.Error("update price", "id", priceID, "error", err)
			http.Error(w, "Internal error", 500)
			return
		}
	}
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (h *Handler) AdminSeedPrices(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.CreatePrices(model.SeedPrices()); err != nil {
		slog.Error("seed prices", "error", err)
		http.Error(w, "Internal error", 500)
		return
	}
	fmt.Fprint(w, "Seeded prices successfully!")
}

func parseAmount(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
