package handler

import (
	"log/slog"
	"net/http"

	"github.com/mrogers/photofolio/internal/model"
)

type homePage struct {
	Featured []model.Photo
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	featured, err := h.Store.ListFeaturedPhotos()
	if err != nil {
		slog.Error("list featured photos", "error", err)
		http.Error(w, "Internal error", 500)
		return
	}
	h.renderPage(w, r, "index.html", "Home", homePage{Featured: featured})
}

type galleryPage struct {
	Photos     []model.Photo
	Categories []string
	Active     string
}

func (h *Handler) Gallery(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")

	var (
		photos []model.Photo
		err    error
	)
	if category == "" || category == "all" {
		category = "all"
		photos, err = h.Store.ListPhotos()
	} else {
		photos, err = h.Store.ListPhotosByCategory(category)
	}
	if err != nil {
		slog.Error("list photos", "category", category, "error", err)
		http.Error(w, "Internal error", 500)
		return
	}

	// Tabs come from stored data so retired categories keep working.
	stored, err := h.Store.PhotoCategories()
	if err != nil {
		slog.Error("list photo categories", "error", err)
		http.Error(w, "Internal error", 500)
		return
	}
	categories := append([]string{"all"}, stored...)

	h.renderPage(w, r, "gallery.html", "Gallery", galleryPage{
		Photos:     photos,
		Categories: categories,
		Active:     category,
	})
}

func (h *Handler) About(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, "about.html", "About", nil)
}

type pricingPage struct {
	Services []model.PriceEntry
	Prints   []model.PriceEntry
}

func (h *Handler) Pricing(w http.ResponseWriter, r *http.Request) {
	services, err := h.Store.ListPricesByType(model.ItemTypeService)
	if err != nil {
		slog.Error("list service prices", "error", err)
		http.Error(w, "Internal error", 500)
		return
	}
	prints, err := h.Store.ListPricesByType(model.ItemTypePrint)
	if err != nil {
		slog.Error("list print prices", "error", err)
		http.Error(w, "Internal error", 500)
		return
	}
	h.renderPage(w, r, "pricing.html", "Pricing", pricingPage{Services: services, Prints: prints})
}
