package handler_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/mrogers/photofolio/internal/model"
)

func TestSeedPrices(t *testing.T) {
	env := newEnv(t)
	env.login(t)

	resp := env.get(t, "/admin/seed-prices")
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("seed: status %d", resp.StatusCode)
	}
	if body != "Seeded prices successfully!" {
		t.Fatalf("seed body = %q", body)
	}

	prices, err := env.store.ListPrices()
	if err != nil {
		t.Fatalf("list prices: %v", err)
	}
	if len(prices) != 9 {
		t.Fatalf("got %d prices, want 9", len(prices))
	}

	resp = env.get(t, "/pricing")
	page := readBody(t, resp)
	for _, want := range []string{"Corporate Head Shot", "13x19 Print", "$25.00", "$250.00"} {
		if !strings.Contains(page, want) {
			t.Errorf("pricing page missing %q", want)
		}
	}
}

func TestAdminCurationUpdatesPhoto(t *testing.T) {
	env := newEnv(t)
	env.login(t)

	token := env.fetchToken(t, "/upload")
	resp := env.postUpload(t, token, "animals", "dog.jpg", jpegBytes(t, 40, 30))
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("upload: status %d", resp.StatusCode)
	}
	photos, err := env.store.ListPhotos()
	if err != nil {
		t.Fatalf("list photos: %v", err)
	}
	if len(photos) != 1 {
		t.Fatalf("got %d photos, want 1", len(photos))
	}
	id := photos[0].ID

	// Feature it at a price; empty category keeps the stored one.
	token = env.fetchToken(t, "/admin")
	resp = env.postForm(t, "/admin", url.Values{
		"gorilla.csrf.Token": {token},
		"photo_id":           {id},
		"is_featured":        {"1"},
		"price":              {"25.50"},
		"category":           {""},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("curation post: status %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/admin" {
		t.Fatalf("curation redirect = %q, want /admin", loc)
	}

	got, err := env.store.GetPhoto(id)
	if err != nil || got == nil {
		t.Fatalf("get photo: %v (%v)", got, err)
	}
	if !got.IsFeatured {
		t.Error("photo not featured")
	}
	if got.Price != 25.50 {
		t.Errorf("price = %v, want 25.50", got.Price)
	}
	if got.Category != "animals" {
		t.Errorf("category = %q, want animals untouched", got.Category)
	}

	// Featured photos surface on the home page.
	resp = env.get(t, "/")
	home := readBody(t, resp)
	if !strings.Contains(home, got.StorageURL) {
		t.Error("home page does not show the featured photo")
	}

	// Recategorize; an unchecked box clears the featured flag.
	resp = env.postForm(t, "/admin", url.Values{
		"gorilla.csrf.Token": {token},
		"photo_id":           {id},
		"price":              {"25.50"},
		"category":           {"people"},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("second curation post: status %d", resp.StatusCode)
	}

	got, err = env.store.GetPhoto(id)
	if err != nil || got == nil {
		t.Fatalf("get photo: %v (%v)", got, err)
	}
	if got.IsFeatured {
		t.Error("featured flag not cleared")
	}
	if got.Category != "people" {
		t.Errorf("category = %q, want people", got.Category)
	}
}

func TestAdminDashboardListsData(t *testing.T) {
	env := newEnv(t)
	env.login(t)

	token := env.fetchToken(t, "/upload")
	resp := env.postUpload(t, token, "landscape", "hills.jpg", jpegBytes(t, 40, 30))
	resp.Body.Close()
	if err := env.store.CreatePrices(model.SeedPrices()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	photos, err := env.store.ListPhotos()
	if err != nil || len(photos) != 1 {
		t.Fatalf("photos: %v (%v)", photos, err)
	}

	resp = env.get(t, "/admin")
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /admin: status %d", resp.StatusCode)
	}
	for _, want := range []string{photos[0].StorageURL, "Corporate Head Shot", "(keep landscape)"} {
		if !strings.Contains(body, want) {
			t.Errorf("admin page missing %q", want)
		}
	}
}

func TestAdminUpdatePrice(t *testing.T) {
	env := newEnv(t)
	env.login(t)

	if err := env.store.CreatePrices(model.SeedPrices()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	services, err := env.store.ListPricesByType(model.ItemTypeService)
	if err != nil || len(services) == 0 {
		t.Fatalf("services: %v (%v)", services, err)
	}
	target := services[0]

	token := env.fetchToken(t, "/admin")
	resp := env.postForm(t, "/admin/prices", url.Values{
		"gorilla.csrf.Token": {token},
		"price_id":           {target.ID},
		"label":              {"Corporate Head Shot (studio)"},
		"amount":             {"45"},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("price post: status %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/admin" {
		t.Fatalf("price redirect = %q, want /admin", loc)
	}

	services, err = env.store.ListPricesByType(model.ItemTypeService)
	if err != nil {
		t.Fatalf("services after update: %v", err)
	}
	var updated *model.PriceEntry
	for i := range services {
		if services[i].ID == target.ID {
			updated = &services[i]
		}
	}
	if updated == nil {
		t.Fatal("updated row vanished")
	}
	if updated.Label != "Corporate Head Shot (studio)" {
		t.Errorf("label = %q", updated.Label)
	}
	if updated.Amount != 45 {
		t.Errorf("amount = %v, want 45", updated.Amount)
	}
}

func TestAdminRejectsBadNumbers(t *testing.T) {
	env := newEnv(t)
	env.login(t)

	token := env.fetchToken(t, "/admin")

	resp := env.postForm(t, "/admin", url.Values{
		"gorilla.csrf.Token": {token},
		"photo_id":           {"whatever"},
		"price":              {"abc"},
	})
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("photo post: status %d, want 400", resp.StatusCode)
	}
	if !strings.Contains(body, "Invalid price") {
		t.Errorf("photo post body = %q", strings.TrimSpace(body))
	}

	resp = env.postForm(t, "/admin/prices", url.Values{
		"gorilla.csrf.Token": {token},
		"price_id":           {"whatever"},
		"amount":             {"12.3.4"},
	})
	body = readBody(t, resp)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("price post: status %d, want 400", resp.StatusCode)
	}
	if !strings.Contains(body, "Invalid amount") {
		t.Errorf("price post body = %q", strings.TrimSpace(body))
	}
}

func TestAdminGhostAndEmptyIDsAreNoops(t *testing.T) {
	env := newEnv(t)
	env.login(t)

	token := env.fetchToken(t, "/admin")
	for _, form := range []url.Values{
		{"gorilla.csrf.Token": {token}, "photo_id": {""}, "price": {"5"}},
		{"gorilla.csrf.Token": {token}, "photo_id": {"no-such-photo"}, "price": {"5"}},
	} {
		resp := env.postForm(t, "/admin", form)
		resp.Body.Close()
		if resp.StatusCode != http.StatusSeeOther {
			t.Fatalf("post %v: status %d", form, resp.StatusCode)
		}
	}

	photos, err := env.store.ListPhotos()
	if err != nil {
		t.Fatalf("list photos: %v", err)
	}
	if len(photos) != 0 {
		t.Errorf("no-op posts created %d photos", len(photos))
	}
}
