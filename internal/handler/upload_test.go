package handler_test

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	for y := 0; y < h; y++ {
		img.Set(w/2, y, color.RGBA{30, 60, 90, 255})
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode test jpeg: %v", err)
	}
	return buf.Bytes()
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 180
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test png: %v", err)
	}
	return buf.Bytes()
}

// postUpload submits the upload form as a browser would: multipart body,
// CSRF token as an ordinary field, file under the photo part.
func (e *testEnv) postUpload(t *testing.T, token, category, filename string, content []byte) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if token != "" {
		if err := mw.WriteField("gorilla.csrf.Token", token); err != nil {
			t.Fatalf("write token field: %v", err)
		}
	}
	if err := mw.WriteField("category", category); err != nil {
		t.Fatalf("write category field: %v", err)
	}
	if content != nil {
		fw, err := mw.CreateFormFile("photo", filename)
		if err != nil {
			t.Fatalf("create file part: %v", err)
		}
		if _, err := fw.Write(content); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	mw.Close()

	req, err := http.NewRequest(http.MethodPost, e.ts.URL+"/upload", &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := e.client.Do(req)
	if err != nil {
		t.Fatalf("POST /upload: %v", err)
	}
	return resp
}

func TestUploadFlow(t *testing.T) {
	env := newEnv(t)
	env.login(t)

	token := env.fetchToken(t, "/upload")
	resp := env.postUpload(t, token, "animals", "dog.png", pngBytes(t, 320, 240))
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("upload: status %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/gallery" {
		t.Fatalf("upload redirect = %q, want /gallery", loc)
	}

	photos, err := env.store.ListPhotos()
	if err != nil {
		t.Fatalf("list photos: %v", err)
	}
	if len(photos) != 1 {
		t.Fatalf("got %d photos, want 1", len(photos))
	}
	p := photos[0]
	if p.Category != "animals" {
		t.Errorf("category = %q", p.Category)
	}
	if p.ContentType != "image/jpeg" {
		t.Errorf("content type = %q", p.ContentType)
	}
	if !strings.HasPrefix(p.StorageURL, "/uploads/animals/") || !strings.HasSuffix(p.StorageURL, ".jpg") {
		t.Errorf("storage url = %q", p.StorageURL)
	}
	if p.SizeBytes == 0 {
		t.Error("size not recorded")
	}
	if ok, err := env.blob.Exists(p.Category + "/" + p.Filename); err != nil || !ok {
		t.Errorf("watermarked object not in blob store: ok=%v err=%v", ok, err)
	}

	// The watermarked rendition is served by the app and is a real JPEG,
	// whatever format went in.
	resp = env.get(t, p.StorageURL)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", p.StorageURL, resp.StatusCode)
	}
	cfgImg, format, err := image.DecodeConfig(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("decode served image: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("served format = %q, want jpeg", format)
	}
	if cfgImg.Width != 320 || cfgImg.Height != 240 {
		t.Errorf("served size = %dx%d, want 320x240", cfgImg.Width, cfgImg.Height)
	}

	// Scratch files are gone once the upload is published.
	for _, dir := range []string{
		filepath.Join(env.cfg.DataDir, "originals"),
		filepath.Join(env.cfg.DataDir, "watermarked"),
	} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("read %s: %v", dir, err)
		}
		if len(entries) != 0 {
			t.Errorf("%s not empty after upload: %d entries", dir, len(entries))
		}
	}

	// And the gallery embeds it.
	resp = env.get(t, "/gallery")
	body := readBody(t, resp)
	if !strings.Contains(body, p.StorageURL) {
		t.Error("gallery does not embed the uploaded photo")
	}
}

func TestUploadValidation(t *testing.T) {
	env := newEnv(t)
	env.login(t)

	cases := []struct {
		name     string
		category string
		filename string
		content  []byte
		wantBody string
	}{
		{"missing file part", "animals", "", nil, "No file part"},
		{"bad category", "vehicles", "car.jpg", jpegBytes(t, 20, 20), "Invalid or missing category"},
		{"empty category", "", "dog.jpg", jpegBytes(t, 20, 20), "Invalid or missing category"},
		{"disallowed extension", "people", "notes.txt", []byte("hello"), "Invalid file type"},
		{"no extension", "people", "portrait", jpegBytes(t, 20, 20), "Invalid file type"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token := env.fetchToken(t, "/upload")
			resp := env.postUpload(t, token, tc.category, tc.filename, tc.content)
			body := readBody(t, resp)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status %d, want 400", resp.StatusCode)
			}
			if !strings.Contains(body, tc.wantBody) {
				t.Errorf("body %q, want %q", strings.TrimSpace(body), tc.wantBody)
			}
		})
	}

	photos, err := env.store.ListPhotos()
	if err != nil {
		t.Fatalf("list photos: %v", err)
	}
	if len(photos) != 0 {
		t.Errorf("%d photos created by invalid uploads", len(photos))
	}
}

func TestUploadCorruptImageCleansUp(t *testing.T) {
	env := newEnv(t)
	env.login(t)

	token := env.fetchToken(t, "/upload")
	resp := env.postUpload(t, token, "people", "broken.jpg", []byte("not an image at all"))
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status %d, want 500", resp.StatusCode)
	}

	for _, dir := range []string{
		filepath.Join(env.cfg.DataDir, "originals"),
		filepath.Join(env.cfg.DataDir, "watermarked"),
	} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("read %s: %v", dir, err)
		}
		if len(entries) != 0 {
			t.Errorf("%s not cleaned up: %d entries", dir, len(entries))
		}
	}

	photos, err := env.store.ListPhotos()
	if err != nil {
		t.Fatalf("list photos: %v", err)
	}
	if len(photos) != 0 {
		t.Error("corrupt upload created a photo record")
	}
}

func TestUploadRequiresSession(t *testing.T) {
	env := newEnv(t)

	// Valid CSRF token from the public login page, but no admin cookie.
	token := env.fetchToken(t, "/login")
	resp := env.postUpload(t, token, "animals", "dog.jpg", jpegBytes(t, 20, 20))
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Fatalf("redirect = %q, want /login", loc)
	}
}
