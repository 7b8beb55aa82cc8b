package handler

import (
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mrogers/photofolio/internal/model"
)

// validate is a reusable validator instance
var validate = validator.New()

// uploadForm field order matches the order the checks are reported in, so
// a request failing several rules gets the same body the original form gave.
// The category list mirrors model.Categories.
type uploadForm struct {
	Category  string `validate:"required,oneof=animals people landscape"`
	Filename  string `validate:"required"`
	Extension string `validate:"required,oneof=png jpg jpeg gif"`
}

type uploadPage struct {
	Categories []string
}

func (h *Handler) UploadForm(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, "upload.html", "Upload", uploadPage{Categories: model.Categories})
}

// UploadSubmit runs the whole pipeline for one photo: scratch-save the
// original, watermark it, push the watermarked rendition to the blob store,
// record the metadata, then drop both scratch files.
func (h *Handler) UploadSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.MaxUploadBytes)

	file, header, err := r.FormFile("photo")
	if err != nil {
		http.Error(w, "No file part", http.StatusBadRequest)
		return
	}
	defer file.Close()

	form := uploadForm{
		Category:  r.FormValue("category"),
		Filename:  header.Filename,
		Extension: strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), "."),
	}
	if err := validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			switch verrs[0].Field() {
			case "Category":
				http.Error(w, "Invalid or missing category", http.StatusBadRequest)
			case "Filename":
				http.Error(w, "No selected file", http.StatusBadRequest)
			default:
				http.Error(w, "Invalid file type", http.StatusBadRequest)
			}
			return
		}
		http.Error(w, "Invalid upload", http.StatusBadRequest)
		return
	}

	originalsDir := filepath.Join(h.Cfg.DataDir, "originals")
	watermarkedDir := filepath.Join(h.Cfg.DataDir, "watermarked")
	for _, dir := range []string{originalsDir, watermarkedDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			slog.Error("upload: mkdir scratch", "dir", dir, "error", err)
			http.Error(w, "Internal error", 500)
			return
		}
	}

	// One identity for the file and the record. The watermarked copy is
	// always JPEG, whatever the source format was.
	id := uuid.New()
	base := hex.EncodeToString(id[:])
	originalPath := filepath.Join(originalsDir, base+"."+form.Extension)
	watermarkedPath := filepath.Join(watermarkedDir, base+".jpg")

	dst, err := os.Create(originalPath)
	if err != nil {
		slog.Error("upload: create scratch file", "error", err)
		http.Error(w, "Internal error", 500)
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(originalPath)
		slog.Error("upload: save original", "error", err)
		http.Error(w, "Internal error", 500)
		return
	}
	dst.Close()

	if err := h.WM.ApplyWatermark(originalPath, watermarkedPath); err != nil {
		removeScratch(originalPath, watermarkedPath)
		slog.Error("upload: watermark", "error", err)
		http.Error(w, "Watermarking failed", 500)
		return
	}

	key := form.Category + "/" + base + ".jpg"
	wf, err := os.Open(watermarkedPath)
	if err != nil {
		removeScratch(originalPath, watermarkedPath)
		slog.Error("upload: open watermarked", "error", err)
		http.Error(w, "Internal error", 500)
		return
	}
	fi, err := wf.Stat()
	if err != nil {
		wf.Close()
		removeScratch(originalPath, watermarkedPath)
		slog.Error("upload: stat watermarked", "error", err)
		http.Error(w, "Internal error", 500)
		return
	}
	size := fi.Size()
	blobErr := h.Blob.Write(key, wf, size, "image/jpeg")
	wf.Close()
	if blobErr != nil {
		removeScratch(originalPath, watermarkedPath)
		slog.Error("upload: blob write", "key", key, "error", blobErr)
		http.Error(w, "Upload failed", 500)
		return
	}

	photo := &model.Photo{
		ID:          base,
		Filename:    base + ".jpg",
		Category:    form.Category,
		IsFeatured:  false,
		Price:       0.0,
		StorageURL:  h.Blob.PublicURL(key),
		ContentType: "image/jpeg",
		SizeBytes:   size,
	}
	if err := h.Store.CreatePhoto(photo); err != nil {
		// Take the orphaned object down with the failed record.
		if derr := h.Blob.Delete(key); derr != nil {
			slog.Error("upload: delete orphaned blob", "key", key, "error", derr)
		}
		removeScratch(originalPath, watermarkedPath)
		slog.Error("upload: create photo", "error", err)
		http.Error(w, "Internal error", 500)
		return
	}

	removeScratch(originalPath, watermarkedPath)
	http.Redirect(w, r, "/gallery", http.StatusSeeOther)
}

func removeScratch(paths ...string) {
	for _, p := range paths {
		os.Remove(p)
	}
}
