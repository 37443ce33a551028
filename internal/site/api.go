package site

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Faultbox/valvesite/internal/catalog"
	"github.com/Faultbox/valvesite/internal/inquiry"
)

const maxInquiryBody = 64 << 10

type categoryJSON struct {
	Key          string           `json:"key"`
	Title        string           `json:"title"`
	Slug         string           `json:"slug"`
	Description  string           `json:"description"`
	ProductCount int              `json:"product_count"`
	Products     []productSummary `json:"products,omitempty"`
}

type productSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Category    string `json:"category"`
	Has3D       bool   `json:"has_3d"`
	Path        string `json:"path"`
}

type productJSON struct {
	productSummary
	DetailedDescription string              `json:"detailed_description"`
	Model3D             string              `json:"model_3d,omitempty"`
	Specifications      []catalog.SpecEntry `json:"specifications"`
	Applications        []string            `json:"applications"`
	FAQs                []catalog.FAQ       `json:"faqs"`
}

func summarize(categorySlug string, p catalog.Product) productSummary {
	return productSummary{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Category:    categorySlug,
		Has3D:       p.HasModel(),
		Path:        "/products/" + categorySlug + "/" + p.ID,
	}
}

func categoryOf(cat catalog.Category, withProducts bool) categoryJSON {
	out := categoryJSON{
		Key:          cat.Key,
		Title:        cat.Title,
		Slug:         cat.Slug,
		Description:  cat.Description,
		ProductCount: len(cat.Products),
	}
	if withProducts {
		out.Products = make([]productSummary, 0, len(cat.Products))
		for _, p := range cat.Products {
			out.Products = append(out.Products, summarize(cat.Slug, p))
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) apiCategories(w http.ResponseWriter, r *http.Request) {
	cats := s.current().Categories()
	out := make([]categoryJSON, 0, len(cats))
	for _, cat := range cats {
		out = append(out, categoryOf(cat, false))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) apiCategory(w http.ResponseWriter, r *http.Request) {
	cat, ok := s.current().CategoryBySlug(chi.URLParam(r, "slug"))
	if !ok {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	writeJSON(w, http.StatusOK, categoryOf(cat, true))
}

// apiCategoryProducts lists a category's products. An unknown slug is an
// empty list.
func (s *Server) apiCategoryProducts(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	products := s.current().ProductsByCategory(slug)
	out := make([]productSummary, 0, len(products))
	for _, p := range products {
		out = append(out, summarize(slug, p))
	}
	writeJSON(w, http.StatusOK, out)
}

// apiProducts accepts the same filter parameters as the products page.
func (s *Server) apiProducts(w http.ResponseWriter, r *http.Request) {
	q, _ := queryFrom(r)
	refs := s.current().Filter(q)
	out := make([]productSummary, 0, len(refs))
	for _, ref := range refs {
		out = append(out, summarize(ref.CategorySlug, ref.Product))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) apiProduct(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "category")
	p, ok := s.current().ProductByID(slug, chi.URLParam(r, "productID"))
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	out := productJSON{
		productSummary:      summarize(slug, p),
		DetailedDescription: p.DetailedDescription,
		Model3D:             p.Model3D,
		Specifications:      p.Specifications.Entries(),
		Applications:        p.Applications,
		FAQs:                p.FAQs,
	}
	if out.Applications == nil {
		out.Applications = []string{}
	}
	if out.FAQs == nil {
		out.FAQs = []catalog.FAQ{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) apiSubmitInquiry(w http.ResponseWriter, r *http.Request) {
	var req inquiry.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxInquiryBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	// A product inquiry may name a catalog product; it has to exist.
	if p := req.Product; p != nil && p.ProductID != "" {
		if _, ok := s.current().ProductByID(p.CategorySlug, p.ProductID); !ok {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":  "invalid inquiry",
				"fields": map[string]string{"product_id": "unknown product"},
			})
			return
		}
	}

	receipt, err := s.inquiries.Submit(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, receipt)
	case inquiry.Fields(err) != nil:
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "invalid inquiry",
			"fields": inquiry.Fields(err),
		})
	case errors.Is(err, inquiry.ErrRejected):
		s.log.Warn("inquiry rejected upstream", zap.Error(err))
		writeError(w, http.StatusBadGateway, "inquiry could not be delivered")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "inquiry submission timed out")
	default:
		s.log.Error("inquiry submission failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "inquiry could not be delivered")
	}
}
