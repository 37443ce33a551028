package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/valvesite/internal/catalog"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const layoutFile = "templates/layout.tmpl"

// pageSet holds one template per page, each parsed together with the shared
// layout so every page can define its own "content" block.
type pageSet struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"productPath": func(categorySlug, productID string) string {
		return "/products/" + categorySlug + "/" + productID
	},
	"categoryPath": func(slug string) string { return "/products/" + slug },
	"add":          func(a, b int) int { return a + b },
	"upper":        strings.ToUpper,
	"has":          func(list []string, s string) bool { return slices.Contains(list, s) },
}

func parsePages() (*pageSet, error) {
	layout, err := template.New("layout").Funcs(funcs).ParseFS(templateFS, layoutFile)
	if err != nil {
		return nil, err
	}

	files, err := fs.Glob(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}

	set := &pageSet{pages: make(map[string]*template.Template)}
	for _, f := range files {
		if f == layoutFile {
			continue
		}
		t, err := template.Must(layout.Clone()).ParseFS(templateFS, f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		set.pages[strings.TrimSuffix(path.Base(f), ".tmpl")] = t
	}
	return set, nil
}

// pageData is what every page template receives.
type pageData struct {
	Title       string
	Description string
	Path        string
	Company     Company
	Nav         []catalog.NavCategory
	Year        int
	Content     any
}

func (s *Server) newPage(r *http.Request, c *catalog.Catalog, title string, content any) pageData {
	return pageData{
		Title:   title,
		Path:    r.URL.Path,
		Company: s.company,
		Nav:     c.NavTree("", ""),
		Year:    time.Now().Year(),
		Content: content,
	}
}

// render executes the named page into a buffer first so a template error
// becomes a clean 500 instead of a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	t, ok := s.pages.pages[name]
	if !ok {
		s.log.Error("unknown page template", zap.String("page", name))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		s.log.Error("rendering page", zap.String("page", name), zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
