package site

import (
	"encoding/xml"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/valvesite/internal/catalog"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	NS      string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc      string `xml:"loc"`
	Priority string `xml:"priority,omitempty"`
}

// SitemapPaths lists every public page path: the static pages, then each
// category followed by its products.
func SitemapPaths(c *catalog.Catalog) []string {
	paths := []string{"/", "/about", "/products", "/contact"}
	for _, cat := range c.Categories() {
		paths = append(paths, "/products/"+cat.Slug)
		for _, p := range cat.Products {
			paths = append(paths, "/products/"+cat.Slug+"/"+p.ID)
		}
	}
	return paths
}

func priority(p string) string {
	switch strings.Count(p, "/") {
	case 1:
		if p == "/" {
			return "1.0"
		}
		return "0.8"
	case 2:
		return "0.7"
	default:
		return "0.6"
	}
}

// WriteSitemap encodes the sitemap for c with absolute links under baseURL.
func WriteSitemap(w io.Writer, c *catalog.Catalog, baseURL string) error {
	base := strings.TrimRight(baseURL, "/")
	set := urlset{NS: sitemapNS}
	for _, p := range SitemapPaths(c) {
		set.URLs = append(set.URLs, sitemapURL{Loc: base + p, Priority: priority(p)})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return err
	}
	return enc.Close()
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	if err := WriteSitemap(w, s.current(), s.cfg.Server.BaseURL); err != nil {
		s.log.Warn("writing sitemap", zap.Error(err))
	}
}
