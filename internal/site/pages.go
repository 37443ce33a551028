package site

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Faultbox/valvesite/internal/catalog"
	"github.com/Faultbox/valvesite/internal/inquiry"
)

// Products shown per category on the products index, and related products
// shown under a product.
const (
	previewCount = 4
	relatedCount = 3
)

type homeContent struct {
	Categories []catalog.Category
	Featured   []catalog.ProductRef
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	c := s.current()
	page := s.newPage(r, c, s.company.Name, homeContent{
		Categories: c.Categories(),
		Featured:   c.WithModel(),
	})
	page.Description = s.company.Tagline
	s.render(w, r, http.StatusOK, "home", page)
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	c := s.current()
	s.render(w, r, http.StatusOK, "about", s.newPage(r, c, "About Us", nil))
}

type categorySection struct {
	Category catalog.Category
	Preview  []catalog.Product
	More     int
}

type productsContent struct {
	Sections []categorySection
	Query    catalog.Query
	Filtered bool
	Results  []catalog.ProductRef
}

// queryFrom reads the sidebar filter: ?category=a&category=b&q=text&has3d=1.
func queryFrom(r *http.Request) (catalog.Query, bool) {
	v := r.URL.Query()
	q := catalog.Query{
		Categories: v["category"],
		Text:       strings.TrimSpace(v.Get("q")),
	}
	switch strings.ToLower(v.Get("has3d")) {
	case "1", "true", "on", "yes":
		q.HasModel = true
	}
	filtered := len(q.Categories) > 0 || q.Text != "" || q.HasModel
	return q, filtered
}

func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	c := s.current()
	content := productsContent{}
	content.Query, content.Filtered = queryFrom(r)

	if content.Filtered {
		content.Results = c.Filter(content.Query)
	} else {
		for _, cat := range c.Categories() {
			content.Sections = append(content.Sections, categorySection{
				Category: cat,
				Preview:  c.Preview(cat.Slug, previewCount),
				More:     max(0, len(cat.Products)-previewCount),
			})
		}
	}
	s.render(w, r, http.StatusOK, "products", s.newPage(r, c, "Products", content))
}

type categoryContent struct {
	Category catalog.Category
	Products []catalog.Product
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	c := s.current()
	slug := chi.URLParam(r, "category")

	cat, ok := c.CategoryBySlug(slug)
	if !ok {
		s.renderNotFound(w, r, c, notFoundContent{
			Heading:   "Category Not Found",
			BackPath:  "/products",
			BackLabel: "Return to Products",
		})
		return
	}

	page := s.newPage(r, c, cat.Title, categoryContent{
		Category: cat,
		Products: c.ProductsByCategory(slug),
	})
	page.Description = cat.Description
	page.Nav = c.NavTree(slug, "")
	s.render(w, r, http.StatusOK, "category", page)
}

type viewerData struct {
	ModelPath     string
	FallbackImage string
	SocketPath    string
	Width         int
	Height        int
}

type productContent struct {
	Category catalog.Category
	Product  catalog.Product
	Specs    []catalog.SpecEntry
	Related  []catalog.Product
	Viewer   viewerData
	Form     inquiry.ProductInquiry
	Errors   map[string]string
	Receipt  *inquiry.Receipt
	Failed   bool
}

// lookupProduct resolves the URL pair and renders the not-found page when
// either part is missing.
func (s *Server) lookupProduct(w http.ResponseWriter, r *http.Request, c *catalog.Catalog) (catalog.Category, catalog.Product, bool) {
	slug := chi.URLParam(r, "category")
	id := chi.URLParam(r, "productID")

	cat, catOK := c.CategoryBySlug(slug)
	p, ok := c.ProductByID(slug, id)
	if catOK && ok {
		return cat, p, true
	}

	nf := notFoundContent{Heading: "Product Not Found", BackPath: "/products", BackLabel: "Return to Products"}
	if catOK {
		nf.BackPath = "/products/" + cat.Slug
		nf.BackLabel = "Return to " + cat.Title
	}
	s.renderNotFound(w, r, c, nf)
	return catalog.Category{}, catalog.Product{}, false
}

func (s *Server) productPage(r *http.Request, c *catalog.Catalog, cat catalog.Category, p catalog.Product) (pageData, *productContent) {
	content := &productContent{
		Category: cat,
		Product:  p,
		Specs:    p.Specifications.Entries(),
		Related:  c.RelatedProducts(cat.Slug, p.ID, relatedCount),
		Viewer: viewerData{
			ModelPath:     p.Model3D,
			FallbackImage: p.ImageURL,
			SocketPath:    "/ws/viewer/" + cat.Slug + "/" + p.ID,
			Width:         s.cfg.Viewer.Width,
			Height:        s.cfg.Viewer.Height,
		},
		Form: inquiry.ProductInquiry{ProductInterest: p.Name},
	}
	page := s.newPage(r, c, p.Name, content)
	page.Description = p.Description
	page.Nav = c.NavTree(cat.Slug, p.ID)
	return page, content
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	c := s.current()
	cat, p, ok := s.lookupProduct(w, r, c)
	if !ok {
		return
	}
	page, _ := s.productPage(r, c, cat, p)
	s.render(w, r, http.StatusOK, "product", page)
}

func (s *Server) handleProductInquiry(w http.ResponseWriter, r *http.Request) {
	c := s.current()
	cat, p, ok := s.lookupProduct(w, r, c)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	form := inquiry.ProductInquiry{
		Name:            r.PostForm.Get("name"),
		Company:         r.PostForm.Get("company"),
		Email:           r.PostForm.Get("email"),
		Phone:           r.PostForm.Get("phone"),
		Message:         r.PostForm.Get("message"),
		ProductInterest: r.PostForm.Get("productInterest"),
		CategorySlug:    cat.Slug,
		ProductID:       p.ID,
	}

	page, content := s.productPage(r, c, cat, p)
	content.Form = form
	receipt, status := s.submitForm(r.Context(), inquiry.Request{Kind: inquiry.KindProduct, Product: &form}, content)
	if receipt != nil {
		// Start over with a fresh form, product prefilled.
		content.Form = inquiry.ProductInquiry{ProductInterest: p.Name}
	}
	s.render(w, r, status, "product", page)
}

type contactContent struct {
	Form    inquiry.Contact
	Errors  map[string]string
	Receipt *inquiry.Receipt
	Failed  bool
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	c := s.current()
	s.render(w, r, http.StatusOK, "contact", s.newPage(r, c, "Contact Us", &contactContent{}))
}

func (s *Server) handleContactSubmit(w http.ResponseWriter, r *http.Request) {
	c := s.current()
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	form := inquiry.Contact{
		Name:    r.PostForm.Get("name"),
		Email:   r.PostForm.Get("email"),
		Phone:   r.PostForm.Get("phone"),
		Subject: r.PostForm.Get("subject"),
		Message: r.PostForm.Get("message"),
	}

	content := &contactContent{Form: form}
	receipt, status := s.submitForm(r.Context(), inquiry.Request{Kind: inquiry.KindContact, Contact: &form}, content)
	if receipt != nil {
		content.Form = inquiry.Contact{}
	}
	s.render(w, r, status, "contact", s.newPage(r, c, "Contact Us", content))
}

// formResult is implemented by page contents that show a form outcome.
type formResult interface {
	setOutcome(errs map[string]string, receipt *inquiry.Receipt, failed bool)
}

func (c *productContent) setOutcome(errs map[string]string, r *inquiry.Receipt, failed bool) {
	c.Errors, c.Receipt, c.Failed = errs, r, failed
}

func (c *contactContent) setOutcome(errs map[string]string, r *inquiry.Receipt, failed bool) {
	c.Errors, c.Receipt, c.Failed = errs, r, failed
}

// submitForm delivers req and records the outcome on the page. It returns the
// receipt on success and the HTTP status to render with.
func (s *Server) submitForm(ctx context.Context, req inquiry.Request, out formResult) (*inquiry.Receipt, int) {
	receipt, err := s.inquiries.Submit(ctx, req)
	switch {
	case err == nil:
		out.setOutcome(nil, &receipt, false)
		return &receipt, http.StatusOK
	case inquiry.Fields(err) != nil:
		out.setOutcome(inquiry.Fields(err), nil, false)
		return nil, http.StatusUnprocessableEntity
	default:
		s.log.Error("inquiry submission failed", zap.String("kind", string(req.Kind)), zap.Error(err))
		out.setOutcome(nil, nil, true)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, http.StatusServiceUnavailable
		}
		return nil, http.StatusBadGateway
	}
}

type notFoundContent struct {
	Heading   string
	BackPath  string
	BackLabel string
}

func (s *Server) renderNotFound(w http.ResponseWriter, r *http.Request, c *catalog.Catalog, nf notFoundContent) {
	s.render(w, r, http.StatusNotFound, "notfound", s.newPage(r, c, nf.Heading, nf))
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	s.renderNotFound(w, r, s.current(), notFoundContent{
		Heading:   "Page Not Found",
		BackPath:  "/",
		BackLabel: "Return Home",
	})
}
