package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// CategorySource is the authored form of a category before derivation.
type CategorySource struct {
	Key         string          `yaml:"key"`
	Title       string          `yaml:"title"`
	Description string          `yaml:"description"`
	Products    []ProductSource `yaml:"products"`
}

// ProductSource is the authored form of a product. ID is optional; when set
// it pins a link that must survive changes to the derivation rules.
type ProductSource struct {
	ID                  string            `yaml:"id,omitempty"`
	Name                string            `yaml:"name"`
	Description         string            `yaml:"description"`
	DetailedDescription string            `yaml:"detailed_description"`
	ImageURL            string            `yaml:"image_url"`
	Model3D             string            `yaml:"model_3d,omitempty"`
	Specifications      map[string]string `yaml:"specifications"`
	Applications        []string          `yaml:"applications"`
	FAQs                []FAQ             `yaml:"faqs"`
}

// ErrEmpty is returned when a catalog has no categories.
var ErrEmpty = errors.New("catalog has no categories")

// Catalog is an immutable category/product tree. All methods are safe for
// concurrent use; returned slices are copies.
type Catalog struct {
	categories []Category
	bySlug     map[string]int
	// products indexes category position -> product id -> product position.
	products []map[string]int
}

// New derives slugs and ids, validates the tree and freezes it.
func New(sources []CategorySource) (*Catalog, error) {
	if len(sources) == 0 {
		return nil, ErrEmpty
	}

	c := &Catalog{
		categories: make([]Category, 0, len(sources)),
		bySlug:     make(map[string]int, len(sources)),
		products:   make([]map[string]int, 0, len(sources)),
	}

	for i, src := range sources {
		if strings.TrimSpace(src.Title) == "" {
			return nil, fmt.Errorf("category %d: empty title", i)
		}
		slug := GenerateSlug(src.Title)
		if _, dup := c.bySlug[slug]; dup {
			return nil, fmt.Errorf("category %q: duplicate slug %q", src.Title, slug)
		}

		cat := Category{
			Key:         src.Key,
			Title:       src.Title,
			Slug:        slug,
			Description: src.Description,
			Products:    make([]Product, 0, len(src.Products)),
		}
		ids := make(map[string]int, len(src.Products))

		for j, ps := range src.Products {
			p, err := buildProduct(ps)
			if err != nil {
				return nil, fmt.Errorf("category %q product %d: %w", slug, j, err)
			}
			if _, dup := ids[p.ID]; dup {
				return nil, fmt.Errorf("category %q: duplicate product id %q", slug, p.ID)
			}
			ids[p.ID] = len(cat.Products)
			cat.Products = append(cat.Products, p)
		}

		c.bySlug[slug] = len(c.categories)
		c.categories = append(c.categories, cat)
		c.products = append(c.products, ids)
	}

	return c, nil
}

func buildProduct(src ProductSource) (Product, error) {
	if strings.TrimSpace(src.Name) == "" {
		return Product{}, errors.New("empty name")
	}

	id := src.ID
	if id == "" {
		id = GenerateProductID(src.Name)
	}
	if !IsSlug(id) {
		return Product{}, fmt.Errorf("%q: invalid id %q", src.Name, id)
	}

	specs, err := NewSpecMap(src.Specifications)
	if err != nil {
		return Product{}, fmt.Errorf("%q: %w", src.Name, err)
	}

	return Product{
		ID:                  id,
		Name:                src.Name,
		Description:         src.Description,
		DetailedDescription: src.DetailedDescription,
		ImageURL:            src.ImageURL,
		Model3D:             src.Model3D,
		Specifications:      specs,
		Applications:        append([]string(nil), src.Applications...),
		FAQs:                append([]FAQ(nil), src.FAQs...),
	}, nil
}

// Categories returns every category in display order.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	for i := range c.categories {
		out[i] = c.categories[i].clone()
	}
	return out
}

// Len returns the number of categories.
func (c *Catalog) Len() int {
	return len(c.categories)
}

// CategoryBySlug returns the category whose slug matches exactly.
func (c *Catalog) CategoryBySlug(slug string) (Category, bool) {
	i, ok := c.bySlug[slug]
	if !ok {
		return Category{}, false
	}
	return c.categories[i].clone(), true
}

// ProductByID resolves a product within one category. A product id that
// only exists in another category is not found.
func (c *Catalog) ProductByID(categorySlug, productID string) (Product, bool) {
	ci, ok := c.bySlug[categorySlug]
	if !ok {
		return Product{}, false
	}
	pi, ok := c.products[ci][productID]
	if !ok {
		return Product{}, false
	}
	return c.categories[ci].Products[pi].clone(), true
}

// ProductsByCategory lists a category's products. An unknown slug yields an
// empty, non-nil slice.
func (c *Catalog) ProductsByCategory(categorySlug string) []Product {
	ci, ok := c.bySlug[categorySlug]
	if !ok {
		return []Product{}
	}
	return cloneProducts(c.categories[ci].Products)
}

// RelatedProducts returns up to limit other products from the same category.
func (c *Catalog) RelatedProducts(categorySlug, productID string, limit int) []Product {
	out := []Product{}
	ci, ok := c.bySlug[categorySlug]
	if !ok || limit <= 0 {
		return out
	}
	for _, p := range c.categories[ci].Products {
		if p.ID == productID {
			continue
		}
		out = append(out, p.clone())
		if len(out) == limit {
			break
		}
	}
	return out
}

// Preview returns the first n products of a category for index listings.
func (c *Catalog) Preview(categorySlug string, n int) []Product {
	products := c.ProductsByCategory(categorySlug)
	if n >= 0 && len(products) > n {
		products = products[:n]
	}
	return products
}

// ProductRef qualifies a product with the category it belongs to.
type ProductRef struct {
	CategorySlug string
	Product      Product
}

// Path returns the site path of the product detail page.
func (r ProductRef) Path() string {
	return "/products/" + r.CategorySlug + "/" + r.Product.ID
}

// WithModel lists every product that carries a 3D asset, in catalog order.
func (c *Catalog) WithModel() []ProductRef {
	var out []ProductRef
	for _, cat := range c.categories {
		for _, p := range cat.Products {
			if p.HasModel() {
				out = append(out, ProductRef{CategorySlug: cat.Slug, Product: p.clone()})
			}
		}
	}
	return out
}

// Query narrows the product list. Zero values match everything.
type Query struct {
	// Categories restricts results to these slugs.
	Categories []string
	// Text is matched case-insensitively against product names.
	Text string
	// HasModel keeps only products with a 3D asset.
	HasModel bool
}

// Filter returns matching products in catalog order.
func (c *Catalog) Filter(q Query) []ProductRef {
	var allowed map[string]bool
	if len(q.Categories) > 0 {
		allowed = make(map[string]bool, len(q.Categories))
		for _, s := range q.Categories {
			allowed[s] = true
		}
	}
	text := strings.ToLower(strings.TrimSpace(q.Text))

	out := []ProductRef{}
	for _, cat := range c.categories {
		if allowed != nil && !allowed[cat.Slug] {
			continue
		}
		for _, p := range cat.Products {
			if q.HasModel && !p.HasModel() {
				continue
			}
			if text != "" && !strings.Contains(strings.ToLower(p.Name), text) {
				continue
			}
			out = append(out, ProductRef{CategorySlug: cat.Slug, Product: p.clone()})
		}
	}
	return out
}

// NavCategory is one entry of the navigation sidebar.
type NavCategory struct {
	Slug     string
	Title    string
	Active   bool
	Expanded bool
	Products []NavProduct
}

// NavProduct is a product link inside a NavCategory.
type NavProduct struct {
	ID     string
	Name   string
	Path   string
	Active bool
}

// NavTree builds the sidebar tree. The active category starts expanded.
func (c *Catalog) NavTree(activeCategory, activeProduct string) []NavCategory {
	out := make([]NavCategory, 0, len(c.categories))
	for _, cat := range c.categories {
		active := cat.Slug == activeCategory
		nc := NavCategory{
			Slug:     cat.Slug,
			Title:    cat.Title,
			Active:   active,
			Expanded: active,
			Products: make([]NavProduct, 0, len(cat.Products)),
		}
		for _, p := range cat.Products {
			nc.Products = append(nc.Products, NavProduct{
				ID:     p.ID,
				Name:   p.Name,
				Path:   "/products/" + cat.Slug + "/" + p.ID,
				Active: active && p.ID == activeProduct,
			})
		}
		out = append(out, nc)
	}
	return out
}

func (cat *Category) clone() Category {
	out := *cat
	out.Products = cloneProducts(cat.Products)
	return out
}

func (p *Product) clone() Product {
	out := *p
	out.Applications = append([]string(nil), p.Applications...)
	out.FAQs = append([]FAQ(nil), p.FAQs...)
	return out
}

func cloneProducts(in []Product) []Product {
	out := make([]Product, len(in))
	for i := range in {
		out[i] = in[i].clone()
	}
	return out
}
