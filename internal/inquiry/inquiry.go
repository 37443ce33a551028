// Package inquiry validates and delivers contact and product inquiries.
package inquiry

import (
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Kind selects the inquiry form.
type Kind string

const (
	KindContact Kind = "contact"
	KindProduct Kind = "product"
)

// Limits on free-text fields.
const (
	MaxFieldLen   = 200
	MaxMessageLen = 5000
)

// Contact is the general contact form.
type Contact struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ProductInquiry is the inquiry form on a product page.
type ProductInquiry struct {
	Name            string `json:"name"`
	Company         string `json:"company"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Message         string `json:"message"`
	ProductInterest string `json:"product_interest,omitempty"`
	CategorySlug    string `json:"category,omitempty"`
	ProductID       string `json:"product_id,omitempty"`
}

// ValidationError maps field names to problems.
type ValidationError map[string]string

func (e ValidationError) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + e[f]
	}
	return "invalid inquiry: " + strings.Join(parts, "; ")
}

// Fields returns the field errors, or nil if err is not a ValidationError.
func Fields(err error) map[string]string {
	var ve ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}

type checker struct {
	errs ValidationError
}

func (c *checker) required(field, value string) bool {
	if strings.TrimSpace(value) == "" {
		c.fail(field, "is required")
		return false
	}
	return true
}

func (c *checker) maxLen(field, value string, n int) {
	if len(value) > n {
		c.fail(field, fmt.Sprintf("must be at most %d characters", n))
	}
}

func (c *checker) email(field, value string) {
	if !c.required(field, value) {
		return
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != strings.TrimSpace(value) || !strings.Contains(addr.Address, ".") {
		c.fail(field, "is not a valid email address")
	}
}

func (c *checker) phone(field, value string) {
	if value == "" {
		return
	}
	digits := 0
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case strings.ContainsRune(" +-().", r):
		default:
			c.fail(field, "may only contain digits, spaces and + - ( ) .")
			return
		}
	}
	if digits < 7 {
		c.fail(field, "is too short")
	}
}

func (c *checker) fail(field, msg string) {
	if c.errs == nil {
		c.errs = ValidationError{}
	}
	if _, ok := c.errs[field]; !ok {
		c.errs[field] = msg
	}
}

func (c *checker) err() error {
	if len(c.errs) == 0 {
		return nil
	}
	return c.errs
}

// Validate checks required fields and formats.
func (c Contact) Validate() error {
	var v checker
	v.required("name", c.Name)
	v.maxLen("name", c.Name, MaxFieldLen)
	v.email("email", c.Email)
	v.phone("phone", c.Phone)
	v.required("subject", c.Subject)
	v.maxLen("subject", c.Subject, MaxFieldLen)
	v.required("message", c.Message)
	v.maxLen("message", c.Message, MaxMessageLen)
	return v.err()
}

// Validate checks required fields and formats.
func (p ProductInquiry) Validate() error {
	var v checker
	v.required("name", p.Name)
	v.maxLen("name", p.Name, MaxFieldLen)
	v.required("company", p.Company)
	v.maxLen("company", p.Company, MaxFieldLen)
	v.email("email", p.Email)
	if v.required("phone", p.Phone) {
		v.phone("phone", p.Phone)
	}
	v.required("message", p.Message)
	v.maxLen("message", p.Message, MaxMessageLen)
	v.maxLen("product_interest", p.ProductInterest, MaxFieldLen)
	if (p.CategorySlug == "") != (p.ProductID == "") {
		v.fail("product_id", "category and product must be given together")
	}
	return v.err()
}

// Request is one submitted form.
type Request struct {
	Kind    Kind            `json:"kind"`
	Contact *Contact        `json:"contact,omitempty"`
	Product *ProductInquiry `json:"product,omitempty"`
}

// Validate checks the kind and the matching form.
func (r Request) Validate() error {
	switch r.Kind {
	case KindContact:
		if r.Contact == nil {
			return ValidationError{"contact": "is required"}
		}
		return r.Contact.Validate()
	case KindProduct:
		if r.Product == nil {
			return ValidationError{"product": "is required"}
		}
		return r.Product.Validate()
	default:
		return ValidationError{"kind": fmt.Sprintf("must be %q or %q", KindContact, KindProduct)}
	}
}

// Receipt acknowledges a delivered inquiry.
type Receipt struct {
	ID   uuid.UUID `json:"id"`
	Kind Kind      `json:"kind"`
	At   time.Time `json:"at"`
}

func newReceipt(kind Kind, at time.Time) Receipt {
	return Receipt{ID: uuid.New(), Kind: kind, At: at.UTC()}
}
