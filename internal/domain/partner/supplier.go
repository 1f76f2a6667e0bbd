package partner

import (
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/stocker/backend/internal/domain/shared"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Supplier provides products. A supplier may be linked to many products
// and a product to many suppliers.
type Supplier struct {
	shared.BaseAggregateRoot
	Name    string
	Email   string
	Phone   string
	LogoRef string
	Website string
}

// SupplierDetails holds the editable attributes of a supplier
type SupplierDetails struct {
	Name    string
	Email   string
	Phone   string
	LogoRef string
	Website string
}

// NewSupplier creates a new supplier
func NewSupplier(details SupplierDetails) (*Supplier, error) {
	details = details.normalized()
	if err := details.validate(); err != nil {
		return nil, err
	}

	s := &Supplier{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	s.apply(details)
	return s, nil
}

// Update replaces the supplier's attributes
func (s *Supplier) Update(details SupplierDetails) error {
	details = details.normalized()
	if err := details.validate(); err != nil {
		return err
	}

	s.apply(details)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

func (s *Supplier) apply(d SupplierDetails) {
	s.Name = d.Name
	s.Email = d.Email
	s.Phone = d.Phone
	s.LogoRef = d.LogoRef
	s.Website = d.Website
}

func (d SupplierDetails) normalized() SupplierDetails {
	return SupplierDetails{
		Name:    strings.TrimSpace(d.Name),
		Email:   strings.ToLower(strings.TrimSpace(d.Email)),
		Phone:   strings.TrimSpace(d.Phone),
		LogoRef: strings.TrimSpace(d.LogoRef),
		Website: strings.TrimSpace(d.Website),
	}
}

func (d SupplierDetails) validate() error {
	if d.Name == "" {
		return shared.NewInvalidInputError("supplier name cannot be empty")
	}
	if utf8.RuneCountInString(d.Name) > 100 {
		return shared.NewInvalidInputError("supplier name cannot exceed 100 characters")
	}
	if err := validateEmail(d.Email); err != nil {
		return err
	}
	if d.Phone == "" {
		return shared.NewInvalidInputError("phone cannot be empty")
	}
	if utf8.RuneCountInString(d.Phone) > 20 {
		return shared.NewInvalidInputError("phone cannot exceed 20 characters")
	}
	if d.Website != "" {
		u, err := url.Parse(d.Website)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return shared.NewInvalidInputError("website must be an http or https URL")
		}
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return shared.NewInvalidInputError("email cannot be empty")
	}
	if len(email) > 254 {
		return shared.NewInvalidInputError("email cannot exceed 254 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewInvalidInputError("invalid email format")
	}
	return nil
}
