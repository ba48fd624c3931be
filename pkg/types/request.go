package domain

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidRequest is returned when a request fails validation.
var ErrInvalidRequest = errors.New("invalid request")

var validate = validator.New(validator.WithRequiredStructEnabled())

// SearchRequest is one customer search. It is treated as an immutable
// value: Normalize returns a new request rather than modifying the receiver.
type SearchRequest struct {
	Page      int      `json:"page"                validate:"gte=0"`
	Size      int      `json:"size"                validate:"gte=1"`
	Query     string   `json:"query"               validate:"max=256"`
	Category  string   `json:"category,omitempty"  validate:"max=128"`
	Brand     string   `json:"brand,omitempty"     validate:"max=128"`
	Providers []string `json:"providers,omitempty" validate:"dive,required"`
	Country   string   `json:"country"             validate:"required,len=2,alpha"`
	Currency  string   `json:"currency"            validate:"required,len=3,alpha"`
}

// RequestDefaults fills the blanks of an incoming request.
type RequestDefaults struct {
	Size     int
	MaxSize  int
	Country  string
	Currency string
}

// Normalize returns a copy of r with defaults applied, the size capped,
// the query lower-cased with collapsed whitespace, country and currency
// upper-cased, and the provider filter sorted and de-duplicated.
func (r SearchRequest) Normalize(d RequestDefaults) SearchRequest {
	out := r
	if out.Size <= 0 {
		out.Size = d.Size
	}
	if d.MaxSize > 0 && out.Size > d.MaxSize {
		out.Size = d.MaxSize
	}
	out.Query = normalizeText(out.Query)
	out.Category = normalizeText(out.Category)
	out.Brand = normalizeText(out.Brand)

	out.Country = strings.ToUpper(strings.TrimSpace(out.Country))
	if out.Country == "" {
		out.Country = strings.ToUpper(d.Country)
	}
	out.Currency = strings.ToUpper(strings.TrimSpace(out.Currency))
	if out.Currency == "" {
		out.Currency = strings.ToUpper(d.Currency)
	}

	if len(r.Providers) > 0 {
		providers := make([]string, 0, len(r.Providers))
		for _, p := range r.Providers {
			if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
				providers = append(providers, p)
			}
		}
		slices.Sort(providers)
		out.Providers = slices.Compact(providers)
	}
	return out
}

// Key returns the stable coalescing key for the request. Two requests that
// normalize to the same values produce the same key.
func (r SearchRequest) Key() string {
	var b strings.Builder
	b.WriteString("search")
	fmt.Fprintf(&b, "|page=%d|size=%d", r.Page, r.Size)
	b.WriteString("|q=" + strconv.Quote(r.Query))
	b.WriteString("|cat=" + strconv.Quote(r.Category))
	b.WriteString("|brand=" + strconv.Quote(r.Brand))
	b.WriteString("|providers=" + strings.Join(r.Providers, ","))
	b.WriteString("|country=" + r.Country)
	b.WriteString("|currency=" + r.Currency)
	return b.String()
}

// Validate checks the request against its field constraints.
func (r SearchRequest) Validate() error {
	return validateStruct(r)
}

// DetailRequest looks up a single item from one provider.
type DetailRequest struct {
	Provider string `json:"provider" validate:"required"`
	ItemID   string `json:"item_id"  validate:"required,max=256"`
	Country  string `json:"country"  validate:"required,len=2,alpha"`
	Currency string `json:"currency" validate:"required,len=3,alpha"`
}

// Normalize returns a copy of r with defaults applied and codes upper-cased.
func (r DetailRequest) Normalize(d RequestDefaults) DetailRequest {
	out := r
	out.Provider = strings.ToLower(strings.TrimSpace(out.Provider))
	out.ItemID = strings.TrimSpace(out.ItemID)
	out.Country = strings.ToUpper(strings.TrimSpace(out.Country))
	if out.Country == "" {
		out.Country = strings.ToUpper(d.Country)
	}
	out.Currency = strings.ToUpper(strings.TrimSpace(out.Currency))
	if out.Currency == "" {
		out.Currency = strings.ToUpper(d.Currency)
	}
	return out
}

// Key returns the stable coalescing key for the detail lookup.
func (r DetailRequest) Key() string {
	return "detail|provider=" + r.Provider +
		"|id=" + strconv.Quote(r.ItemID) +
		"|country=" + r.Country +
		"|currency=" + r.Currency
}

// Validate checks the request against its field constraints.
func (r DetailRequest) Validate() error {
	return validateStruct(r)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := strings.ToLower(fe.Field()) + " failed " + fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		msgs = append(msgs, msg)
	}
	return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(msgs, "; "))
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
