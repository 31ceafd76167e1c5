package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/go-chi/chi/v5"
	"github.com/goliatone/go-storefront/model"
	"github.com/goliatone/go-storefront/service"
	"github.com/google/uuid"
)

// presence is Required for full writes and NilOrNotEmpty for PATCH, where an
// absent field keeps its stored value.
func presence(partial bool) validation.RequiredRule {
	if partial {
		return validation.NilOrNotEmpty
	}
	return validation.Required
}

type productRequest struct {
	Code  *string `json:"code"`
	Title *string `json:"title"`
	Price *int64  `json:"price"`
}

func (req productRequest) validate(partial bool) error {
	priceRules := []validation.Rule{validation.Min(int64(0))}
	if !partial {
		priceRules = append([]validation.Rule{validation.NotNil}, priceRules...)
	}
	return validation.ValidateStruct(&req,
		validation.Field(&req.Code, presence(partial), validation.Length(1, 64)),
		validation.Field(&req.Title, presence(partial), validation.Length(1, 255)),
		validation.Field(&req.Price, priceRules...),
	)
}

func (req productRequest) applyTo(p *model.Product) {
	if req.Code != nil {
		p.Code = *req.Code
	}
	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
}

type customerRequest struct {
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phoneNumber"`
}

func (req customerRequest) validate(partial bool) error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Email, presence(partial), is.Email),
		validation.Field(&req.PhoneNumber, presence(partial), validation.Length(1, 32)),
	)
}

func (req customerRequest) applyTo(c *model.Customer) {
	if req.Email != nil {
		c.Email = *req.Email
	}
	if req.PhoneNumber != nil {
		c.PhoneNumber = *req.PhoneNumber
	}
}

type cartRequest struct {
	Products []string `json:"products"`
}

func (req cartRequest) validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Products, validation.NotNil, validation.Each(is.UUID)),
	)
}

func (req cartRequest) productIDs() ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(req.Products))
	for _, raw := range req.Products {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: product id %q", service.ErrValidation, raw)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid json body", service.ErrValidation)
	}
	return nil
}

// pathID parses a uuid path parameter. A malformed id cannot name a stored
// entity, so it is reported as not found.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s %q: %w", name, chi.URLParam(r, name), service.ErrNotFound)
	}
	return id, nil
}
