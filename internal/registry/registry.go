// Package registry owns product records: validation, identity derivation,
// and lookup. Products are immutable once registered.
package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"reflect"
	"regexp"
	"sync"
	"time"

	"github.com/chainaware/trace-engine/internal/errs"
	"github.com/chainaware/trace-engine/internal/model"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9-]+$`)

// Date layouts accepted for production_date, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Input is a registration request. ProductionDate is kept as given: the
// product id is derived from the raw string, so two spellings of the same
// instant are distinct registrations.
type Input struct {
	Name            string         `json:"name"`
	Category        string         `json:"category"`
	Origin          string         `json:"origin"`
	Manufacturer    string         `json:"manufacturer"`
	ProductionDate  string         `json:"production_date"`
	BatchNumber     string         `json:"batch_number"`
	Specifications  map[string]any `json:"specifications,omitempty"`
	RegulatoryCodes []string       `json:"regulatory_codes,omitempty"`
	SensorsConfig   map[string]any `json:"sensors_config,omitempty"`
}

// Registry stores products keyed by derived id.
// Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	products map[string]model.Product
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{products: make(map[string]model.Product)}
}

// Register validates the input and stores the product. The id is derived
// from (name, batch_number, production_date), so registering the identical
// triple with identical remaining fields is an idempotent no-op; the same
// triple with differing fields fails with ErrConflict.
func (r *Registry) Register(in Input) (string, error) {
	violations := validate(in)
	if err := errs.Validation(violations); err != nil {
		return "", err
	}

	produced, _ := parseDate(in.ProductionDate) // validated above

	id := DeriveID(in.Name, in.BatchNumber, in.ProductionDate)
	product := model.Product{
		ID:              id,
		Name:            in.Name,
		Category:        in.Category,
		Origin:          in.Origin,
		Manufacturer:    in.Manufacturer,
		ProductionDate:  produced,
		BatchNumber:     in.BatchNumber,
		Specifications:  in.Specifications,
		RegulatoryCodes: in.RegulatoryCodes,
		SensorsConfig:   in.SensorsConfig,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.products[id]; ok {
		if reflect.DeepEqual(existing, product) {
			return id, nil
		}
		return "", fmt.Errorf("product %s already registered with different fields: %w", id, errs.ErrConflict)
	}
	r.products[id] = product
	return id, nil
}

// Get returns the product for id.
func (r *Registry) Get(id string) (model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return model.Product{}, fmt.Errorf("product %s: %w", id, errs.ErrNotFound)
	}
	return p, nil
}

// Has reports whether a product with id exists.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.products[id]
	return ok
}

// List returns all registered products in unspecified order.
func (r *Registry) List() []model.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	return out
}

// DeriveID computes the stable product id:
// hex(sha256(name ∥ batchNumber ∥ productionDate))[:16].
func DeriveID(name, batchNumber, productionDate string) string {
	sum := sha256.Sum256([]byte(name + batchNumber + productionDate))
	return hex.EncodeToString(sum[:])[:16]
}

// validate collects every violation rather than stopping at the first.
func validate(in Input) []string {
	var violations []string

	required := []struct {
		field, value string
	}{
		{"name", in.Name},
		{"category", in.Category},
		{"origin", in.Origin},
		{"manufacturer", in.Manufacturer},
		{"production_date", in.ProductionDate},
	}
	for _, f := range required {
		if f.value == "" {
			violations = append(violations, fmt.Sprintf("missing required field: %s", f.field))
		}
	}

	if in.ProductionDate != "" {
		if _, err := parseDate(in.ProductionDate); err != nil {
			violations = append(violations, fmt.Sprintf("invalid production_date format: %q", in.ProductionDate))
		}
	}

	for _, code := range in.RegulatoryCodes {
		if !codePattern.MatchString(code) {
			violations = append(violations, fmt.Sprintf("invalid regulatory code: %s", code))
		}
	}

	return violations
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
