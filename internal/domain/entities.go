package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EntityType identifies one of the four searchable collections.
type EntityType string

const (
	TypeTreatment EntityType = "treatment"
	TypeProduct   EntityType = "product"
	TypeDoctor    EntityType = "doctor"
	TypeClinic    EntityType = "clinic"
)

// Types lists all entity types in a fixed order.
func Types() []EntityType {
	return []EntityType{TypeTreatment, TypeProduct, TypeDoctor, TypeClinic}
}

// ParseEntityType parses a type name as it appears in URLs and CLI args.
// Accepts both singular and plural forms.
func ParseEntityType(s string) (EntityType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "treatment", "treatments":
		return TypeTreatment, nil
	case "product", "products":
		return TypeProduct, nil
	case "doctor", "doctors":
		return TypeDoctor, nil
	case "clinic", "clinics":
		return TypeClinic, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidEntityType, s)
}

// MatchThreshold returns the minimum hybrid score an entity of this type
// must reach to appear in suggestions. The cutoffs are empirically tuned
// per collection and are not interchangeable.
func (t EntityType) MatchThreshold() float64 {
	switch t {
	case TypeTreatment:
		return 0.35
	case TypeProduct:
		return 0.40
	case TypeDoctor:
		return 0.45
	case TypeClinic:
		return 0.42
	}
	return 1.0
}

// Entity is one searchable row. Implementations synthesize their own
// embedding text; the same synthesis rule must be used every time the
// entity is embedded so stored vectors stay comparable.
type Entity interface {
	EntityID() string
	Type() EntityType

	// EmbeddingText builds the natural-language description sent to the
	// embedding model. An empty result means the entity cannot be
	// embedded and must be skipped.
	EmbeddingText() string

	// SearchText is the lowercase concatenation of the descriptive
	// fields, used for the keyword boost.
	SearchText() string

	Vector() []float32
	SetVector(v []float32)
}

// Treatment is a cosmetic or medical procedure offered on the platform.
type Treatment struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Concern     string    `json:"concern,omitempty"`
	Benefits    string    `json:"benefits,omitempty"`
	Description string    `json:"description,omitempty"`
	Devices     []string  `json:"devices,omitempty"`
	Embedding   []float32 `json:"-"`
}

func (t *Treatment) EntityID() string      { return t.ID }
func (t *Treatment) Type() EntityType      { return TypeTreatment }
func (t *Treatment) Vector() []float32     { return t.Embedding }
func (t *Treatment) SetVector(v []float32) { t.Embedding = v }

func (t *Treatment) EmbeddingText() string {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return ""
	}
	concern := strings.TrimSpace(t.Concern)
	if concern == "" {
		concern = "various skin concerns"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s is a treatment designed to address %s.", name, concern)
	if s := strings.TrimSpace(t.Benefits); s != "" {
		fmt.Fprintf(&b, " Its key benefits include %s.", s)
	}
	if s := strings.TrimSpace(t.Description); s != "" {
		fmt.Fprintf(&b, " %s", s)
	}
	if devices := joinNonEmpty(t.Devices); devices != "" {
		fmt.Fprintf(&b, " It commonly uses devices like %s.", devices)
	}
	return b.String()
}

func (t *Treatment) SearchText() string {
	return lowerJoin(t.Name, t.Benefits, t.Description, t.Concern, strings.Join(t.Devices, " "))
}

// Product is a retail product sold by clinics.
type Product struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	ShortDescription string    `json:"short_description,omitempty"`
	Treatments       []string  `json:"treatments,omitempty"`
	Embedding        []float32 `json:"-"`
}

func (p *Product) EntityID() string      { return p.ID }
func (p *Product) Type() EntityType      { return TypeProduct }
func (p *Product) Vector() []float32     { return p.Embedding }
func (p *Product) SetVector(v []float32) { p.Embedding = v }

func (p *Product) EmbeddingText() string {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(name)
	if s := strings.TrimSpace(p.ShortDescription); s != "" {
		fmt.Fprintf(&b, ". %s", s)
	}
	if treatments := joinNonEmpty(p.Treatments); treatments != "" {
		fmt.Fprintf(&b, ". Used alongside treatments such as %s", treatments)
	}
	b.WriteString(".")
	return b.String()
}

func (p *Product) SearchText() string {
	return lowerJoin(p.Name, p.ShortDescription, strings.Join(p.Treatments, " "))
}

// Doctor is a practitioner, either clinic-employed or solo.
type Doctor struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Education  string    `json:"education,omitempty"`
	Treatments []string  `json:"treatments,omitempty"`
	Concerns   []string  `json:"concerns,omitempty"`
	SkinTypes  []string  `json:"skin_types,omitempty"`
	Embedding  []float32 `json:"-"`
}

func (d *Doctor) EntityID() string      { return d.ID }
func (d *Doctor) Type() EntityType      { return TypeDoctor }
func (d *Doctor) Vector() []float32     { return d.Embedding }
func (d *Doctor) SetVector(v []float32) { d.Embedding = v }

func (d *Doctor) EmbeddingText() string {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return ""
	}
	frags := []string{fmt.Sprintf("%s is a doctor", name)}
	if s := strings.TrimSpace(d.Education); s != "" {
		frags = append(frags, fmt.Sprintf("Educated at %s", s))
	}
	if treatments := joinNonEmpty(d.Treatments); treatments != "" {
		frags = append(frags, fmt.Sprintf("Offers treatments such as %s", treatments))
	}
	if concerns := joinNonEmpty(d.Concerns); concerns != "" {
		frags = append(frags, fmt.Sprintf("Specializes in concerns such as %s", concerns))
	}
	if skinTypes := joinNonEmpty(d.SkinTypes); skinTypes != "" {
		frags = append(frags, fmt.Sprintf("Experienced with %s", skinTypes))
	}
	return strings.Join(frags, ". ") + "."
}

func (d *Doctor) SearchText() string {
	return lowerJoin(d.Name, d.Education,
		strings.Join(d.Treatments, " "),
		strings.Join(d.Concerns, " "),
		strings.Join(d.SkinTypes, " "))
}

// Clinic is a registered clinic on the marketplace.
type Clinic struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Embedding []float32 `json:"-"`
}

func (c *Clinic) EntityID() string      { return c.ID }
func (c *Clinic) Type() EntityType      { return TypeClinic }
func (c *Clinic) Vector() []float32     { return c.Embedding }
func (c *Clinic) SetVector(v []float32) { c.Embedding = v }

func (c *Clinic) EmbeddingText() string {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return ""
	}
	if addr := strings.TrimSpace(c.Address); addr != "" {
		return fmt.Sprintf("%s is a clinic located at %s.", name, addr)
	}
	return fmt.Sprintf("%s is a clinic.", name)
}

func (c *Clinic) SearchText() string {
	return lowerJoin(c.Name, c.Address)
}

// NewEntity returns a zero entity of the given type, for decoding.
func NewEntity(t EntityType) (Entity, error) {
	switch t {
	case TypeTreatment:
		return &Treatment{}, nil
	case TypeProduct:
		return &Product{}, nil
	case TypeDoctor:
		return &Doctor{}, nil
	case TypeClinic:
		return &Clinic{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidEntityType, t)
}

// Suggestion pairs an entity with its hybrid relevance score. It is
// constructed per query and never persisted.
type Suggestion struct {
	Entity Entity
	Score  float64
}

// MarshalJSON flattens the entity fields and the score into a single
// object. The entity's vector field is excluded from marshaling, so the
// raw vector can never leak into a response.
func (s Suggestion) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(s.Entity)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	fields["score"] = s.Score
	return json.Marshal(fields)
}

func joinNonEmpty(items []string) string {
	kept := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, ", ")
}

func lowerJoin(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, s := range parts {
		if s = strings.TrimSpace(s); s != "" {
			kept = append(kept, s)
		}
	}
	return strings.ToLower(strings.Join(kept, " "))
}
