package apptype

// Person is a single biography in the catalog.
// Died is nil while the person is still living.
type Person struct {
	ID      string   `json:"id" yaml:"id" validate:"required"`
	Name    string   `json:"name" yaml:"name" validate:"required"`
	Born    int      `json:"born" yaml:"born"`
	Died    *int     `json:"died,omitempty" yaml:"died,omitempty"`
	Fame    int      `json:"fame" yaml:"fame" validate:"gte=0"`
	Domains []string `json:"domains,omitempty" yaml:"domains,omitempty"`
	Region  string   `json:"region,omitempty" yaml:"region,omitempty"`
}

// Key returns the identity used for visited sets and deduplication.
func (p Person) Key() string {
	if p.ID != "" {
		return p.ID
	}
	return p.Name
}

// Living reports whether the person has no recorded death year.
func (p Person) Living() bool { return p.Died == nil }

// EffectiveDeath returns the death year, or referenceYear for the living.
func (p Person) EffectiveDeath(referenceYear int) int {
	if p.Died == nil {
		return referenceYear
	}
	return *p.Died
}

// Year is a small helper for building Died values inline.
func Year(y int) *int { return &y }

// Chain is an ordered, duplicate-free sequence of persons.
// An empty chain means no connection was found.
type Chain []Person

// Names returns the display names in chain order.
func (c Chain) Names() []string {
	out := make([]string, len(c))
	for i, p := range c {
		out[i] = p.Name
	}
	return out
}

// Relation is a known relation between two persons, keyed by external id.
// It is display enrichment only and never consulted when building chains.
type Relation struct {
	From         string `json:"from" yaml:"from"`
	To           string `json:"to" yaml:"to"`
	RelationType string `json:"relationType" yaml:"relationType"`
}
