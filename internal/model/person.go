package model

// Address is a postal address. Line2 is nil when the address has no
// secondary line.
type Address struct {
	Line1   string  `json:"line1"`
	Line2   *string `json:"line2"`
	City    string  `json:"city"`
	State   string  `json:"state"`
	ZipCode string  `json:"zip_code"`
}

// Person is a synthetic patient.
type Person struct {
	ID          string  `json:"id"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	DateOfBirth string  `json:"date_of_birth"` // YYYY-MM-DD
	Gender      string  `json:"gender"`        // "M" or "F"
	Address     Address `json:"address"`
}

// Provider is a synthetic billing or rendering provider.
type Provider struct {
	NPI           string   `json:"npi"` // 10 digits, zero-padded
	ProviderType  string   `json:"provider_type"`
	Name          string   `json:"name"`
	Address       Address  `json:"address"`
	TaxonomyCodes []string `json:"taxonomy_codes"`
}
