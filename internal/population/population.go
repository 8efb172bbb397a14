// Package population draws synthetic patients and providers.
//
// Draw order is fixed so a seeded Generator is reproducible:
//
//	GeneratePerson:   gender, first name, last name, age in days, city,
//	                  building number, street name, secondary coin
//	                  [, secondary text], person id (16 bytes)
//	GenerateProvider: NPI, provider type, organization name, city,
//	                  building number, street name, secondary coin
//	                  [, secondary text], taxonomy code
//
// Fake text (street names, company names, fallback first names) is drawn by
// gofakeit from the same stream, so the number of raw draws behind one
// logical decision may vary, but the sequence is stable for a fixed seed.
package population

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/gyeh/zedigen/internal/model"
	"github.com/gyeh/zedigen/internal/normalize"
	"github.com/gyeh/zedigen/internal/refdata"
	"github.com/gyeh/zedigen/internal/rng"
)

const (
	MinAgeDays = 18 * 365
	MaxAgeDays = 90 * 365

	minNPI = 1_000_000_000
	maxNPI = 9_999_999_999

	personSecondaryRate   = 0.2
	providerSecondaryRate = 0.3
)

var secondaryUnits = []string{"Apt.", "Suite"}

// Generator draws Persons and Providers. It is not safe for concurrent use.
type Generator struct {
	src   *rng.Source
	faker *gofakeit.Faker
	ref   *refdata.Set
	now   func() time.Time
}

// New returns a Generator over ref drawing from src. now supplies the
// reference date for ages; nil means time.Now.
func New(src *rng.Source, ref *refdata.Set, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{
		src:   src,
		faker: gofakeit.NewFaker(src, false),
		ref:   ref,
		now:   now,
	}
}

// GeneratePerson draws one patient.
func (g *Generator) GeneratePerson() model.Person {
	gender := "F"
	if g.src.Bool(0.5) {
		gender = "M"
	}

	var firstName string
	if names := g.ref.FirstNames[gender]; len(names) > 0 {
		firstName = names[g.src.IntN(len(names))]
	} else {
		firstName = g.faker.FirstName()
	}
	lastName := g.ref.LastNames[g.src.IntN(len(g.ref.LastNames))]

	ageDays := int(g.src.IntBetween(MinAgeDays, MaxAgeDays))
	dob := g.now().AddDate(0, 0, -ageDays).Format(normalize.ISODate)

	addr := g.address(personSecondaryRate)

	id, err := uuid.NewRandomFromReader(g.src)
	if err != nil {
		// rng.Source.Read never fails.
		panic(fmt.Sprintf("population: person id: %v", err))
	}

	return model.Person{
		ID:          id.String(),
		FirstName:   firstName,
		LastName:    lastName,
		DateOfBirth: dob,
		Gender:      gender,
		Address:     addr,
	}
}

// GenerateProvider draws one provider with exactly one taxonomy code.
func (g *Generator) GenerateProvider() model.Provider {
	npi := fmt.Sprintf("%010d", g.src.IntBetween(minNPI, maxNPI))
	providerType := g.ref.ProviderTypes[g.src.IntN(len(g.ref.ProviderTypes))]
	name := g.faker.Company()
	addr := g.address(providerSecondaryRate)
	taxonomy := g.ref.TaxonomyCodes[g.src.IntN(len(g.ref.TaxonomyCodes))]

	return model.Provider{
		NPI:           npi,
		ProviderType:  providerType,
		Name:          name,
		Address:       addr,
		TaxonomyCodes: []string{taxonomy},
	}
}

// Bool draws a coin with probability p from the population stream. The
// orchestrator uses it to decide whether a claim gets a rendering provider.
func (g *Generator) Bool(p float64) bool {
	return g.src.Bool(p)
}

func (g *Generator) address(secondaryRate float64) model.Address {
	city := g.ref.Cities[g.src.IntN(len(g.ref.Cities))]
	line1 := g.faker.StreetNumber() + " " + g.faker.StreetName()

	var line2 *string
	if g.src.Bool(secondaryRate) {
		unit := secondaryUnits[g.src.IntN(len(secondaryUnits))]
		s := fmt.Sprintf("%s %d", unit, g.src.IntBetween(1, 999))
		line2 = &s
	}

	return model.Address{
		Line1:   line1,
		Line2:   line2,
		City:    city.City,
		State:   city.State,
		ZipCode: city.Zip,
	}
}
