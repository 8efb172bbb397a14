// Package refdata loads the reference vocabularies the generators sample
// from. Every loader degrades to a built-in default list instead of failing:
// a missing file, an unreadable file, or a file whose rows are all malformed
// yields the defaults.
package refdata

import (
	"encoding/csv"
	"errors"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gyeh/zedigen/internal/normalize"
)

// DataDirEnv overrides the default data directory.
const DataDirEnv = "ZEDI_GEN_DATA_DIR"

// DefaultDataDir is used when neither a flag nor DataDirEnv names a directory.
const DefaultDataDir = "data"

// Vocabulary file names inside the data directory.
const (
	FirstNamesFile     = "first_names.csv"
	LastNamesFile      = "last_names.csv"
	CitiesFile         = "cities.csv"
	ProviderTypesFile  = "provider_types.csv"
	TaxonomyCodesFile  = "taxonomy_codes.csv"
	ProcedureCodesFile = "procedure_codes.csv"
	ModifiersFile      = "modifiers.csv"
	PlaceOfServiceFile = "pos_codes.csv"
)

// City is a city/state/zip triple.
type City struct {
	City  string
	State string
	Zip   string
}

// ProcedureCode is a billable procedure with its typical charge in cents.
type ProcedureCode struct {
	Code          string
	Description   string
	TypicalCharge int64
	TypicalUnits  float64
}

// PlaceOfService is a CMS place-of-service code.
type PlaceOfService struct {
	Code        string
	Description string
}

// Origin records where a vocabulary came from.
type Origin string

const (
	OriginFile    Origin = "file"
	OriginDefault Origin = "default"
)

// Set holds every vocabulary. Slices are never empty.
type Set struct {
	FirstNames      map[string][]string // keyed by gender code
	LastNames       []string
	Cities          []City
	ProviderTypes   []string
	TaxonomyCodes   []string
	ProcedureCodes  []ProcedureCode
	Modifiers       []string
	PlacesOfService []PlaceOfService

	origins map[string]Origin
}

// Origins returns the source of each vocabulary keyed by file name.
func (s *Set) Origins() map[string]Origin {
	out := make(map[string]Origin, len(s.origins))
	for k, v := range s.origins {
		out[k] = v
	}
	return out
}

// PlaceOfServiceName returns the description of a place-of-service code.
func (s *Set) PlaceOfServiceName(code string) (string, bool) {
	for _, p := range s.PlacesOfService {
		if p.Code == code {
			return p.Description, true
		}
	}
	return "", false
}

// DataDir resolves the data directory: the explicit value if set, then
// DataDirEnv, then DefaultDataDir.
func DataDir(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(DataDirEnv); env != "" {
		return env
	}
	return DefaultDataDir
}

// Load reads all vocabularies from fsys. A nil fsys yields the defaults.
func Load(fsys fs.FS, log zerolog.Logger) *Set {
	s := &Set{origins: make(map[string]Origin)}
	var o Origin

	s.FirstNames, o = LoadFirstNames(fsys, log)
	s.origins[FirstNamesFile] = o
	s.LastNames, o = LoadLastNames(fsys, log)
	s.origins[LastNamesFile] = o
	s.Cities, o = LoadCities(fsys, log)
	s.origins[CitiesFile] = o
	s.ProviderTypes, o = LoadProviderTypes(fsys, log)
	s.origins[ProviderTypesFile] = o
	s.TaxonomyCodes, o = LoadTaxonomyCodes(fsys, log)
	s.origins[TaxonomyCodesFile] = o
	s.ProcedureCodes, o = LoadProcedureCodes(fsys, log)
	s.origins[ProcedureCodesFile] = o
	s.Modifiers, o = LoadModifiers(fsys, log)
	s.origins[ModifiersFile] = o
	s.PlacesOfService, o = LoadPlacesOfService(fsys, log)
	s.origins[PlaceOfServiceFile] = o

	return s
}

// Defaults returns a Set built only from the built-in lists.
func Defaults() *Set {
	return Load(nil, zerolog.Nop())
}

// LoadFirstNames reads gender,name rows.
func LoadFirstNames(fsys fs.FS, log zerolog.Logger) (map[string][]string, Origin) {
	names := make(map[string][]string)
	eachRow(fsys, FirstNamesFile, true, log, func(rec []string) bool {
		if len(rec) < 2 {
			return false
		}
		gender := normalize.Gender(rec[0])
		name := normalize.Name(rec[1])
		if gender == "" || name == "" {
			return false
		}
		names[gender] = append(names[gender], name)
		return true
	})
	if len(names) == 0 {
		return map[string][]string{
			"M": {"John", "Robert"},
			"F": {"Jane", "Mary"},
		}, fallback(log, FirstNamesFile)
	}
	return names, OriginFile
}

// LoadLastNames reads the first column of a headerless file.
func LoadLastNames(fsys fs.FS, log zerolog.Logger) ([]string, Origin) {
	return loadColumn(fsys, LastNamesFile, normalize.Name, []string{"Doe", "Smith", "Johnson"}, log)
}

// LoadCities reads city,state,zip rows.
func LoadCities(fsys fs.FS, log zerolog.Logger) ([]City, Origin) {
	var cities []City
	eachRow(fsys, CitiesFile, true, log, func(rec []string) bool {
		if len(rec) < 3 {
			return false
		}
		c := City{
			City:  normalize.Name(rec[0]),
			State: strings.ToUpper(strings.TrimSpace(rec[1])),
			Zip:   strings.TrimSpace(rec[2]),
		}
		if c.City == "" || len(c.State) != 2 || c.Zip == "" {
			return false
		}
		cities = append(cities, c)
		return true
	})
	if len(cities) == 0 {
		return []City{{City: "Anytown", State: "CA", Zip: "12345"}}, fallback(log, CitiesFile)
	}
	return cities, OriginFile
}

// LoadProviderTypes reads the first column of a headerless file.
func LoadProviderTypes(fsys fs.FS, log zerolog.Logger) ([]string, Origin) {
	return loadColumn(fsys, ProviderTypesFile, normalize.Name, []string{"General Practice"}, log)
}

// LoadTaxonomyCodes reads the first column of a headerless file.
func LoadTaxonomyCodes(fsys fs.FS, log zerolog.Logger) ([]string, Origin) {
	return loadColumn(fsys, TaxonomyCodesFile, normalize.Code, []string{"207Q00000X"}, log)
}

// LoadProcedureCodes reads code,description,typical_charge,typical_units rows.
// typical_charge is integer cents, or dollars when written with a decimal
// point ("150.00").
func LoadProcedureCodes(fsys fs.FS, log zerolog.Logger) ([]ProcedureCode, Origin) {
	var codes []ProcedureCode
	eachRow(fsys, ProcedureCodesFile, true, log, func(rec []string) bool {
		if len(rec) < 4 {
			return false
		}
		charge, ok := parseCharge(rec[2])
		if !ok {
			return false
		}
		units, err := strconv.ParseFloat(strings.TrimSpace(rec[3]), 64)
		if err != nil || units < 0 {
			return false
		}
		code := normalize.Code(rec[0])
		if code == "" {
			return false
		}
		codes = append(codes, ProcedureCode{
			Code:          code,
			Description:   normalize.Name(rec[1]),
			TypicalCharge: charge,
			TypicalUnits:  units,
		})
		return true
	})
	if len(codes) == 0 {
		return []ProcedureCode{FallbackProcedure}, fallback(log, ProcedureCodesFile)
	}
	return codes, OriginFile
}

func parseCharge(field string) (int64, bool) {
	field = strings.TrimSpace(field)
	if strings.Contains(field, ".") {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil || v < 0 {
			return 0, false
		}
		return normalize.DollarsToCents(v), true
	}
	v, err := strconv.ParseInt(field, 10, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// FallbackProcedure guarantees the procedure table is never empty.
var FallbackProcedure = ProcedureCode{
	Code:          "99213",
	Description:   "Office or other outpatient visit for the evaluation and management of an established patient",
	TypicalCharge: 15000,
	TypicalUnits:  1,
}

// LoadModifiers reads the first column of a headerless file.
func LoadModifiers(fsys fs.FS, log zerolog.Logger) ([]string, Origin) {
	return loadColumn(fsys, ModifiersFile, normalize.Code, []string{"25", "59", "LT", "RT"}, log)
}

// LoadPlacesOfService reads pos,description rows.
func LoadPlacesOfService(fsys fs.FS, log zerolog.Logger) ([]PlaceOfService, Origin) {
	var places []PlaceOfService
	eachRow(fsys, PlaceOfServiceFile, true, log, func(rec []string) bool {
		if len(rec) < 2 {
			return false
		}
		code := strings.TrimSpace(rec[0])
		if code == "" {
			return false
		}
		places = append(places, PlaceOfService{Code: code, Description: normalize.Name(rec[1])})
		return true
	})
	if len(places) == 0 {
		return []PlaceOfService{
			{Code: "11", Description: "Office"},
			{Code: "21", Description: "Inpatient Hospital"},
			{Code: "22", Description: "Outpatient Hospital"},
			{Code: "23", Description: "Emergency Room"},
		}, fallback(log, PlaceOfServiceFile)
	}
	return places, OriginFile
}

func loadColumn(fsys fs.FS, name string, clean func(string) string, defaults []string, log zerolog.Logger) ([]string, Origin) {
	var out []string
	eachRow(fsys, name, false, log, func(rec []string) bool {
		if len(rec) == 0 {
			return false
		}
		v := clean(rec[0])
		if v == "" {
			return false
		}
		out = append(out, v)
		return true
	})
	if len(out) == 0 {
		return append([]string(nil), defaults...), fallback(log, name)
	}
	return out, OriginFile
}

// eachRow streams CSV records of name to fn. fn reports whether it accepted
// the row; rejected rows are counted and logged. Errors never escape.
func eachRow(fsys fs.FS, name string, header bool, log zerolog.Logger, fn func([]string) bool) {
	if fsys == nil {
		return
	}
	f, err := fsys.Open(name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Debug().Err(err).Str("file", name).Msg("reference file unreadable")
		}
		return
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var rowNum, rejected int
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			rejected++
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue
			}
			log.Debug().Err(err).Str("file", name).Msg("reference file read aborted")
			break
		}
		if header && rowNum == 1 {
			continue
		}
		if !fn(rec) {
			rejected++
		}
	}
	if rejected > 0 {
		log.Debug().Str("file", name).Int("rejected", rejected).Msg("skipped malformed reference rows")
	}
}

func fallback(log zerolog.Logger, name string) Origin {
	log.Debug().Str("file", name).Msg("using built-in reference defaults")
	return OriginDefault
}
