package refdata

import (
	"os"
	"testing"
	"testing/fstest"

	"github.com/rs/zerolog"
)

func TestLoad_NilFSUsesDefaults(t *testing.T) {
	s := Load(nil, zerolog.Nop())

	if got := s.FirstNames["M"]; len(got) != 2 || got[0] != "John" {
		t.Errorf("male defaults = %v", got)
	}
	if got := s.FirstNames["F"]; len(got) != 2 || got[0] != "Jane" {
		t.Errorf("female defaults = %v", got)
	}
	if len(s.LastNames) != 3 {
		t.Errorf("last name defaults = %v", s.LastNames)
	}
	if len(s.Cities) != 1 || s.Cities[0].City != "Anytown" {
		t.Errorf("city defaults = %v", s.Cities)
	}
	if len(s.ProcedureCodes) != 1 || s.ProcedureCodes[0].Code != "99213" || s.ProcedureCodes[0].TypicalCharge != 15000 {
		t.Errorf("procedure defaults = %v", s.ProcedureCodes)
	}
	if len(s.Modifiers) != 4 {
		t.Errorf("modifier defaults = %v", s.Modifiers)
	}
	if len(s.PlacesOfService) != 4 {
		t.Errorf("pos defaults = %v", s.PlacesOfService)
	}
	for name, o := range s.Origins() {
		if o != OriginDefault {
			t.Errorf("%s origin = %s, want default", name, o)
		}
	}
}

func TestLoad_FromFiles(t *testing.T) {
	fsys := fstest.MapFS{
		FirstNamesFile:     {Data: []byte("gender,name\nM,Alan\nF,Grace\nF,Ada\n")},
		LastNamesFile:      {Data: []byte("Turing\nHopper\n")},
		CitiesFile:         {Data: []byte("city,state,zip\nSpringfield,il,62701\n")},
		ProcedureCodesFile: {Data: []byte("code,description,typical_charge,typical_units\n99214,Office visit,21000,1\n")},
		ModifiersFile:      {Data: []byte("tc\n26\n")},
	}
	s := Load(fsys, zerolog.Nop())

	if got := s.FirstNames["F"]; len(got) != 2 || got[1] != "Ada" {
		t.Errorf("female names = %v", got)
	}
	if len(s.LastNames) != 2 || s.LastNames[0] != "Turing" {
		t.Errorf("last names = %v", s.LastNames)
	}
	if s.Cities[0] != (City{City: "Springfield", State: "IL", Zip: "62701"}) {
		t.Errorf("city = %+v", s.Cities[0])
	}
	if s.ProcedureCodes[0].Code != "99214" || s.ProcedureCodes[0].TypicalCharge != 21000 {
		t.Errorf("procedure = %+v", s.ProcedureCodes[0])
	}
	if s.Modifiers[0] != "TC" {
		t.Errorf("modifiers = %v", s.Modifiers)
	}

	origins := s.Origins()
	if origins[ModifiersFile] != OriginFile {
		t.Errorf("modifiers origin = %s", origins[ModifiersFile])
	}
	if origins[TaxonomyCodesFile] != OriginDefault {
		t.Errorf("taxonomy origin = %s", origins[TaxonomyCodesFile])
	}
}

func TestLoadProcedureCodes_MalformedRowsSkipped(t *testing.T) {
	fsys := fstest.MapFS{
		ProcedureCodesFile: {Data: []byte("code,description,typical_charge,typical_units\n" +
			"99213,Visit,abc,1\n" +
			"99214,Visit,21000\n" +
			"99215,Visit,30000,1\n")},
	}
	codes, origin := LoadProcedureCodes(fsys, zerolog.Nop())
	if origin != OriginFile {
		t.Fatalf("origin = %s", origin)
	}
	if len(codes) != 1 || codes[0].Code != "99215" {
		t.Errorf("codes = %+v", codes)
	}
}

func TestLoadProcedureCodes_AllMalformedFallsBack(t *testing.T) {
	fsys := fstest.MapFS{
		ProcedureCodesFile: {Data: []byte("code,description,typical_charge,typical_units\nX,Y,Z,W\n")},
	}
	codes, origin := LoadProcedureCodes(fsys, zerolog.Nop())
	if origin != OriginDefault || len(codes) != 1 || codes[0] != FallbackProcedure {
		t.Errorf("got %v (%s), want fallback", codes, origin)
	}
}

func TestLoadFirstNames_HeaderOnly(t *testing.T) {
	fsys := fstest.MapFS{FirstNamesFile: {Data: []byte("gender,name\n")}}
	names, origin := LoadFirstNames(fsys, zerolog.Nop())
	if origin != OriginDefault || len(names["M"]) == 0 {
		t.Errorf("expected defaults, got %v (%s)", names, origin)
	}
}

func TestLoad_ShippedDataDir(t *testing.T) {
	dir := "../../data"
	if _, err := os.Stat(dir); err != nil {
		t.Skip("no data directory")
	}
	s := Load(os.DirFS(dir), zerolog.Nop())
	for name, o := range s.Origins() {
		if o != OriginFile {
			t.Errorf("%s fell back to defaults", name)
		}
	}
}

func TestDataDir(t *testing.T) {
	t.Setenv(DataDirEnv, "")
	if got := DataDir(""); got != DefaultDataDir {
		t.Errorf("DataDir() = %q", got)
	}
	t.Setenv(DataDirEnv, "/srv/ref")
	if got := DataDir(""); got != "/srv/ref" {
		t.Errorf("DataDir() with env = %q", got)
	}
	if got := DataDir("mine"); got != "mine" {
		t.Errorf("DataDir(mine) = %q", got)
	}
}

func TestLoadProcedureCodes_ChargeFormats(t *testing.T) {
	fsys := fstest.MapFS{
		ProcedureCodesFile: {Data: []byte("code,description,typical_charge,typical_units\n" +
			"99213,Visit,15000,1\n" +
			"99214,Visit,210.50,1\n" +
			"99215,Bad,-5,1\n" +
			"99216,Bad,ten,1\n")},
	}
	codes, origin := LoadProcedureCodes(fsys, zerolog.Nop())
	if origin != OriginFile {
		t.Fatalf("origin = %s", origin)
	}
	if len(codes) != 2 {
		t.Fatalf("codes = %+v, want 2 valid rows", codes)
	}
	if codes[0].TypicalCharge != 15000 || codes[1].TypicalCharge != 21050 {
		t.Errorf("charges = %d, %d", codes[0].TypicalCharge, codes[1].TypicalCharge)
	}
}

func TestPlaceOfServiceName(t *testing.T) {
	s := Defaults()
	if name, ok := s.PlaceOfServiceName("11"); !ok || name != "Office" {
		t.Errorf("PlaceOfServiceName(11) = %q, %v", name, ok)
	}
	if _, ok := s.PlaceOfServiceName("99"); ok {
		t.Error("PlaceOfServiceName(99) should be unknown")
	}
}
