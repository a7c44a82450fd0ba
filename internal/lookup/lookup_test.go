package lookup

import (
	"os"
	"path/filepath"
	"testing"
)

func writeLookupFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lookups.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const validLookups = `
branch_managers:
  Kochi MG Road:
    rbm: Rajesh Pillai
    bdm: Deepa Thomas
branch_district:
  Kochi MG Road: Ernakulam
district_state:
  Ernakulam: Kerala
district_coords:
  Ernakulam: {lat: 9.9312, lng: 76.2673}
`

func TestLoad(t *testing.T) {
	tables, err := Load(writeLookupFile(t, validLookups))
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}

	m, ok := tables.ManagersFor("Kochi MG Road")
	if !ok || m.RBM != "Rajesh Pillai" || m.BDM != "Deepa Thomas" {
		t.Errorf("ManagersFor = %+v, ok=%v", m, ok)
	}

	if d, ok := tables.DistrictFor("Kochi MG Road"); !ok || d != "Ernakulam" {
		t.Errorf("DistrictFor = %q, ok=%v", d, ok)
	}
	if s, ok := tables.StateFor("Ernakulam"); !ok || s != "Kerala" {
		t.Errorf("StateFor = %q, ok=%v", s, ok)
	}
	if c, ok := tables.CoordFor("Ernakulam"); !ok || c.Lat != 9.9312 {
		t.Errorf("CoordFor = %+v, ok=%v", c, ok)
	}

	if _, ok := tables.ManagersFor("Unknown"); ok {
		t.Error("unknown branch should not resolve")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	if _, err := Load(writeLookupFile(t, "branch_managers: [not a map")); err == nil {
		t.Error("malformed yaml should fail")
	}
}

func TestLoad_EmptyTables(t *testing.T) {
	if _, err := Load(writeLookupFile(t, "branch_managers: {}\n")); err == nil {
		t.Error("empty tables should fail validation")
	}
}

func TestLoad_CoordWithoutState(t *testing.T) {
	content := `
branch_managers:
  A: {rbm: R, bdm: B}
branch_district:
  A: Somewhere
district_coords:
  Somewhere: {lat: 1, lng: 2}
`
	if _, err := Load(writeLookupFile(t, content)); err == nil {
		t.Error("a district with coordinates but no state mapping should fail validation")
	}
}
