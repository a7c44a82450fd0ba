// Package lookup holds the static organizational and geographic
// mapping tables. They are loaded once from a YAML file at startup and
// injected read-only into the enrichment and aggregation layers.
package lookup

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Managers are the organizational roles assigned to a branch.
type Managers struct {
	RBM string `yaml:"rbm"`
	BDM string `yaml:"bdm"`
}

// Coord is a map coordinate for a district.
type Coord struct {
	Lat float64 `yaml:"lat"`
	Lng float64 `yaml:"lng"`
}

// Tables bundles every static mapping the engine needs.
type Tables struct {
	BranchManagers map[string]Managers `yaml:"branch_managers"`
	BranchDistrict map[string]string   `yaml:"branch_district"`
	DistrictState  map[string]string   `yaml:"district_state"`
	DistrictCoords map[string]Coord    `yaml:"district_coords"`
}

// Load reads and validates the lookup file.
func Load(path string) (*Tables, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lookup file: %w", err)
	}

	var t Tables
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("parse lookup file %s: %w", path, err)
	}

	if err := t.validate(); err != nil {
		return nil, fmt.Errorf("invalid lookup file %s: %w", path, err)
	}
	return &t, nil
}

func (t *Tables) validate() error {
	if len(t.BranchManagers) == 0 {
		return fmt.Errorf("branch_managers is empty")
	}
	if len(t.BranchDistrict) == 0 {
		return fmt.Errorf("branch_district is empty")
	}
	for district := range t.DistrictCoords {
		if _, ok := t.DistrictState[district]; !ok {
			return fmt.Errorf("district %q has coordinates but no state mapping", district)
		}
	}
	return nil
}

// ManagersFor returns the RBM/BDM pair assigned to a branch.
func (t *Tables) ManagersFor(branch string) (Managers, bool) {
	m, ok := t.BranchManagers[branch]
	return m, ok
}

// DistrictFor returns the district a branch belongs to.
func (t *Tables) DistrictFor(branch string) (string, bool) {
	d, ok := t.BranchDistrict[branch]
	return d, ok
}

// StateFor returns the state a district belongs to.
func (t *Tables) StateFor(district string) (string, bool) {
	s, ok := t.DistrictState[district]
	return s, ok
}

// CoordFor returns the map coordinates of a district.
func (t *Tables) CoordFor(district string) (Coord, bool) {
	c, ok := t.DistrictCoords[district]
	return c, ok
}
