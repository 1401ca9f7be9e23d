package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog is the editorial configuration file: extra feed sources and
// the profiles that map editors onto WordPress authors.
type Catalog struct {
	Sources  []FeedSource `yaml:"sources"`
	Profiles []Profile    `yaml:"profiles"`
}

// LoadCatalog reads the catalog from a YAML file. Sources without a
// valid group land in the custom column, sources without key or URL
// are rejected.
func LoadCatalog(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	var catalog Catalog
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err = dec.Decode(&catalog); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}

	for i, src := range catalog.Sources {
		if src.Key == "" || src.URL == "" {
			return Catalog{}, fmt.Errorf("source %d: key and url are required", i)
		}
		if !src.Group.Valid() {
			catalog.Sources[i].Group = GroupCustom
		}
	}
	for i, p := range catalog.Profiles {
		if p.ID == "" {
			return Catalog{}, fmt.Errorf("profile %d: id is required", i)
		}
		if p.Role == "" {
			catalog.Profiles[i].Role = RoleEditor
		}
	}

	return catalog, nil
}
