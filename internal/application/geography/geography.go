// Package geography serves the static country/city reference table used by
// clients to populate location inputs.
package geography

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed geography.yaml
var rawTable []byte

type Country struct {
	Code   string   `yaml:"code" json:"code"`
	Name   string   `yaml:"name" json:"name"`
	Cities []string `yaml:"cities" json:"cities"`
}

type Table struct {
	countries []Country
	byCode    map[string]int
}

// Load parses a YAML table. Codes are upper-cased and must be unique.
func Load(data []byte) (*Table, error) {
	var doc struct {
		Countries []Country `yaml:"countries"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("geography: %w", err)
	}
	t := &Table{byCode: make(map[string]int, len(doc.Countries))}
	for _, c := range doc.Countries {
		c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
		if c.Code == "" {
			return nil, fmt.Errorf("geography: country %q has no code", c.Name)
		}
		if _, dup := t.byCode[c.Code]; dup {
			return nil, fmt.Errorf("geography: duplicate code %s", c.Code)
		}
		if c.Cities == nil {
			c.Cities = []string{}
		}
		t.byCode[c.Code] = len(t.countries)
		t.countries = append(t.countries, c)
	}
	sort.SliceStable(t.countries, func(i, j int) bool { return t.countries[i].Code < t.countries[j].Code })
	for i, c := range t.countries {
		t.byCode[c.Code] = i
	}
	return t, nil
}

// Default returns the embedded table.
func Default() (*Table, error) {
	return Load(rawTable)
}

// Countries returns every country ordered by code.
func (t *Table) Countries() []Country {
	out := make([]Country, len(t.countries))
	copy(out, t.countries)
	return out
}

// Country looks up a code case-insensitively.
func (t *Table) Country(code string) (Country, bool) {
	i, ok := t.byCode[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return Country{}, false
	}
	return t.countries[i], true
}
