package fixture

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Variant names a front-end; each has its own competition allow-list.
type Variant string

const (
	VariantTerminal Variant = "terminal"
	VariantWeb      Variant = "web"
	VariantWhatsApp Variant = "whatsapp"
)

type Competition struct {
	Code     string    `yaml:"code"`
	Name     string    `yaml:"name"`
	Emblem   string    `yaml:"emblem"`
	Variants []Variant `yaml:"variants"`
}

//go:embed competitions.yaml
var builtinCatalog []byte

// Catalog is the ordered set of competitions the free provider tier serves.
type Catalog struct {
	defaultEmblem string
	ordered       []Competition
	byCode        map[string]Competition
}

type catalogFile struct {
	DefaultEmblem string        `yaml:"default_emblem"`
	Competitions  []Competition `yaml:"competitions"`
}

// DefaultCatalog returns the embedded competition table.
func DefaultCatalog() *Catalog {
	catalog, err := ParseCatalog(builtinCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded competition catalog: %v", err))
	}
	return catalog
}

func ParseCatalog(raw []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode competition catalog: %w", err)
	}

	catalog := &Catalog{
		defaultEmblem: strings.TrimSpace(file.DefaultEmblem),
		ordered:       make([]Competition, 0, len(file.Competitions)),
		byCode:        make(map[string]Competition, len(file.Competitions)),
	}
	if catalog.defaultEmblem == "" {
		catalog.defaultEmblem = "🌍"
	}
	for i, item := range file.Competitions {
		item.Code = strings.ToUpper(strings.TrimSpace(item.Code))
		if item.Code == "" {
			return nil, fmt.Errorf("competition %d: code is required", i)
		}
		if _, dup := catalog.byCode[item.Code]; dup {
			return nil, fmt.Errorf("competition %s: duplicate code", item.Code)
		}
		if strings.TrimSpace(item.Name) == "" {
			item.Name = item.Code
		}
		if strings.TrimSpace(item.Emblem) == "" {
			item.Emblem = catalog.defaultEmblem
		}
		catalog.ordered = append(catalog.ordered, item)
		catalog.byCode[item.Code] = item
	}

	return catalog, nil
}

// Lookup never fails: unknown codes fall back to the code itself and the
// default emblem.
func (c *Catalog) Lookup(code string) Competition {
	code = strings.ToUpper(strings.TrimSpace(code))
	if item, ok := c.byCode[code]; ok {
		return item
	}
	return Competition{Code: code, Name: code, Emblem: c.defaultEmblem}
}

func (c *Catalog) Known(code string) bool {
	_, ok := c.byCode[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

func (c *Catalog) DefaultEmblem() string {
	return c.defaultEmblem
}

// Codes returns the allow-list for a front-end in declared order.
func (c *Catalog) Codes(variant Variant) []string {
	out := make([]string, 0, len(c.ordered))
	for _, item := range c.ordered {
		for _, v := range item.Variants {
			if v == variant {
				out = append(out, item.Code)
				break
			}
		}
	}
	return out
}

func (c *Catalog) All() []Competition {
	out := make([]Competition, len(c.ordered))
	copy(out, c.ordered)
	return out
}
