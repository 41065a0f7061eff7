// Package rolecatalog loads the console role definitions from YAML.
package rolecatalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ispoms/oms-console/internal/core/domain"
)

//go:embed roles.yaml
var defaultRoles []byte

type file struct {
	Roles []struct {
		Name        string   `yaml:"name"`
		Permissions []string `yaml:"permissions"`
	} `yaml:"roles"`
}

// Catalog is an immutable set of roles keyed by name.
type Catalog struct {
	order []string
	roles map[string]domain.Role
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultRoles)
}

// Load reads a catalog from path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read role catalog: %w", err)
	}
	return Parse(raw)
}

// Parse decodes and validates a YAML catalog. Role names must be unique and
// every grant must be well formed.
func Parse(raw []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse role catalog: %w", err)
	}
	if len(f.Roles) == 0 {
		return nil, fmt.Errorf("role catalog: no roles defined")
	}

	c := &Catalog{roles: make(map[string]domain.Role, len(f.Roles))}
	for _, r := range f.Roles {
		if r.Name == "" {
			return nil, fmt.Errorf("role catalog: role without name")
		}
		if _, dup := c.roles[r.Name]; dup {
			return nil, fmt.Errorf("role catalog: duplicate role %q", r.Name)
		}
		for _, p := range r.Permissions {
			if !domain.ValidatePermission(p) {
				return nil, fmt.Errorf("role catalog: role %q: malformed permission %q", r.Name, p)
			}
		}
		c.order = append(c.order, r.Name)
		c.roles[r.Name] = domain.Role{Name: r.Name, Permissions: append([]string(nil), r.Permissions...)}
	}
	return c, nil
}

// Role returns a copy of the named role.
func (c *Catalog) Role(name string) (domain.Role, bool) {
	r, ok := c.roles[name]
	if !ok {
		return domain.Role{}, false
	}
	r.Permissions = append([]string(nil), r.Permissions...)
	return r, true
}

// Roles lists roles in file order.
func (c *Catalog) Roles() []domain.Role {
	out := make([]domain.Role, 0, len(c.order))
	for _, name := range c.order {
		r, _ := c.Role(name)
		out = append(out, r)
	}
	return out
}
