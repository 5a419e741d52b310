package schema

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	graphkb "github.com/bcgsc/graphkb-core"
)

// Registry is the immutable, in-memory class catalogue built by Load. It
// answers every query the SQL-builder and record-operation layers need
// about the class graph: inheritance, property flattening, active-index
// membership, and route naming (spec §4.1).
type Registry struct {
	classes map[string]*Class
	// flattened caches each class's own-plus-inherited properties,
	// computed once at Load time since the registry is read-only
	// afterwards (spec §5).
	flattened map[string]map[string]*Property
	// levels is the topological ordering computed by Load, exposed via
	// Levels() for schema-creation ordering (spec §4.1
	// splitSchemaClassLevels).
	levels [][]string
}

// Load builds a Registry from classes, validating that:
//   - no two classes share a name,
//   - every InheritsFrom target exists,
//   - every property's LinkedClass (when set) exists,
//   - the inheritance+link graph is acyclic (required to compute Levels).
//
// It returns a *graphkb.ValidationError on the first problem found.
func Load(classes []*Class) (*Registry, error) {
	r := &Registry{
		classes:   make(map[string]*Class, len(classes)),
		flattened: make(map[string]map[string]*Property, len(classes)),
	}
	for _, c := range classes {
		if _, exists := r.classes[c.Name]; exists {
			return nil, graphkb.NewValidationError("class", "duplicate class name", c.Name)
		}
		r.classes[c.Name] = c
	}
	for _, c := range classes {
		for _, parent := range c.InheritsFrom {
			p, ok := r.classes[parent]
			if !ok {
				return nil, graphkb.NewValidationError(c.Name, "inheritsFrom references unknown class", parent)
			}
			p.subclasses = append(p.subclasses, c.Name)
		}
		for _, prop := range c.Properties {
			if prop.LinkedClass != "" {
				if _, ok := r.classes[prop.LinkedClass]; !ok {
					return nil, graphkb.NewValidationError(c.Name+"."+prop.Name, "linkedClass references unknown class", prop.LinkedClass)
				}
			}
		}
	}

	levels, err := r.splitSchemaClassLevels()
	if err != nil {
		return nil, err
	}
	r.levels = levels

	for name := range r.classes {
		flat, err := r.flattenProperties(name, nil)
		if err != nil {
			return nil, err
		}
		r.flattened[name] = flat
	}
	return r, nil
}

// flattenProperties computes the union of a class's own properties and
// those of every class in InheritsFrom, recursively, rejecting overrides
// that change a property's type. visiting guards against inheritance
// cycles (Levels already rejects those, but this is cheap insurance
// against calling flattenProperties before Levels in future refactors).
func (r *Registry) flattenProperties(name string, visiting map[string]bool) (map[string]*Property, error) {
	c, ok := r.classes[name]
	if !ok {
		return nil, graphkb.NewValidationError("class", "unknown class", name)
	}
	if visiting == nil {
		visiting = map[string]bool{}
	}
	if visiting[name] {
		return nil, graphkb.NewValidationError(name, "cyclic inheritance", name)
	}
	visiting[name] = true
	defer delete(visiting, name)

	out := make(map[string]*Property)
	for _, parent := range c.InheritsFrom {
		parentProps, err := r.flattenProperties(parent, visiting)
		if err != nil {
			return nil, err
		}
		for pname, p := range parentProps {
			out[pname] = p
		}
	}
	for pname, p := range c.Properties {
		if existing, ok := out[pname]; ok && existing.Type != p.Type {
			return nil, graphkb.NewValidationError(name+"."+pname, "overriding property changes type", p.Type)
		}
		out[pname] = p
	}
	return out, nil
}

// Get returns the class named name, or false if no such class is loaded.
func (r *Registry) Get(name string) (*Class, bool) {
	c, ok := r.classes[name]
	return c, ok
}

// QueryProperties returns the flattened (own + inherited) property map
// for class.
func (r *Registry) QueryProperties(class string) (map[string]*Property, error) {
	flat, ok := r.flattened[class]
	if !ok {
		return nil, graphkb.NewValidationError("class", "unknown class", class)
	}
	return flat, nil
}

// GetActiveProperties returns the ActiveProperties declared by class,
// or nil if the class has none.
func (r *Registry) GetActiveProperties(class string) ([]string, error) {
	c, ok := r.classes[class]
	if !ok {
		return nil, graphkb.NewValidationError("class", "unknown class", class)
	}
	return c.ActiveProperties, nil
}

// SubClassModel returns name and every class that (transitively) inherits
// from it, per spec §4.1.
func (r *Registry) SubClassModel(name string) ([]string, error) {
	if _, ok := r.classes[name]; !ok {
		return nil, graphkb.NewValidationError("class", "unknown class", name)
	}
	seen := map[string]bool{name: true}
	out := []string{name}
	queue := []string{name}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range r.classes[cur].subclasses {
			if !seen[child] {
				seen[child] = true
				out = append(out, child)
				queue = append(queue, child)
			}
		}
	}
	return out, nil
}

// Levels returns the topological ordering computed at Load time: classes
// in level i depend only on classes in levels < i (spec §4.1
// splitSchemaClassLevels, used to order schema/table creation).
func (r *Registry) Levels() [][]string { return r.levels }

// splitSchemaClassLevels topologically sorts the loaded classes so that,
// for every class, its InheritsFrom targets and any property's
// LinkedClass appear in an earlier level.
func (r *Registry) splitSchemaClassLevels() ([][]string, error) {
	deps := make(map[string]map[string]bool, len(r.classes))
	for name, c := range r.classes {
		d := make(map[string]bool)
		for _, parent := range c.InheritsFrom {
			d[parent] = true
		}
		for _, prop := range c.Properties {
			if prop.LinkedClass != "" && prop.LinkedClass != name {
				d[prop.LinkedClass] = true
			}
		}
		deps[name] = d
	}

	var levels [][]string
	placed := make(map[string]bool, len(r.classes))
	for len(placed) < len(r.classes) {
		var level []string
		for name, d := range deps {
			if placed[name] {
				continue
			}
			ready := true
			for dep := range d {
				if !placed[dep] {
					ready = false
					break
				}
			}
			if ready {
				level = append(level, name)
			}
		}
		if len(level) == 0 {
			return nil, graphkb.NewValidationError("schema", "cyclic class dependency graph", nil)
		}
		for _, name := range level {
			placed[name] = true
		}
		levels = append(levels, level)
	}
	return levels, nil
}

// RouteName derives the pluralised HTTP route segment for class, per
// spec §4.1: edge classes are left unchanged, names ending in "y" (after
// a consonant) become "ies", everything else gets an "s" appended.
// Class.RouteName, when set, overrides this derivation.
func (r *Registry) RouteName(class string) (string, error) {
	c, ok := r.classes[class]
	if !ok {
		return "", graphkb.NewValidationError("class", "unknown class", class)
	}
	if c.RouteName != "" {
		return c.RouteName, nil
	}
	if c.IsEdge {
		return c.Name, nil
	}
	return pluralize(c.Name), nil
}

var foldCaser = cases.Fold()

// pluralize applies the spec's exact, narrow pluralisation rule set
// (§4.1), intentionally not a general-purpose inflector: names ending in
// "y" preceded by a consonant become "...ies"; otherwise an "s" is
// appended. Case folding for the "vowel before y" check uses
// golang.org/x/text/cases so multi-byte class names fold correctly.
func pluralize(name string) string {
	if name == "" {
		return name
	}
	folded := foldCaser.String(name)
	if strings.HasSuffix(folded, "y") && len(folded) > 1 && !isVowel(rune(folded[len(folded)-2])) {
		return name[:len(name)-1] + "ies"
	}
	return name + "s"
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	default:
		return false
	}
}

// CompareToDBClass reports structural drift between the registry's
// in-memory description of class and a live store description, per spec
// §4.1 (used at startup to catch schema skew before serving traffic).
func (r *Registry) CompareToDBClass(class string, db *DBClassDescription) (*ValidationResult, error) {
	c, ok := r.classes[class]
	if !ok {
		return nil, graphkb.NewValidationError("class", "unknown class", class)
	}
	result := &ValidationResult{}
	if c.IsAbstract != db.IsAbstract {
		result.Errors = append(result.Errors, &ValidationError{
			Table:    class,
			Message:  fmt.Sprintf("abstractness mismatch: registry=%v db=%v", c.IsAbstract, db.IsAbstract),
			Breaking: true,
		})
	}
	flat, err := r.QueryProperties(class)
	if err != nil {
		return nil, err
	}
	for name, prop := range flat {
		dbType, ok := db.Properties[name]
		if !ok {
			result.Warnings = append(result.Warnings, &ValidationError{
				Table:   class,
				Column:  name,
				Message: "property declared in registry but missing from store",
			})
			continue
		}
		if dbType != prop.Type {
			result.Errors = append(result.Errors, &ValidationError{
				Table:    class,
				Column:   name,
				Message:  fmt.Sprintf("type mismatch: registry=%s db=%s", prop.Type, dbType),
				Breaking: true,
			})
		}
	}
	for name := range db.Properties {
		if _, ok := flat[name]; !ok {
			result.Warnings = append(result.Warnings, &ValidationError{
				Table:   class,
				Column:  name,
				Message: "property present in store but not declared in registry",
			})
		}
	}
	return result, nil
}

// DBClassDescription is the subset of a live store's class description
// CompareToDBClass needs: its abstractness and property-name-to-type map.
type DBClassDescription struct {
	IsAbstract bool
	Properties map[string]PropertyType
}
