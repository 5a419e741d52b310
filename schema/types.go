// Package schema is the Schema Registry (spec §4.1): an in-memory
// catalogue of classes, properties, and inheritance that the query
// builder and record operations consult to validate input and render
// SQL. It is built once at startup (schema.Load) and is immutable
// thereafter (spec §5).
package schema

// PropertyType enumerates the value kinds a Property may declare, per
// spec §3.
type PropertyType string

// The full set of property types recognized by the registry.
const (
	TypeString       PropertyType = "string"
	TypeInteger      PropertyType = "integer"
	TypeLong         PropertyType = "long"
	TypeBoolean      PropertyType = "boolean"
	TypeEmbedded     PropertyType = "embedded"
	TypeEmbeddedSet  PropertyType = "embeddedset"
	TypeEmbeddedList PropertyType = "embeddedlist"
	TypeEmbeddedMap  PropertyType = "embeddedmap"
	TypeLink         PropertyType = "link"
	TypeLinkSet      PropertyType = "linkset"
	TypeLinkList     PropertyType = "linklist"
	TypeLinkBag      PropertyType = "linkbag"
)

// iterableTypes is the subset of PropertyType whose values are
// collections rather than scalars. Property.Iterable derives from this.
var iterableTypes = map[PropertyType]bool{
	TypeEmbeddedSet:  true,
	TypeEmbeddedList: true,
	TypeEmbeddedMap:  true,
	TypeLinkSet:      true,
	TypeLinkList:     true,
	TypeLinkBag:      true,
}

// linkTypes is the subset of PropertyType that reference another class
// by recordId, either singly (link) or as a collection (linkset/list/bag).
var linkTypes = map[PropertyType]bool{
	TypeLink:     true,
	TypeLinkSet:  true,
	TypeLinkList: true,
	TypeLinkBag:  true,
}

// embeddedTypes is the subset of PropertyType holding nested documents
// rather than scalars or links.
var embeddedTypes = map[PropertyType]bool{
	TypeEmbedded:     true,
	TypeEmbeddedSet:  true,
	TypeEmbeddedList: true,
	TypeEmbeddedMap:  true,
}

// Iterable reports whether t is a collection-valued type.
func (t PropertyType) Iterable() bool { return iterableTypes[t] }

// IsLink reports whether t references another class by recordId.
func (t PropertyType) IsLink() bool { return linkTypes[t] }

// IsEmbedded reports whether t holds nested document(s).
func (t PropertyType) IsEmbedded() bool { return embeddedTypes[t] }

// DefaultFunc is a generator called at format time to produce a
// property's default value (e.g. a UUID or the current timestamp),
// distinguished at the call site from a literal default value (spec §3:
// "default (literal or generator)").
type DefaultFunc func() any

// CastFunc converts a raw scalar into its validated representation,
// failing with a *graphkb.ValidationError. When Property.Cast is nil no
// cast is applied; none is inferred from Type.
type CastFunc func(any) (any, error)

// Property describes one field of a Class, per spec §3.
type Property struct {
	Name   string
	Type   PropertyType
	// LinkedClass names the class a link/embedded property refers to.
	// Required for link types; optional for embedded types (a bare
	// "embedded" without LinkedClass accepts any class tagged in the
	// value itself, per schema.FormatRecord's embedded-value handling).
	LinkedClass string

	Mandatory bool
	Nullable  bool
	NonEmpty  bool

	// Default, if non-nil, is either a literal value or a DefaultFunc.
	Default any

	// Choices restricts scalar values (or, for iterable properties,
	// each element) to this enumerated set. A nil/empty Choices means
	// unrestricted. If Nullable is also set, null is implicitly a valid
	// choice even though it is not itself listed.
	Choices []any

	// Cast converts each incoming scalar. When nil, values are kept as
	// given.
	Cast CastFunc

	Description string
}

// Iterable reports whether the property's type is a collection.
func (p *Property) Iterable() bool { return p.Type.Iterable() }

// Class describes one schema entity, per spec §3.
type Class struct {
	Name         string
	IsAbstract   bool
	IsEdge       bool
	IsEmbedded   bool
	InheritsFrom []string

	// Properties declared directly on this class (not including
	// inherited properties -- use Registry.QueryProperties for the
	// flattened view).
	Properties map[string]*Property

	// ActiveProperties lists the properties participating in this
	// class's soft-deletion-aware uniqueness index (spec §3's "active
	// index"). Empty means the class has no active-uniqueness
	// constraint.
	ActiveProperties []string

	// ExposedOperations is the subset of {GET,POST,PATCH,DELETE} the
	// (external) HTTP routing layer should register for this class.
	ExposedOperations []string

	// RouteName overrides the registry's derived plural route segment.
	// Left empty to use Registry.RouteName's pluralisation rules.
	RouteName string

	// DisplayNameFunc, if set, derives a record's displayName from its
	// other (already-formatted) fields: at create time when the caller
	// left displayName unset, and again on every update (spec §4.8,
	// generalizing the Variant "canonical notation" case to any class
	// that registers a hook).
	DisplayNameFunc func(Record) (string, error)

	// subclasses is populated by Registry.Load from the inverse of
	// InheritsFrom across all loaded classes.
	subclasses []string
}

// Record is the minimal shape FormatRecord and DisplayNameFunc need: a
// plain string-keyed map, matching the dynamic document model used
// throughout (graphkb.Record is defined as the same underlying type in
// the root package; this alias avoids an import cycle since schema is a
// lower-level package than the root graphkb package's Record consumers).
type Record = map[string]any
