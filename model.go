package graphkb

import "time"

// Well-known bookkeeping keys carried by every Record (spec §3).
const (
	KeyRID               = "@rid"
	KeyClass             = "@class"
	KeyCreatedAt         = "createdAt"
	KeyCreatedBy         = "createdBy"
	KeyDeletedAt         = "deletedAt"
	KeyDeletedBy         = "deletedBy"
	KeyHistory           = "history"
	KeyGroupRestrictions = "groupRestrictions"
	KeyOut               = "out"
	KeyIn                = "in"
)

// Record is a dynamic record document: a class tag plus a flat map of
// domain and bookkeeping fields. This mirrors the Design Notes §9 choice
// of "(classId, map<propertyId, Value>)" over a generated struct per
// class, since classes are data (loaded into the Schema Registry at
// startup), not compile-time Go types.
type Record map[string]any

// RID returns the record's "cluster:position" identifier, or "" if unset.
func (r Record) RID() string {
	s, _ := r[KeyRID].(string)
	return s
}

// Class returns the record's class name, or "" if unset.
func (r Record) Class() string {
	s, _ := r[KeyClass].(string)
	return s
}

// DeletedAt returns the record's soft-delete timestamp and whether it is set.
func (r Record) DeletedAt() (time.Time, bool) {
	t, ok := r[KeyDeletedAt].(time.Time)
	return t, ok
}

// IsDeleted reports whether the record carries a non-null deletedAt.
func (r Record) IsDeleted() bool {
	_, ok := r.DeletedAt()
	return ok
}

// History returns the recordId of the previous version, if any.
func (r Record) History() string {
	s, _ := r[KeyHistory].(string)
	return s
}

// GroupRestrictions returns the list of group recordIds the record is
// restricted to, or nil if unrestricted.
func (r Record) GroupRestrictions() []string {
	switch v := r[KeyGroupRestrictions].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Clone returns a shallow copy of r, suitable as the starting point for
// the copy-on-write history snapshot taken by update/remove (spec §3).
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// User is the minimal identity the permission gate and record operations
// need: who is acting, and which groups they belong to.
type User struct {
	RecordID string
	Groups   []string
}

// HasGroup reports whether the user belongs to group.
func (u User) HasGroup(group string) bool {
	for _, g := range u.Groups {
		if g == group {
			return true
		}
	}
	return false
}
