package permission

import (
	"context"
	"errors"

	graphkb "github.com/bcgsc/graphkb-core"
)

// Gate answers the two permission questions spec §4.10 names:
// CheckClassPermission (the per-class CRUD bitmask) and HasRecordAccess
// (per-record group restrictions).
type Gate struct {
	// classMasks maps a group recordId to its per-class CRUD bitmask.
	classMasks map[string]map[string]Op
	// rules runs ahead of the bitmask, letting a caller short-circuit
	// (e.g. an always-allow rule for a superuser group) without needing
	// a bitmask entry for every class.
	rules Rules
}

// NewGate returns a Gate backed by classMasks, a group-recordId-to-class-
// to-bitmask table (one row per group the schema's groups class defines).
func NewGate(classMasks map[string]map[string]Op) *Gate {
	return &Gate{classMasks: classMasks}
}

// WithRules returns a copy of g with rules run ahead of the bitmask check.
func (g *Gate) WithRules(rules ...Rule) *Gate {
	return &Gate{classMasks: g.classMasks, rules: append(Rules{}, rules...)}
}

// CheckClassPermission reports whether user may perform op on class: the
// operation is allowed if any of the rules allows it, or, failing that, if
// any group the user belongs to sets op's bit for class (spec §4.10).
func (g *Gate) CheckClassPermission(ctx context.Context, user graphkb.User, class string, op Op) error {
	if len(g.rules) > 0 {
		switch decision := g.rules.eval(ctx, user, class, op); {
		case decision == nil:
			return nil
		case errors.Is(decision, Skip):
		default:
			return graphkb.NewPermissionError(class, op.String())
		}
	}
	for _, group := range user.Groups {
		if mask, ok := g.classMasks[group][class]; ok && mask&op != 0 {
			return nil
		}
	}
	return graphkb.NewPermissionError(class, op.String())
}

// HasRecordAccess reports whether user may see record: true unless the
// record restricts visibility to a set of groups the user does not belong
// to any of (spec §4.10).
func (g *Gate) HasRecordAccess(user graphkb.User, record graphkb.Record) bool {
	restrictions := record.GroupRestrictions()
	if len(restrictions) == 0 {
		return true
	}
	for _, group := range restrictions {
		if user.HasGroup(group) {
			return true
		}
	}
	return false
}
