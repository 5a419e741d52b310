package permission

import (
	"context"
	"errors"
	"fmt"

	graphkb "github.com/bcgsc/graphkb-core"
)

// Decision sentinels a Rule returns to steer chain evaluation. Use
// errors.Is to check them.
var (
	// Allow terminates the chain early with a permit.
	Allow = errors.New("permission: allow rule")
	// Deny terminates the chain early with a denial.
	Deny = errors.New("permission: deny rule")
	// Skip abstains, letting the next rule (or the bitmask fallback) decide.
	Skip = errors.New("permission: skip rule")
)

// Denyf returns a formatted error wrapping Deny.
func Denyf(format string, a ...any) error {
	return fmt.Errorf(format+": %w", append(a, error(Deny))...)
}

// Rule decides a class-permission check ahead of the bitmask fallback.
// Returning nil is equivalent to returning Skip.
type Rule interface {
	Eval(ctx context.Context, user graphkb.User, class string, op Op) error
}

// RuleFunc adapts an ordinary function to Rule.
type RuleFunc func(ctx context.Context, user graphkb.User, class string, op Op) error

// Eval calls f.
func (f RuleFunc) Eval(ctx context.Context, user graphkb.User, class string, op Op) error {
	return f(ctx, user, class, op)
}

// AlwaysAllowRule unconditionally permits.
func AlwaysAllowRule() Rule {
	return RuleFunc(func(context.Context, graphkb.User, string, Op) error { return Allow })
}

// AlwaysDenyRule unconditionally denies.
func AlwaysDenyRule() Rule {
	return RuleFunc(func(context.Context, graphkb.User, string, Op) error { return Deny })
}

// RequireGroup allows the operation when the user belongs to group,
// regardless of that group's class bitmask. Skips otherwise, letting
// later rules or the bitmask fallback decide.
func RequireGroup(group string) Rule {
	return RuleFunc(func(_ context.Context, user graphkb.User, _ string, _ Op) error {
		if user.HasGroup(group) {
			return Allow
		}
		return Skip
	})
}

// Rules is an evaluation chain: the first rule to return a decision other
// than nil/Skip terminates evaluation.
type Rules []Rule

func (rules Rules) eval(ctx context.Context, user graphkb.User, class string, op Op) error {
	for _, rule := range rules {
		switch decision := rule.Eval(ctx, user, class, op); {
		case decision == nil || errors.Is(decision, Skip):
			continue
		case errors.Is(decision, Allow):
			return nil
		default:
			return decision
		}
	}
	return Skip
}
