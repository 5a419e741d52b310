package session

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bcgsc/graphkb-core/dialect"
)

// placeholderRe matches the ":pN" bound-parameter tokens the filter and
// query packages emit (filter.RenderContext.Bind).
var placeholderRe = regexp.MustCompile(`:p\d+`)

// bindArgs rewrites sqlText's ":pN" tokens into the placeholder syntax d
// expects (positional "$N" for Postgres, "?" for MySQL/SQLite) and returns
// the corresponding ordered argument slice, looked up from params by name.
func bindArgs(d string, sqlText string, params map[string]any) (string, []any, error) {
	args := make([]any, 0, len(params))
	n := 0
	var missing string
	rewritten := placeholderRe.ReplaceAllStringFunc(sqlText, func(tok string) string {
		name := strings.TrimPrefix(tok, ":")
		v, ok := params[name]
		if !ok {
			missing = name
			return tok
		}
		args = append(args, v)
		n++
		if d == dialect.Postgres {
			return fmt.Sprintf("$%d", n)
		}
		return "?"
	})
	if missing != "" {
		return "", nil, fmt.Errorf("session: no bound value for parameter %q", missing)
	}
	return rewritten, args, nil
}
