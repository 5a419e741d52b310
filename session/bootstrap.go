package session

import (
	"context"
	"fmt"
	"log/slog"

	graphkb "github.com/bcgsc/graphkb-core"
	"github.com/bcgsc/graphkb-core/schema"
)

// AdminUserSeed describes the initial administrative record Bootstrap
// should insert if the active-uniqueness index for its class has no match
// yet (spec §4.9: "admin-user seeding").
type AdminUserSeed struct {
	Class   string
	Content graphkb.Record
	// ActiveColumns names the columns the pre-existence check compares;
	// typically the class's activeProperties.
	ActiveColumns []string
}

// BootstrapOptions configures Bootstrap.
type BootstrapOptions struct {
	// CreateDatabaseSQL, if non-empty, runs once before anything else.
	// Left empty when the database is expected to already exist.
	CreateDatabaseSQL string
	// MigrationSQL runs in order after CreateDatabaseSQL. Statements
	// should be idempotent (e.g. "CREATE ... IF NOT EXISTS").
	MigrationSQL []string
	AdminUser    *AdminUserSeed
}

// Bootstrap prepares a freshly-opened store for use: optional database
// creation, schema migration, and admin-user seeding (spec §4.9). It
// acquires and releases its own session from pool.
func Bootstrap(ctx context.Context, pool *Pool, reg *schema.Registry, opts BootstrapOptions) error {
	sess, err := pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer pool.Release(sess)

	if opts.CreateDatabaseSQL != "" {
		if _, err := sess.Exec(ctx, opts.CreateDatabaseSQL, nil); err != nil {
			return fmt.Errorf("session: create database: %w", err)
		}
	}

	for i, stmt := range opts.MigrationSQL {
		if _, err := sess.Exec(ctx, stmt, nil); err != nil {
			return fmt.Errorf("session: migration step %d: %w", i, err)
		}
	}

	levels := reg.Levels()
	slog.Info("schema migration order computed", "levels", len(levels))

	if opts.AdminUser != nil {
		if err := seedAdminUser(ctx, sess, opts.AdminUser); err != nil {
			return fmt.Errorf("session: seed admin user: %w", err)
		}
	}
	return nil
}

// seedAdminUser inserts the admin record only if no active record already
// occupies its active-uniqueness slot, mirroring the create pre-select
// spec §3 describes for ordinary records.
func seedAdminUser(ctx context.Context, sess *Session, seed *AdminUserSeed) error {
	if len(seed.ActiveColumns) == 0 {
		return fmt.Errorf("session: admin seed for %q has no ActiveColumns to check", seed.Class)
	}
	where := ""
	params := make(map[string]any, len(seed.ActiveColumns))
	for i, col := range seed.ActiveColumns {
		if i > 0 {
			where += " AND "
		}
		p := fmt.Sprintf("p%d", i)
		where += fmt.Sprintf("%s = :%s", col, p)
		params[p] = seed.Content[col]
	}
	existing, err := sess.Query(ctx, fmt.Sprintf(
		"SELECT * FROM (SELECT * FROM %s WHERE %s) WHERE deletedAt IS NULL", seed.Class, where,
	), params)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		slog.Info("admin user already present, skipping seed", "class", seed.Class)
		return nil
	}

	cols := make([]string, 0, len(seed.Content))
	placeholders := make([]string, 0, len(seed.Content))
	insertParams := make(map[string]any, len(seed.Content))
	i := 0
	for k, v := range seed.Content {
		p := fmt.Sprintf("p%d", i)
		cols = append(cols, k)
		placeholders = append(placeholders, ":"+p)
		insertParams[p] = v
		i++
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", seed.Class, joinComma(cols), joinComma(placeholders))
	_, err = sess.Exec(ctx, stmt, insertParams)
	return err
}

func joinComma(items []string) string {
	out := ""
	for i, s := range items {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}
