package seed

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/Simplici0/staffquote/internal/pricing"
)

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Skipped int
}

// Run inserts the given rules in one transaction, leaving any rule that
// already exists untouched so edits made after the first start survive.
func Run(ctx context.Context, db *sql.DB, rules []pricing.Rule) (Stats, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}
	for _, r := range rules {
		if err := ensureRule(ctx, tx, r, &stats); err != nil {
			_ = tx.Rollback()
			return Stats{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func ensureRule(ctx context.Context, tx *sql.Tx, r pricing.Rule, stats *Stats) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM wage_rules WHERE id = ? LIMIT 1)`, r.ID).Scan(&exists); err != nil {
		return fmt.Errorf("check rule %s existence: %w", r.ID, err)
	}
	if exists {
		stats.Skipped++
		return nil
	}

	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode rule %s: %w", r.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO wage_rules (id, state, city, function, effective_date, active, payload)
		VALUES (?, ?, ?, ?, ?, 1, ?)
	`, r.ID, strings.ToUpper(r.State), r.City, strings.ToUpper(r.Function), r.EffectiveDate, string(payload)); err != nil {
		return fmt.Errorf("insert rule %s: %w", r.ID, err)
	}
	stats.Inserts++
	return nil
}
