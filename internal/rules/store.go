package rules

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/Simplici0/staffquote/internal/pricing"
)

var (
	ErrNotFound    = errors.New("rule not found")
	ErrInvalidRule = errors.New("invalid rule")
)

// Repository is the rule set collaborator consulted before pricing.
type Repository interface {
	List(ctx context.Context) ([]pricing.Rule, error)
	Get(ctx context.Context, id string) (pricing.Rule, error)
	Upsert(ctx context.Context, rule pricing.Rule) error
	Deactivate(ctx context.Context, id string) error
}

// Store keeps rules in SQLite. Lookup columns are denormalized from the
// payload, which holds the full rule as JSON.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// List returns every active rule ordered by id.
func (s *Store) List(ctx context.Context) ([]pricing.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, payload
		FROM wage_rules
		WHERE active = 1
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("rules: list: %w", err)
	}
	defer rows.Close()

	out := make([]pricing.Rule, 0)
	for rows.Next() {
		var id, payload string
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("rules: scan: %w", err)
		}
		r, err := decodeRule(id, payload)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rules: list: %w", err)
	}
	return out, nil
}

// Get returns one rule, active or not.
func (s *Store) Get(ctx context.Context, id string) (pricing.Rule, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM wage_rules WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return pricing.Rule{}, ErrNotFound
	}
	if err != nil {
		return pricing.Rule{}, fmt.Errorf("rules: get %s: %w", id, err)
	}
	return decodeRule(id, payload)
}

// Upsert inserts or replaces a rule and marks it active.
func (s *Store) Upsert(ctx context.Context, rule pricing.Rule) error {
	if err := checkRule(rule); err != nil {
		return err
	}
	payload, err := json.Marshal(rule)
	if err != nil {
		return fmt.Errorf("rules: encode rule %s: %w", rule.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO wage_rules (id, state, city, function, effective_date, active, payload)
		VALUES (?, ?, ?, ?, ?, 1, ?)
		ON CONFLICT(id) DO UPDATE SET
			state = excluded.state,
			city = excluded.city,
			function = excluded.function,
			effective_date = excluded.effective_date,
			active = 1,
			payload = excluded.payload,
			updated_at = CURRENT_TIMESTAMP
	`, rule.ID, strings.ToUpper(rule.State), rule.City, strings.ToUpper(rule.Function), rule.EffectiveDate, string(payload))
	if err != nil {
		return fmt.Errorf("rules: upsert %s: %w", rule.ID, err)
	}
	return nil
}

// Deactivate hides a rule from List without deleting it.
func (s *Store) Deactivate(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE wage_rules SET active = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("rules: deactivate %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rules: deactivate %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func decodeRule(id, payload string) (pricing.Rule, error) {
	var r pricing.Rule
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return pricing.Rule{}, fmt.Errorf("rules: decode rule %s: %w", id, err)
	}
	r.ID = id
	return r, nil
}

func checkRule(r pricing.Rule) error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidRule)
	}
	if err := pricing.CheckRule(r); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	return nil
}
