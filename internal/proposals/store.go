package proposals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/Simplici0/staffquote/internal/pricing"
)

var ErrNotFound = errors.New("proposal not found")

const timeLayout = "2006-01-02 15:04:05"

// Snapshot is a priced proposal as stored: the request that produced it and
// the full result, read back without recalculation.
type Snapshot struct {
	ID        string                 `json:"id"`
	Title     string                 `json:"title"`
	Client    string                 `json:"client"`
	CreatedAt string                 `json:"createdAt"`
	Request   json.RawMessage        `json:"request"`
	Result    pricing.ProposalResult `json:"result"`
}

// ListItem is one row of the proposal list.
type ListItem struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Client        string  `json:"client"`
	CreatedAt     string  `json:"createdAt"`
	PositionCount int     `json:"positionCount"`
	MonthlyTotal  float64 `json:"monthlyTotal"`
	AnnualTotal   float64 `json:"annualTotal"`
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Save stores an immutable snapshot. CreatedAt is assigned here.
func (s *Store) Save(ctx context.Context, snap Snapshot) (Snapshot, error) {
	if snap.ID == "" {
		snap.ID = snap.Result.ID
	}
	if snap.ID == "" {
		return Snapshot{}, errors.New("proposals: save: id is required")
	}
	snap.Title = strings.TrimSpace(snap.Title)
	snap.Client = strings.TrimSpace(snap.Client)
	if len(snap.Request) == 0 {
		snap.Request = json.RawMessage("{}")
	}

	result, err := json.Marshal(snap.Result)
	if err != nil {
		return Snapshot{}, fmt.Errorf("proposals: encode result %s: %w", snap.ID, err)
	}
	snap.CreatedAt = s.now().UTC().Format(timeLayout)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO proposals (id, title, client, position_count, monthly_total, annual_total, request_json, result_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		snap.ID,
		snap.Title,
		snap.Client,
		len(snap.Result.Positions),
		snap.Result.Summary.MonthlyTotal,
		snap.Result.Summary.AnnualTotal,
		string(snap.Request),
		string(result),
		snap.CreatedAt,
	)
	if err != nil {
		return Snapshot{}, fmt.Errorf("proposals: save %s: %w", snap.ID, err)
	}
	return snap, nil
}

func (s *Store) Get(ctx context.Context, id string) (Snapshot, error) {
	var (
		snap       Snapshot
		request    string
		resultJSON string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, client, created_at, request_json, result_json
		FROM proposals
		WHERE id = ?
	`, id).Scan(&snap.ID, &snap.Title, &snap.Client, &snap.CreatedAt, &request, &resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("proposals: get %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(resultJSON), &snap.Result); err != nil {
		return Snapshot{}, fmt.Errorf("proposals: decode result %s: %w", id, err)
	}
	snap.Request = json.RawMessage(request)
	return snap, nil
}

// List returns proposals newest first. A non-empty query filters by title or client.
func (s *Store) List(ctx context.Context, query string) ([]ListItem, error) {
	query = strings.TrimSpace(query)
	search := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, client, created_at, position_count, monthly_total, annual_total
		FROM proposals
		WHERE (? = '' OR title LIKE ? OR client LIKE ?)
		ORDER BY datetime(created_at) DESC, id DESC
	`, query, search, search)
	if err != nil {
		return nil, fmt.Errorf("proposals: list: %w", err)
	}
	defer rows.Close()

	items := make([]ListItem, 0)
	for rows.Next() {
		var it ListItem
		if err := rows.Scan(&it.ID, &it.Title, &it.Client, &it.CreatedAt, &it.PositionCount, &it.MonthlyTotal, &it.AnnualTotal); err != nil {
			return nil, fmt.Errorf("proposals: scan: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("proposals: list: %w", err)
	}
	return items, nil
}
