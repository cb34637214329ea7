package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/randi412-cooperh/RetailCrimeFhe/internal/fhe"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/domain"
	"github.com/randi412-cooperh/RetailCrimeFhe/pkg/platform/sentinel"
)

// PostgresStore persists the ledger durably. Handles are stored as raw
// bytes; the database never sees plaintext. Connect with the pgx stdlib
// driver (`sql.Open("pgx", dsn)`).
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the ledger table. Idempotent.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS incidents (
			id              BIGINT PRIMARY KEY,
			retailer_handle BYTEA NOT NULL,
			loss_handle     BYTEA NOT NULL,
			location_handle BYTEA NOT NULL,
			product_handle  BYTEA NOT NULL,
			created_at      TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("migrate incidents table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, incident Incident) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO incidents (id, retailer_handle, loss_handle, location_handle, product_handle, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`,
		int64(incident.ID),
		incident.Retailer.Bytes(),
		incident.Loss.Bytes(),
		incident.Location.Bytes(),
		incident.Product.Bytes(),
		incident.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("append incident: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("append incident: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id domain.IncidentID) (Incident, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, retailer_handle, loss_handle, location_handle, product_handle, created_at
		FROM incidents WHERE id = $1`, int64(id))
	incident, err := scanIncident(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Incident{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Incident{}, fmt.Errorf("get incident: %w", err)
	}
	return incident, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Incident, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, retailer_handle, loss_handle, location_handle, product_handle, created_at
		FROM incidents ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	var out []Incident
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("list incidents: %w", err)
		}
		out = append(out, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) LastID(ctx context.Context) (domain.IncidentID, error) {
	var last sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(id) FROM incidents`).Scan(&last); err != nil {
		return 0, fmt.Errorf("last incident id: %w", err)
	}
	return domain.IncidentID(last.Int64), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIncident(row rowScanner) (Incident, error) {
	var (
		id        int64
		retailer  []byte
		loss      []byte
		location  []byte
		product   []byte
		createdAt time.Time
	)
	if err := row.Scan(&id, &retailer, &loss, &location, &product, &createdAt); err != nil {
		return Incident{}, err
	}
	return Incident{
		ID:        domain.IncidentID(id),
		Retailer:  fhe.NewHandle(retailer),
		Loss:      fhe.NewHandle(loss),
		Location:  fhe.NewHandle(location),
		Product:   fhe.NewHandle(product),
		CreatedAt: createdAt.UTC(),
	}, nil
}
