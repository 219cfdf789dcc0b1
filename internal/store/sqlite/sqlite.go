// Package sqlite keeps CLI state in a local sqlite file: saved filter
// profiles and the last fetched offer set.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nurpe/oil-tenders/internal/model"
	"github.com/nurpe/oil-tenders/internal/store"
)

type Store struct {
	db *sql.DB
}

var (
	_ store.FilterStore = (*Store)(nil)
	_ store.OfferCache  = (*Store)(nil)
)

func New(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) GetFilter(ctx context.Context, owner string) (*model.SavedFilter, error) {
	var (
		saved     model.SavedFilter
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT owner, product, country, company, from_date, to_date, updated_at
		FROM saved_filters
		WHERE owner = ?
	`, owner).Scan(
		&saved.Owner,
		&saved.Product,
		&saved.Country,
		&saved.Company,
		&saved.FromDate,
		&saved.ToDate,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	saved.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	return &saved, nil
}

func (s *Store) SaveFilter(ctx context.Context, filter model.SavedFilter) (*model.SavedFilter, error) {
	if filter.Owner == "" {
		return nil, fmt.Errorf("sqlite: owner is required")
	}
	filter.UpdatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO saved_filters (owner, product, country, company, from_date, to_date, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner) DO UPDATE SET
			product = excluded.product,
			country = excluded.country,
			company = excluded.company,
			from_date = excluded.from_date,
			to_date = excluded.to_date,
			updated_at = excluded.updated_at
	`,
		filter.Owner,
		filter.Product,
		filter.Country,
		filter.Company,
		filter.FromDate,
		filter.ToDate,
		filter.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, err
	}
	return &filter, nil
}

func (s *Store) DeleteFilter(ctx context.Context, owner string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM saved_filters WHERE owner = ?`, owner)
	return err
}

// SaveOffers replaces the cached offer set.
func (s *Store) SaveOffers(ctx context.Context, offers []model.Offer) (err error) {
	payload, err := json.Marshal(offers)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM offer_snapshots`); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO offer_snapshots (fetched_at, offer_count, payload)
		VALUES (?, ?, ?)
	`, time.Now().UTC().Format(time.RFC3339Nano), len(offers), payload); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadOffers returns the cached offer set and when it was fetched.
func (s *Store) LoadOffers(ctx context.Context) ([]model.Offer, time.Time, error) {
	var (
		fetchedAt string
		payload   []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT fetched_at, payload FROM offer_snapshots
		ORDER BY fetched_at DESC
		LIMIT 1
	`).Scan(&fetchedAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, store.ErrNotFound
	}
	if err != nil {
		return nil, time.Time{}, err
	}

	var offers []model.Offer
	if err := json.Unmarshal(payload, &offers); err != nil {
		return nil, time.Time{}, fmt.Errorf("sqlite: decode cached offers: %w", err)
	}
	at, _ := time.Parse(time.RFC3339Nano, fetchedAt)
	return offers, at, nil
}

func (s *Store) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS saved_filters (
			owner TEXT PRIMARY KEY,
			product TEXT NOT NULL DEFAULT '',
			country TEXT NOT NULL DEFAULT '',
			company TEXT NOT NULL DEFAULT '',
			from_date TEXT NOT NULL DEFAULT '',
			to_date TEXT NOT NULL DEFAULT '',
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS offer_snapshots (
			fetched_at TEXT NOT NULL,
			offer_count INTEGER NOT NULL,
			payload BLOB NOT NULL
		);`,
	}

	for _, statement := range statements {
		if _, err := s.db.Exec(statement); err != nil {
			return err
		}
	}

	return nil
}
