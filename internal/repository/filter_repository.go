package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nurpe/oil-tenders/internal/model"
)

type FilterRepository struct {
	db *gorm.DB
}

func NewFilterRepository(db *gorm.DB) *FilterRepository {
	return &FilterRepository{db: db}
}

func (r *FilterRepository) GetFilter(ctx context.Context, owner string) (*model.SavedFilter, error) {
	var saved model.SavedFilter
	if err := r.db.WithContext(ctx).Raw(`
		SELECT owner, product, country, company, from_date, to_date, updated_at
		FROM saved_filters
		WHERE owner = ?
		LIMIT 1
	`, owner).Scan(&saved).Error; err != nil {
		return nil, err
	}
	if saved.Owner == "" {
		return nil, gorm.ErrRecordNotFound
	}
	return &saved, nil
}

func (r *FilterRepository) SaveFilter(ctx context.Context, filter model.SavedFilter) (*model.SavedFilter, error) {
	var saved model.SavedFilter
	if err := r.db.WithContext(ctx).Raw(`
		INSERT INTO saved_filters (owner, product, country, company, from_date, to_date, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, NOW())
		ON CONFLICT (owner) DO UPDATE SET
			product = EXCLUDED.product,
			country = EXCLUDED.country,
			company = EXCLUDED.company,
			from_date = EXCLUDED.from_date,
			to_date = EXCLUDED.to_date,
			updated_at = EXCLUDED.updated_at
		RETURNING owner, product, country, company, from_date, to_date, updated_at
	`,
		filter.Owner,
		filter.Product,
		filter.Country,
		filter.Company,
		filter.FromDate,
		filter.ToDate,
	).Scan(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *FilterRepository) DeleteFilter(ctx context.Context, owner string) error {
	return r.db.WithContext(ctx).Exec(`DELETE FROM saved_filters WHERE owner = ?`, owner).Error
}
