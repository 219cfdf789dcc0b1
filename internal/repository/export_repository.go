package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/oil-tenders/internal/model"
)

const MaxExportsPerOwner = 200

type ExportRepository struct {
	db *gorm.DB
}

func NewExportRepository(db *gorm.DB) *ExportRepository {
	return &ExportRepository{db: db}
}

// CreateExport records an export and prunes the owner's history beyond
// MaxExportsPerOwner rows.
func (r *ExportRepository) CreateExport(ctx context.Context, export model.Export) (*model.Export, error) {
	var saved model.Export
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Raw(`
			INSERT INTO dashboard_exports (
				owner,
				org_id,
				format,
				file_name,
				filter_query,
				unit,
				offer_count,
				tendered_volume
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING
				id,
				owner,
				org_id,
				format,
				file_name,
				filter_query,
				unit,
				offer_count,
				tendered_volume,
				created_at
		`,
			export.Owner,
			export.OrgID,
			export.Format,
			export.FileName,
			export.FilterQuery,
			export.Unit,
			export.OfferCount,
			export.TenderedVolume,
		).Scan(&saved).Error
		if err != nil {
			return err
		}

		return tx.Exec(`
			DELETE FROM dashboard_exports
			WHERE owner = ?
				AND id NOT IN (
					SELECT id FROM dashboard_exports
					WHERE owner = ?
					ORDER BY created_at DESC
					LIMIT ?
				)
		`, export.Owner, export.Owner, MaxExportsPerOwner).Error
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *ExportRepository) GetExport(ctx context.Context, id uuid.UUID) (*model.Export, error) {
	var export model.Export
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, owner, org_id, format, file_name, filter_query, unit, offer_count, tendered_volume, created_at
		FROM dashboard_exports
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&export).Error
	if err != nil {
		return nil, err
	}
	if export.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &export, nil
}

// ListExports returns the newest exports of owner first.
func (r *ExportRepository) ListExports(ctx context.Context, owner string, limit int) ([]model.Export, error) {
	if limit <= 0 {
		limit = 50
	}
	var exports []model.Export
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, owner, org_id, format, file_name, filter_query, unit, offer_count, tendered_volume, created_at
		FROM dashboard_exports
		WHERE owner = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, owner, limit).Scan(&exports).Error; err != nil {
		return nil, err
	}
	return exports, nil
}
