package model

import (
	"time"

	"github.com/google/uuid"
)

type ExportFormat string

const (
	ExportFormatXLSX ExportFormat = "XLSX"
	ExportFormatPDF  ExportFormat = "PDF"
)

// Export is one generated dashboard file, kept as an audit trail.
type Export struct {
	ID             uuid.UUID
	Owner          string
	OrgID          *uuid.UUID
	Format         ExportFormat
	FileName       string
	FilterQuery    string
	Unit           string
	OfferCount     int
	TenderedVolume float64
	CreatedAt      time.Time
}
