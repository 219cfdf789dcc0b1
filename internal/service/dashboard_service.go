package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/nurpe/oil-tenders/internal/aggregate"
	"github.com/nurpe/oil-tenders/internal/filter"
	"github.com/nurpe/oil-tenders/internal/model"
	"github.com/nurpe/oil-tenders/internal/store"
	"github.com/nurpe/oil-tenders/internal/unit"
)

// OfferSource is satisfied by *source.Snapshot.
type OfferSource interface {
	Offers() ([]model.Offer, time.Time)
	Loaded() bool
	Refresh(ctx context.Context) (int, error)
}

type ExportStore interface {
	CreateExport(ctx context.Context, export model.Export) (*model.Export, error)
	GetExport(ctx context.Context, id uuid.UUID) (*model.Export, error)
	ListExports(ctx context.Context, owner string, limit int) ([]model.Export, error)
}

type ExcelGenerator interface {
	Generate(report aggregate.Report) ([]byte, error)
}

type PDFGenerator interface {
	Generate(report aggregate.Report) ([]byte, error)
}

type DashboardService struct {
	source     OfferSource
	filters    store.FilterStore
	exports    ExportStore
	excel      ExcelGenerator
	pdf        PDFGenerator
	sourceUnit unit.Unit
	now        func() time.Time
	loads      singleflight.Group
}

const maxLoadAttempts = 3

// NewDashboardService wires the service. exports may be nil, in which case
// generated files are not recorded.
func NewDashboardService(
	source OfferSource,
	filters store.FilterStore,
	exports ExportStore,
	excel ExcelGenerator,
	pdf PDFGenerator,
	sourceUnit unit.Unit,
) *DashboardService {
	return &DashboardService{
		source:     source,
		filters:    filters,
		exports:    exports,
		excel:      excel,
		pdf:        pdf,
		sourceUnit: sourceUnit,
		now:        time.Now,
	}
}

type DashboardInput struct {
	Principal model.Principal
	Filter    filter.State
	Unit      unit.Unit
}

type DashboardResult struct {
	Dashboard  aggregate.Dashboard `json:"dashboard"`
	Filter     filter.State        `json:"filter"`
	OfferCount int                 `json:"offer_count"`
	TotalCount int                 `json:"total_count"`
	FetchedAt  time.Time           `json:"fetched_at"`
}

func (s *DashboardService) Dashboard(ctx context.Context, input DashboardInput) (*DashboardResult, error) {
	report, total, err := s.build(ctx, input)
	if err != nil {
		return nil, err
	}
	return &DashboardResult{
		Dashboard:  report.Dashboard,
		Filter:     report.Filter,
		OfferCount: report.OfferCount,
		TotalCount: total,
		FetchedAt:  report.FetchedAt,
	}, nil
}

func (s *DashboardService) build(ctx context.Context, input DashboardInput) (aggregate.Report, int, error) {
	state, err := s.resolveFilter(ctx, input.Principal, input.Filter)
	if err != nil {
		return aggregate.Report{}, 0, err
	}
	if input.Unit != "" && !input.Unit.Valid() {
		return aggregate.Report{}, 0, fmt.Errorf("%w: %w", ErrInvalidInput, unit.ErrUnknownUnit)
	}

	offers, fetchedAt, err := s.offers(ctx)
	if err != nil {
		return aggregate.Report{}, 0, err
	}
	filtered := filter.Apply(offers, state)

	now := s.now()
	dashboard, err := aggregate.Build(ctx, filtered, aggregate.Options{
		Unit:       input.Unit,
		SourceUnit: s.sourceUnit,
		Now:        now,
	})
	if err != nil {
		return aggregate.Report{}, 0, err
	}
	return aggregate.Report{
		Dashboard:   dashboard,
		Filter:      state,
		OfferCount:  len(filtered),
		FetchedAt:   fetchedAt,
		GeneratedAt: now,
	}, len(offers), nil
}

// resolveFilter prefers an explicit filter and falls back to the one the
// caller saved.
func (s *DashboardService) resolveFilter(ctx context.Context, principal model.Principal, requested filter.State) (filter.State, error) {
	if err := requested.Validate(); err != nil {
		return filter.State{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if !requested.IsZero() || s.filters == nil {
		return requested, nil
	}
	stored, err := s.GetFilter(ctx, principal)
	if err != nil {
		return filter.State{}, err
	}
	return filter.Resolve(requested, stored), nil
}

func (s *DashboardService) offers(ctx context.Context) ([]model.Offer, time.Time, error) {
	if !s.source.Loaded() {
		if err := s.load(ctx); err != nil {
			return nil, time.Time{}, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
		}
	}
	offers, fetchedAt := s.source.Offers()
	return offers, fetchedAt, nil
}

// load fetches the first offer set. Concurrent callers share one fetch, which
// is detached from any single request so that one caller going away does not
// fail the others. A fetch superseded by another refresh is retried.
func (s *DashboardService) load(ctx context.Context) error {
	var err error
	for attempt := 0; attempt < maxLoadAttempts; attempt++ {
		ch := s.loads.DoChan("offers", func() (any, error) {
			if s.source.Loaded() {
				return nil, nil
			}
			_, err := s.source.Refresh(context.WithoutCancel(ctx))
			return nil, err
		})

		select {
		case <-ctx.Done():
			return ctx.Err()
		case res := <-ch:
			err = res.Err
		}
		if err == nil || s.source.Loaded() {
			return nil
		}
		if !errors.Is(err, context.Canceled) {
			return err
		}
	}
	return err
}

// Choices lists the filter dropdown values over the whole offer set.
func (s *DashboardService) Choices(ctx context.Context) (aggregate.Choices, error) {
	offers, _, err := s.offers(ctx)
	if err != nil {
		return aggregate.Choices{}, err
	}
	return aggregate.FilterChoices(offers), nil
}

func (s *DashboardService) GetFilter(ctx context.Context, principal model.Principal) (filter.State, error) {
	saved, err := s.filters.GetFilter(ctx, principal.Owner())
	if err != nil {
		if isNotFound(err) {
			return filter.State{}, nil
		}
		return filter.State{}, err
	}
	return filter.FromSaved(*saved), nil
}

func (s *DashboardService) SaveFilter(ctx context.Context, principal model.Principal, state filter.State) (filter.State, error) {
	if err := state.Validate(); err != nil {
		return filter.State{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if state.IsZero() {
		return filter.State{}, s.ClearFilter(ctx, principal)
	}
	saved, err := s.filters.SaveFilter(ctx, state.Saved(principal.Owner()))
	if err != nil {
		return filter.State{}, err
	}
	return filter.FromSaved(*saved), nil
}

func (s *DashboardService) ClearFilter(ctx context.Context, principal model.Principal) error {
	return s.filters.DeleteFilter(ctx, principal.Owner())
}

type RefreshResult struct {
	Count     int       `json:"count"`
	FetchedAt time.Time `json:"fetched_at"`
}

func (s *DashboardService) Refresh(ctx context.Context, principal model.Principal) (*RefreshResult, error) {
	if !principal.CanRefresh() {
		return nil, ErrPermissionDenied
	}
	count, err := s.source.Refresh(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() == nil {
			// Superseded by a newer refresh; report what is loaded now.
			offers, fetchedAt := s.source.Offers()
			return &RefreshResult{Count: len(offers), FetchedAt: fetchedAt}, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	_, fetchedAt := s.source.Offers()
	return &RefreshResult{Count: count, FetchedAt: fetchedAt}, nil
}

type ExportInput struct {
	Principal model.Principal
	Filter    filter.State
	Unit      unit.Unit
	Format    model.ExportFormat
}

type ExportResult struct {
	FileName    string
	ContentType string
	Content     []byte
}

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
)

func (s *DashboardService) Export(ctx context.Context, input ExportInput) (*ExportResult, error) {
	report, _, err := s.build(ctx, DashboardInput{
		Principal: input.Principal,
		Filter:    input.Filter,
		Unit:      input.Unit,
	})
	if err != nil {
		return nil, err
	}
	if report.OfferCount == 0 {
		return nil, ErrNoOffers
	}

	var (
		content     []byte
		contentType string
	)
	switch input.Format {
	case model.ExportFormatXLSX:
		content, err = s.excel.Generate(report)
		contentType = ContentTypeXLSX
	case model.ExportFormatPDF:
		content, err = s.pdf.Generate(report)
		contentType = ContentTypePDF
	default:
		return nil, fmt.Errorf("%w: unsupported export format %q", ErrInvalidInput, input.Format)
	}
	if err != nil {
		return nil, err
	}

	fileName := buildFileName(report, input.Format)
	if s.exports != nil {
		export := model.Export{
			Owner:          input.Principal.Owner(),
			Format:         input.Format,
			FileName:       fileName,
			FilterQuery:    report.Filter.Encode(),
			Unit:           string(report.Dashboard.Unit),
			OfferCount:     report.OfferCount,
			TenderedVolume: report.Dashboard.Summary.TenderedVolume,
		}
		if input.Principal.OrgID != uuid.Nil {
			orgID := input.Principal.OrgID
			export.OrgID = &orgID
		}
		if _, err := s.exports.CreateExport(ctx, export); err != nil {
			return nil, err
		}
	}

	return &ExportResult{
		FileName:    fileName,
		ContentType: contentType,
		Content:     content,
	}, nil
}

func (s *DashboardService) ListExports(ctx context.Context, principal model.Principal, limit int) ([]model.Export, error) {
	if s.exports == nil {
		return nil, nil
	}
	return s.exports.ListExports(ctx, principal.Owner(), limit)
}

// GetExport returns one recorded export. Only its owner and admins of the
// same organization may read it.
func (s *DashboardService) GetExport(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Export, error) {
	if s.exports == nil {
		return nil, ErrNotFound
	}
	export, err := s.exports.GetExport(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if export.Owner == principal.Owner() {
		return export, nil
	}
	if principal.IsAdmin() && export.OrgID != nil && *export.OrgID == principal.OrgID {
		return export, nil
	}
	return nil, ErrPermissionDenied
}

func buildFileName(report aggregate.Report, format model.ExportFormat) string {
	subject := sanitizeFileName(strings.ToLower(report.Filter.Product))
	if subject == "" {
		subject = "all"
	}
	period := report.GeneratedAt.Format("20060102")
	if report.Filter.From != "" || report.Filter.To != "" {
		period = fmt.Sprintf("%s-%s", compactDate(report.Filter.From), compactDate(report.Filter.To))
	}
	ext := "xlsx"
	if format == model.ExportFormatPDF {
		ext = "pdf"
	}
	return fmt.Sprintf("tenders-%s-%s-%s.%s", subject, period, report.Dashboard.Unit, ext)
}

func compactDate(value string) string {
	if value == "" {
		return "open"
	}
	return strings.ReplaceAll(value, "-", "")
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, store.ErrNotFound)
}
