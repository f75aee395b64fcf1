package feeding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/domain/ration"
	"github.com/mamadbah2/herdbook/internal/metrics"
	"github.com/mamadbah2/herdbook/internal/repository/sheets"
)

const (
	dateFormat = "2006-01-02"

	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 200

	// MaxWeightKg bounds live weight; it matches the binding tag on
	// models.FeedingRequest.
	MaxWeightKg = 1000

	// otherLabel replaces unknown codes in metric labels.
	otherLabel = "other"
)

var (
	// ErrInvalidRequest indicates a request that must not reach the calculator.
	ErrInvalidRequest = errors.New("invalid feeding request")
	// ErrUnknownCategory is returned in strict mode for unrecognized categories.
	ErrUnknownCategory = errors.New("unknown animal category")
	// ErrUnknownStage is returned in strict mode for unrecognized stages.
	ErrUnknownStage = errors.New("unknown physiological stage")
	// ErrHistoryDisabled indicates no calculation archive is configured.
	ErrHistoryDisabled = errors.New("calculation history is not configured")
)

// HistoryStore archives calculations.
type HistoryStore interface {
	SaveCalculation(ctx context.Context, calc models.RationCalculation) error
	ListCalculations(ctx context.Context, herd string, limit int) ([]models.RationCalculation, error)
}

// Calculator is the operation set exposed to the HTTP and command layers.
type Calculator interface {
	Calculate(ctx context.Context, req models.FeedingRequest) (models.FeedingResponse, error)
	History(ctx context.Context, herd string, limit int) ([]models.RationCalculation, error)
	Labels() models.LabelCatalog
}

// Service validates requests, runs the ration calculator and archives the
// outcome. Archiving is best effort: a failing store never fails a calculation.
type Service struct {
	history HistoryStore
	ledger  sheets.Repository
	metrics *metrics.Collector
	strict  bool
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
}

// NewService wires a feeding service. history, ledger and collector may be nil.
func NewService(history HistoryStore, ledger sheets.Repository, collector *metrics.Collector, strict bool, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		history: history,
		ledger:  ledger,
		metrics: collector,
		strict:  strict,
		logger:  logger,
		now:     time.Now,
		newID:   func() string { return uuid.New().String() },
	}
}

// Calculate returns the ration recommendation for req.
func (s *Service) Calculate(ctx context.Context, req models.FeedingRequest) (models.FeedingResponse, error) {
	if err := Validate(req); err != nil {
		return models.FeedingResponse{}, err
	}

	category, knownCategory := ration.ParseCategory(req.Category)
	stage, knownStage := ration.ParseStage(req.Stage)

	if s.strict {
		if !knownCategory {
			return models.FeedingResponse{}, fmt.Errorf("%w: %q", ErrUnknownCategory, req.Category)
		}
		if !knownStage {
			return models.FeedingResponse{}, fmt.Errorf("%w: %q", ErrUnknownStage, req.Stage)
		}
	}

	result := ration.Calculate(ration.Params{
		Category: category,
		Weight:   req.Weight,
		Stage:    stage,
		Count:    req.Count,
	})
	resp := toResponse(result)

	categoryLabel, stageLabel := string(category), string(stage)
	if !knownCategory {
		categoryLabel = otherLabel
	}
	if !knownStage {
		stageLabel = otherLabel
	}
	s.metrics.ObserveRation(categoryLabel, stageLabel, resp.DailyRation)

	s.logger.Debug("ration calculated",
		zap.String("category", string(category)),
		zap.String("stage", string(stage)),
		zap.Float64("weight", req.Weight),
		zap.Int("count", req.Count),
		zap.Float64("daily_ration", resp.DailyRation),
		zap.Bool("known_category", knownCategory),
		zap.Bool("known_stage", knownStage))

	s.archive(ctx, req, category, stage, resp)

	return resp, nil
}

// History lists archived calculations newest first. herd may be empty.
func (s *Service) History(ctx context.Context, herd string, limit int) ([]models.RationCalculation, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}

	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}

	calcs, err := s.history.ListCalculations(ctx, strings.TrimSpace(herd), limit)
	if err != nil {
		s.metrics.IntegrationError("mongodb")
		return nil, fmt.Errorf("list calculations: %w", err)
	}
	return calcs, nil
}

// Labels returns the display catalog for category and stage codes.
func (s *Service) Labels() models.LabelCatalog {
	catalog := models.LabelCatalog{}
	for _, c := range ration.Categories() {
		catalog.Categories = append(catalog.Categories, models.CodeLabel{Code: string(c), Label: ration.CategoryLabel(c)})
	}
	for _, st := range ration.Stages() {
		catalog.Stages = append(catalog.Stages, models.CodeLabel{Code: string(st), Label: ration.StageLabel(st)})
	}
	return catalog
}

// Validate rejects requests the calculator must never see: a weight that is
// not finite or outside (0, MaxWeightKg], a count below one, or blank codes.
func Validate(req models.FeedingRequest) error {
	switch {
	case strings.TrimSpace(req.Category) == "":
		return fmt.Errorf("%w: category is required", ErrInvalidRequest)
	case strings.TrimSpace(req.Stage) == "":
		return fmt.Errorf("%w: stage is required", ErrInvalidRequest)
	case math.IsNaN(req.Weight) || math.IsInf(req.Weight, 0) || req.Weight <= 0:
		return fmt.Errorf("%w: weight must be a positive number", ErrInvalidRequest)
	case req.Weight > MaxWeightKg:
		return fmt.Errorf("%w: weight must not exceed %d kg", ErrInvalidRequest, MaxWeightKg)
	case req.Count < 1:
		return fmt.Errorf("%w: count must be at least 1", ErrInvalidRequest)
	}
	return nil
}

func (s *Service) archive(ctx context.Context, req models.FeedingRequest, category ration.Category, stage ration.Stage, resp models.FeedingResponse) {
	if s.history == nil && s.ledger == nil {
		return
	}

	herd := strings.TrimSpace(req.Herd)
	if herd == "" {
		herd = models.DefaultHerd
	}

	calc := models.RationCalculation{
		ID:        s.newID(),
		Herd:      herd,
		Request:   req,
		Result:    resp,
		CreatedAt: s.now().UTC(),
	}

	if s.history != nil {
		if err := s.history.SaveCalculation(ctx, calc); err != nil {
			s.metrics.IntegrationError("mongodb")
			s.logger.Warn("failed to archive calculation", zap.String("id", calc.ID), zap.Error(err))
		}
	}

	if s.ledger != nil {
		row := []interface{}{
			calc.CreatedAt.Format(dateFormat),
			herd,
			string(category),
			string(stage),
			req.Weight,
			req.Count,
			resp.DailyRation,
			resp.TotalMonthly,
			calc.ID,
		}
		if err := s.ledger.WriteRow(ctx, sheets.RationsRange, row); err != nil {
			s.metrics.IntegrationError("sheets")
			s.logger.Warn("failed to write ration plan row", zap.String("id", calc.ID), zap.Error(err))
		}
	}
}

func toResponse(r ration.Result) models.FeedingResponse {
	return models.FeedingResponse{
		DailyRation:  r.DailyRation,
		Protein:      r.Protein,
		Energy:       r.Energy,
		Lysine:       r.Lysine,
		Calcium:      r.Calcium,
		Phosphorus:   r.Phosphorus,
		TotalMonthly: r.TotalMonthly,
	}
}
