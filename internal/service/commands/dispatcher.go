package commands

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/domain/ration"
	"github.com/mamadbah2/herdbook/internal/repository/sheets"
	"github.com/mamadbah2/herdbook/internal/service/feeding"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

// ErrLedgerDisabled indicates a command needs the sheet ledger but none is configured.
var ErrLedgerDisabled = errors.New("feed ledger is not configured")

const dateFormat = "2006-01-02"

// Usage is sent back for /help and for commands that could not be understood.
const Usage = "Commands:\n" +
	"/ration <category> <weight kg> [stage] [count] [herd]\n" +
	"  categories: sow-gestating, sow-lactating, boar, piglet, grower, finisher\n" +
	"  stages: early, mid (default), late\n" +
	"/feed <kg> [herd]\n" +
	"/help"

// Dispatcher executes parsed commands.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	feeding feeding.Calculator
	ledger  sheets.Repository
	logger  *zap.Logger
	now     func() time.Time
}

// NewService constructs a command dispatcher. ledger may be nil, in which
// case /feed is refused.
func NewService(calculator feeding.Calculator, ledger sheets.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		feeding: calculator,
		ledger:  ledger,
		logger:  logger,
		now:     time.Now,
	}
}

// HandleCommand runs cmd and returns the reply text.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandRation:
		return s.handleRation(ctx, cmd)
	case models.CommandFeed:
		return s.handleFeed(ctx, cmd)
	case models.CommandHelp:
		return Usage, nil
	default:
		return "", ErrUnsupportedCommand
	}
}

func (s *Service) handleRation(ctx context.Context, cmd models.Command) (string, error) {
	req, err := buildFeedingRequest(cmd.Args)
	if err != nil {
		return "", err
	}

	resp, err := s.feeding.Calculate(ctx, req)
	switch {
	case errors.Is(err, feeding.ErrInvalidRequest),
		errors.Is(err, feeding.ErrUnknownCategory),
		errors.Is(err, feeding.ErrUnknownStage):
		return "", fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	case err != nil:
		return "", err
	}

	category := ration.Category(req.Category)
	stage := ration.Stage(req.Stage)

	return fmt.Sprintf("Ration for %d x %s (%.1f kg, %s stage): %.2f kg/day each, %.1f kg per month for the herd.\n"+
		"Protein %.1f%% | Energy %.0f kcal/kg | Lysine %.2f%% | Calcium %.1f%% | Phosphorus %.1f%%",
		req.Count, ration.CategoryLabel(category), req.Weight, ration.StageLabel(stage),
		resp.DailyRation, resp.TotalMonthly,
		resp.Protein, resp.Energy, resp.Lysine, resp.Calcium, resp.Phosphorus), nil
}

func (s *Service) handleFeed(ctx context.Context, cmd models.Command) (string, error) {
	if s.ledger == nil {
		return "", ErrLedgerDisabled
	}

	record, err := buildFeedRecord(cmd.Args, s.now().UTC())
	if err != nil {
		return "", err
	}

	values := []interface{}{record.Date.Format(dateFormat), record.Herd, record.FeedKg}
	if err := s.ledger.WriteRow(ctx, sheets.FeedRange, values); err != nil {
		return "", fmt.Errorf("save feed record: %w", err)
	}

	return fmt.Sprintf("Feed logged for %s on %s: %.2f kg.", record.Herd, record.Date.Format(dateFormat), record.FeedKg), nil
}

// buildFeedingRequest reads: category weight [stage] [count] [herd...].
func buildFeedingRequest(args []string) (models.FeedingRequest, error) {
	if len(args) < 2 {
		return models.FeedingRequest{}, ErrInvalidArguments
	}

	weight, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return models.FeedingRequest{}, ErrInvalidArguments
	}

	req := models.FeedingRequest{
		Category: args[0],
		Weight:   weight,
		Stage:    string(ration.StageMid),
		Count:    1,
	}

	rest := args[2:]
	if len(rest) > 0 {
		if _, err := strconv.Atoi(rest[0]); err != nil {
			req.Stage = rest[0]
			rest = rest[1:]
		}
	}
	if len(rest) > 0 {
		if count, err := strconv.Atoi(rest[0]); err == nil {
			req.Count = count
			rest = rest[1:]
		}
	}
	if len(rest) > 0 {
		req.Herd = strings.Join(rest, " ")
	}

	return req, nil
}

func buildFeedRecord(args []string, now time.Time) (models.FeedRecord, error) {
	if len(args) == 0 {
		return models.FeedRecord{}, ErrInvalidArguments
	}

	feedKg, err := strconv.ParseFloat(args[0], 64)
	if err != nil || math.IsNaN(feedKg) || math.IsInf(feedKg, 0) || feedKg <= 0 {
		return models.FeedRecord{}, ErrInvalidArguments
	}

	herd := models.DefaultHerd
	if len(args) > 1 {
		herd = strings.Join(args[1:], " ")
	}

	return models.FeedRecord{Date: now, Herd: herd, FeedKg: feedKg}, nil
}
