package reporting

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/domain/ration"
	"github.com/mamadbah2/herdbook/internal/metrics"
	repo "github.com/mamadbah2/herdbook/internal/repository/sheets"
)

const dateLayout = "2006-01-02"

// Archive stores generated reports.
type Archive interface {
	SaveFeedReport(ctx context.Context, report models.FeedReport) error
}

// Service compares the ration plans recorded in the ledger with the feed
// actually distributed.
type Service struct {
	repo    repo.Repository
	archive Archive
	metrics *metrics.Collector
	logger  *zap.Logger
}

// NewService wires a new reporting service instance. archive may be nil.
func NewService(repository repo.Repository, archive Archive, collector *metrics.Collector, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repository, archive: archive, metrics: collector, logger: logger}
}

// WeeklyFeedReport builds the planned-vs-actual report for the week that
// contains now (Monday 00:00 UTC through now) and its text rendering.
func (s *Service) WeeklyFeedReport(ctx context.Context, now time.Time) (models.FeedReport, string, error) {
	end := now.UTC()
	start := mondayStart(end)
	days := int(dayStart(end).Sub(start).Hours()/24) + 1

	plans, err := s.latestPlans(ctx, end)
	if err != nil {
		return models.FeedReport{}, "", err
	}

	actual, err := s.feedTotals(ctx, start, end)
	if err != nil {
		return models.FeedReport{}, "", err
	}

	herdSet := make(map[string]struct{}, len(plans)+len(actual))
	for herd := range plans {
		herdSet[herd] = struct{}{}
	}
	for herd := range actual {
		herdSet[herd] = struct{}{}
	}

	herds := make([]string, 0, len(herdSet))
	for herd := range herdSet {
		herds = append(herds, herd)
	}
	sort.Strings(herds)

	report := models.FeedReport{
		PeriodStart: start,
		PeriodEnd:   end,
		Days:        days,
		CreatedAt:   end,
	}

	for _, herd := range herds {
		line := models.HerdFeedSummary{Herd: herd, ActualKg: round1(actual[herd])}
		if plan, ok := plans[herd]; ok {
			line.Category = plan.Category
			line.Count = plan.Count
			line.PlannedKg = round1(plan.DailyRation * float64(plan.Count) * float64(days))
		}
		if line.PlannedKg > 0 {
			variance := round1((line.ActualKg - line.PlannedKg) / line.PlannedKg * 100)
			line.VariancePct = &variance
		}
		report.Herds = append(report.Herds, line)
	}

	if s.archive != nil {
		if err := s.archive.SaveFeedReport(ctx, report); err != nil {
			s.metrics.IntegrationError("mongodb")
			s.logger.Warn("failed to archive feed report", zap.Error(err))
		}
	}

	return report, FormatReport(report), nil
}

// FormatReport renders a report as a chat message.
func FormatReport(report models.FeedReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Feed report %s to %s (%d days)",
		report.PeriodStart.Format(dateLayout), report.PeriodEnd.Format(dateLayout), report.Days)

	if len(report.Herds) == 0 {
		b.WriteString(": no ration plans or feed records yet.")
		return b.String()
	}

	for _, line := range report.Herds {
		b.WriteString("\n- ")
		b.WriteString(line.Herd)
		if line.Category != "" {
			fmt.Fprintf(&b, " (%s x%d)", ration.CategoryLabel(ration.Category(line.Category)), line.Count)
		}
		if line.PlannedKg > 0 {
			fmt.Fprintf(&b, ": planned %.1f kg, actual %.1f kg", line.PlannedKg, line.ActualKg)
		} else {
			fmt.Fprintf(&b, ": no plan, actual %.1f kg", line.ActualKg)
		}
		if line.VariancePct != nil {
			fmt.Fprintf(&b, " (%+.1f%%)", *line.VariancePct)
		}
	}

	return b.String()
}

// latestPlans returns, per herd, the last ration plan recorded on or before end.
func (s *Service) latestPlans(ctx context.Context, end time.Time) (map[string]models.RationPlan, error) {
	rows, err := s.repo.ReadRange(ctx, repo.RationsRange)
	if err != nil {
		s.metrics.IntegrationError("sheets")
		return nil, fmt.Errorf("load rations range: %w", err)
	}

	plans := make(map[string]models.RationPlan)
	for _, row := range rows {
		if len(row) < 8 {
			continue
		}

		date, err := parseDate(row[0])
		if err != nil {
			s.logger.Debug("skip ration row with invalid date", zap.Any("value", row[0]), zap.Error(err))
			continue
		}
		if date.After(end) {
			continue
		}

		count, err := parseInt(row[5])
		if err != nil {
			s.logger.Debug("skip ration row with invalid count", zap.Any("value", row[5]), zap.Error(err))
			continue
		}

		daily, err := parseFloat(row[6])
		if err != nil {
			s.logger.Debug("skip ration row with invalid daily ration", zap.Any("value", row[6]), zap.Error(err))
			continue
		}

		herd := herdName(row[1])
		if prev, ok := plans[herd]; ok && prev.Date.After(date) {
			continue
		}

		weight, _ := parseFloat(row[4])
		monthly, _ := parseFloat(row[7])
		plans[herd] = models.RationPlan{
			Date:         date,
			Herd:         herd,
			Category:     fmt.Sprint(row[2]),
			Stage:        fmt.Sprint(row[3]),
			Weight:       weight,
			Count:        count,
			DailyRation:  daily,
			TotalMonthly: monthly,
		}
	}

	return plans, nil
}

// feedTotals sums the feed distributed per herd between start and end.
func (s *Service) feedTotals(ctx context.Context, start, end time.Time) (map[string]float64, error) {
	rows, err := s.repo.ReadRange(ctx, repo.FeedRange)
	if err != nil {
		s.metrics.IntegrationError("sheets")
		return nil, fmt.Errorf("load feed range: %w", err)
	}

	totals := make(map[string]float64)
	for _, row := range rows {
		if len(row) < 3 {
			continue
		}

		date, err := parseDate(row[0])
		if err != nil || date.Before(start) || date.After(end) {
			continue
		}

		kg, err := parseFloat(row[2])
		if err != nil {
			s.logger.Debug("skip feed row with invalid kg", zap.Any("value", row[2]), zap.Error(err))
			continue
		}

		totals[herdName(row[1])] += kg
	}

	return totals, nil
}

func herdName(value interface{}) string {
	herd := strings.TrimSpace(fmt.Sprint(value))
	if herd == "" || herd == "<nil>" {
		return models.DefaultHerd
	}
	return herd
}

func mondayStart(t time.Time) time.Time {
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	return dayStart(t.AddDate(0, 0, -daysSinceMonday))
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func parseDate(value interface{}) (time.Time, error) {
	str := strings.TrimSpace(fmt.Sprint(value))
	if str == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if len(str) > 10 {
		str = str[:10]
	}
	return time.Parse(dateLayout, str)
}

func parseInt(value interface{}) (int, error) {
	f, err := parseFloat(value)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("not a whole number: %v", f)
	}
	return int(f), nil
}

func parseFloat(value interface{}) (float64, error) {
	str := strings.TrimSpace(fmt.Sprint(value))
	if str == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	f, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number: %q", str)
	}
	return f, nil
}
