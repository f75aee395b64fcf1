package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	repo "github.com/mamadbah2/herdbook/internal/repository/sheets"
)

type fakeLedger struct {
	rows    map[string][][]interface{}
	readErr error
}

func (f *fakeLedger) WriteRow(context.Context, string, []interface{}) error { return nil }

func (f *fakeLedger) ReadRange(_ context.Context, sheetRange string) ([][]interface{}, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.rows[sheetRange], nil
}

type fakeArchive struct {
	reports []models.FeedReport
	err     error
}

func (f *fakeArchive) SaveFeedReport(_ context.Context, report models.FeedReport) error {
	f.reports = append(f.reports, report)
	return f.err
}

var friday = time.Date(2026, 10, 16, 20, 0, 0, 0, time.UTC)

func ledgerFixture() *fakeLedger {
	return &fakeLedger{rows: map[string][][]interface{}{
		repo.RationsRange: {
			{"2026-10-01", "maternity", "sow-gestating", "mid", 200.0, 4.0, 2.5, 300.0, "id0"},
			{"2026-10-10", "maternity", "sow-gestating", "late", 200.0, 4.0, 2.88, 345.6, "id1"},
			{"2026-10-20", "maternity", "sow-lactating", "mid", 210.0, 4.0, 6.2, 744.0, "future"},
			{"2026-10-13", "nursery", "grower", "mid", 40.0, 10.0, 1.4, 420.0, "id2"},
			{"not-a-date", "nursery", "grower", "mid", 40.0, 10.0, 9.9, 2970.0, "bad"},
			{"2026-10-13", "short"},
		},
		repo.FeedRange: {
			{"2026-10-11", "maternity", 99.0},
			{"2026-10-12", "maternity", 30.0},
			{"2026-10-14", "maternity", 30.0},
			{"2026-10-13", "nursery", "35"},
			{"2026-10-15", "", 12.5},
			{"2026-10-15", "nursery", "a lot"},
		},
	}}
}

func TestWeeklyFeedReport(t *testing.T) {
	archive := &fakeArchive{}
	svc := NewService(ledgerFixture(), archive, nil, nil)

	report, text, err := svc.WeeklyFeedReport(context.Background(), friday)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC), report.PeriodStart)
	assert.Equal(t, 5, report.Days)
	require.Len(t, report.Herds, 3)

	assert.Equal(t, "default", report.Herds[0].Herd)
	assert.Equal(t, 12.5, report.Herds[0].ActualKg)
	assert.Nil(t, report.Herds[0].VariancePct)

	maternity := report.Herds[1]
	assert.Equal(t, "sow-gestating", maternity.Category)
	assert.Equal(t, 4, maternity.Count)
	assert.InDelta(t, 57.6, maternity.PlannedKg, 1e-9)
	assert.InDelta(t, 60.0, maternity.ActualKg, 1e-9)
	require.NotNil(t, maternity.VariancePct)
	assert.InDelta(t, 4.2, *maternity.VariancePct, 1e-9)

	nursery := report.Herds[2]
	assert.InDelta(t, 70.0, nursery.PlannedKg, 1e-9)
	assert.InDelta(t, 35.0, nursery.ActualKg, 1e-9)
	assert.InDelta(t, -50.0, *nursery.VariancePct, 1e-9)

	assert.Equal(t, "Feed report 2026-10-12 to 2026-10-16 (5 days)\n"+
		"- default: no plan, actual 12.5 kg\n"+
		"- maternity (Gestating sow x4): planned 57.6 kg, actual 60.0 kg (+4.2%)\n"+
		"- nursery (Grower x10): planned 70.0 kg, actual 35.0 kg (-50.0%)", text)

	require.Len(t, archive.reports, 1)
	assert.Equal(t, report, archive.reports[0])
}

func TestWeeklyFeedReport_SkipsNonFiniteCells(t *testing.T) {
	ledger := ledgerFixture()
	ledger.rows[repo.FeedRange] = append(ledger.rows[repo.FeedRange],
		[]interface{}{"2026-10-15", "maternity", "NaN"},
		[]interface{}{"2026-10-15", "nursery", "+Inf"},
	)
	ledger.rows[repo.RationsRange] = append(ledger.rows[repo.RationsRange],
		[]interface{}{"2026-10-14", "quarantine", "boar", "mid", 230.0, 1.0, "NaN", 0.0, "id3"},
	)
	svc := NewService(ledger, nil, nil, nil)

	report, text, err := svc.WeeklyFeedReport(context.Background(), friday)
	require.NoError(t, err)
	require.Len(t, report.Herds, 3)
	assert.InDelta(t, 60.0, report.Herds[1].ActualKg, 1e-9)
	assert.InDelta(t, 4.2, *report.Herds[1].VariancePct, 1e-9)
	assert.InDelta(t, 35.0, report.Herds[2].ActualKg, 1e-9)
	assert.NotContains(t, text, "NaN")
}

func TestWeeklyFeedReport_Empty(t *testing.T) {
	svc := NewService(&fakeLedger{}, nil, nil, nil)

	monday := time.Date(2026, 10, 12, 7, 0, 0, 0, time.UTC)
	report, text, err := svc.WeeklyFeedReport(context.Background(), monday)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Days)
	assert.Empty(t, report.Herds)
	assert.Equal(t, "Feed report 2026-10-12 to 2026-10-12 (1 days): no ration plans or feed records yet.", text)
}

func TestWeeklyFeedReport_SundayClosesTheWeek(t *testing.T) {
	svc := NewService(&fakeLedger{}, nil, nil, nil)

	sunday := time.Date(2026, 10, 18, 23, 0, 0, 0, time.UTC)
	report, _, err := svc.WeeklyFeedReport(context.Background(), sunday)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC), report.PeriodStart)
	assert.Equal(t, 7, report.Days)
}

func TestWeeklyFeedReport_LedgerError(t *testing.T) {
	svc := NewService(&fakeLedger{readErr: errors.New("403 forbidden")}, nil, nil, nil)

	_, _, err := svc.WeeklyFeedReport(context.Background(), friday)
	assert.ErrorContains(t, err, "load rations range")
}

func TestWeeklyFeedReport_ArchiveFailureIsNotFatal(t *testing.T) {
	svc := NewService(ledgerFixture(), &fakeArchive{err: errors.New("mongo down")}, nil, nil)

	report, _, err := svc.WeeklyFeedReport(context.Background(), friday)
	require.NoError(t, err)
	assert.Len(t, report.Herds, 3)
}

func TestParseHelpers(t *testing.T) {
	n, err := parseInt(4.0)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = parseInt(4.5)
	assert.Error(t, err)

	d, err := parseDate("2026-10-14T08:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 14, d.Day())

	_, err = parseFloat("")
	assert.Error(t, err)

	for _, v := range []interface{}{"NaN", "inf", "-Infinity", "1e400"} {
		_, err = parseFloat(v)
		assert.Error(t, err, v)
	}
}
