package series_test

import (
	"context"
	"encoding/json"
	"sort"
	"testing"
	"time"

	"github.com/septivank/energy-metering-api/internal/apperrors"
	"github.com/septivank/energy-metering-api/internal/db"
	"github.com/septivank/energy-metering-api/internal/series"
)

type fakeSeriesRepo struct {
	months []db.ConsumptionRecord
	days   []db.ConsumptionRecord
}

func (r *fakeSeriesRepo) SeriesRows(ctx context.Context, userID int64, resolution db.Resolution) ([]db.ConsumptionRecord, error) {
	return r.forUser(userID, resolution), nil
}

func (r *fakeSeriesRepo) SeriesWindow(ctx context.Context, userID int64, resolution db.Resolution, start time.Time, limit int) ([]db.ConsumptionRecord, error) {
	var window []db.ConsumptionRecord
	for _, rec := range r.forUser(userID, resolution) {
		if !rec.Timestamp.Before(start) {
			window = append(window, rec)
		}
	}
	sort.Slice(window, func(i, j int) bool { return window[i].Timestamp.Before(window[j].Timestamp) })
	if len(window) > limit {
		window = window[:limit]
	}
	return window, nil
}

func (r *fakeSeriesRepo) forUser(userID int64, resolution db.Resolution) []db.ConsumptionRecord {
	source := r.days
	if resolution == db.ResolutionMonthly {
		source = r.months
	}
	var rows []db.ConsumptionRecord
	for _, rec := range source {
		if rec.UserID == userID {
			rows = append(rows, rec)
		}
	}
	return rows
}

func record(userID int64, date string, consumption, temperature float64) db.ConsumptionRecord {
	ts, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return db.ConsumptionRecord{UserID: userID, Timestamp: ts, Consumption: consumption, Temperature: temperature}
}

func TestBounds_IndependentMinMaxPerField(t *testing.T) {
	repo := &fakeSeriesRepo{
		months: []db.ConsumptionRecord{
			record(1, "2017-01-01", 10, 5),
			record(1, "2017-02-01", 30, -2),
		},
		days: []db.ConsumptionRecord{
			record(1, "2017-02-24", 1.5, 3),
			record(1, "2017-02-23", 2.5, 8),
		},
	}
	engine := series.NewEngine(repo)

	bounds, err := engine.Bounds(context.Background(), 1)
	if err != nil {
		t.Fatalf("Bounds failed: %v", err)
	}

	if bounds.Months.Consumption.Minimum != 10 || bounds.Months.Consumption.Maximum != 30 {
		t.Errorf("Expected months consumption {10 30}, got %+v", bounds.Months.Consumption)
	}
	if bounds.Months.Temperature.Minimum != -2 || bounds.Months.Temperature.Maximum != 5 {
		t.Errorf("Expected months temperature {-2 5}, got %+v", bounds.Months.Temperature)
	}
	if bounds.Months.Timestamp.Minimum != "2017-01-01" || bounds.Months.Timestamp.Maximum != "2017-02-01" {
		t.Errorf("Expected months timestamp {2017-01-01 2017-02-01}, got %+v", bounds.Months.Timestamp)
	}

	// The earliest day holds the maximum consumption: pairs are independent.
	if bounds.Days.Consumption.Minimum != 1.5 || bounds.Days.Consumption.Maximum != 2.5 {
		t.Errorf("Expected days consumption {1.5 2.5}, got %+v", bounds.Days.Consumption)
	}
	if bounds.Days.Timestamp.Minimum != "2017-02-23" || bounds.Days.Timestamp.Maximum != "2017-02-24" {
		t.Errorf("Expected days timestamp {2017-02-23 2017-02-24}, got %+v", bounds.Days.Timestamp)
	}
}

func TestBounds_TruncatesSubDayTimestamps(t *testing.T) {
	ts := time.Date(2017, 2, 24, 13, 45, 0, 0, time.UTC)
	repo := &fakeSeriesRepo{
		months: []db.ConsumptionRecord{record(1, "2017-01-01", 10, 5)},
		days:   []db.ConsumptionRecord{{UserID: 1, Timestamp: ts, Consumption: 1, Temperature: 1}},
	}
	engine := series.NewEngine(repo)

	bounds, err := engine.Bounds(context.Background(), 1)
	if err != nil {
		t.Fatalf("Bounds failed: %v", err)
	}

	if bounds.Days.Timestamp.Minimum != "2017-02-24" || bounds.Days.Timestamp.Maximum != "2017-02-24" {
		t.Errorf("Expected date-only timestamps, got %+v", bounds.Days.Timestamp)
	}
}

func TestBounds_EmptySeriesIsBadState(t *testing.T) {
	repo := &fakeSeriesRepo{
		months: []db.ConsumptionRecord{record(1, "2017-01-01", 10, 5)},
	}
	engine := series.NewEngine(repo)

	_, err := engine.Bounds(context.Background(), 1)
	if !apperrors.IsBadState(err) {
		t.Errorf("Expected BadState for empty days series, got %v", err)
	}
}

func TestPage_StartBoundAndLimit(t *testing.T) {
	repo := &fakeSeriesRepo{
		days: []db.ConsumptionRecord{
			record(1, "2017-01-31", 1, 1),
			record(1, "2017-02-01", 2, 2),
			record(1, "2017-02-02", 3, 3),
		},
	}
	engine := series.NewEngine(repo)

	start := time.Date(2017, 2, 1, 0, 0, 0, 0, time.UTC)
	rows, err := engine.Page(context.Background(), 1, db.ResolutionDaily, start, 1)
	if err != nil {
		t.Fatalf("Page failed: %v", err)
	}

	if len(rows) != 1 {
		t.Fatalf("Expected exactly 1 row, got %d", len(rows))
	}
	if rows[0].Date != "2017-02-01" {
		t.Errorf("Expected earliest date >= start, got %s", rows[0].Date)
	}
	if rows[0].Consumption != 2 || rows[0].Temperature != 2 {
		t.Errorf("Expected row values 2/2, got %+v", rows[0])
	}
}

func TestPage_EmptyWindowIsNotAnError(t *testing.T) {
	repo := &fakeSeriesRepo{}
	engine := series.NewEngine(repo)

	start := time.Date(2017, 2, 1, 0, 0, 0, 0, time.UTC)
	rows, err := engine.Page(context.Background(), 1, db.ResolutionDaily, start, 10)
	if err != nil {
		t.Fatalf("Page failed: %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Errorf("Expected empty non-nil slice, got %v", rows)
	}
}

func TestRow_MarshalsAsTriple(t *testing.T) {
	row := series.Row{Date: "2017-02-24", Consumption: 1.5, Temperature: -3}

	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	expected := `["2017-02-24",1.5,-3]`
	if string(data) != expected {
		t.Errorf("Expected %s, got %s", expected, string(data))
	}
}
