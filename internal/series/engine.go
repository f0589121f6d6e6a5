package series

import (
	"context"
	"encoding/json"
	"time"

	"github.com/septivank/energy-metering-api/internal/apperrors"
	"github.com/septivank/energy-metering-api/internal/db"
	"github.com/septivank/energy-metering-api/tools/timeparser"
)

// Repo reads consumption rows.
type Repo interface {
	SeriesRows(ctx context.Context, userID int64, resolution db.Resolution) ([]db.ConsumptionRecord, error)
	SeriesWindow(ctx context.Context, userID int64, resolution db.Resolution, start time.Time, limit int) ([]db.ConsumptionRecord, error)
}

// DateBounds is the min/max of a series' timestamps, date-truncated.
type DateBounds struct {
	Minimum string `json:"minimum"`
	Maximum string `json:"maximum"`
}

// ValueBounds is the min/max of a numeric series field.
type ValueBounds struct {
	Minimum float64 `json:"minimum"`
	Maximum float64 `json:"maximum"`
}

// SeriesBounds holds per-field extremes of one series. Each pair is
// computed independently; the row holding the minimum timestamp need not
// hold the minimum consumption.
type SeriesBounds struct {
	Timestamp   DateBounds  `json:"timestamp"`
	Consumption ValueBounds `json:"consumption"`
	Temperature ValueBounds `json:"temperature"`
}

// Bounds summarizes both of a user's series.
type Bounds struct {
	Months SeriesBounds `json:"months"`
	Days   SeriesBounds `json:"days"`
}

// Row is one page entry. It serializes as the triple
// [date, consumption, temperature].
type Row struct {
	Date        string
	Consumption float64
	Temperature float64
}

func (r Row) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{r.Date, r.Consumption, r.Temperature})
}

// Engine answers read-only queries over a user's consumption series.
type Engine struct {
	repo Repo
}

// NewEngine creates a new series query engine.
func NewEngine(repo Repo) *Engine {
	return &Engine{repo: repo}
}

// Bounds computes the independent min/max of timestamp, consumption and
// temperature for both of the user's series. A user with an empty series
// is a violated data invariant and yields a BadState error.
func (e *Engine) Bounds(ctx context.Context, userID int64) (*Bounds, error) {
	months, err := e.repo.SeriesRows(ctx, userID, db.ResolutionMonthly)
	if err != nil {
		return nil, err
	}

	days, err := e.repo.SeriesRows(ctx, userID, db.ResolutionDaily)
	if err != nil {
		return nil, err
	}

	monthBounds, err := seriesBounds(months, "months")
	if err != nil {
		return nil, err
	}

	dayBounds, err := seriesBounds(days, "days")
	if err != nil {
		return nil, err
	}

	return &Bounds{Months: *monthBounds, Days: *dayBounds}, nil
}

// Page returns at most limit rows with timestamp >= start from the
// resolution-selected series, ascending by timestamp, dates truncated to
// day precision.
func (e *Engine) Page(ctx context.Context, userID int64, resolution db.Resolution, start time.Time, limit int) ([]Row, error) {
	records, err := e.repo.SeriesWindow(ctx, userID, resolution, start, limit)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, Row{
			Date:        timeparser.FormatDate(rec.Timestamp),
			Consumption: rec.Consumption,
			Temperature: rec.Temperature,
		})
	}

	return rows, nil
}

func seriesBounds(records []db.ConsumptionRecord, name string) (*SeriesBounds, error) {
	if len(records) == 0 {
		return nil, apperrors.BadState("no rows in " + name + " series")
	}

	first := records[0]
	minTS, maxTS := first.Timestamp, first.Timestamp
	minCons, maxCons := first.Consumption, first.Consumption
	minTemp, maxTemp := first.Temperature, first.Temperature

	for _, rec := range records[1:] {
		if rec.Timestamp.Before(minTS) {
			minTS = rec.Timestamp
		}
		if rec.Timestamp.After(maxTS) {
			maxTS = rec.Timestamp
		}
		if rec.Consumption < minCons {
			minCons = rec.Consumption
		}
		if rec.Consumption > maxCons {
			maxCons = rec.Consumption
		}
		if rec.Temperature < minTemp {
			minTemp = rec.Temperature
		}
		if rec.Temperature > maxTemp {
			maxTemp = rec.Temperature
		}
	}

	return &SeriesBounds{
		Timestamp: DateBounds{
			Minimum: timeparser.FormatDate(minTS),
			Maximum: timeparser.FormatDate(maxTS),
		},
		Consumption: ValueBounds{Minimum: minCons, Maximum: maxCons},
		Temperature: ValueBounds{Minimum: minTemp, Maximum: maxTemp},
	}, nil
}
