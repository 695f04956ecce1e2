// Package calendar turns crop task templates into dated tasks of a farm plan.
package calendar

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"krishi-advisor/api/internal/advisory/types"
)

const dateLayout = "2006-01-02"

// IDGenerator hands out task identifiers.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator issues random v4 UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.NewString() }

// SequenceGenerator issues "<prefix>-1", "<prefix>-2", ... and is safe for
// concurrent use. Useful where IDs must be predictable.
type SequenceGenerator struct {
	Prefix string
	n      atomic.Int64
}

func (g *SequenceGenerator) NewID() string {
	prefix := g.Prefix
	if prefix == "" {
		prefix = "task"
	}
	return fmt.Sprintf("%s-%d", prefix, g.n.Add(1))
}

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q (want YYYY-MM-DD): %w", s, err)
	}
	return d, nil
}

// MapTemplates dates every template relative to the plan's sowing day, in
// template order. Tasks start uncompleted.
func MapTemplates(plan types.FarmPlan, templates []types.CropCalendarTaskTemplate, ids IDGenerator) ([]types.CalendarTask, error) {
	sowing, err := ParseDate(plan.SowingDate)
	if err != nil {
		return nil, fmt.Errorf("map templates: %w", err)
	}
	if ids == nil {
		ids = UUIDGenerator{}
	}

	out := make([]types.CalendarTask, 0, len(templates))
	for _, t := range templates {
		out = append(out, types.CalendarTask{
			ID:           ids.NewID(),
			FarmPlanID:   plan.ID,
			Date:         sowing.AddDate(0, 0, t.DayFromSowing).Format(dateLayout),
			Stage:        t.Stage,
			Title:        t.Title,
			Description:  t.Description,
			QuantityHint: t.QuantityHint,
		})
	}
	return out, nil
}

// Upcoming returns the uncompleted tasks dated within [from, from+days).
func Upcoming(tasks []types.CalendarTask, from time.Time, days int) []types.CalendarTask {
	start := from.UTC().Truncate(24 * time.Hour)
	end := start.AddDate(0, 0, days)
	out := []types.CalendarTask{}
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		d, err := ParseDate(t.Date)
		if err != nil {
			continue
		}
		if !d.Before(start) && d.Before(end) {
			out = append(out, t)
		}
	}
	return out
}
