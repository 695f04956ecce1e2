package calendar

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"krishi-advisor/api/internal/advisory/types"
)

func TestMapTemplates(t *testing.T) {
	plan := types.FarmPlan{ID: "plan-1", Crop: "wheat", LandAcres: 2, SowingDate: "2025-11-10"}
	templates := []types.CropCalendarTaskTemplate{
		{DayFromSowing: -14, Stage: "Land prep", Title: "Plough", Description: "Deep ploughing", QuantityHint: "2 acres"},
		{DayFromSowing: 0, Stage: "Sowing", Title: "Sow"},
		{DayFromSowing: 25, Stage: "Vegetative", Title: "Irrigate"},
	}

	got, err := MapTemplates(plan, templates, &SequenceGenerator{Prefix: "t"})
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, types.CalendarTask{
		ID: "t-1", FarmPlanID: "plan-1", Date: "2025-10-27", Stage: "Land prep",
		Title: "Plough", Description: "Deep ploughing", QuantityHint: "2 acres",
	}, got[0])
	assert.Equal(t, "2025-11-10", got[1].Date)
	assert.Equal(t, "2025-12-05", got[2].Date)
	assert.Equal(t, "t-3", got[2].ID)
	for _, task := range got {
		assert.False(t, task.Completed)
		assert.Nil(t, task.CompletedAt)
	}
}

func TestMapTemplatesAcrossYearEnd(t *testing.T) {
	plan := types.FarmPlan{ID: "p", SowingDate: "2024-12-20"}
	got, err := MapTemplates(plan, []types.CropCalendarTaskTemplate{{DayFromSowing: 75}}, &SequenceGenerator{})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-05", got[0].Date)
	assert.Equal(t, "task-1", got[0].ID)
}

func TestMapTemplatesBadDate(t *testing.T) {
	_, err := MapTemplates(types.FarmPlan{SowingDate: "10/11/2025"}, nil, UUIDGenerator{})
	assert.Error(t, err)
}

func TestUUIDGenerator(t *testing.T) {
	got, err := MapTemplates(types.FarmPlan{SowingDate: "2025-06-01"},
		[]types.CropCalendarTaskTemplate{{}, {}}, nil)
	require.NoError(t, err)
	for _, task := range got {
		_, err := uuid.Parse(task.ID)
		assert.NoError(t, err)
	}
	assert.NotEqual(t, got[0].ID, got[1].ID)
}

func TestSequenceGeneratorConcurrent(t *testing.T) {
	g := &SequenceGenerator{Prefix: "x"}
	seen := sync.Map{}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, dup := seen.LoadOrStore(g.NewID(), true)
			assert.False(t, dup)
		}()
	}
	wg.Wait()
}

func TestUpcoming(t *testing.T) {
	tasks := []types.CalendarTask{
		{ID: "a", Date: "2025-06-01"},
		{ID: "b", Date: "2025-06-03", Completed: true},
		{ID: "c", Date: "2025-06-07"},
		{ID: "d", Date: "2025-06-08"},
		{ID: "e", Date: "bogus"},
	}
	from := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)
	got := Upcoming(tasks, from, 7)
	ids := []string{}
	for _, task := range got {
		ids = append(ids, task.ID)
	}
	assert.Equal(t, []string{"a", "c"}, ids)

	none := Upcoming(tasks, from.AddDate(1, 0, 0), 7)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
