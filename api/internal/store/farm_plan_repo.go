package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"krishi-advisor/api/internal/advisory/types"
)

type FarmPlanRepo struct{ DB *sql.DB }

func NewFarmPlanRepo(db *sql.DB) *FarmPlanRepo { return &FarmPlanRepo{DB: db} }

// Create inserts p, filling ID and CreatedAt when they are empty.
func (r *FarmPlanRepo) Create(ctx context.Context, p *types.FarmPlan) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	const q = `
insert into farm_plans (id, user_id, crop, land_acres, sowing_date, created_at)
values ($1,$2,$3,$4,$5,$6)`
	if _, err := r.DB.ExecContext(ctx, q, p.ID, p.UserID, p.Crop, p.LandAcres, p.SowingDate, p.CreatedAt); err != nil {
		return fmt.Errorf("create farm plan: %w", err)
	}
	return nil
}

// Get returns the user's plan with id, or ErrNotFound.
func (r *FarmPlanRepo) Get(ctx context.Context, userID, id string) (*types.FarmPlan, error) {
	const q = `
select id, user_id, crop, land_acres, to_char(sowing_date, 'YYYY-MM-DD'), created_at
from farm_plans
where id = $1 and user_id = $2`
	var p types.FarmPlan
	err := r.DB.QueryRowContext(ctx, q, id, userID).Scan(&p.ID, &p.UserID, &p.Crop, &p.LandAcres, &p.SowingDate, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByUser returns the user's plans, newest first.
func (r *FarmPlanRepo) ListByUser(ctx context.Context, userID string) ([]types.FarmPlan, error) {
	const q = `
select id, user_id, crop, land_acres, to_char(sowing_date, 'YYYY-MM-DD'), created_at
from farm_plans
where user_id = $1
order by created_at desc`
	rows, err := r.DB.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list farm plans: %w", err)
	}
	defer rows.Close()

	out := []types.FarmPlan{}
	for rows.Next() {
		var p types.FarmPlan
		if err := rows.Scan(&p.ID, &p.UserID, &p.Crop, &p.LandAcres, &p.SowingDate, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SaveTasks replaces the tasks of a plan in one transaction.
func (r *FarmPlanRepo) SaveTasks(ctx context.Context, planID string, tasks []types.CalendarTask) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `delete from calendar_tasks where farm_plan_id = $1`, planID); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}
	const q = `
insert into calendar_tasks (id, farm_plan_id, task_date, stage, title, description, quantity_hint, completed, completed_at)
values ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	for _, t := range tasks {
		if _, err = tx.ExecContext(ctx, q, t.ID, planID, t.Date, t.Stage, t.Title, t.Description,
			t.QuantityHint, t.Completed, t.CompletedAt); err != nil {
			return fmt.Errorf("insert task %s: %w", t.ID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListTasks returns the plan's tasks in date order.
func (r *FarmPlanRepo) ListTasks(ctx context.Context, planID string) ([]types.CalendarTask, error) {
	const q = `
select id, farm_plan_id, to_char(task_date, 'YYYY-MM-DD'), stage, title, description, quantity_hint, completed, completed_at
from calendar_tasks
where farm_plan_id = $1
order by task_date, id`
	rows, err := r.DB.QueryContext(ctx, q, planID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	out := []types.CalendarTask{}
	for rows.Next() {
		var (
			t  types.CalendarTask
			at sql.NullTime
		)
		if err := rows.Scan(&t.ID, &t.FarmPlanID, &t.Date, &t.Stage, &t.Title, &t.Description,
			&t.QuantityHint, &t.Completed, &at); err != nil {
			return nil, err
		}
		if at.Valid {
			v := at.Time
			t.CompletedAt = &v
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CompleteTask marks a task of one of the user's plans done at the given
// time. Tasks of other users' plans are reported as ErrNotFound.
func (r *FarmPlanRepo) CompleteTask(ctx context.Context, userID, taskID string, at time.Time) error {
	const q = `
update calendar_tasks t
set completed = true, completed_at = $3
from farm_plans p
where t.id = $1 and t.farm_plan_id = p.id and p.user_id = $2`
	res, err := r.DB.ExecContext(ctx, q, taskID, userID, at)
	if err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return ErrNotFound
	}
	return nil
}
