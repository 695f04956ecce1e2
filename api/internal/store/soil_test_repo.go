package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"krishi-advisor/api/internal/advisory/types"
)

type SoilTestRepo struct{ DB *sql.DB }

func NewSoilTestRepo(db *sql.DB) *SoilTestRepo { return &SoilTestRepo{DB: db} }

const soilTestColumns = `id, user_id, test_date, location, ph, nitrogen, phosphorus, potassium,
       organic_matter, other_nutrients, recommendations, image_url`

// Save inserts t, filling ID and TestDate when they are empty, or overwrites
// the row with the same ID.
func (r *SoilTestRepo) Save(ctx context.Context, t *types.SoilTest) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.TestDate.IsZero() {
		t.TestDate = time.Now().UTC()
	}
	var other []byte
	if len(t.OtherNutrients) > 0 {
		var err error
		if other, err = json.Marshal(t.OtherNutrients); err != nil {
			return fmt.Errorf("save soil test: other nutrients: %w", err)
		}
	}
	const q = `
insert into soil_tests (` + soilTestColumns + `)
values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
on conflict (id) do update
set test_date = excluded.test_date,
    location = excluded.location,
    ph = excluded.ph,
    nitrogen = excluded.nitrogen,
    phosphorus = excluded.phosphorus,
    potassium = excluded.potassium,
    organic_matter = excluded.organic_matter,
    other_nutrients = excluded.other_nutrients,
    recommendations = excluded.recommendations,
    image_url = excluded.image_url
where soil_tests.user_id = excluded.user_id`
	_, err := r.DB.ExecContext(ctx, q,
		t.ID, t.UserID, t.TestDate, t.Location, t.PH, t.Nitrogen, t.Phosphorus, t.Potassium,
		t.OrganicMatter, other, t.Recommendations, t.ImageURL,
	)
	if err != nil {
		return fmt.Errorf("save soil test: %w", err)
	}
	return nil
}

// Get returns the user's test with id, or ErrNotFound.
func (r *SoilTestRepo) Get(ctx context.Context, userID, id string) (*types.SoilTest, error) {
	const q = `select ` + soilTestColumns + ` from soil_tests where id = $1 and user_id = $2`
	t, err := scanSoilTest(r.DB.QueryRowContext(ctx, q, id, userID))
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListByUser returns the user's tests, newest first. limit <= 0 means 50.
func (r *SoilTestRepo) ListByUser(ctx context.Context, userID string, limit int) ([]types.SoilTest, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `select ` + soilTestColumns + `
from soil_tests
where user_id = $1
order by test_date desc
limit $2`
	rows, err := r.DB.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list soil tests: %w", err)
	}
	defer rows.Close()

	out := []types.SoilTest{}
	for rows.Next() {
		t, err := scanSoilTest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// Delete removes the user's test with id; ErrNotFound when nothing matched.
func (r *SoilTestRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx, `delete from soil_tests where id = $1 and user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete soil test: %w", err)
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSoilTest(row scanner) (*types.SoilTest, error) {
	var (
		t     types.SoilTest
		other []byte
	)
	if err := row.Scan(&t.ID, &t.UserID, &t.TestDate, &t.Location, &t.PH, &t.Nitrogen, &t.Phosphorus,
		&t.Potassium, &t.OrganicMatter, &other, &t.Recommendations, &t.ImageURL); err != nil {
		return nil, err
	}
	if len(other) > 0 {
		// a broken blob only loses the extra readings
		_ = json.Unmarshal(other, &t.OtherNutrients)
	}
	return &t, nil
}
