package store

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"krishi-advisor/api/internal/advisory/types"
)

func TestDSNSummary(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{"postgres://farmer:s3cret@db:5432/krishi?sslmode=disable", "host=db port=5432 db=krishi user=farmer"},
		{"postgres://farmer@localhost/krishi", "host=localhost db=krishi user=farmer"},
		{"://bad", "dsn: parse error"},
	}
	for _, tt := range tests {
		got := DSNSummary(tt.dsn)
		assert.Equal(t, tt.want, got)
		assert.NotContains(t, got, "s3cret")
	}
}

func TestSoilTestSaveRejectsUnencodableNutrients(t *testing.T) {
	// fails before the database is touched
	repo := NewSoilTestRepo(nil)
	err := repo.Save(context.Background(), &types.SoilTest{
		UserID:         "u1",
		OtherNutrients: map[string]float64{"zinc": math.NaN()},
	})
	assert.ErrorContains(t, err, "other nutrients")
}
