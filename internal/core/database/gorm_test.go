package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGormSQLite(t *testing.T) {
	db, err := NewGorm(Opts{Driver: "sqlite", DSN: "file::memory:", MaxOpenConns: 1, LogLevel: "silent"})
	require.NoError(t, err)

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}

func TestNewGormUnsupportedDriver(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "oracle"})
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestMaskDSN(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"postgres://estate:s3cret@db:5432/estate?sslmode=disable", "postgres://estate:****@db:5432/estate?sslmode=disable"},
		{"estate:s3cret@tcp(db:3306)/estate", "estate:****@tcp(db:3306)/estate"},
		{"file:estate.db", "file:estate.db"},
		{"postgres://db:5432/estate", "postgres://db:5432/estate"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MaskDSN(tt.in))
	}
}
