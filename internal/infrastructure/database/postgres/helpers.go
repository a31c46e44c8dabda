package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm/clause"
)

const uniqueViolation = "23505"

var (
	// returningAll fills the update target with the written row.
	returningAll = clause.Returning{}
	returningID  = clause.Returning{Columns: []clause.Column{{Name: "id"}}}
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate key")
}

// displayName is the SQL expression used for a member's name in listings.
const displayName = "TRIM(u.name || ' ' || u.paternal_surname)"

// rowExists tells a missing row apart from one a conditional update skipped.
func (db *DB) rowExists(ctx context.Context, model interface{}, id uuid.UUID) (bool, error) {
	var count int64
	if err := db.DB.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check row: %w", err)
	}
	return count > 0, nil
}
