package legal

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lexgraph-backend/internal/platform/dbctx"
)

// bumpVersion is a compare-and-set on (id, version). It returns false when
// another writer already moved the row past expected.
func bumpVersion(dbc dbctx.Context, db *gorm.DB, table string, id uuid.UUID, expected int, updates map[string]any) (bool, error) {
	if updates == nil {
		updates = map[string]any{}
	}
	updates["version"] = expected + 1
	res := dbc.DB(db).
		Table(table).
		Where("id = ? AND version = ?", id, expected).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func applyPage(q *gorm.DB, limit, offset int) *gorm.DB {
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	return q
}

func scopeJurisdictions(q *gorm.DB, column string, ids []uuid.UUID) *gorm.DB {
	if len(ids) == 0 {
		return q
	}
	return q.Where(column+" IN ?", ids)
}
