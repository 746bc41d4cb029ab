package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/lexgraph-backend/internal/domain/legal"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(legal.Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if db.Dialector.Name() == "postgres" {
		return EnsureSearchIndexes(db)
	}
	return nil
}

// EnsureSearchIndexes backs the ILIKE substring search on Postgres. The
// LOWER() expression indexes of earlier schemas are dropped; ILIKE cannot
// use them.
func EnsureSearchIndexes(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pg_trgm;`).Error; err != nil {
		return fmt.Errorf("enable pg_trgm: %w", err)
	}
	for _, name := range []string{
		"idx_legal_document_title_trgm",
		"idx_legal_document_content_trgm",
		"idx_legal_obligation_desc_trgm",
		"idx_legal_template_name_trgm",
	} {
		if err := db.Exec(`DROP INDEX IF EXISTS ` + name + `;`).Error; err != nil {
			return fmt.Errorf("drop %s: %w", name, err)
		}
	}
	stmts := []struct{ name, stmt string }{
		{"idx_legal_document_title_ci", `CREATE INDEX IF NOT EXISTS idx_legal_document_title_ci ON legal_document USING GIN (title gin_trgm_ops);`},
		{"idx_legal_document_content_ci", `CREATE INDEX IF NOT EXISTS idx_legal_document_content_ci ON legal_document USING GIN (normalized_content gin_trgm_ops);`},
		{"idx_legal_obligation_desc_ci", `CREATE INDEX IF NOT EXISTS idx_legal_obligation_desc_ci ON legal_obligation USING GIN (description gin_trgm_ops);`},
		{"idx_legal_template_name_ci", `CREATE INDEX IF NOT EXISTS idx_legal_template_name_ci ON legal_template USING GIN (name gin_trgm_ops);`},
	}
	for _, s := range stmts {
		if err := db.Exec(s.stmt).Error; err != nil {
			return fmt.Errorf("create %s: %w", s.name, err)
		}
	}
	return nil
}
