package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lexgraph-backend/internal/domain/legal"
)

func PtrUUID(id uuid.UUID) *uuid.UUID { return &id }

func SeedJurisdiction(tb testing.TB, ctx context.Context, tx *gorm.DB, code string, layer legal.Layer, parentID *uuid.UUID) *legal.Jurisdiction {
	tb.Helper()
	now := time.Now().UTC()
	j := &legal.Jurisdiction{
		ID:        uuid.New(),
		Code:      code,
		Name:      code,
		Layer:     layer,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(j).Error; err != nil {
		tb.Fatalf("seed jurisdiction %s: %v", code, err)
	}
	return j
}

// SeedDocument inserts a version-1 document with its graph node.
func SeedDocument(tb testing.TB, ctx context.Context, tx *gorm.DB, jurisdictionID uuid.UUID, title, content string) (*legal.LegalDocument, *legal.GraphNode) {
	tb.Helper()
	now := time.Now().UTC()
	doc := &legal.LegalDocument{
		ID:                uuid.New(),
		Title:             title,
		DocumentType:      legal.DocStatute,
		JurisdictionID:    jurisdictionID,
		Module:            legal.ModuleUS,
		LegalLevel:        legal.LayerNational,
		RawContent:        content,
		NormalizedContent: content,
		OriginalLanguage:  "en",
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := tx.WithContext(ctx).Omit("Jurisdiction").Create(doc).Error; err != nil {
		tb.Fatalf("seed document: %v", err)
	}
	node := &legal.GraphNode{
		ID:             uuid.New(),
		DocumentID:     doc.ID,
		Label:          title,
		NodeType:       doc.DocumentType,
		JurisdictionID: jurisdictionID,
		Module:         doc.Module,
		LegalLevel:     doc.LegalLevel,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := tx.WithContext(ctx).Omit("Document").Create(node).Error; err != nil {
		tb.Fatalf("seed graph node: %v", err)
	}
	return doc, node
}

func SeedObligation(tb testing.TB, ctx context.Context, tx *gorm.DB, documentID, jurisdictionID uuid.UUID, description string) *legal.LegalObligation {
	tb.Helper()
	now := time.Now().UTC()
	o := &legal.LegalObligation{
		ID:             uuid.New(),
		DocumentID:     documentID,
		Description:    description,
		JurisdictionID: jurisdictionID,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := tx.WithContext(ctx).Omit("Document").Create(o).Error; err != nil {
		tb.Fatalf("seed obligation: %v", err)
	}
	return o
}

func SeedTemplate(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, jurisdictionID *uuid.UUID, tags ...string) *legal.LegalTemplate {
	tb.Helper()
	now := time.Now().UTC()
	t := &legal.LegalTemplate{
		ID:             uuid.New(),
		Name:           name,
		JurisdictionID: jurisdictionID,
		Version:        1,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed template: %v", err)
	}
	for _, tag := range tags {
		row := &legal.LegalTemplateTag{ID: uuid.New(), TemplateID: t.ID, Tag: tag}
		if err := tx.WithContext(ctx).Omit("Template").Create(row).Error; err != nil {
			tb.Fatalf("seed template tag: %v", err)
		}
		t.ScenarioTags = append(t.ScenarioTags, tag)
	}
	return t
}

func SeedSection(tb testing.TB, ctx context.Context, tx *gorm.DB, templateID uuid.UUID, order int, body string) *legal.LegalTemplateSection {
	tb.Helper()
	now := time.Now().UTC()
	s := &legal.LegalTemplateSection{
		ID:         uuid.New(),
		TemplateID: templateID,
		Order:      order,
		Body:       body,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := tx.WithContext(ctx).Omit("Template").Create(s).Error; err != nil {
		tb.Fatalf("seed section: %v", err)
	}
	return s
}

func SeedOverlay(tb testing.TB, ctx context.Context, tx *gorm.DB, sectionID, jurisdictionID uuid.UUID, text string) *legal.TemplateOverlay {
	tb.Helper()
	now := time.Now().UTC()
	o := &legal.TemplateOverlay{
		ID:             uuid.New(),
		SectionID:      sectionID,
		JurisdictionID: jurisdictionID,
		OverlayText:    text,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := tx.WithContext(ctx).Omit("Section", "Jurisdiction").Create(o).Error; err != nil {
		tb.Fatalf("seed overlay: %v", err)
	}
	return o
}
