package domain

import "github.com/yungbote/lexgraph-backend/internal/domain/legal"

type Jurisdiction = legal.Jurisdiction
type LegalDocument = legal.LegalDocument
type LegalDocumentVersion = legal.LegalDocumentVersion
type GraphNode = legal.GraphNode
type LegalObligation = legal.LegalObligation
type GraphEdge = legal.GraphEdge
type LegalTemplate = legal.LegalTemplate
type LegalTemplateTag = legal.LegalTemplateTag
type LegalTemplateSection = legal.LegalTemplateSection
type TemplateOverlay = legal.TemplateOverlay
type TemplateOverlayVersion = legal.TemplateOverlayVersion
type LegalTemplateVersion = legal.LegalTemplateVersion
type LegalTemplateLink = legal.LegalTemplateLink
type GraphDelta = legal.GraphDelta
type UpdateAudit = legal.UpdateAudit

type Layer = legal.Layer
type Module = legal.Module
type DocumentType = legal.DocumentType
type EntityType = legal.EntityType
type EdgeType = legal.EdgeType
type AuditAction = legal.AuditAction
