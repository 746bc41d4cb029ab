package legal

import "strings"

type Layer string

const (
	LayerInternational Layer = "international"
	LayerRegional      Layer = "regional"
	LayerNational      Layer = "national"
	LayerSubnational   Layer = "subnational"
)

// Rank orders layers from most to least authoritative; unknown layers rank -1.
func (l Layer) Rank() int {
	switch l {
	case LayerInternational:
		return 0
	case LayerRegional:
		return 1
	case LayerNational:
		return 2
	case LayerSubnational:
		return 3
	default:
		return -1
	}
}

func (l Layer) Valid() bool { return l.Rank() >= 0 }

// Above reports whether l is strictly higher than other in the authority ordering.
func (l Layer) Above(other Layer) bool {
	return l.Valid() && other.Valid() && l.Rank() < other.Rank()
}

type Module string

const (
	ModuleInternational Module = "INTERNATIONAL"
	ModuleEU            Module = "EU"
	ModuleUkraine       Module = "UKRAINE"
	ModuleUS            Module = "US"
)

func (m Module) Valid() bool {
	switch m {
	case ModuleInternational, ModuleEU, ModuleUkraine, ModuleUS:
		return true
	}
	return false
}

type DocumentType string

const (
	DocTreaty               DocumentType = "treaty"
	DocStatute              DocumentType = "statute"
	DocRegulation           DocumentType = "regulation"
	DocDirective            DocumentType = "directive"
	DocDecision             DocumentType = "decision"
	DocCase                 DocumentType = "case"
	DocResolution           DocumentType = "resolution"
	DocOrder                DocumentType = "order"
	DocAdministrativeOrder  DocumentType = "administrative_order"
	DocOblastAct            DocumentType = "oblast_act"
	DocCityAct              DocumentType = "city_act"
	DocHumanitarianStandard DocumentType = "humanitarian_standard"
	DocSanctionsList        DocumentType = "sanctions_list"
	DocDonorTemplate        DocumentType = "donor_template"
)

var documentTypes = []DocumentType{
	DocTreaty, DocStatute, DocRegulation, DocDirective, DocDecision, DocCase, DocResolution,
	DocOrder, DocAdministrativeOrder, DocOblastAct, DocCityAct, DocHumanitarianStandard,
	DocSanctionsList, DocDonorTemplate,
}

func (d DocumentType) Valid() bool {
	for _, v := range documentTypes {
		if v == d {
			return true
		}
	}
	return false
}

// ParseDocumentType is lenient about case and falls back to statute.
func ParseDocumentType(raw string) DocumentType {
	d := DocumentType(strings.ToLower(strings.TrimSpace(raw)))
	if d.Valid() {
		return d
	}
	return DocStatute
}

type EntityType string

const (
	EntityLegalDocument   EntityType = "LEGAL_DOCUMENT"
	EntityGraphNode       EntityType = "GRAPH_NODE"
	EntityObligation      EntityType = "OBLIGATION"
	EntityTemplate        EntityType = "TEMPLATE"
	EntityTemplateSection EntityType = "TEMPLATE_SECTION"
	EntityOverlay         EntityType = "OVERLAY"
)

func (e EntityType) Valid() bool {
	switch e {
	case EntityLegalDocument, EntityGraphNode, EntityObligation, EntityTemplate, EntityTemplateSection, EntityOverlay:
		return true
	}
	return false
}

type EdgeType string

const (
	EdgeImplements EdgeType = "implements"
	EdgeTransposes EdgeType = "transposes"
	EdgeAmends     EdgeType = "amends"
	EdgeOverrides  EdgeType = "overrides"
	EdgeInterprets EdgeType = "interprets"
	EdgeCites      EdgeType = "cites"
	EdgeSupersedes EdgeType = "supersedes"
	EdgeRequires   EdgeType = "requires"
	EdgeInforms    EdgeType = "informs"
	EdgeUpdates    EdgeType = "updates"
)

type Endpoints struct {
	From EntityType
	To   EntityType
}

var sourceEndpoints = []Endpoints{
	{EntityLegalDocument, EntityLegalDocument},
	{EntityLegalDocument, EntityGraphNode},
	{EntityGraphNode, EntityLegalDocument},
	{EntityGraphNode, EntityGraphNode},
}

// edgeCompatibility lists the allowed (from, to) pairs per edge type.
var edgeCompatibility = map[EdgeType][]Endpoints{
	EdgeImplements: sourceEndpoints,
	EdgeTransposes: sourceEndpoints,
	EdgeAmends:     sourceEndpoints,
	EdgeOverrides:  sourceEndpoints,
	EdgeInterprets: sourceEndpoints,
	EdgeCites:      sourceEndpoints,
	EdgeSupersedes: sourceEndpoints,
	EdgeRequires:   {{EntityObligation, EntityTemplateSection}},
	EdgeInforms:    {{EntityLegalDocument, EntityOverlay}, {EntityGraphNode, EntityOverlay}},
	EdgeUpdates:    {{EntityLegalDocument, EntityTemplate}, {EntityGraphNode, EntityTemplate}},
}

func (e EdgeType) Valid() bool {
	_, ok := edgeCompatibility[e]
	return ok
}

func (e EdgeType) Allows(from, to EntityType) bool {
	for _, p := range edgeCompatibility[e] {
		if p.From == from && p.To == to {
			return true
		}
	}
	return false
}

func (e EdgeType) AllowedEndpoints() []Endpoints {
	return append([]Endpoints(nil), edgeCompatibility[e]...)
}

// ConflictEdgeTypes are the edge types that express precedence between sources.
var ConflictEdgeTypes = []EdgeType{EdgeOverrides, EdgeSupersedes}

type AuditAction string

const (
	AuditIngest         AuditAction = "ingest"
	AuditGraphUpdate    AuditAction = "graph_update"
	AuditTemplateUpdate AuditAction = "template_update"
)
