// package domain/models.go
package domain

import (
	"strings"
	"time"
)

// TaxRegime defines the payroll-charge treatment applied to a price column.
type TaxRegime string

// Constants for the three tax regimes published by SINAPI.
const (
	RegimeDesonerado    TaxRegime = "DESONERADO"
	RegimeNaoDesonerado TaxRegime = "NAO_DESONERADO"
	RegimeSemEncargos   TaxRegime = "SEM_ENCARGOS"
)

// AllRegimes lists the regimes in their canonical order.
var AllRegimes = []TaxRegime{RegimeDesonerado, RegimeNaoDesonerado, RegimeSemEncargos}

// ParseTaxRegime accepts the canonical names and the short sheet suffixes (CD, SD, ND, SE).
func ParseTaxRegime(s string) (TaxRegime, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DESONERADO", "CD":
		return RegimeDesonerado, true
	case "NAO_DESONERADO", "SD", "ND":
		return RegimeNaoDesonerado, true
	case "SEM_ENCARGOS", "SE":
		return RegimeSemEncargos, true
	}
	return "", false
}

// DataType defines which logical table an ingestion run extracts.
type DataType string

// Constants for data types.
const (
	TypeInsumo     DataType = "INSUMO"
	TypeComposicao DataType = "COMPOSICAO"
	TypeAnalitico  DataType = "ANALITICO"
)

// ParseDataType accepts the canonical names case-insensitively.
func ParseDataType(s string) (DataType, bool) {
	switch DataType(strings.ToUpper(strings.TrimSpace(s))) {
	case TypeInsumo:
		return TypeInsumo, true
	case TypeComposicao:
		return TypeComposicao, true
	case TypeAnalitico:
		return TypeAnalitico, true
	}
	return "", false
}

// BrazilStates is the closed set of region codes recognized in price headers.
var BrazilStates = []string{
	"AC", "AL", "AP", "AM", "BA", "CE", "DF", "ES", "GO", "MA", "MT", "MS", "MG", "PA",
	"PB", "PR", "PE", "PI", "RJ", "RN", "RS", "RO", "RR", "SC", "SP", "SE", "TO",
}

var stateSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(BrazilStates))
	for _, s := range BrazilStates {
		m[s] = struct{}{}
	}
	return m
}()

// IsBrazilState reports whether code is one of the 27 federative units.
func IsBrazilState(code string) bool {
	_, ok := stateSet[code]
	return ok
}

// CatalogItem is one priced material or composition under one tax regime.
// Analytic rows also carry the parent composition and consumption data.
type CatalogItem struct {
	Code           string             `json:"code"`
	Description    string             `json:"description"`
	Unit           string             `json:"unit"`
	Price          float64            `json:"price"`
	PriceMap       map[string]float64 `json:"priceMap,omitempty"`
	Origin         string             `json:"origin"`
	Category       string             `json:"category,omitempty"`
	TaxType        TaxRegime          `json:"taxType,omitempty"`
	Group          string             `json:"group,omitempty"`
	Classification string             `json:"classification,omitempty"`
	PriceOrigin    string             `json:"priceOrigin,omitempty"`
	ParentCode     string             `json:"parentCode,omitempty"`
	ParentDesc     string             `json:"parentDesc,omitempty"`
	Coefficient    *float64           `json:"coefficient,omitempty"`
	TotalCost      *float64           `json:"totalCost,omitempty"`
	Situation      string             `json:"situation,omitempty"`
}

// EncargosMetadata holds the payroll-charge percentages of one (state, regime) pair.
type EncargosMetadata struct {
	State         string    `json:"state"`
	Regime        TaxRegime `json:"regime"`
	HoristaPct    float64   `json:"horistaPct"`
	MensalistaPct float64   `json:"mensalistaPct"`
}

// Stats summarizes the item counts of a MultiRegimeResult.
type Stats struct {
	TotalDesonerado    int `json:"totalDesonerado"`
	TotalNaoDesonerado int `json:"totalNaoDesonerado"`
	TotalSemEncargos   int `json:"totalSemEncargos"`
	TotalAnalitico     int `json:"totalAnalitico,omitempty"`
}

// MultiRegimeResult is the output of one ingestion run.
type MultiRegimeResult struct {
	Desonerado       []CatalogItem      `json:"desonerado"`
	NaoDesonerado    []CatalogItem      `json:"nao_desonerado"`
	SemEncargos      []CatalogItem      `json:"sem_encargos"`
	Analitico        []CatalogItem      `json:"analitico,omitempty"`
	Stats            Stats              `json:"stats"`
	ReferenceDate    string             `json:"referenceDate,omitempty"`
	EncargosMetadata []EncargosMetadata `json:"encargosMetadata,omitempty"`
	SheetName        string             `json:"sheetName,omitempty"`
	SheetFound       bool               `json:"sheetFound"`
}

// EmptyResult returns a valid result with no items, used when the requested sheet is absent.
func EmptyResult() *MultiRegimeResult {
	return &MultiRegimeResult{
		Desonerado:    []CatalogItem{},
		NaoDesonerado: []CatalogItem{},
		SemEncargos:   []CatalogItem{},
	}
}

// Items returns the list held for regime.
func (r *MultiRegimeResult) Items(regime TaxRegime) []CatalogItem {
	switch regime {
	case RegimeDesonerado:
		return r.Desonerado
	case RegimeNaoDesonerado:
		return r.NaoDesonerado
	case RegimeSemEncargos:
		return r.SemEncargos
	}
	return nil
}

// ByRegime returns the three regime lists keyed by regime.
func (r *MultiRegimeResult) ByRegime() map[TaxRegime][]CatalogItem {
	return map[TaxRegime][]CatalogItem{
		RegimeDesonerado:    r.Desonerado,
		RegimeNaoDesonerado: r.NaoDesonerado,
		RegimeSemEncargos:   r.SemEncargos,
	}
}

// RefreshStats recomputes Stats from the current lists.
func (r *MultiRegimeResult) RefreshStats() {
	r.Stats = Stats{
		TotalDesonerado:    len(r.Desonerado),
		TotalNaoDesonerado: len(r.NaoDesonerado),
		TotalSemEncargos:   len(r.SemEncargos),
		TotalAnalitico:     len(r.Analitico),
	}
}

// SheetPreview is the raw cell text of one sheet, bounded to a row limit.
type SheetPreview struct {
	Data       [][]string `json:"data"`
	SheetNames []string   `json:"sheetNames"`
	FoundName  string     `json:"foundName,omitempty"`
	Suggestion string     `json:"suggestion,omitempty"`
}

// --- Modelos de Snapshot de Importação ---

// TableReference identifies one imported SINAPI reference period.
type TableReference struct {
	ID          string    `json:"id"`
	Period      string    `json:"period"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableItem is one material or composition row ready for storage.
type TableItem struct {
	ID             string             `json:"id"`
	ReferenceID    string             `json:"reference_id"`
	Code           string             `json:"code"`
	Description    string             `json:"description"`
	Unit           string             `json:"unit"`
	Category       DataType           `json:"category"`
	Classification string             `json:"classification"`
	Prices         map[string]float64 `json:"prices"`
	CreatedAt      time.Time          `json:"created_at"`
}

// TableStructure links a parent composition to one of its constituents.
type TableStructure struct {
	ID          string   `json:"id"`
	ReferenceID string   `json:"reference_id"`
	ParentCode  string   `json:"parent_code"`
	ChildCode   string   `json:"child_code"`
	Coefficient float64  `json:"coefficient"`
	ItemType    DataType `json:"item_type"`
}

// ImportSnapshot groups the records derived from one full import.
type ImportSnapshot struct {
	Reference TableReference   `json:"reference"`
	Items     []TableItem      `json:"items"`
	Structure []TableStructure `json:"structure"`
}

// ImportBundle is the result of running all three ingestions against one workbook.
type ImportBundle struct {
	Insumos     *MultiRegimeResult `json:"insumos"`
	Composicoes *MultiRegimeResult `json:"composicoes"`
	Analitico   *MultiRegimeResult `json:"analitico"`
	Snapshot    *ImportSnapshot    `json:"snapshot"`
}
