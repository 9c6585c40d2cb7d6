package sinapi

import (
	"reflect"
	"testing"

	"sinapi-service/internal/core/workbook"
	"sinapi-service/internal/domain"
)

func compositionSheet() *workbook.Sheet {
	return sheetOf("CPUS",
		[]any{"GRUPO", "CODIGO", "DESCRICAO", "UNIDADE", "SP(CD)", "RJ(CD)", "SP(SD)", "RJ(SD)"},
		[]any{"ALVENARIA", "87292", "Argamassa traço 1:2:8", "M3", "42,00", "45,50", 40.5, ""},
		[]any{"", "Código", "Descrição", "Unidade"},
		[]any{"", ""},
		[]any{"", "87300", "", "UN", "", "", "", "10,00"},
	)
}

func TestExtractCatalogComposition(t *testing.T) {
	cfg := domain.DefaultParserConfig()
	ext := extractCatalog(compositionSheet(), layoutFor(domain.TypeComposicao, cfg), cfg, "ref.xlsx", DefaultDetectOptions(), "")

	if !ext.detected || ext.headerRow != 0 {
		t.Fatalf("header=(%d,%v), want detected row 0", ext.headerRow, ext.detected)
	}
	if len(ext.columns) != 4 {
		t.Fatalf("price columns=%d, want 4", len(ext.columns))
	}
	if !ext.priced[domain.RegimeDesonerado] || !ext.priced[domain.RegimeNaoDesonerado] || ext.priced[domain.RegimeSemEncargos] {
		t.Fatalf("priced regimes=%v", ext.priced)
	}

	for _, regime := range domain.AllRegimes {
		if got := len(ext.lists[regime]); got != 2 {
			t.Fatalf("%s items=%d, want 2", regime, got)
		}
	}

	des := ext.lists[domain.RegimeDesonerado][0]
	want := domain.CatalogItem{
		Code:        "87292",
		Description: "Argamassa traço 1:2:8",
		Unit:        "M3",
		Price:       42,
		PriceMap:    map[string]float64{"SP": 42, "RJ": 45.5},
		Origin:      "ref.xlsx",
		Category:    "COMPOSICAO",
		TaxType:     domain.RegimeDesonerado,
		Group:       "ALVENARIA",
	}
	if !reflect.DeepEqual(des, want) {
		t.Fatalf("desonerado item=%+v, want %+v", des, want)
	}

	nd := ext.lists[domain.RegimeNaoDesonerado][0]
	if nd.Price != 40.5 || !reflect.DeepEqual(nd.PriceMap, map[string]float64{"SP": 40.5}) {
		t.Fatalf("nao desonerado item=%+v", nd)
	}

	se := ext.lists[domain.RegimeSemEncargos][0]
	if se.Price != 0 || len(se.PriceMap) != 0 || se.TaxType != domain.RegimeSemEncargos {
		t.Fatalf("sem encargos item=%+v", se)
	}

	second := ext.lists[domain.RegimeNaoDesonerado][1]
	if second.Description != placeholderDescription {
		t.Fatalf("description=%q, want placeholder", second.Description)
	}
	// sem SP, vale o primeiro estado mapeado com valor
	if second.Price != 10 || second.PriceMap["RJ"] != 10 {
		t.Fatalf("second item=%+v, want RJ price 10", second)
	}
	if first := ext.lists[domain.RegimeDesonerado][1]; first.Price != 0 || len(first.PriceMap) != 0 {
		t.Fatalf("second desonerado item=%+v, want no prices", first)
	}
}

func TestExtractCatalogIsDeterministic(t *testing.T) {
	cfg := domain.DefaultParserConfig()
	layout := layoutFor(domain.TypeComposicao, cfg)
	sheet := compositionSheet()

	a := extractCatalog(sheet, layout, cfg, "ref.xlsx", DefaultDetectOptions(), "")
	b := extractCatalog(sheet, layout, cfg, "ref.xlsx", DefaultDetectOptions(), "")
	if !reflect.DeepEqual(a, b) {
		t.Fatal("two extractions of the same sheet differ")
	}
}

func TestExtractCatalogConfiguredHeaderRow(t *testing.T) {
	sheet := sheetOf("INSUMOS",
		[]any{"SINAPI"},
		[]any{"", "Data: 09/2024"},
		[]any{"CLASSE", "CODIGO", "DESCRICAO", "UNIDADE", "ORIGEM", "SP(CD)", "BA(SE)"},
		[]any{"MATERIAL", "00001", "Cimento", "KG", "CR", "1.234,56", 7.25},
	)
	cfg := domain.DefaultParserConfig()
	cfg.HeaderRow = 3
	cfg.CellDate = "B2"

	ext := extractCatalog(sheet, layoutFor(domain.TypeInsumo, cfg), cfg, "insumos.xlsx", DefaultDetectOptions(), "")
	if ext.detected || ext.headerRow != 2 {
		t.Fatalf("header=(%d,%v), want configured row 2", ext.headerRow, ext.detected)
	}
	if ext.referenceDate != "Data: 09/2024" {
		t.Fatalf("referenceDate=%q", ext.referenceDate)
	}

	des := ext.lists[domain.RegimeDesonerado]
	if len(des) != 1 {
		t.Fatalf("desonerado items=%d, want 1", len(des))
	}
	item := des[0]
	if item.Classification != "MATERIAL" || item.PriceOrigin != "CR" || item.Group != "" || item.Category != "INSUMO" {
		t.Fatalf("item metadata=%+v", item)
	}
	if item.Price != 1234.56 {
		t.Fatalf("price=%v, want 1234.56", item.Price)
	}
	if se := ext.lists[domain.RegimeSemEncargos][0]; se.Price != 7.25 || se.PriceMap["BA"] != 7.25 {
		t.Fatalf("sem encargos item=%+v", se)
	}
}

func TestMapPriceColumnsBareHeaders(t *testing.T) {
	sheet := sheetOf("ISD",
		[]any{"CODIGO", "DESCRICAO", "SP", "RJ", "SP(CD)", "TOTAL"},
	)

	if cols := mapPriceColumns(sheet, 0, 2, ""); len(cols) != 1 || cols[0].state != "SP" || cols[0].regime != domain.RegimeDesonerado {
		t.Fatalf("columns without bare regime=%+v", cols)
	}

	cols := mapPriceColumns(sheet, 0, 2, domain.RegimeNaoDesonerado)
	want := []priceColumn{
		{col: 2, state: "SP", regime: domain.RegimeNaoDesonerado},
		{col: 3, state: "RJ", regime: domain.RegimeNaoDesonerado},
		{col: 4, state: "SP", regime: domain.RegimeDesonerado},
	}
	if !reflect.DeepEqual(cols, want) {
		t.Fatalf("columns=%+v, want %+v", cols, want)
	}
}

func TestExtractCatalogSingleRow(t *testing.T) {
	sheet := sheetOf("Plan1",
		[]any{"CODIGO", "DESCRICAO", "UNIDADE", "SP(CD)", "RJ(CD)"},
		[]any{"001", "Cimento", "SC", "42,00", "45,50"},
	)
	cfg := domain.DefaultParserConfig()
	cfg.HeaderRow = 1
	cfg.CompColGroup = ""
	cfg.CompColCode = "A"
	cfg.CompColDesc = "B"
	cfg.CompColUnit = "C"
	cfg.CompColPriceStart = "D"

	ext := extractCatalog(sheet, layoutFor(domain.TypeComposicao, cfg), cfg, "cimento.xlsx", DefaultDetectOptions(), "")
	items := ext.lists[domain.RegimeDesonerado]
	if len(items) != 1 {
		t.Fatalf("items=%d, want 1", len(items))
	}
	item := items[0]
	if item.Code != "001" || item.Price != 42 || !reflect.DeepEqual(item.PriceMap, map[string]float64{"SP": 42, "RJ": 45.5}) {
		t.Fatalf("item=%+v", item)
	}
	for _, regime := range []domain.TaxRegime{domain.RegimeNaoDesonerado, domain.RegimeSemEncargos} {
		other := ext.lists[regime][0]
		if other.Code != item.Code || other.Description != item.Description || other.Unit != item.Unit {
			t.Fatalf("%s variant differs in descriptive fields: %+v", regime, other)
		}
	}
}
