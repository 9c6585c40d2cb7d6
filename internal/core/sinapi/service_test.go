package sinapi

import (
	"errors"
	"reflect"
	"testing"

	"sinapi-service/internal/domain"
)

// referenceWorkbook mirrors the official layout: preamble, date in B3, state header in row 10.
func referenceWorkbook(t *testing.T) []byte {
	t.Helper()
	return buildXLSX(t,
		fixtureSheet{name: "Menu", rows: map[int][]any{
			0: {"SINAPI - Sistema Nacional de Pesquisa de Custos"},
		}},
		fixtureSheet{name: "SINAPI_Insumos", rows: map[int][]any{
			0:  {"Relatório de Insumos"},
			2:  {"", "09/2024"},
			9:  {"Classificação", "Código do Insumo", "Descrição do Insumo", "Unidade", "Origem de Preço", "SP(CD)", "RJ(CD)", "SP(SD)", "RJ(SD)", "SP(SE)"},
			10: {"MATERIAL", "00034", "Aço CA-50", "KG", "CR", 10.5, 11.25, 12.0, 12.5, 9.0},
			11: {"MATERIAL", "00037", "Arame recozido", "KG", "C", "", 8.0, "", 7.5, ""},
		}},
		fixtureSheet{name: "CPUS", rows: map[int][]any{
			2:  {"", "09/2024"},
			9:  {"Grupo", "Código", "Descrição", "Unidade", "SP(CD)", "RJ(CD)", "SP(SD)", "RJ(SD)", "SP(SE)", "RJ(SE)"},
			10: {"FUNDACOES", "96995", "Reaterro manual", "M3", "55,10", "56,20", "60,00", "61,00", "50,00", "51,00"},
		}},
		fixtureSheet{name: "Encargos Sociais", rows: map[int][]any{
			8:  {"UF", "", "Horista", "Mensalista"},
			9:  {"SP(CD)", "", 0.8521, 0.4512},
			10: {"SP(SD)", "", "112,53%", "71,24%"},
		}},
		fixtureSheet{name: "Analítico", rows: map[int][]any{
			9:  {"", "Código da Composição", "Tipo Item", "Código do Item", "Descrição", "Unidade", "Coeficiente", "Preço", "Total", "", "Situação"},
			10: {"", "96995", "", "", "Reaterro manual", "M3"},
			11: {"", "96995", "COMPOSICAO", "88316", "Servente com encargos", "H", 0.6, 20.0, 12.0, "", "COM PRECO"},
			12: {"", "", "INSUMO", "00037", "Arame recozido", "KG", 0.1, 8.0, 0.8, "", "COM PRECO"},
		}},
	)
}

func TestParseInsumo(t *testing.T) {
	svc := NewService(nil, Options{})
	result, err := svc.Parse(referenceWorkbook(t), "SINAPI_Ref.xlsx", domain.TypeInsumo, domain.DefaultParserConfig())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !result.SheetFound || result.SheetName != "SINAPI_Insumos" {
		t.Fatalf("sheet=(%q,%v)", result.SheetName, result.SheetFound)
	}
	if result.ReferenceDate != "09/2024" {
		t.Fatalf("referenceDate=%q, want 09/2024", result.ReferenceDate)
	}
	if result.Stats != (domain.Stats{TotalDesonerado: 2, TotalNaoDesonerado: 2, TotalSemEncargos: 2}) {
		t.Fatalf("stats=%+v", result.Stats)
	}

	steel := result.Desonerado[0]
	if steel.Code != "00034" || steel.Price != 10.5 || !reflect.DeepEqual(steel.PriceMap, map[string]float64{"SP": 10.5, "RJ": 11.25}) {
		t.Fatalf("desonerado steel=%+v", steel)
	}
	if steel.Classification != "MATERIAL" || steel.PriceOrigin != "CR" || steel.Origin != "SINAPI_Ref.xlsx" {
		t.Fatalf("steel metadata=%+v", steel)
	}

	wire := result.Desonerado[1]
	if wire.Price != 8 || !reflect.DeepEqual(wire.PriceMap, map[string]float64{"RJ": 8}) {
		t.Fatalf("desonerado wire=%+v", wire)
	}
	if got := result.NaoDesonerado[1].Price; got != 7.5 {
		t.Fatalf("nao desonerado wire price=%v, want 7.5", got)
	}
	if got := result.SemEncargos[1]; got.Price != 0 || len(got.PriceMap) != 0 {
		t.Fatalf("sem encargos wire=%+v, want no prices", got)
	}

	want := []domain.EncargosMetadata{
		{State: "SP", Regime: domain.RegimeDesonerado, HoristaPct: 85.21, MensalistaPct: 45.12},
		{State: "SP", Regime: domain.RegimeNaoDesonerado, HoristaPct: 112.53, MensalistaPct: 71.24},
	}
	if !reflect.DeepEqual(result.EncargosMetadata, want) {
		t.Fatalf("encargos=%+v, want %+v", result.EncargosMetadata, want)
	}
}

func TestParseComposicao(t *testing.T) {
	svc := NewService(nil, Options{})
	result, err := svc.Parse(referenceWorkbook(t), "SINAPI_Ref.xlsx", domain.TypeComposicao, domain.DefaultParserConfig())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(result.Desonerado) != 1 || len(result.NaoDesonerado) != 1 || len(result.SemEncargos) != 1 {
		t.Fatalf("stats=%+v", result.Stats)
	}
	comp := result.NaoDesonerado[0]
	if comp.Group != "FUNDACOES" || comp.Category != "COMPOSICAO" || comp.Price != 60 || comp.PriceMap["RJ"] != 61 {
		t.Fatalf("composition=%+v", comp)
	}
	if result.EncargosMetadata != nil {
		t.Fatalf("composition run read encargos: %+v", result.EncargosMetadata)
	}
}

func TestParseAnalitico(t *testing.T) {
	svc := NewService(nil, Options{})
	result, err := svc.Parse(referenceWorkbook(t), "SINAPI_Ref.xlsx", domain.TypeAnalitico, domain.DefaultParserConfig())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if result.SheetName != "Analítico" || result.Stats.TotalAnalitico != 2 {
		t.Fatalf("sheet=%q stats=%+v", result.SheetName, result.Stats)
	}
	for _, child := range result.Analitico {
		if child.ParentCode != "96995" || child.ParentDesc != "Reaterro manual" {
			t.Fatalf("child=%+v, want parent 96995", child)
		}
	}
	if len(result.Desonerado) != 0 || result.Desonerado == nil {
		t.Fatalf("analytic run filled regime lists")
	}
}

func TestParseIsIdempotent(t *testing.T) {
	data := referenceWorkbook(t)
	svc := NewService(nil, Options{})
	cfg := domain.DefaultParserConfig()

	a, err := svc.Parse(data, "ref.xlsx", domain.TypeInsumo, cfg)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	b, err := svc.Parse(data, "ref.xlsx", domain.TypeInsumo, cfg)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatal("parsing the same payload twice gave different results")
	}
}

func TestParseDedicatedRegimeSheet(t *testing.T) {
	data := buildXLSX(t,
		fixtureSheet{name: "CPUS", rows: map[int][]any{
			0: {"GRUPO", "CODIGO", "DESCRICAO", "UNIDADE", "SP(CD)", "RJ(CD)", "MG(CD)", "BA(CD)"},
			1: {"PISO", "94990", "Execução de passeio", "M2", "55,10", "56,20", "", "50,00"},
		}},
		fixtureSheet{name: "CSD", rows: map[int][]any{
			0: {"GRUPO", "CODIGO", "DESCRICAO", "UNIDADE", "SP", "RJ", "MG", "BA"},
			1: {"PISO", "94990", "Execução de passeio", "M2", "60,00", "61,00", "62,00", "63,00"},
		}},
	)
	cfg := domain.DefaultParserConfig()
	cfg.HeaderRow = 1

	result, err := NewService(nil, Options{}).Parse(data, "cpus.xlsx", domain.TypeComposicao, cfg)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	des := result.Desonerado[0]
	if !reflect.DeepEqual(des.PriceMap, map[string]float64{"SP": 55.1, "RJ": 56.2, "BA": 50}) {
		t.Fatalf("desonerado prices=%v", des.PriceMap)
	}

	if len(result.NaoDesonerado) != 1 {
		t.Fatalf("nao desonerado items=%d, want 1", len(result.NaoDesonerado))
	}
	nd := result.NaoDesonerado[0]
	if nd.TaxType != domain.RegimeNaoDesonerado || nd.Price != 60 || !reflect.DeepEqual(nd.PriceMap, map[string]float64{"SP": 60, "RJ": 61, "MG": 62, "BA": 63}) {
		t.Fatalf("nao desonerado item=%+v", nd)
	}

	// sem aba CSE, o regime fica com os itens da planilha principal, sem preços
	if len(result.SemEncargos) != 1 || len(result.SemEncargos[0].PriceMap) != 0 {
		t.Fatalf("sem encargos=%+v", result.SemEncargos)
	}
}

func TestParseMissingSheet(t *testing.T) {
	data := buildXLSX(t, fixtureSheet{name: "Plan1", rows: map[int][]any{0: {"nada"}}})
	result, err := NewService(nil, Options{}).Parse(data, "x.xlsx", domain.TypeInsumo, domain.DefaultParserConfig())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if result.SheetFound {
		t.Fatal("SheetFound=true for a workbook without the sheet")
	}
	if result.Desonerado == nil || result.NaoDesonerado == nil || result.SemEncargos == nil {
		t.Fatal("empty result has nil lists")
	}
	if result.Stats != (domain.Stats{}) {
		t.Fatalf("stats=%+v, want zero", result.Stats)
	}
}

func TestParseErrors(t *testing.T) {
	svc := NewService(nil, Options{})

	_, err := svc.Parse([]byte("definitivamente não é uma planilha"), "x.xlsx", domain.TypeInsumo, domain.DefaultParserConfig())
	if !errors.Is(err, ErrUnreadableWorkbook) {
		t.Fatalf("err=%v, want ErrUnreadableWorkbook", err)
	}

	_, err = svc.Parse(referenceWorkbook(t), "x.xlsx", domain.DataType("ORCAMENTO"), domain.DefaultParserConfig())
	if !errors.Is(err, ErrUnknownDataType) {
		t.Fatalf("err=%v, want ErrUnknownDataType", err)
	}
}

func TestParseAll(t *testing.T) {
	bundle, err := NewService(nil, Options{}).ParseAll(referenceWorkbook(t), "ref.xlsx", domain.DefaultParserConfig())
	if err != nil {
		t.Fatalf("ParseAll: %v", err)
	}
	if bundle.Insumos == nil || bundle.Composicoes == nil || bundle.Analitico == nil {
		t.Fatalf("bundle=%+v", bundle)
	}
	if bundle.Insumos.Stats.TotalDesonerado != 2 || bundle.Composicoes.Stats.TotalDesonerado != 1 || bundle.Analitico.Stats.TotalAnalitico != 2 {
		t.Fatalf("stats: insumos=%+v composicoes=%+v analitico=%+v",
			bundle.Insumos.Stats, bundle.Composicoes.Stats, bundle.Analitico.Stats)
	}
	if bundle.Snapshot != nil {
		t.Fatal("ParseAll must leave the snapshot to the caller")
	}
}

func TestParseAllUnreadable(t *testing.T) {
	if _, err := NewService(nil, Options{}).ParseAll([]byte{0x01, 0x02}, "x.xls", domain.DefaultParserConfig()); !errors.Is(err, ErrUnreadableWorkbook) {
		t.Fatalf("err=%v, want ErrUnreadableWorkbook", err)
	}
}

func TestPreview(t *testing.T) {
	data := referenceWorkbook(t)

	preview, err := NewService(nil, Options{PreviewRows: 3}).Preview(data, "insumos")
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if preview.FoundName != "SINAPI_Insumos" {
		t.Fatalf("foundName=%q", preview.FoundName)
	}
	if len(preview.Data) != 3 {
		t.Fatalf("rows=%d, want 3", len(preview.Data))
	}
	if preview.Data[0][0] != "Relatório de Insumos" || preview.Data[2][1] != "09/2024" {
		t.Fatalf("data=%v", preview.Data)
	}
	if len(preview.SheetNames) != 5 {
		t.Fatalf("sheetNames=%v", preview.SheetNames)
	}
}

func TestPreviewMissingSheet(t *testing.T) {
	preview, err := NewService(nil, Options{}).Preview(referenceWorkbook(t), "Analitco")
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if preview.FoundName != "" || len(preview.Data) != 0 {
		t.Fatalf("preview=%+v, want nothing found", preview)
	}
	if preview.Suggestion != "Analítico" {
		t.Fatalf("suggestion=%q, want Analítico", preview.Suggestion)
	}
}
