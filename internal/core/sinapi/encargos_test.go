package sinapi

import (
	"reflect"
	"testing"

	"sinapi-service/internal/domain"
)

func TestExtractEncargos(t *testing.T) {
	sheet := sheetOf("ENCARGOS",
		[]any{"UF", "", "HORISTA", "MENSALISTA"},
		[]any{"SP(CD)", "", 0.8521, "45,10%"},
		[]any{"RJ", "", 1, 2},
		[]any{"XX(CD)", "", 1, 2},
		[]any{""},
		[]any{"ba (sd)", "", 112.5, 70.0},
	)
	cfg := domain.DefaultParserConfig()
	cfg.EncargosStartRow = 2

	got := extractEncargos(sheet, cfg)
	want := []domain.EncargosMetadata{
		{State: "SP", Regime: domain.RegimeDesonerado, HoristaPct: 85.21, MensalistaPct: 45.1},
		{State: "BA", Regime: domain.RegimeNaoDesonerado, HoristaPct: 112.5, MensalistaPct: 70},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("encargos=%+v, want %+v", got, want)
	}
}

func TestExtractEncargosWithoutStateColumn(t *testing.T) {
	cfg := domain.DefaultParserConfig()
	cfg.EncargosColState = ""
	if got := extractEncargos(sheetOf("ENCARGOS", []any{"SP(CD)", "", 1, 1}), cfg); got != nil {
		t.Fatalf("encargos=%+v, want nil", got)
	}
}
