package sinapi

import "testing"

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"  São Paulo ": "SAO PAULO",
		"Analítico":    "ANALITICO",
		"Código":       "CODIGO",
		"cpus":         "CPUS",
		"":             "",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestFindSheet(t *testing.T) {
	names := []string{"Menu", "SINAPI_Insumos_2024", "INSUMOS", "Analítico"}

	cases := []struct {
		query string
		want  string
		ok    bool
	}{
		{"insumos", "INSUMOS", true},
		{"INSUMOS_2024", "SINAPI_Insumos_2024", true},
		{"analitico", "Analítico", true},
		{"menu", "Menu", true},
		{"ENCARGOS", "", false},
		{"  ", "", false},
	}
	for _, tc := range cases {
		got, ok := FindSheet(names, tc.query)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("FindSheet(%q)=(%q,%v), want (%q,%v)", tc.query, got, ok, tc.want, tc.ok)
		}
	}
}

func TestFindSheetFirstContainingName(t *testing.T) {
	names := []string{"CSD", "CPUS_2024", "CPUS_2023"}
	got, ok := FindSheet(names, "cpus")
	if !ok || got != "CPUS_2024" {
		t.Fatalf("FindSheet(cpus)=(%q,%v), want CPUS_2024", got, ok)
	}
}

func TestSuggestSheet(t *testing.T) {
	cases := []struct {
		names []string
		query string
		want  string
	}{
		{[]string{"CPUS", "Analítico 2024", "ISD"}, "ANALITCO", "Analítico 2024"},
		{[]string{"CPUS", "Analítico 2024", "ISD"}, "analitco", "Analítico 2024"},
		{[]string{"ISD", "INSUMOS 2024", "CPUS"}, "INSUMO", "INSUMOS 2024"},
		{[]string{"ISD", "INSUMOS 2024", "CPUS"}, "xyz", ""},
	}
	for _, tc := range cases {
		if got := SuggestSheet(tc.names, tc.query); got != tc.want {
			t.Fatalf("SuggestSheet(%v, %q)=%q, want %q", tc.names, tc.query, got, tc.want)
		}
	}
	if got := SuggestSheet(nil, "ANALITCO"); got != "" {
		t.Fatalf("SuggestSheet with no names=%q, want empty", got)
	}
}
