package domain

// ParserConfig maps the logical fields of a SINAPI workbook to sheets, rows and column letters.
// Row numbers are 1-based, as shown by spreadsheet applications.
type ParserConfig struct {
	HeaderRow int    `toml:"header_row" json:"headerRow"`
	CellDate  string `toml:"cell_date" json:"cellDate"`

	EncargosStartRow      int    `toml:"encargos_start_row" json:"encargosStartRow"`
	EncargosColState      string `toml:"encargos_col_state" json:"encargosColState"`
	EncargosColHorista    string `toml:"encargos_col_horista" json:"encargosColHorista"`
	EncargosColMensalista string `toml:"encargos_col_mensalista" json:"encargosColMensalista"`

	ColClass      string `toml:"col_class" json:"colClass"`
	ColCode       string `toml:"col_code" json:"colCode"`
	ColDesc       string `toml:"col_desc" json:"colDesc"`
	ColUnit       string `toml:"col_unit" json:"colUnit"`
	ColOrigin     string `toml:"col_origin" json:"colOrigin"`
	ColPriceStart string `toml:"col_price_start" json:"colPriceStart"`

	CompColGroup      string `toml:"comp_col_group" json:"compColGroup"`
	CompColCode       string `toml:"comp_col_code" json:"compColCode"`
	CompColDesc       string `toml:"comp_col_desc" json:"compColDesc"`
	CompColUnit       string `toml:"comp_col_unit" json:"compColUnit"`
	CompColPriceStart string `toml:"comp_col_price_start" json:"compColPriceStart"`

	AnaColCompCode  string `toml:"ana_col_comp_code" json:"anaColCompCode"`
	AnaColCompDesc  string `toml:"ana_col_comp_desc" json:"anaColCompDesc"`
	AnaColType      string `toml:"ana_col_type" json:"anaColType"`
	AnaColItemCode  string `toml:"ana_col_item_code" json:"anaColItemCode"`
	AnaColItemDesc  string `toml:"ana_col_item_desc" json:"anaColItemDesc"`
	AnaColUnit      string `toml:"ana_col_unit" json:"anaColUnit"`
	AnaColCoef      string `toml:"ana_col_coef" json:"anaColCoef"`
	AnaColPrice     string `toml:"ana_col_price" json:"anaColPrice"`
	AnaColTotal     string `toml:"ana_col_total" json:"anaColTotal"`
	AnaColSituation string `toml:"ana_col_situation" json:"anaColSituation"`

	SheetInsumoDesonerado    string `toml:"sheet_insumo_desonerado" json:"sheetInsumoDesonerado"`
	SheetInsumoNaoDesonerado string `toml:"sheet_insumo_nao_desonerado" json:"sheetInsumoNaoDesonerado"`
	SheetInsumoSemEncargos   string `toml:"sheet_insumo_sem_encargos" json:"sheetInsumoSemEncargos"`
	SheetCompDesonerado      string `toml:"sheet_comp_desonerado" json:"sheetCompDesonerado"`
	SheetCompNaoDesonerado   string `toml:"sheet_comp_nao_desonerado" json:"sheetCompNaoDesonerado"`
	SheetCompSemEncargos     string `toml:"sheet_comp_sem_encargos" json:"sheetCompSemEncargos"`
	SheetEncargos            string `toml:"sheet_encargos" json:"sheetEncargos"`
	SheetAnalitico           string `toml:"sheet_analitico" json:"sheetAnalitico"`
}

// DefaultParserConfig returns the layout of the official SINAPI reference workbook.
func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		HeaderRow: 10,
		CellDate:  "B3",

		EncargosStartRow:      10,
		EncargosColState:      "A",
		EncargosColHorista:    "C",
		EncargosColMensalista: "D",

		ColClass:      "A",
		ColCode:       "B",
		ColDesc:       "C",
		ColUnit:       "D",
		ColOrigin:     "E",
		ColPriceStart: "F",

		CompColGroup:      "A",
		CompColCode:       "B",
		CompColDesc:       "C",
		CompColUnit:       "D",
		CompColPriceStart: "E",

		AnaColCompCode:  "B",
		AnaColCompDesc:  "E",
		AnaColType:      "C",
		AnaColItemCode:  "D",
		AnaColItemDesc:  "E",
		AnaColUnit:      "F",
		AnaColCoef:      "G",
		AnaColPrice:     "H",
		AnaColTotal:     "I",
		AnaColSituation: "K",

		SheetInsumoDesonerado:    "INSUMOS",
		SheetInsumoNaoDesonerado: "ISD",
		SheetInsumoSemEncargos:   "ISE",
		SheetCompDesonerado:      "CPUS",
		SheetCompNaoDesonerado:   "CSD",
		SheetCompSemEncargos:     "CSE",
		SheetEncargos:            "ENCARGOS",
		SheetAnalitico:           "ANALITICO",
	}
}

// RegimeSheet returns the configured dedicated sheet name of a regime for a data type.
func (c ParserConfig) RegimeSheet(dataType DataType, regime TaxRegime) string {
	if dataType == TypeInsumo {
		switch regime {
		case RegimeDesonerado:
			return c.SheetInsumoDesonerado
		case RegimeNaoDesonerado:
			return c.SheetInsumoNaoDesonerado
		case RegimeSemEncargos:
			return c.SheetInsumoSemEncargos
		}
		return ""
	}
	switch regime {
	case RegimeDesonerado:
		return c.SheetCompDesonerado
	case RegimeNaoDesonerado:
		return c.SheetCompNaoDesonerado
	case RegimeSemEncargos:
		return c.SheetCompSemEncargos
	}
	return ""
}
