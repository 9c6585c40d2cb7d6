package sinapi

import (
	"sinapi-service/internal/core/workbook"
	"sinapi-service/internal/domain"
)

// extractEncargos reads the payroll-charge table: one record per row whose state
// column classifies as "UF(regime)", with hourly and monthly percentages alongside.
func extractEncargos(sheet *workbook.Sheet, cfg domain.ParserConfig) []domain.EncargosMetadata {
	cState := ColumnIndex(cfg.EncargosColState)
	cHor := ColumnIndex(cfg.EncargosColHorista)
	cMen := ColumnIndex(cfg.EncargosColMensalista)
	if cState < 0 {
		return nil
	}

	metadata := []domain.EncargosMetadata{}
	for r := max(cfg.EncargosStartRow-1, 0); r <= sheet.LastRow(); r++ {
		cellState := sheet.Cell(r, cState)
		if cellState.Empty() {
			continue
		}
		parsed, ok := ClassifyHeader(cellState.String())
		if !ok || !parsed.HasRegime {
			continue
		}
		metadata = append(metadata, domain.EncargosMetadata{
			State:         parsed.State,
			Regime:        parsed.Regime,
			HoristaPct:    CellPercentage(sheet.Cell(r, cHor)),
			MensalistaPct: CellPercentage(sheet.Cell(r, cMen)),
		})
	}
	return metadata
}
