package sinapi

import (
	"errors"
	"fmt"

	"sinapi-service/internal/core/workbook"
	"sinapi-service/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrUnreadableWorkbook is returned when the payload cannot be decoded as a workbook.
var ErrUnreadableWorkbook = workbook.ErrUnreadable

// ErrUnknownDataType is returned for a data type outside INSUMO, COMPOSICAO and ANALITICO.
var ErrUnknownDataType = errors.New("tipo de dado desconhecido")

// DefaultPreviewRows bounds raw sheet previews.
const DefaultPreviewRows = 1000

// Service define a interface do motor de ingestão de planilhas SINAPI.
type Service interface {
	Parse(data []byte, fileName string, dataType domain.DataType, cfg domain.ParserConfig) (*domain.MultiRegimeResult, error)
	ParseAll(data []byte, fileName string, cfg domain.ParserConfig) (*domain.ImportBundle, error)
	Preview(data []byte, sheetQuery string) (*domain.SheetPreview, error)
}

// Options tunes the heuristics of the engine.
type Options struct {
	Detect      DetectOptions
	PreviewRows int
}

type service struct {
	logger *zap.Logger
	opts   Options
}

// NewService cria uma nova instância do motor de ingestão.
func NewService(logger *zap.Logger, opts Options) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultDetectOptions()
	if opts.Detect.MaxRows <= 0 {
		opts.Detect.MaxRows = def.MaxRows
	}
	if opts.Detect.MaxCols <= 0 {
		opts.Detect.MaxCols = def.MaxCols
	}
	if opts.Detect.MinStates <= 0 {
		opts.Detect.MinStates = def.MinStates
	}
	if opts.PreviewRows <= 0 {
		opts.PreviewRows = DefaultPreviewRows
	}
	return &service{logger: logger, opts: opts}
}

// Parse runs one ingestion: it opens its own read of data, resolves the sheet for
// dataType and returns the normalized result. A missing sheet yields an empty result.
func (s *service) Parse(data []byte, fileName string, dataType domain.DataType, cfg domain.ParserConfig) (*domain.MultiRegimeResult, error) {
	switch dataType {
	case domain.TypeInsumo, domain.TypeComposicao, domain.TypeAnalitico:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataType, dataType)
	}

	wb, err := workbook.Open(data)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	cfg = withDefaults(cfg)
	log := s.logger.With(zap.String("file", fileName), zap.String("dataType", string(dataType)))

	var result *domain.MultiRegimeResult
	switch dataType {
	case domain.TypeAnalitico:
		result, err = s.parseAnalitico(wb, fileName, cfg, log)
	default:
		result, err = s.parseCatalog(wb, fileName, dataType, cfg, log)
	}
	if err != nil {
		return nil, err
	}
	result.RefreshStats()
	log.Info("ingestão concluída",
		zap.Bool("sheetFound", result.SheetFound),
		zap.Int("desonerado", result.Stats.TotalDesonerado),
		zap.Int("naoDesonerado", result.Stats.TotalNaoDesonerado),
		zap.Int("semEncargos", result.Stats.TotalSemEncargos),
		zap.Int("analitico", result.Stats.TotalAnalitico),
	)
	return result, nil
}

func (s *service) parseAnalitico(wb workbook.Workbook, fileName string, cfg domain.ParserConfig, log *zap.Logger) (*domain.MultiRegimeResult, error) {
	result := domain.EmptyResult()
	result.Analitico = []domain.CatalogItem{}

	sheet, ok, err := s.loadSheet(wb, cfg.SheetAnalitico, log)
	if err != nil || !ok {
		return result, err
	}
	result.SheetFound = true
	result.SheetName = sheet.Name()
	result.Analitico = extractAnalitico(sheet, cfg, fileName)
	return result, nil
}

func (s *service) parseCatalog(wb workbook.Workbook, fileName string, dataType domain.DataType, cfg domain.ParserConfig, log *zap.Logger) (*domain.MultiRegimeResult, error) {
	result := domain.EmptyResult()

	sheet, ok, err := s.loadSheet(wb, cfg.RegimeSheet(dataType, domain.RegimeDesonerado), log)
	if err != nil || !ok {
		return result, err
	}
	layout := layoutFor(dataType, cfg)
	ext := extractCatalog(sheet, layout, cfg, fileName, s.opts.Detect, "")
	log.Debug("cabeçalho de estados",
		zap.String("sheet", sheet.Name()),
		zap.Int("headerRow", ext.headerRow+1),
		zap.Bool("detected", ext.detected),
		zap.Int("priceColumns", len(ext.columns)),
	)

	result.SheetFound = true
	result.SheetName = sheet.Name()
	result.ReferenceDate = ext.referenceDate
	result.Desonerado = ext.lists[domain.RegimeDesonerado]
	result.NaoDesonerado = ext.lists[domain.RegimeNaoDesonerado]
	result.SemEncargos = ext.lists[domain.RegimeSemEncargos]

	for _, regime := range domain.AllRegimes {
		if ext.priced[regime] {
			continue
		}
		items, err := s.regimeSheetItems(wb, sheet.Name(), layout, cfg, fileName, regime, log)
		if err != nil {
			return nil, err
		}
		if items != nil {
			setRegimeItems(result, regime, items)
		}
	}

	if dataType == domain.TypeInsumo && cfg.SheetEncargos != "" {
		encSheet, ok, err := s.loadSheet(wb, cfg.SheetEncargos, log)
		if err != nil {
			return nil, err
		}
		if ok {
			result.EncargosMetadata = extractEncargos(encSheet, cfg)
		}
	}
	return result, nil
}

// regimeSheetItems extracts one regime from its dedicated sheet, when the workbook has one.
// It returns nil when there is no such sheet or the sheet has no price column for the regime.
func (s *service) regimeSheetItems(wb workbook.Workbook, mainSheet string, layout catalogLayout, cfg domain.ParserConfig, fileName string, regime domain.TaxRegime, log *zap.Logger) ([]domain.CatalogItem, error) {
	query := cfg.RegimeSheet(layout.dataType, regime)
	if query == "" {
		return nil, nil
	}
	name, ok := FindSheet(wb.SheetNames(), query)
	if !ok || name == mainSheet {
		return nil, nil
	}
	sheet, err := wb.Sheet(name, 0)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler planilha %q: %w", name, err)
	}
	ext := extractCatalog(sheet, layout, cfg, fileName, s.opts.Detect, regime)
	if !ext.priced[regime] {
		return nil, nil
	}
	log.Info("regime lido de planilha dedicada", zap.String("regime", string(regime)), zap.String("sheet", name))
	return ext.lists[regime], nil
}

func setRegimeItems(result *domain.MultiRegimeResult, regime domain.TaxRegime, items []domain.CatalogItem) {
	switch regime {
	case domain.RegimeDesonerado:
		result.Desonerado = items
	case domain.RegimeNaoDesonerado:
		result.NaoDesonerado = items
	case domain.RegimeSemEncargos:
		result.SemEncargos = items
	}
}

// loadSheet resolves query against the workbook's sheet names and loads the match.
// ok is false when no sheet matches; that is not an error.
func (s *service) loadSheet(wb workbook.Workbook, query string, log *zap.Logger) (*workbook.Sheet, bool, error) {
	names := wb.SheetNames()
	name, ok := FindSheet(names, query)
	if !ok {
		log.Warn("planilha não encontrada",
			zap.String("query", query),
			zap.String("suggestion", SuggestSheet(names, query)),
			zap.Strings("sheets", names),
		)
		return nil, false, nil
	}
	sheet, err := wb.Sheet(name, 0)
	if err != nil {
		return nil, false, fmt.Errorf("erro ao ler planilha %q: %w", name, err)
	}
	return sheet, true, nil
}

// ParseAll runs material, composition and analytic ingestion concurrently over the same bytes.
func (s *service) ParseAll(data []byte, fileName string, cfg domain.ParserConfig) (*domain.ImportBundle, error) {
	bundle := &domain.ImportBundle{}
	targets := []struct {
		dataType domain.DataType
		dst      **domain.MultiRegimeResult
	}{
		{domain.TypeInsumo, &bundle.Insumos},
		{domain.TypeComposicao, &bundle.Composicoes},
		{domain.TypeAnalitico, &bundle.Analitico},
	}

	var g errgroup.Group
	for _, t := range targets {
		g.Go(func() error {
			res, err := s.Parse(data, fileName, t.dataType, cfg)
			if err != nil {
				return fmt.Errorf("falha ao processar %s: %w", t.dataType, err)
			}
			*t.dst = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return bundle, nil
}

// Preview returns the raw text of the sheet matching sheetQuery, bounded to the preview row limit.
func (s *service) Preview(data []byte, sheetQuery string) (*domain.SheetPreview, error) {
	wb, err := workbook.Open(data)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	names := wb.SheetNames()
	preview := &domain.SheetPreview{Data: [][]string{}, SheetNames: names}
	name, ok := FindSheet(names, sheetQuery)
	if !ok {
		preview.Suggestion = SuggestSheet(names, sheetQuery)
		return preview, nil
	}
	sheet, err := wb.Sheet(name, s.opts.PreviewRows)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler planilha %q: %w", name, err)
	}
	preview.FoundName = name
	preview.Data = sheet.Text()
	return preview, nil
}

// withDefaults fills the fields a caller left blank with the standard layout.
func withDefaults(cfg domain.ParserConfig) domain.ParserConfig {
	def := domain.DefaultParserConfig()
	if cfg.HeaderRow <= 0 {
		cfg.HeaderRow = def.HeaderRow
	}
	if cfg.CellDate == "" {
		cfg.CellDate = def.CellDate
	}
	if cfg.EncargosStartRow <= 0 {
		cfg.EncargosStartRow = def.EncargosStartRow
	}
	if cfg.AnaColType == "" {
		cfg.AnaColType = def.AnaColType
	}
	if cfg.AnaColSituation == "" {
		cfg.AnaColSituation = def.AnaColSituation
	}
	if cfg.AnaColCompDesc == "" {
		cfg.AnaColCompDesc = cfg.AnaColItemDesc
	}
	return cfg
}
