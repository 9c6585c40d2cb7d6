// sinapictl runs the SINAPI ingestion engine against local workbook files.
//
// Usage:
//
//	sinapictl import --file SINAPI_Referencia.xlsx --type INSUMO
//	sinapictl import --file SINAPI_Referencia.xlsx --all
//	sinapictl export --file SINAPI_Referencia.xlsx --type COMPOSICAO --regimes CD,SD --out composicoes.csv
//	sinapictl preview --file SINAPI_Referencia.xlsx --sheet ISD
//	sinapictl inspect --csv composicoes.csv --regime DESONERADO
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"sinapi-service/internal/config"
	"sinapi-service/internal/core/sinapi"
	"sinapi-service/internal/core/snapshot"
	"sinapi-service/internal/domain"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "sinapictl",
		Usage:   "Ingestão e normalização de planilhas SINAPI",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Nível de log (debug, info, warn, error)",
				EnvVars: []string{"SINAPI_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Arquivo TOML com o layout do parser",
				EnvVars: []string{"SINAPI_PARSER_CONFIG"},
			},
			&cli.IntFlag{
				Name:    "detect-rows",
				Value:   sinapi.DefaultDetectOptions().MaxRows,
				Usage:   "Linhas examinadas na detecção do cabeçalho de estados",
				EnvVars: []string{"SINAPI_DETECT_ROWS"},
			},
			&cli.IntFlag{
				Name:    "detect-cols",
				Value:   sinapi.DefaultDetectOptions().MaxCols,
				Usage:   "Colunas examinadas na detecção do cabeçalho de estados",
				EnvVars: []string{"SINAPI_DETECT_COLS"},
			},
		},
		Commands: []*cli.Command{
			importCommand(),
			exportCommand(),
			previewCommand(),
			inspectCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Erro: %v\n", err)
		os.Exit(1)
	}
}

var fileFlag = &cli.StringFlag{
	Name:     "file",
	Aliases:  []string{"f"},
	Usage:    "Planilha SINAPI (.xls ou .xlsx)",
	Required: true,
}

var outFlag = &cli.StringFlag{
	Name:    "out",
	Aliases: []string{"o"},
	Usage:   "Arquivo de saída (padrão: stdout)",
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Processa uma planilha e imprime o resultado em JSON",
		Flags: []cli.Flag{
			fileFlag,
			outFlag,
			&cli.StringFlag{
				Name:    "type",
				Aliases: []string{"t"},
				Value:   string(domain.TypeInsumo),
				Usage:   "Tipo de dado (INSUMO, COMPOSICAO, ANALITICO)",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Processa os três tipos e monta o snapshot da importação",
			},
		},
		Action: runImport,
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Processa uma planilha e gera a tabela CSV de preços",
		Flags: []cli.Flag{
			fileFlag,
			outFlag,
			&cli.StringFlag{
				Name:    "type",
				Aliases: []string{"t"},
				Value:   string(domain.TypeInsumo),
				Usage:   "Tipo de dado (INSUMO, COMPOSICAO)",
			},
			&cli.StringSliceFlag{
				Name:    "regimes",
				Aliases: []string{"r"},
				Usage:   "Regimes exportados (CD, SD, SE); padrão: todos",
			},
		},
		Action: runExport,
	}
}

func previewCommand() *cli.Command {
	return &cli.Command{
		Name:  "preview",
		Usage: "Mostra o conteúdo bruto de uma aba",
		Flags: []cli.Flag{
			fileFlag,
			&cli.StringFlag{
				Name:     "sheet",
				Aliases:  []string{"s"},
				Usage:    "Nome (ou parte do nome) da aba",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "rows",
				Value: 20,
				Usage: "Quantidade de linhas exibidas",
			},
		},
		Action: runPreview,
	}
}

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "Lê uma tabela CSV exportada e resume os itens de um regime",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "csv",
				Usage:    "Tabela gerada pelo comando export",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "regime",
				Value: string(domain.RegimeDesonerado),
				Usage: "Regime lido (DESONERADO, NAO_DESONERADO, SEM_ENCARGOS)",
			},
		},
		Action: runInspect,
	}
}

// engine builds the ingestion service and parser layout from the global flags.
func engine(c *cli.Context) (sinapi.Service, domain.ParserConfig, error) {
	logger, err := config.NewLogger(c.String("log-level"))
	if err != nil {
		return nil, domain.ParserConfig{}, err
	}
	parserConfig, err := config.LoadParserConfig(c.String("config"))
	if err != nil {
		return nil, parserConfig, err
	}
	detect := sinapi.DefaultDetectOptions()
	detect.MaxRows = c.Int("detect-rows")
	detect.MaxCols = c.Int("detect-cols")
	return sinapi.NewService(logger, sinapi.Options{Detect: detect}), parserConfig, nil
}

func readWorkbook(c *cli.Context) ([]byte, string, error) {
	path := c.String("file")
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".xls" && ext != ".xlsx" {
		return nil, "", fmt.Errorf("extensão de arquivo excel não suportada: %s", ext)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("não foi possível ler %s: %w", path, err)
	}
	return data, filepath.Base(path), nil
}

// output opens the --out file, or stdout when the flag is empty.
func output(c *cli.Context) (io.WriteCloser, error) {
	path := c.String("out")
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("não foi possível criar %s: %w", path, err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// writeAndClose runs write against w and closes it. The close error is returned when the write succeeded.
func writeAndClose(w io.WriteCloser, write func(io.Writer) error) (err error) {
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("erro ao finalizar a saída: %w", cerr)
		}
	}()
	return write(w)
}

func writeJSON(c *cli.Context, v any) error {
	w, err := output(c)
	if err != nil {
		return err
	}
	return writeAndClose(w, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	})
}

func runImport(c *cli.Context) error {
	data, fileName, err := readWorkbook(c)
	if err != nil {
		return err
	}
	svc, parserConfig, err := engine(c)
	if err != nil {
		return err
	}

	if c.Bool("all") {
		bundle, err := svc.ParseAll(data, fileName, parserConfig)
		if err != nil {
			return err
		}
		bundle.Snapshot = snapshot.NewBuilder().Build(bundle, fileName)
		fmt.Fprintf(os.Stderr, "📦 Snapshot %s: %d itens, %d relações de estrutura\n",
			bundle.Snapshot.Reference.ID, len(bundle.Snapshot.Items), len(bundle.Snapshot.Structure))
		return writeJSON(c, bundle)
	}

	dataType, ok := domain.ParseDataType(c.String("type"))
	if !ok {
		return fmt.Errorf("tipo de dado inválido: %s", c.String("type"))
	}
	result, err := svc.Parse(data, fileName, dataType, parserConfig)
	if err != nil {
		return err
	}
	if !result.SheetFound {
		fmt.Fprintf(os.Stderr, "⚠️  Aba de %s não encontrada em %s\n", dataType, fileName)
	}
	fmt.Fprintf(os.Stderr, "📊 CD=%d SD=%d SE=%d analítico=%d\n",
		result.Stats.TotalDesonerado, result.Stats.TotalNaoDesonerado,
		result.Stats.TotalSemEncargos, result.Stats.TotalAnalitico)
	return writeJSON(c, result)
}

func runExport(c *cli.Context) error {
	data, fileName, err := readWorkbook(c)
	if err != nil {
		return err
	}
	dataType, ok := domain.ParseDataType(c.String("type"))
	if !ok || dataType == domain.TypeAnalitico {
		return fmt.Errorf("exportação disponível apenas para INSUMO e COMPOSICAO")
	}

	regimes := domain.AllRegimes
	if selected := c.StringSlice("regimes"); len(selected) > 0 {
		regimes = nil
		for _, s := range selected {
			for _, part := range strings.Split(s, ",") {
				regime, ok := domain.ParseTaxRegime(strings.TrimSpace(part))
				if !ok {
					return fmt.Errorf("regime desconhecido: %s", part)
				}
				regimes = append(regimes, regime)
			}
		}
	}

	svc, parserConfig, err := engine(c)
	if err != nil {
		return err
	}
	result, err := svc.Parse(data, fileName, dataType, parserConfig)
	if err != nil {
		return err
	}

	w, err := output(c)
	if err != nil {
		return err
	}
	return writeAndClose(w, func(w io.Writer) error {
		return sinapi.WriteCSV(w, result.ByRegime(), regimes)
	})
}

func runPreview(c *cli.Context) error {
	data, _, err := readWorkbook(c)
	if err != nil {
		return err
	}
	svc, _, err := engine(c)
	if err != nil {
		return err
	}
	preview, err := svc.Preview(data, c.String("sheet"))
	if err != nil {
		return err
	}
	if preview.FoundName == "" {
		msg := fmt.Sprintf("aba %q não encontrada; abas disponíveis: %s", c.String("sheet"), strings.Join(preview.SheetNames, ", "))
		if preview.Suggestion != "" {
			msg += fmt.Sprintf(" (você quis dizer %q?)", preview.Suggestion)
		}
		return fmt.Errorf("%s", msg)
	}

	fmt.Printf("Aba: %s\n", preview.FoundName)
	for i, row := range preview.Data {
		if i >= c.Int("rows") {
			break
		}
		fmt.Printf("%4d | %s\n", i+1, strings.Join(row, " | "))
	}
	return nil
}

func runInspect(c *cli.Context) error {
	regime, ok := domain.ParseTaxRegime(c.String("regime"))
	if !ok {
		return fmt.Errorf("regime desconhecido: %s", c.String("regime"))
	}
	f, err := os.Open(c.String("csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	items, err := sinapi.ReadCSV(f, regime)
	if err != nil {
		return err
	}
	fmt.Printf("%d itens no regime %s\n", len(items), regime)
	for i, item := range items {
		if i >= 10 {
			fmt.Println("...")
			break
		}
		fmt.Printf("%-10s %-60.60s %-6s R$ %s\n", item.Code, item.Description, item.Unit, sinapi.FormatBRL(item.Price))
	}
	return nil
}
