package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"sinapi-service/internal/api/responses"
	"sinapi-service/internal/core/sinapi"
	"sinapi-service/internal/core/snapshot"
	"sinapi-service/internal/domain"

	"github.com/gin-gonic/gin"
)

// SinapiHandler lida com as requisições da API de ingestão de planilhas SINAPI.
type SinapiHandler struct {
	service      sinapi.Service
	snapshots    *snapshot.Builder
	parserConfig domain.ParserConfig
}

// NewSinapiHandler cria um novo handler de ingestão com o layout de planilha padrão.
func NewSinapiHandler(service sinapi.Service, snapshots *snapshot.Builder, parserConfig domain.ParserConfig) *SinapiHandler {
	return &SinapiHandler{
		service:      service,
		snapshots:    snapshots,
		parserConfig: parserConfig,
	}
}

// getListFromForm extrai e limpa os valores separados por vírgula de um campo de formulário.
func getListFromForm(c *gin.Context, formKey string) []string {
	raw := c.PostForm(formKey)
	if raw == "" {
		return nil
	}
	var values []string
	for _, part := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

// readWorkbook lê o arquivo de planilha enviado no campo "file".
func readWorkbook(c *gin.Context) ([]byte, string, bool) {
	fileHeader, err := c.FormFile("file")
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		responses.Error(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("Arquivo excede o limite de %d bytes", tooLarge.Limit))
		return nil, "", false
	}
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Arquivo Excel (.xls, .xlsx) não encontrado ou inválido")
		return nil, "", false
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != ".xls" && ext != ".xlsx" {
		responses.Error(c, http.StatusBadRequest, fmt.Sprintf("Extensão de arquivo excel não suportada: %s", ext))
		return nil, "", false
	}

	file, err := fileHeader.Open()
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Não foi possível abrir o arquivo Excel")
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Não foi possível ler o arquivo Excel", err.Error())
		return nil, "", false
	}
	return data, fileHeader.Filename, true
}

// parserConfigFromForm sobrepõe o JSON do campo "config" ao layout padrão.
func (h *SinapiHandler) parserConfigFromForm(c *gin.Context) (domain.ParserConfig, bool) {
	cfg := h.parserConfig
	raw := strings.TrimSpace(c.PostForm("config"))
	if raw == "" {
		return cfg, true
	}
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		responses.Error(c, http.StatusBadRequest, "Configuração do parser inválida", err.Error())
		return cfg, false
	}
	return cfg, true
}

func dataTypeFromForm(c *gin.Context) (domain.DataType, bool) {
	dataType, ok := domain.ParseDataType(c.PostForm("dataType"))
	if !ok {
		responses.Error(c, http.StatusBadRequest, "Tipo de dado inválido: use INSUMO, COMPOSICAO ou ANALITICO")
	}
	return dataType, ok
}

// writeServiceError traduz erros do motor de ingestão para respostas HTTP.
func writeServiceError(c *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, sinapi.ErrUnreadableWorkbook):
		responses.Error(c, http.StatusUnprocessableEntity, "Não foi possível ler a planilha", err.Error())
	case errors.Is(err, sinapi.ErrUnknownDataType):
		responses.Error(c, http.StatusBadRequest, message, err.Error())
	default:
		responses.Error(c, http.StatusInternalServerError, message, err.Error())
	}
}

// HandleImport processa uma planilha para um único tipo de dado.
func (h *SinapiHandler) HandleImport(c *gin.Context) {
	data, fileName, ok := readWorkbook(c)
	if !ok {
		return
	}
	dataType, ok := dataTypeFromForm(c)
	if !ok {
		return
	}
	cfg, ok := h.parserConfigFromForm(c)
	if !ok {
		return
	}

	result, err := h.service.Parse(data, fileName, dataType, cfg)
	if err != nil {
		writeServiceError(c, "Erro ao processar a planilha", err)
		return
	}
	if !result.SheetFound {
		responses.Success(c, result, "Planilha não encontrada no arquivo; resultado vazio")
		return
	}
	responses.Success(c, result, "Planilha processada com sucesso")
}

// HandleImportAll processa insumos, composições e analítico e monta o snapshot da importação.
func (h *SinapiHandler) HandleImportAll(c *gin.Context) {
	data, fileName, ok := readWorkbook(c)
	if !ok {
		return
	}
	cfg, ok := h.parserConfigFromForm(c)
	if !ok {
		return
	}

	bundle, err := h.service.ParseAll(data, fileName, cfg)
	if err != nil {
		writeServiceError(c, "Erro ao processar a planilha", err)
		return
	}
	bundle.Snapshot = h.snapshots.Build(bundle, fileName)
	responses.Success(c, bundle, "Importação concluída com sucesso")
}

// HandlePreview devolve o conteúdo bruto de uma aba da planilha.
func (h *SinapiHandler) HandlePreview(c *gin.Context) {
	data, _, ok := readWorkbook(c)
	if !ok {
		return
	}
	sheet := strings.TrimSpace(c.PostForm("sheet"))
	if sheet == "" {
		responses.Error(c, http.StatusBadRequest, "Nome da aba não informado")
		return
	}

	preview, err := h.service.Preview(data, sheet)
	if err != nil {
		writeServiceError(c, "Erro ao ler a planilha", err)
		return
	}
	responses.Success(c, preview, "Pré-visualização gerada com sucesso")
}

// HandleExport processa a planilha e devolve a tabela CSV dos regimes selecionados.
func (h *SinapiHandler) HandleExport(c *gin.Context) {
	data, fileName, ok := readWorkbook(c)
	if !ok {
		return
	}
	dataType, ok := dataTypeFromForm(c)
	if !ok {
		return
	}
	if dataType == domain.TypeAnalitico {
		responses.Error(c, http.StatusBadRequest, "Exportação disponível apenas para INSUMO e COMPOSICAO")
		return
	}
	cfg, ok := h.parserConfigFromForm(c)
	if !ok {
		return
	}

	regimes := domain.AllRegimes
	if selected := getListFromForm(c, "regimes"); len(selected) > 0 {
		regimes = nil
		for _, s := range selected {
			regime, ok := domain.ParseTaxRegime(s)
			if !ok {
				responses.Error(c, http.StatusBadRequest, fmt.Sprintf("Regime desconhecido: %s", s))
				return
			}
			regimes = append(regimes, regime)
		}
	}

	result, err := h.service.Parse(data, fileName, dataType, cfg)
	if err != nil {
		writeServiceError(c, "Erro ao processar a planilha", err)
		return
	}
	outputCSV, err := sinapi.ExportCSV(result.ByRegime(), regimes)
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Erro ao gerar CSV final", err.Error())
		return
	}

	exportName := fmt.Sprintf("Sinapi_%s_%s.csv", dataType, time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", "attachment; filename="+exportName)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", outputCSV)
}
