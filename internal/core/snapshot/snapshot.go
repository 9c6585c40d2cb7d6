// Package snapshot turns the results of a full import into flat reference,
// item and structure records ready to be stored by a collaborator.
package snapshot

import (
	"fmt"
	"time"

	"sinapi-service/internal/domain"

	"github.com/google/uuid"
)

const (
	noPeriod            = "N/A"
	noClassification    = "SEM CLASSIFICAÇÃO"
	noGroup             = "SEM GRUPO"
	descriptionTemplate = "Importação manual: %s"
)

// Builder creates snapshots. Now and NewID default to time.Now and uuid.NewString.
type Builder struct {
	Now   func() time.Time
	NewID func() string
}

// NewBuilder returns a Builder using the wall clock and random UUIDs.
func NewBuilder() *Builder {
	return &Builder{Now: time.Now, NewID: uuid.NewString}
}

// Build derives the snapshot of a bundle. Items come from the with-charges lists of
// materials and compositions; structure rows come from the analytic breakdown.
func (b *Builder) Build(bundle *domain.ImportBundle, fileName string) *domain.ImportSnapshot {
	now := b.Now().UTC()
	ref := domain.TableReference{
		ID:          b.NewID(),
		Period:      noPeriod,
		Description: fmt.Sprintf(descriptionTemplate, fileName),
		CreatedAt:   now,
	}
	if bundle.Insumos != nil && bundle.Insumos.ReferenceDate != "" {
		ref.Period = bundle.Insumos.ReferenceDate
	}

	snap := &domain.ImportSnapshot{
		Reference: ref,
		Items:     []domain.TableItem{},
		Structure: []domain.TableStructure{},
	}

	if bundle.Insumos != nil {
		for _, item := range bundle.Insumos.Desonerado {
			snap.Items = append(snap.Items, b.item(ref, item, domain.TypeInsumo, orDefault(item.Classification, noClassification)))
		}
	}
	if bundle.Composicoes != nil {
		for _, item := range bundle.Composicoes.Desonerado {
			snap.Items = append(snap.Items, b.item(ref, item, domain.TypeComposicao, orDefault(item.Group, noGroup)))
		}
	}
	if bundle.Analitico != nil {
		for _, ana := range bundle.Analitico.Analitico {
			itemType := domain.TypeComposicao
			if ana.Category == string(domain.TypeInsumo) {
				itemType = domain.TypeInsumo
			}
			var coef float64
			if ana.Coefficient != nil {
				coef = *ana.Coefficient
			}
			snap.Structure = append(snap.Structure, domain.TableStructure{
				ID:          b.NewID(),
				ReferenceID: ref.ID,
				ParentCode:  ana.ParentCode,
				ChildCode:   ana.Code,
				Coefficient: coef,
				ItemType:    itemType,
			})
		}
	}
	return snap
}

func (b *Builder) item(ref domain.TableReference, item domain.CatalogItem, category domain.DataType, classification string) domain.TableItem {
	prices := make(map[string]float64, len(item.PriceMap))
	for k, v := range item.PriceMap {
		prices[k] = v
	}
	return domain.TableItem{
		ID:             b.NewID(),
		ReferenceID:    ref.ID,
		Code:           item.Code,
		Description:    item.Description,
		Unit:           item.Unit,
		Category:       category,
		Classification: classification,
		Prices:         prices,
		CreatedAt:      ref.CreatedAt,
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
