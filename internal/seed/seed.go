package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/odontix/odontix/internal/catalog/domain"
	graphdomain "github.com/odontix/odontix/internal/graph/domain"
	"gorm.io/gorm"
)

type catalogEntry struct {
	Key          string
	Name         string
	Description  string
	Category     string
	DisplayOrder int
}

type dependencyEntry struct {
	Module   string
	Requires string
}

var defaultCatalog = []catalogEntry{
	{Key: "AGENDA", Name: "Agenda", Description: "Appointment book and chair scheduling", Category: "clinical", DisplayOrder: 10},
	{Key: "PRONTUARIO", Name: "Prontuário", Description: "Electronic dental records and odontograms", Category: "clinical", DisplayOrder: 20},
	{Key: "ESTOQUE", Name: "Estoque", Description: "Consumables and material stock control", Category: "operations", DisplayOrder: 30},
	{Key: "FINANCEIRO", Name: "Financeiro", Description: "Cash flow, receivables and payables", Category: "finance", DisplayOrder: 40},
	{Key: "SPLIT_PAGAMENTO", Name: "Split de Pagamento", Description: "Revenue split between clinic and practitioners", Category: "finance", DisplayOrder: 50},
	{Key: "COBRANCA", Name: "Cobrança", Description: "Automated billing and payment reminders", Category: "finance", DisplayOrder: 60},
	{Key: "FISCAL", Name: "Fiscal", Description: "Service invoice issuing and tax reports", Category: "finance", DisplayOrder: 70},
	{Key: "MARKETING", Name: "Marketing", Description: "Patient campaigns and recall messaging", Category: "growth", DisplayOrder: 80},
}

var defaultDependencies = []dependencyEntry{
	{Module: "SPLIT_PAGAMENTO", Requires: "FINANCEIRO"},
	{Module: "COBRANCA", Requires: "FINANCEIRO"},
	{Module: "FISCAL", Requires: "FINANCEIRO"},
}

// EnsureDefaultCatalog seeds the dental module catalog and its dependency
// edges. Existing rows are left untouched, so operators can rename or disable
// seeded modules without the next boot reverting them.
func EnsureDefaultCatalog(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make(map[string]snowflake.ID, len(defaultCatalog))

		for _, entry := range defaultCatalog {
			var existing catalogdomain.Module
			err := tx.WithContext(ctx).Where("modules.key = ?", entry.Key).First(&existing).Error
			if err == nil {
				ids[entry.Key] = existing.ID
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			desc := entry.Description
			row := catalogdomain.Module{
				ID:           node.Generate(),
				Key:          entry.Key,
				Name:         entry.Name,
				Description:  &desc,
				Category:     entry.Category,
				DisplayOrder: entry.DisplayOrder,
				Enabled:      true,
			}
			if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
				return err
			}
			ids[entry.Key] = row.ID
		}

		for _, dep := range defaultDependencies {
			moduleID, ok := ids[dep.Module]
			requiresID, ok2 := ids[dep.Requires]
			if !ok || !ok2 {
				continue
			}

			var count int64
			err := tx.WithContext(ctx).
				Model(&graphdomain.DependencyEdge{}).
				Where("module_id = ? AND depends_on_id = ?", moduleID, requiresID).
				Count(&count).Error
			if err != nil {
				return err
			}
			if count > 0 {
				continue
			}

			edge := graphdomain.DependencyEdge{
				ID:          node.Generate(),
				ModuleID:    moduleID,
				DependsOnID: requiresID,
			}
			if err := tx.WithContext(ctx).Create(&edge).Error; err != nil {
				return err
			}
		}

		return nil
	})
}
