package migration

import (
	"pagemark/internal/infrastructure/persistence/models"
)

func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.UsageEventModel{},
		&models.MonthlyUsageModel{},
		&models.UserPlanStateModel{},
	}
}
