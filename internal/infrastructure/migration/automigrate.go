package migration

import (
	"github.com/staffhub/staffhub/internal/infrastructure/persistence/models"
)

// AutoMigrateModels lists the tables owned by the billing service. Employees
// belong to the HR directory and are migrated there; they are included so a
// standalone SQLite database is usable.
func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.PlanModel{},
		&models.SubscriptionModel{},
		&models.PaymentModel{},
		&models.InvoiceModel{},
		&models.WebhookEventModel{},
		&models.AuditLogModel{},
		&models.EmployeeModel{},
	}
}
