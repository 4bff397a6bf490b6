// Package datamodel lists the gorm row types that make up the ledger schema.
package datamodel

import (
	"github.com/frahmantamala/vesta-ledger/internal/core/datamodel/budget"
	"github.com/frahmantamala/vesta-ledger/internal/core/datamodel/category"
	"github.com/frahmantamala/vesta-ledger/internal/core/datamodel/expense"
	"github.com/frahmantamala/vesta-ledger/internal/core/datamodel/loan"
	"github.com/frahmantamala/vesta-ledger/internal/core/datamodel/recurring"
	"github.com/frahmantamala/vesta-ledger/internal/core/datamodel/saving"
	"github.com/frahmantamala/vesta-ledger/internal/core/datamodel/user"
)

// Models returns every table model in dependency order.
func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&category.Category{},
		&expense.Expense{},
		&budget.Budget{},
		&recurring.RecurringExpense{},
		&loan.Loan{},
		&loan.LoanPayment{},
		&saving.Saving{},
		&saving.SavingsContribution{},
	}
}
