package cmd

import (
	"errors"
	"fmt"

	categoryDatamodel "github.com/frahmantamala/vesta-ledger/internal/core/datamodel/category"
	userDatamodel "github.com/frahmantamala/vesta-ledger/internal/core/datamodel/user"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	demoEmail    = "demo@vesta.local"
	demoName     = "Demo"
	demoPassword = "password"
)

// ownedTables are cleared for the demo user by --clear, children first.
var ownedTables = []string{
	"budgets",
	"loan_payments",
	"savings_contributions",
	"expenses",
	"recurring_expenses",
	"loans",
	"savings",
	"categories",
}

var defaultCategories = []struct {
	Name  string
	Emoji string
}{
	{"Food", "🍔"},
	{"Transport", "🚗"},
	{"Housing", "🏠"},
	{"Utilities", "💡"},
	{"Health", "🏥"},
	{"Shopping", "🛒"},
	{"Entertainment", "🎮"},
	{"Education", "📚"},
	{"Travel", "✈️"},
	{"Other", "📦"},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with default categories and a demo user",
	Long:  `Seed the shared default categories and a demo account for development and testing purposes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to init db: %w", err)
		}
		defer sqlxDB.Close()

		db, err := initGorm(sqlxDB)
		if err != nil {
			return fmt.Errorf("failed to init gorm: %w", err)
		}

		return db.Transaction(func(tx *gorm.DB) error {
			demo, err := seedDemoUser(tx, cfg.Ledger.DefaultCurrency)
			if err != nil {
				return err
			}
			if clearData {
				if err := clearOwnedData(tx, demo.ID); err != nil {
					return err
				}
			}
			return seedDefaultCategories(tx)
		})
	},
}

func seedDemoUser(tx *gorm.DB, currency string) (*userDatamodel.User, error) {
	var demo userDatamodel.User
	err := tx.Where("email = ?", demoEmail).Take(&demo).Error
	if err == nil {
		fmt.Println("demo user already exists:", demoEmail)
		return &demo, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up demo user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash demo password: %w", err)
	}
	if currency == "" {
		currency = "USD"
	}

	demo = userDatamodel.User{
		Email:        demoEmail,
		Name:         demoName,
		PasswordHash: string(hash),
		Currency:     currency,
		IsActive:     true,
	}
	if err := tx.Create(&demo).Error; err != nil {
		return nil, fmt.Errorf("failed to insert demo user: %w", err)
	}
	fmt.Println("Seeded demo user:", demoEmail)
	return &demo, nil
}

func clearOwnedData(tx *gorm.DB, ownerID string) error {
	for _, table := range ownedTables {
		if err := tx.Exec("DELETE FROM "+table+" WHERE user_id = ?", ownerID).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	fmt.Println("Cleared demo user data")
	return nil
}

func seedDefaultCategories(tx *gorm.DB) error {
	for _, c := range defaultCategories {
		var count int64
		err := tx.Model(&categoryDatamodel.Category{}).
			Where("user_id IS NULL AND name = ?", c.Name).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("failed to look up category %s: %w", c.Name, err)
		}
		if count > 0 {
			continue
		}

		row := categoryDatamodel.Category{Name: c.Name, Emoji: c.Emoji, IsDefault: true}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("failed to insert category %s: %w", c.Name, err)
		}
		fmt.Printf("Seeded default category: %s %s\n", c.Emoji, c.Name)
	}

	fmt.Println("Default categories seeded successfully")
	return nil
}
