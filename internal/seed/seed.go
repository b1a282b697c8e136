package seed

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/atelierlabs/fotura/internal/pricing"
	settingsdomain "github.com/atelierlabs/fotura/internal/pricingsettings/domain"
)

// EnsureDefaultSettings inserts the pricing settings singleton when the table
// is empty. A fresh install starts in fixed mode at zero, matching what the
// resolver assumes when no row exists.
func EnsureDefaultSettings(conn *gorm.DB) error {
	var existing settingsdomain.Settings
	err := conn.First(&existing, "id = ?", settingsdomain.SettingsRowID).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	row := settingsdomain.Settings{
		ID:         settingsdomain.SettingsRowID,
		Mode:       string(pricing.ModeFixed),
		FixedValue: decimal.Zero,
	}
	return conn.Create(&row).Error
}
