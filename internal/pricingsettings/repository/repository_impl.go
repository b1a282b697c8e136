package repository

import (
	"context"
	"errors"

	settingsdomain "github.com/atelierlabs/fotura/internal/pricingsettings/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() settingsdomain.Repository {
	return &repo{}
}

func (r *repo) Get(ctx context.Context, db *gorm.DB) (*settingsdomain.Settings, error) {
	var settings settingsdomain.Settings
	err := db.WithContext(ctx).Model(&settingsdomain.Settings{}).
		Where("id = ?", settingsdomain.SettingsRowID).
		First(&settings).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &settings, nil
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, settings *settingsdomain.Settings) error {
	settings.ID = settingsdomain.SettingsRowID
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"mode", "fixed_value", "global_table_id", "updated_at",
		}),
	}).Create(settings).Error
}
