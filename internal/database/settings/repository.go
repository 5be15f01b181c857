// Package settings stores small key/value records next to the catalog
// snapshot.
//
// # Usage
//
//	repo := settings.NewRepository(tx)
//	err := repo.SetUint(entities.SettingKeyLoanSequence, 42)
//	seq, ok, err := repo.GetUint(entities.SettingKeyLoanSequence)
package settings

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/librarian/internal/entities"
)

// Repository handles all settings database operations. Pass a transaction
// handle to take part in a snapshot write.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetSetting retrieves a setting by key.
func (r *Repository) GetSetting(key string) (*entities.Setting, error) {
	var setting entities.Setting
	err := r.db.Where("key = ?", key).First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// SetSetting creates or updates a setting.
func (r *Repository) SetSetting(key, value string) error {
	var setting entities.Setting
	result := r.db.Where("key = ?", key).First(&setting)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		setting = entities.Setting{
			Key:   key,
			Value: value,
		}
		return r.db.Create(&setting).Error
	} else if result.Error != nil {
		return result.Error
	}

	setting.Value = value
	return r.db.Save(&setting).Error
}

func (r *Repository) DeleteSetting(key string) error {
	return r.db.Where("key = ?", key).Delete(&entities.Setting{}).Error
}

// GetUint reads a numeric setting. A missing key reports ok == false.
func (r *Repository) GetUint(key string) (value uint, ok bool, err error) {
	setting, err := r.GetSetting(key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseUint(setting.Value, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("setting %s is not a number: %w", key, err)
	}
	return uint(n), true, nil
}

func (r *Repository) SetUint(key string, value uint) error {
	return r.SetSetting(key, strconv.FormatUint(uint64(value), 10))
}

// GetTime reads an RFC3339 setting. A missing key returns the zero time.
func (r *Repository) GetTime(key string) (time.Time, error) {
	setting, err := r.GetSetting(key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, setting.Value)
	if err != nil {
		return time.Time{}, fmt.Errorf("setting %s is not a timestamp: %w", key, err)
	}
	return t, nil
}

func (r *Repository) SetTime(key string, value time.Time) error {
	return r.SetSetting(key, value.UTC().Format(time.RFC3339Nano))
}
