package repository

import (
	"context"

	"go-kiosk-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StaffRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Staff, error)
	FindAll(ctx context.Context) ([]model.Staff, error)
	FindActive(ctx context.Context) ([]model.Staff, error)
	FindRoot(ctx context.Context) (*model.Staff, error)
	FindByName(ctx context.Context, fullName string) (*model.Staff, error)
	Create(ctx context.Context, staff *model.Staff) error
	Update(ctx context.Context, staff *model.Staff) error
	UpdatePIN(ctx context.Context, id uuid.UUID, pinHash string) error
	UpdatePreferences(ctx context.Context, id uuid.UUID, language, theme string) error
}

type staffRepo struct {
	db *gorm.DB
}

func NewStaffRepo(db *gorm.DB) StaffRepository {
	return &staffRepo{db}
}

func (r *staffRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	var staff model.Staff
	if err := r.db.WithContext(ctx).Preload("Role.Privileges").First(&staff, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepo) FindAll(ctx context.Context) ([]model.Staff, error) {
	var staff []model.Staff
	if err := r.db.WithContext(ctx).Preload("Role").Order("created_at DESC").Find(&staff).Error; err != nil {
		return nil, err
	}
	return staff, nil
}

// FindActive loads every active staff member; PIN login has no username so it
// compares against each hash.
func (r *staffRepo) FindActive(ctx context.Context) ([]model.Staff, error) {
	var staff []model.Staff
	if err := r.db.WithContext(ctx).Preload("Role.Privileges").Where("is_active = ?", true).Find(&staff).Error; err != nil {
		return nil, err
	}
	return staff, nil
}

func (r *staffRepo) FindRoot(ctx context.Context) (*model.Staff, error) {
	var staff model.Staff
	if err := r.db.WithContext(ctx).Where("is_root = ?", true).First(&staff).Error; err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepo) FindByName(ctx context.Context, fullName string) (*model.Staff, error) {
	var staff model.Staff
	if err := r.db.WithContext(ctx).Where("full_name = ?", fullName).First(&staff).Error; err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepo) Create(ctx context.Context, staff *model.Staff) error {
	return r.db.WithContext(ctx).Create(staff).Error
}

// Update writes the editable profile fields only; PIN and root flag have their own paths.
func (r *staffRepo) Update(ctx context.Context, staff *model.Staff) error {
	return r.db.WithContext(ctx).Model(staff).
		Select("full_name", "role_id", "is_active", "updated_by").
		Updates(staff).Error
}

func (r *staffRepo) UpdatePIN(ctx context.Context, id uuid.UUID, pinHash string) error {
	return r.db.WithContext(ctx).Model(&model.Staff{}).Where("id = ?", id).Update("pin_hash", pinHash).Error
}

func (r *staffRepo) UpdatePreferences(ctx context.Context, id uuid.UUID, language, theme string) error {
	return r.db.WithContext(ctx).Model(&model.Staff{}).Where("id = ?", id).
		Updates(map[string]interface{}{"ui_language": language, "ui_theme": theme}).Error
}
