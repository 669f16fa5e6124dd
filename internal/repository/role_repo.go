package repository

import (
	"errors"

	"go-kiosk-pos/internal/model"

	"gorm.io/gorm"
)

type RoleRepository interface {
	FindAll() ([]model.Role, error)
	FindByID(id uint) (*model.Role, error)
	FindByCode(code string) (*model.Role, error)
	SeedDefaults(privileges PrivilegeRepository) error
}

type roleRepo struct {
	db *gorm.DB
}

func NewRoleRepo(db *gorm.DB) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) FindAll() ([]model.Role, error) {
	var roles []model.Role
	err := r.db.Preload("Privileges").Order("id ASC").Find(&roles).Error
	return roles, err
}

func (r *roleRepo) FindByID(id uint) (*model.Role, error) {
	var role model.Role
	err := r.db.Preload("Privileges").First(&role, id).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepo) FindByCode(code string) (*model.Role, error) {
	var role model.Role
	err := r.db.Preload("Privileges").Where("code = ?", code).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// SeedDefaults creates missing roles and grants their default capabilities.
// Roles that already have grants are left untouched.
func (r *roleRepo) SeedDefaults(privileges PrivilegeRepository) error {
	all, err := privileges.FindAll()
	if err != nil {
		return err
	}

	for _, defaultRole := range model.DefaultRoles {
		var role model.Role
		err := r.db.Preload("Privileges").Where("code = ?", defaultRole.Code).First(&role).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			role = defaultRole
			if err := r.db.Create(&role).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if len(role.Privileges) > 0 {
			continue
		}

		grants := all
		if role.Code != model.RoleRoot {
			grants, err = privileges.FindByCodes(model.DefaultRoleGrants[role.Code])
			if err != nil {
				return err
			}
		}
		if err := r.db.Model(&role).Association("Privileges").Replace(grants); err != nil {
			return err
		}
	}
	return nil
}
