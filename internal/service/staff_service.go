package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-kiosk-pos/internal/model"
	"go-kiosk-pos/internal/repository"
	"go-kiosk-pos/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CreateStaffRequest struct {
	FullName string `json:"full_name" validate:"max=255"`
	PIN      string `json:"pin"`
	RoleID   *uint  `json:"role_id"`
}

// UpdateStaffRequest is a partial update. Nil or blank fields are left unchanged.
type UpdateStaffRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,max=255"`
	RoleID   *uint   `json:"role_id"`
	IsActive *bool   `json:"is_active"`
}

type PreferencesRequest struct {
	UILanguage string `json:"ui_language"`
	UITheme    string `json:"ui_theme"`
}

type Preferences struct {
	UILanguage string `json:"ui_language"`
	UITheme    string `json:"ui_theme"`
}

// RoleFinder resolves a role by its id.
type RoleFinder interface {
	FindByID(id uint) (*model.Role, error)
}

type StaffService interface {
	ListStaff(ctx context.Context) ([]model.StaffResponse, error)
	CreateStaff(ctx context.Context, actor Actor, req CreateStaffRequest) (*model.Staff, error)
	UpdateStaff(ctx context.Context, actor Actor, id uuid.UUID, req UpdateStaffRequest) (*model.Staff, error)
	ResetPIN(ctx context.Context, actor Actor, id uuid.UUID, pin string) error
	UpdatePreferences(ctx context.Context, actor Actor, req PreferencesRequest) (*Preferences, error)
}

type staffService struct {
	staffRepo repository.StaffRepository
	roles     RoleFinder
	audit     AuditRecorder
}

func NewStaffService(staffRepo repository.StaffRepository, roles RoleFinder, audit AuditRecorder) StaffService {
	return &staffService{
		staffRepo: staffRepo,
		roles:     roles,
		audit:     audit,
	}
}

func (s *staffService) ListStaff(ctx context.Context) ([]model.StaffResponse, error) {
	staff, err := s.staffRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]model.StaffResponse, len(staff))
	for i := range staff {
		responses[i] = staff[i].ToResponse()
	}
	return responses, nil
}

// CreateStaff adds a non-root staff member. Root is only ever created by the bootstrap.
func (s *staffService) CreateStaff(ctx context.Context, actor Actor, req CreateStaffRequest) (*model.Staff, error) {
	if err := validateInput(&req); err != nil {
		return nil, err
	}
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return nil, ErrFullNameRequired
	}
	pin := strings.TrimSpace(req.PIN)
	if !ValidPINFormat(pin) {
		return nil, ErrInvalidPINFormat
	}
	if err := s.checkRole(req.RoleID); err != nil {
		return nil, err
	}

	staff := &model.Staff{
		FullName:   fullName,
		RoleID:     req.RoleID,
		IsActive:   true,
		UILanguage: "fr",
		UITheme:    model.ThemeLight,
	}
	staff.CreatedBy = actor.ID.String()
	staff.UpdatedBy = actor.ID.String()
	if err := staff.SetPIN(pin); err != nil {
		return nil, fmt.Errorf("hash pin: %w", err)
	}

	if err := s.staffRepo.Create(ctx, staff); err != nil {
		logger.Error(ctx).Err(err).Str("op", "create staff").Msg("staff write failed")
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		ActorID:    actor.idPtr(),
		ActorName:  actor.Name,
		Action:     model.ActionCreateStaff,
		EntityType: model.EntityStaff,
		EntityID:   &staff.ID,
		Metadata: map[string]interface{}{
			"full_name": staff.FullName,
			"role_id":   *staff.RoleID,
		},
	})
	return staff, nil
}

func (s *staffService) UpdateStaff(ctx context.Context, actor Actor, id uuid.UUID, req UpdateStaffRequest) (*model.Staff, error) {
	if err := validateInput(&req); err != nil {
		return nil, err
	}
	staff, err := s.editable(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.RoleID != nil {
		if err := s.checkRole(req.RoleID); err != nil {
			return nil, err
		}
	}

	metadata := map[string]interface{}{}
	if name := strings.TrimSpace(deref(req.FullName)); name != "" {
		staff.FullName = name
		metadata["full_name"] = name
	}
	if req.RoleID != nil {
		staff.RoleID = req.RoleID
		staff.Role = nil
		metadata["role_id"] = *req.RoleID
	}
	if req.IsActive != nil {
		staff.IsActive = *req.IsActive
		metadata["is_active"] = *req.IsActive
	}
	staff.UpdatedBy = actor.ID.String()

	if err := s.staffRepo.Update(ctx, staff); err != nil {
		logger.Error(ctx).Err(err).Str("op", "update staff").Msg("staff write failed")
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		ActorID:    actor.idPtr(),
		ActorName:  actor.Name,
		Action:     model.ActionUpdateStaff,
		EntityType: model.EntityStaff,
		EntityID:   &staff.ID,
		Metadata:   metadata,
	})
	return staff, nil
}

func (s *staffService) ResetPIN(ctx context.Context, actor Actor, id uuid.UUID, pin string) error {
	staff, err := s.editable(ctx, id)
	if err != nil {
		return err
	}
	pin = strings.TrimSpace(pin)
	if !ValidPINFormat(pin) {
		return ErrInvalidPINFormat
	}
	if err := staff.SetPIN(pin); err != nil {
		return fmt.Errorf("hash pin: %w", err)
	}
	if err := s.staffRepo.UpdatePIN(ctx, staff.ID, staff.PINHash); err != nil {
		logger.Error(ctx).Err(err).Str("op", "reset pin").Msg("staff write failed")
		return err
	}

	s.audit.Record(ctx, AuditEntry{
		ActorID:    actor.idPtr(),
		ActorName:  actor.Name,
		Action:     model.ActionResetPIN,
		EntityType: model.EntityStaff,
		EntityID:   &staff.ID,
	})
	return nil
}

// UpdatePreferences stores the caller's own UI settings. Unknown values fall
// back to French and the light theme.
func (s *staffService) UpdatePreferences(ctx context.Context, actor Actor, req PreferencesRequest) (*Preferences, error) {
	if err := validateInput(&actor); err != nil {
		return nil, err
	}
	prefs := &Preferences{
		UILanguage: normalizeLanguage(req.UILanguage),
		UITheme:    model.ThemeLight,
	}
	if strings.TrimSpace(req.UITheme) == model.ThemeBlueDark {
		prefs.UITheme = model.ThemeBlueDark
	}

	if err := s.staffRepo.UpdatePreferences(ctx, actor.ID, prefs.UILanguage, prefs.UITheme); err != nil {
		logger.Error(ctx).Err(err).Str("op", "update preferences").Msg("staff write failed")
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		ActorID:    actor.idPtr(),
		ActorName:  actor.Name,
		Action:     model.ActionUpdatePreferences,
		EntityType: model.EntityStaff,
		EntityID:   actor.idPtr(),
		Metadata: map[string]interface{}{
			"ui_language": prefs.UILanguage,
			"ui_theme":    prefs.UITheme,
		},
	})
	return prefs, nil
}

// editable loads a staff member that management routes may change.
func (s *staffService) editable(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	staff, err := s.staffRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStaffNotFound
		}
		return nil, err
	}
	if staff.IsRoot {
		return nil, ErrRootProtected
	}
	return staff, nil
}

func (s *staffService) checkRole(id *uint) error {
	if id == nil || *id == 0 {
		return ErrRoleRequired
	}
	if _, err := s.roles.FindByID(*id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: unknown role %d", ErrRoleRequired, *id)
		}
		return err
	}
	return nil
}
