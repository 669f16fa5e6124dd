package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go-kiosk-pos/internal/model"
	"go-kiosk-pos/internal/repository"
	"go-kiosk-pos/pkg/jwt"
	"go-kiosk-pos/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PINs look like "ad-123456": two letters, a dash, six digits.
var pinFormat = regexp.MustCompile(`^[A-Za-z]{2}-\d{6}$`)

func ValidPINFormat(pin string) bool {
	return pinFormat.MatchString(pin)
}

type AuthService interface {
	Login(ctx context.Context, pin string) (*LoginResponse, error)
	Authorize(ctx context.Context, staffID uuid.UUID) (*model.Staff, error)
}

type LoginResponse struct {
	Token string              `json:"token"`
	User  model.StaffResponse `json:"user"`
}

type authService struct {
	staffRepo repository.StaffRepository
	audit     AuditRecorder
}

func NewAuthService(staffRepo repository.StaffRepository, audit AuditRecorder) AuthService {
	return &authService{
		staffRepo: staffRepo,
		audit:     audit,
	}
}

// Login resolves a PIN to exactly one active staff member. Capabilities are
// copied into the token and stay fixed until it expires.
func (s *authService) Login(ctx context.Context, pin string) (*LoginResponse, error) {
	pin = strings.TrimSpace(pin)
	if !ValidPINFormat(pin) {
		return nil, ErrInvalidPINFormat
	}

	active, err := s.staffRepo.FindActive(ctx)
	if err != nil {
		logger.Error(ctx).Err(err).Msg("load staff for login")
		return nil, err
	}

	var found []model.Staff
	for _, st := range active {
		if st.CheckPIN(pin) {
			found = append(found, st)
		}
	}
	if len(found) != 1 {
		s.audit.Record(ctx, AuditEntry{
			ActorName:  "UNKNOWN",
			Action:     model.ActionLoginFail,
			EntityType: model.EntityAuth,
			Metadata:   map[string]interface{}{"reason": "BAD_PIN"},
		})
		return nil, ErrInvalidCredentials
	}

	staff := found[0]
	resp := staff.ToResponse()
	token, err := jwt.GenerateToken(staff.ID, staff.FullName, resp.RoleCode, staff.IsRoot, staff.UILanguage, resp.Capabilities)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, AuditEntry{
		ActorID:    &staff.ID,
		ActorName:  staff.FullName,
		Action:     model.ActionLoginOK,
		EntityType: model.EntityAuth,
	})

	return &LoginResponse{Token: token, User: resp}, nil
}

// Authorize confirms the token's staff member still exists and is active.
func (s *authService) Authorize(ctx context.Context, staffID uuid.UUID) (*model.Staff, error) {
	staff, err := s.staffRepo.FindByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !staff.IsActive {
		return nil, ErrStaffInactive
	}
	return staff, nil
}
