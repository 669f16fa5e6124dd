package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Staff is a kiosk operator who logs in with a PIN.
type Staff struct {
	BaseModel
	FullName   string `gorm:"type:varchar(255);not null" json:"full_name" validate:"required"`
	PINHash    string `gorm:"type:varchar(255);not null" json:"-"`
	RoleID     *uint  `gorm:"index" json:"role_id"`
	Role       *Role  `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	IsActive   bool   `gorm:"default:true" json:"is_active"`
	IsRoot     bool   `gorm:"default:false" json:"is_root"`
	UILanguage string `gorm:"type:varchar(2);default:'fr'" json:"ui_language"`
	UITheme    string `gorm:"type:varchar(20);default:'light'" json:"ui_theme"`
}

const (
	ThemeLight    = "light"
	ThemeBlueDark = "blue-dark"
)

func (Staff) TableName() string {
	return "staff"
}

// SetPIN hashes and stores the PIN.
func (s *Staff) SetPIN(pin string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.PINHash = string(hashed)
	return nil
}

func (s *Staff) CheckPIN(pin string) bool {
	return bcrypt.CompareHashAndPassword([]byte(s.PINHash), []byte(pin)) == nil
}

// Capabilities returns the capability codes granted through the staff's role.
func (s *Staff) Capabilities() []string {
	if s.Role == nil {
		return []string{}
	}
	codes := make([]string, 0, len(s.Role.Privileges))
	for _, p := range s.Role.Privileges {
		codes = append(codes, string(p.Code))
	}
	return codes
}

// StaffResponse is the staff view returned to clients.
type StaffResponse struct {
	ID           uuid.UUID `json:"id"`
	FullName     string    `json:"full_name"`
	RoleID       *uint     `json:"role_id,omitempty"`
	RoleCode     string    `json:"role_code,omitempty"`
	IsActive     bool      `json:"is_active"`
	IsRoot       bool      `json:"is_root"`
	UILanguage   string    `json:"ui_language"`
	UITheme      string    `json:"ui_theme"`
	Capabilities []string  `json:"perms"`
	CreatedAt    time.Time `json:"created_at"`
}

func (s *Staff) ToResponse() StaffResponse {
	resp := StaffResponse{
		ID:           s.ID,
		FullName:     s.FullName,
		RoleID:       s.RoleID,
		IsActive:     s.IsActive,
		IsRoot:       s.IsRoot,
		UILanguage:   s.UILanguage,
		UITheme:      s.UITheme,
		Capabilities: s.Capabilities(),
		CreatedAt:    s.CreatedAt,
	}
	if s.Role != nil {
		resp.RoleCode = s.Role.Code
	}
	return resp
}
