package jwt

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrMissingToken = errors.New("missing authorization token")
)

const issuer = "kiosk-pos"

var (
	mu         sync.RWMutex
	secretKey  = []byte("your-super-secret-key-change-in-production")
	expiration = 12 * time.Hour
)

// Claims is the token payload. Capabilities are resolved once at login and
// never change for the life of the token.
type Claims struct {
	StaffID      uuid.UUID `json:"staff_id"`
	Name         string    `json:"name"`
	RoleCode     string    `json:"role_code"`
	IsRoot       bool      `json:"is_root"`
	Language     string    `json:"lang"`
	Capabilities []string  `json:"perms"`
	jwt.RegisteredClaims
}

// Init sets the signing secret and token lifetime.
func Init(secret string, expirationHours int) {
	mu.Lock()
	defer mu.Unlock()
	if secret != "" {
		secretKey = []byte(secret)
	}
	if expirationHours > 0 {
		expiration = time.Duration(expirationHours) * time.Hour
	}
}

func getSecretKey() []byte {
	mu.RLock()
	defer mu.RUnlock()
	return secretKey
}

// GenerateToken creates a signed token for a staff member.
func GenerateToken(staffID uuid.UUID, name, roleCode string, isRoot bool, language string, capabilities []string) (string, error) {
	mu.RLock()
	ttl := expiration
	mu.RUnlock()

	now := time.Now()
	claims := &Claims{
		StaffID:      staffID,
		Name:         name,
		RoleCode:     roleCode,
		IsRoot:       isRoot,
		Language:     language,
		Capabilities: capabilities,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   staffID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(getSecretKey())
}

// ValidateToken parses and validates a token.
func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return getSecretKey(), nil
	}, jwt.WithIssuer(issuer))

	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
