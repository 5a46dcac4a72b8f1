package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrEmptySecret no hay secreto para firmar o validar.
	ErrEmptySecret = errors.New("jwt: secret vacío")
	// ErrMissingIdentity el token no trae user_id o tenant_id.
	ErrMissingIdentity = errors.New("jwt: token sin user_id o tenant_id")
)

// Claims incluye los claims estándar JWT más los campos propios de la aplicación.
// Role permite decidir permisos de stock sin consultar la DB.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"` // "admin" | "bodeguero" | "vendedor" | ...
}

// Identity lo que el servicio toma de un token válido.
type Identity struct {
	UserID   string
	TenantID string
	Role     string
}

// Generate genera un token HS256 con userID, tenantID y role.
func Generate(secret, userID, tenantID, role, issuer string, expMinutes int) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expMinutes) * time.Minute)),
		},
		UserID:   userID,
		TenantID: tenantID,
		Role:     role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Verifier valida tokens HMAC con exp obligatorio. Con issuer no vacío exige
// que iss coincida; leeway tolera desfase de reloj con el emisor.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewVerifier construye el verificador.
func NewVerifier(secret, issuer string, leeway time.Duration) (*Verifier, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &Verifier{secret: []byte(secret), parser: jwt.NewParser(opts...)}, nil
}

// Verify valida firma, vencimiento y emisor, y exige user_id y tenant_id.
func (v *Verifier) Verify(tokenString string) (Identity, error) {
	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return Identity{}, err
	}
	if !token.Valid {
		return Identity{}, fmt.Errorf("claims inválidos")
	}
	if claims.UserID == "" || claims.TenantID == "" {
		return Identity{}, ErrMissingIdentity
	}
	return Identity{UserID: claims.UserID, TenantID: claims.TenantID, Role: claims.Role}, nil
}

// Parse valida el token sin exigir emisor y devuelve userID, tenantID y role.
func Parse(secret, tokenString string) (userID, tenantID, role string, err error) {
	v, err := NewVerifier(secret, "", 0)
	if err != nil {
		return "", "", "", err
	}
	id, err := v.Verify(tokenString)
	if err != nil {
		return "", "", "", err
	}
	return id.UserID, id.TenantID, id.Role, nil
}
