package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nurpe/oil-tenders/internal/model"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	OrgID string `json:"org_id,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type Parser struct {
	secret []byte
}

func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(secret)}
}

// Parse validates an HS256 access token and returns its principal. The
// subject must be the user id.
func (p *Parser) Parse(token string) (model.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return model.Principal{}, ErrInvalidToken
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return model.Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.Principal{}, fmt.Errorf("%w: subject is not a user id", ErrInvalidToken)
	}
	principal := model.Principal{
		UserID: userID,
		Role:   strings.ToUpper(strings.TrimSpace(claims.Role)),
	}
	if claims.OrgID != "" {
		orgID, err := uuid.Parse(claims.OrgID)
		if err != nil {
			return model.Principal{}, fmt.Errorf("%w: org_id", ErrInvalidToken)
		}
		principal.OrgID = orgID
	}
	if principal.Role == "" {
		principal.Role = model.RoleViewer
	}
	return principal, nil
}

// Issue signs a token for principal. Used by tests and local tooling.
func (p *Parser) Issue(principal model.Principal, claims jwt.RegisteredClaims) (string, error) {
	claims.Subject = principal.UserID.String()
	c := Claims{Role: principal.Role, RegisteredClaims: claims}
	if principal.OrgID != uuid.Nil {
		c.OrgID = principal.OrgID.String()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(p.secret)
}
