// internal/pkg/jwt/generator.go
package jwt

import (
	"crypto/rsa"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

type Generator struct {
	priv     *rsa.PrivateKey
	issuer   string
	audience string
	kid      string // key id for rotation
	Ttl      time.Duration
}

func NewGenerator(priv *rsa.PrivateKey, issuer, audience, kid string, ttl time.Duration) *Generator {
	return &Generator{
		priv:     priv,
		issuer:   issuer,
		audience: audience,
		kid:      kid,
		Ttl:      ttl,
	}
}

// GenerateSessionToken signs a session token for a Google identity. The jti
// doubles as the browser session id.
func (g *Generator) GenerateSessionToken(subject, email, name string) (token, jti string, expiresAt time.Time, err error) {
	if g.priv == nil {
		return "", "", time.Time{}, fmt.Errorf("jwt generator has nil private key")
	}

	now := time.Now()
	jti = ulid.Make().String()
	expiresAt = now.Add(g.Ttl)

	claims := &Claims{
		Email:          email,
		Name:           name,
		SessionPurpose: PurposeAdminSession,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Subject:   subject,
			Audience:  []string{g.audience},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        jti,
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if g.kid != "" {
		tok.Header["kid"] = g.kid
	}

	token, err = tok.SignedString(g.priv)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return token, jti, expiresAt, nil
}
