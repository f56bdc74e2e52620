package http

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"

	"github.com/flarexio/cms"
	"github.com/flarexio/cms/conf"
)

var (
	ErrTokenNotInit    = errors.New("token not initialized")
	ErrInvalidToken    = errors.New("invalid token")
	ErrRefreshDisabled = errors.New("token refresh disabled")
	ErrRefreshExpired  = errors.New("token beyond refresh time")
	ErrAdminRevoked    = errors.New("admin no longer allowed")
)

var (
	issuer   string
	audience string
	keyFn    jwt.Keyfunc
)

func Init(i, a string, privkey ed25519.PrivateKey) {
	issuer = i
	audience = a

	pubkey := privkey.Public().(ed25519.PublicKey)
	keyFn = func(t *jwt.Token) (any, error) {
		return pubkey, nil
	}
}

type Claims struct {
	jwt.RegisteredClaims
	Name  string   `json:"name,omitempty"`
	Roles []string `json:"roles"`

	// SignedInAt stays fixed across refreshes.
	SignedInAt *jwt.NumericDate `json:"sia,omitempty"`
}

func ParseToken(ctx *gin.Context, claims jwt.Claims) error {
	if audience == "" || keyFn == nil {
		return ErrTokenNotInit
	}

	authHeader := ctx.GetHeader("Authorization")

	tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok {
		return ErrInvalidToken
	}

	_, err := jwt.ParseWithClaims(tokenStr, claims, keyFn,
		jwt.WithAudience(audience),
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithLeeway(10*time.Second),
	)

	return err
}

// IssueToken signs an admin session token.
func IssueToken(admin *cms.Admin) (*cms.Token, error) {
	cfg := conf.G()
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.BaseURL,
			Subject:   admin.Email,
			Audience:  cfg.JWT.Audiences,
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.JWT.Timeout)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        ulid.Make().String(),
		},
		Name:       admin.Name,
		Roles:      admin.Roles,
		SignedInAt: jwt.NewNumericDate(now),
	}

	return sign(claims, now)
}

func sign(claims Claims, now time.Time) (*cms.Token, error) {
	cfg := conf.G()

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	tokenStr, err := token.SignedString(cfg.JWT.Privkey)
	if err != nil {
		return nil, err
	}

	return &cms.Token{
		Token:     tokenStr,
		ExpiredAt: now.Add(cfg.JWT.Timeout),
	}, nil
}

func unauthorized(c *gin.Context, code int, err error) {
	c.Abort()
	c.Error(err)
	c.Header("WWW-Authenticate", "Bearer realm="+issuer)
	c.String(code, err.Error())
}

func RefreshHandler(c *gin.Context) {
	cfg := conf.G()
	if !cfg.JWT.Refresh.Enabled {
		c.Abort()
		c.Error(ErrRefreshDisabled)
		c.String(http.StatusForbidden, ErrRefreshDisabled.Error())
		return
	}

	var claims Claims
	if err := ParseToken(c, &claims); err != nil {
		unauthorized(c, http.StatusUnauthorized, err)
		return
	}

	signedInAt := claims.SignedInAt
	if signedInAt == nil {
		signedInAt = claims.IssuedAt
	}

	if signedInAt == nil || time.Since(signedInAt.Time) > cfg.JWT.Refresh.Maximum {
		unauthorized(c, http.StatusForbidden, ErrRefreshExpired)
		return
	}

	admin, ok := conf.FindAdmin(cfg.Admins, claims.Subject)
	if !ok {
		unauthorized(c, http.StatusForbidden, ErrAdminRevoked)
		return
	}

	now := time.Now()
	claims.Roles = admin.Roles
	claims.SignedInAt = signedInAt
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(cfg.JWT.Timeout))
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ID = ulid.Make().String()

	t, err := sign(claims, now)
	if err != nil {
		unauthorized(c, http.StatusExpectationFailed, err)
		return
	}

	c.JSON(http.StatusOK, t)
}

type JWK struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	X   string `json:"x"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	Kid string `json:"kid"`
}

type JWKSet struct {
	Keys []JWK `json:"keys"`
}

func JWKHandler(c *gin.Context) {
	cfg := conf.G()

	pub := cfg.JWT.Privkey.Public().(ed25519.PublicKey)
	x := base64.RawURLEncoding.EncodeToString(pub)

	hash := sha256.Sum256(pub)
	kid := base64.RawURLEncoding.EncodeToString(hash[:16])

	jwk := JWK{
		Kty: "OKP",
		Crv: "Ed25519",
		X:   x,
		Alg: "EdDSA",
		Use: "sig",
		Kid: kid,
	}

	jwkSet := JWKSet{
		Keys: []JWK{jwk},
	}

	c.JSON(http.StatusOK, jwkSet)
}
