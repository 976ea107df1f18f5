package tokens

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	Issuer = "auth-service"

	AccessTokenTTL  = 30 * time.Minute
	RefreshTokenTTL = 365 * 24 * time.Hour
)

var ErrInvalidToken = errors.New("invalid token")

// TokenService mints and verifies both token kinds. Access tokens are signed
// with the RSA private key, refresh tokens with the HMAC secret; the two
// algorithm families are never interchangeable.
type TokenService struct {
	Keys *Keys
}

func NewTokenService(keys *Keys) *TokenService {
	return &TokenService{Keys: keys}
}

func (s *TokenService) IssueAccessToken(userID uint, role string) (string, error) {
	if s.Keys == nil || s.Keys.PrivateKey == nil {
		return "", ErrNoSigningKey
	}

	now := time.Now()
	claims := AccessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(s.Keys.PrivateKey)
}

// IssueRefreshToken binds the token to its ledger row: both the jti and the
// "id" claim carry the row id, which is what makes one-shot revocation work.
func (s *TokenService) IssueRefreshToken(userID uint, role string, recordID uint) (string, error) {
	if s.Keys == nil || len(s.Keys.RefreshSecret) == 0 {
		return "", ErrNoRefreshSecret
	}

	now := time.Now()
	id := strconv.FormatUint(uint64(recordID), 10)
	claims := RefreshClaims{
		Role:     role,
		RecordID: id,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    Issuer,
			ID:        id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(RefreshTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.Keys.RefreshSecret)
}

func (s *TokenService) AccessClaimsFromToken(tokenStr string) (*AccessClaims, error) {
	if s.Keys == nil || s.Keys.PublicKey == nil {
		return nil, ErrNoSigningKey
	}

	var claims AccessClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodRS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return s.Keys.PublicKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

func (s *TokenService) RefreshClaimsFromToken(tokenStr string) (*RefreshClaims, error) {
	if s.Keys == nil || len(s.Keys.RefreshSecret) == 0 {
		return nil, ErrNoRefreshSecret
	}

	var claims RefreshClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return s.Keys.RefreshSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
