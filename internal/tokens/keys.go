package tokens

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSigningKey means the asymmetric private key is absent from both the
// configuration and the fallback key file. This is a startup fault, not a
// per-request one: every access-token-issuing call fails until it is fixed.
var ErrNoSigningKey = errors.New("private signing key is not configured")

var ErrNoRefreshSecret = errors.New("refresh token secret is not configured")

// Keys holds the process-wide key material. It is built once at startup and
// read-only afterwards, so concurrent use needs no synchronization.
type Keys struct {
	PrivateKey    *rsa.PrivateKey
	PublicKey     *rsa.PublicKey
	RefreshSecret []byte
}

// LoadKeys prefers the PEM from configuration and falls back to keyFile.
func LoadKeys(privatePEM []byte, keyFile string, refreshSecret []byte) (*Keys, error) {
	pemData := privatePEM
	if len(pemData) == 0 && keyFile != "" {
		data, err := os.ReadFile(keyFile)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrNoSigningKey, keyFile, err)
		}
		pemData = data
	}
	if len(pemData) == 0 {
		return nil, ErrNoSigningKey
	}

	priv, err := jwt.ParseRSAPrivateKeyFromPEM(pemData)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	if len(refreshSecret) == 0 {
		return nil, ErrNoRefreshSecret
	}

	return &Keys{
		PrivateKey:    priv,
		PublicKey:     &priv.PublicKey,
		RefreshSecret: refreshSecret,
	}, nil
}
