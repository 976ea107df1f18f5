package tokens

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims is the payload of the short-lived RS256 access token. It is
// stateless: nothing in it references the revocation ledger.
type AccessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of the long-lived HS256 refresh token. The
// "id" claim (mirrored into the jti) names the ledger row the token is bound
// to; deleting that row revokes the token.
type RefreshClaims struct {
	Role     string `json:"role"`
	RecordID string `json:"id"`
	jwt.RegisteredClaims
}

func (c *AccessClaims) UserID() (uint, error) {
	return parseID(c.Subject)
}

func (c *RefreshClaims) UserID() (uint, error) {
	return parseID(c.Subject)
}

func (c *RefreshClaims) LedgerID() (uint, error) {
	return parseID(c.RecordID)
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
