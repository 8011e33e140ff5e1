package lobby

import (
	"github.com/golang-jwt/jwt/v5"
)

const bearerPrefix = "Bearer "

// Claims is the signed envelope bound to a seat. Iat is the seat's
// created_at at issuance time, not a real issued-at timestamp; a token
// verifies only if Iat still matches the player's current CreatedAt.
type Claims struct {
	Iat      uint64   `json:"iat"`
	RoomCode RoomCode `json:"room_code"`
	Username Username `json:"username"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies Claims with a single symmetric secret.
// Decoding never validates expiry and requires no registered claim; the
// only semantic check is signature validity.
type TokenCodec struct {
	secret []byte
}

// NewTokenCodec builds a codec around secret. An empty secret is a
// programmer error: callers must treat a missing JWT_SECRET as fatal at
// startup, before a codec is ever constructed.
func NewTokenCodec(secret string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret)}
}

// Encode signs iat/roomCode/username into an opaque token string.
func (c *TokenCodec) Encode(iat uint64, roomCode RoomCode, username Username) (string, error) {
	claims := Claims{
		Iat:      iat,
		RoomCode: roomCode,
		Username: username,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Decode verifies token and returns its claims. Expiry is never checked
// and no registered claim is required, matching the codec contract.
func (c *TokenCodec) Decode(token string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithoutClaimsValidation(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)

	_, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		return nil, err
	}

	return claims, nil
}

// ExtractToken strips the fixed "Bearer " prefix from an Authorization
// header value.
func ExtractToken(header string) (string, *Error) {
	if len(header) <= len(bearerPrefix) || header[:len(bearerPrefix)] != bearerPrefix {
		return "", errInvalidAuthorizationHeader(bearerPrefix)
	}
	return header[len(bearerPrefix):], nil
}
