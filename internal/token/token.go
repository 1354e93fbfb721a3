package token

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// rolePrefix matches the claim format the frontend and older
	// clients already depend on ("ROLE_USER", "ROLE_ADMIN").
	rolePrefix = "ROLE_"

	// tempTokenType marks tokens that only bridge an OAuth2 login
	// to the profile-completion step.
	tempTokenType = "TEMP"

	// temporaryTokenTTL is fixed; temp tokens are never configurable.
	temporaryTokenTTL = 5 * time.Minute

	// clockSkew is applied to every expiry check.
	clockSkew = 60 * time.Second
)

type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
	Typ  string `json:"typ,omitempty"`
}

// Identity is the authenticated principal decoded from an access token.
type Identity struct {
	UserID int64
	Role   Role
}

// Codec signs and verifies all token types with a single symmetric key.
// The key is loaded once at startup and never rotated.
type Codec struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewCodec(secret string, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		key:        []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (c *Codec) sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.key)
}

func (c *Codec) IssueAccessToken(userID int64, role Role) (string, error) {
	now := time.Now()
	return c.sign(Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.accessTTL)),
		},
		Role: rolePrefix + string(role),
	})
}

func (c *Codec) IssueRefreshToken(userID int64) (string, error) {
	now := time.Now()
	return c.sign(Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.refreshTTL)),
		},
	})
}

// IssueTemporaryToken issues the short-lived token handed to the client
// between an OAuth2 login and the profile-completion step.
func (c *Codec) IssueTemporaryToken(userID int64) (string, error) {
	now := time.Now()
	return c.sign(Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(temporaryTokenTTL)),
		},
		Typ: tempTokenType,
	})
}

func (c *Codec) parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (any, error) { return c.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(clockSkew),
	)
	if err != nil {
		return nil, err
	}
	if !t.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

// Verify reports whether the token carries a valid signature and has not
// expired. Malformed input is never an error, just false.
func (c *Codec) Verify(tokenString string) bool {
	_, err := c.parse(tokenString)
	return err == nil
}

// DecodeIdentity decodes an access token into a principal. Refresh and
// temporary tokens fail here because they carry no role claim.
func (c *Codec) DecodeIdentity(tokenString string) (Identity, error) {
	claims, err := c.parse(tokenString)
	if err != nil {
		return Identity{}, &Error{Reason: "invalid token", Err: err}
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return Identity{}, &Error{Reason: "invalid subject", Err: err}
	}

	role, err := ParseRole(claims.Role)
	if err != nil {
		return Identity{}, err
	}

	return Identity{UserID: userID, Role: role}, nil
}

// ExtractUserID reads the subject of any token type.
func (c *Codec) ExtractUserID(tokenString string) (int64, error) {
	claims, err := c.parse(tokenString)
	if err != nil {
		return 0, &Error{Reason: "invalid token", Err: err}
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, &Error{Reason: "invalid subject", Err: err}
	}

	return userID, nil
}
