package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/lucidpath/wellness-api/internal/config"
)

// TokenType distinguishes access tokens from refresh tokens.
type TokenType string

const (
	// AccessToken grants access to protected resources.
	AccessToken TokenType = "access"
	// RefreshToken is exchanged for a new token pair.
	RefreshToken TokenType = "refresh"
)

var (
	// ErrTokenRevoked is returned for blacklisted tokens.
	ErrTokenRevoked = errors.New("token has been revoked")
	// ErrTokenInvalid is returned for malformed or expired tokens.
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims carries the authenticated identity inside a JWT.
type Claims struct {
	UserID   uint      `json:"user_id"`
	Role     string    `json:"role"`
	Type     TokenType `json:"type"`
	TokenID  string    `json:"jti,omitempty"`
	Previous string    `json:"previous,omitempty"` // previous refresh token id, for rotation
	jwt.StandardClaims
}

// TokenPair bundles the access and refresh tokens issued together.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"` // access token lifetime in seconds
	TokenID      string `json:"token_id"`
}

// GenerateTokenPair issues an access/refresh token pair for an account.
// remember extends both lifetimes for "keep me signed in" logins.
func GenerateTokenPair(userID uint, role string, remember bool) (*TokenPair, error) {
	accessExpire := time.Duration(config.GlobalConfig.JWT.AccessExpireSeconds) * time.Second
	refreshExpire := time.Duration(config.GlobalConfig.JWT.RefreshExpireSeconds) * time.Second

	if remember {
		accessExpire = 7 * 24 * time.Hour
		refreshExpire = 30 * 24 * time.Hour
	}

	tokenID := generateTokenID()

	accessToken, err := generateToken(userID, role, AccessToken, accessExpire, tokenID, "")
	if err != nil {
		return nil, err
	}

	refreshToken, err := generateToken(userID, role, RefreshToken, refreshExpire, tokenID, "")
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(accessExpire.Seconds()),
		TokenID:      tokenID,
	}, nil
}

func generateToken(userID uint, role string, tokenType TokenType, expiration time.Duration, tokenID, previous string) (string, error) {
	expireTime := time.Now().Add(expiration)

	claims := Claims{
		UserID:   userID,
		Role:     role,
		Type:     tokenType,
		TokenID:  tokenID,
		Previous: previous,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expireTime.Unix(),
			IssuedAt:  time.Now().Unix(),
			Issuer:    config.GlobalConfig.JWT.Issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(config.GlobalConfig.JWT.SecretKey))
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// ParseToken validates a token and returns its claims. Blacklisted tokens
// are rejected.
func ParseToken(tokenString string) (*Claims, error) {
	if GetTokenBlacklist().IsBlacklisted(tokenString) {
		return nil, ErrTokenRevoked
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.GlobalConfig.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrTokenInvalid
}

// RefreshAccessToken rotates a refresh token into a new token pair. The old
// refresh token is blacklisted so it cannot be replayed.
func RefreshAccessToken(refreshTokenString string) (*TokenPair, error) {
	claims, err := ParseToken(refreshTokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != RefreshToken {
		return nil, errors.New("not a refresh token")
	}

	accessExpire := time.Duration(config.GlobalConfig.JWT.AccessExpireSeconds) * time.Second
	refreshExpire := time.Duration(config.GlobalConfig.JWT.RefreshExpireSeconds) * time.Second
	newTokenID := generateTokenID()

	accessToken, err := generateToken(claims.UserID, claims.Role, AccessToken, accessExpire, newTokenID, "")
	if err != nil {
		return nil, err
	}

	refreshToken, err := generateToken(claims.UserID, claims.Role, RefreshToken, refreshExpire, newTokenID, claims.TokenID)
	if err != nil {
		return nil, err
	}

	expireTime := time.Unix(claims.ExpiresAt, 0)
	GetTokenBlacklist().AddToBlacklist(refreshTokenString, expireTime)

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(accessExpire.Seconds()),
		TokenID:      newTokenID,
	}, nil
}

// RevokeToken blacklists a token until its natural expiry. Used on logout.
func RevokeToken(tokenString string) error {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.GlobalConfig.JWT.SecretKey), nil
	})
	if err != nil {
		return err
	}

	if claims, ok := token.Claims.(*Claims); ok {
		expireTime := time.Unix(claims.ExpiresAt, 0)
		GetTokenBlacklist().AddToBlacklist(tokenString, expireTime)
		return nil
	}
	return ErrTokenInvalid
}

func generateTokenID() string {
	return fmt.Sprintf("%d-%d", time.Now().UnixNano(), time.Now().Unix())
}
