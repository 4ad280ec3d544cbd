package service

//go:generate mockgen -destination=../../mocks/mock_token_generator.go -package=mocks github.com/dishaagrawalcodes/eventmappr/internal/auth/service TokenGenerator

import (
	"time"

	"github.com/dishaagrawalcodes/eventmappr/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

type TokenGenerator interface {
	Generate(userID, fullName, mobileNumber string) (string, string, time.Time, error)
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	VerifyAccessToken(tokenString string) (*JWTCustomClaims, error)
	VerifyRefreshToken(tokenString string) (*JWTCustomClaims, error)
}

type TokenService struct {
	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// JWTCustomClaims carries enough identity to authorize a request without a
// store lookup. RegisteredClaims.ID is random per token, so two tokens minted
// in the same second for the same user never compare equal.
type JWTCustomClaims struct {
	jwt.RegisteredClaims
	UserID       string `json:"user_id"`
	FullName     string `json:"full_name"`
	MobileNumber string `json:"mobile_number"`
	TokenType    string `json:"typ"`
}

func NewTokenService(accessSecret, refreshSecret string, accessMinutes, refreshMinutes int) *TokenService {
	return &TokenService{
		AccessTokenSecret:  accessSecret,
		RefreshTokenSecret: refreshSecret,
		AccessTokenExpiry:  time.Duration(accessMinutes) * time.Minute,
		RefreshTokenExpiry: time.Duration(refreshMinutes) * time.Minute,
	}
}

// NewTokenServiceFromConfig uses the configured secrets and expiries.
func NewTokenServiceFromConfig(cfg *config.Config) *TokenService {
	return &TokenService{
		AccessTokenSecret:  cfg.AccessTokenSecret,
		RefreshTokenSecret: cfg.RefreshTokenSecret,
		AccessTokenExpiry:  cfg.AccessTokenExpiry(),
		RefreshTokenExpiry: cfg.RefreshTokenExpiry(),
	}
}

// Generate signs a new access/refresh pair and returns the access token
// expiry.
func (ts *TokenService) Generate(userID, fullName, mobileNumber string) (string, string, time.Time, error) {
	now := time.Now()

	accessToken, err := ts.sign(ts.claims(userID, fullName, mobileNumber, tokenTypeAccess, now, ts.AccessTokenExpiry), ts.AccessTokenSecret)
	if err != nil {
		return "", "", time.Time{}, errors.Wrap(err, "sign access token")
	}

	refreshToken, err := ts.sign(ts.claims(userID, fullName, mobileNumber, tokenTypeRefresh, now, ts.RefreshTokenExpiry), ts.RefreshTokenSecret)
	if err != nil {
		return "", "", time.Time{}, errors.Wrap(err, "sign refresh token")
	}

	return accessToken, refreshToken, now.Add(ts.AccessTokenExpiry), nil
}

func (ts *TokenService) GetAccessTokenExpiry() time.Duration {
	return ts.AccessTokenExpiry
}

func (ts *TokenService) GetRefreshTokenExpiry() time.Duration {
	return ts.RefreshTokenExpiry
}

// VerifyAccessToken parses and validates the given access token string.
func (ts *TokenService) VerifyAccessToken(tokenString string) (*JWTCustomClaims, error) {
	return ts.verify(tokenString, ts.AccessTokenSecret, tokenTypeAccess)
}

// VerifyRefreshToken parses and validates the given refresh token string
// against the refresh secret.
func (ts *TokenService) VerifyRefreshToken(tokenString string) (*JWTCustomClaims, error) {
	return ts.verify(tokenString, ts.RefreshTokenSecret, tokenTypeRefresh)
}

func (ts *TokenService) claims(userID, fullName, mobileNumber, tokenType string, now time.Time, ttl time.Duration) JWTCustomClaims {
	return JWTCustomClaims{
		UserID:       userID,
		FullName:     fullName,
		MobileNumber: mobileNumber,
		TokenType:    tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
}

func (ts *TokenService) sign(claims JWTCustomClaims, secret string) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func (ts *TokenService) verify(tokenString, secret, tokenType string) (*JWTCustomClaims, error) {
	claims := &JWTCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Ensure the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.TokenType != tokenType {
		return nil, errors.Errorf("unexpected token type %q", claims.TokenType)
	}
	if claims.UserID == "" {
		return nil, errors.New("token has no subject")
	}

	return claims, nil
}
