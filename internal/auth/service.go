package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/vesta-ledger/internal"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const defaultCurrency = "USD"

// Service is the main auth service with dependencies
type Service struct {
	userRepo        UserRepository
	tokenGenerator  TokenGenerator
	bcryptCost      int
	defaultCurrency string
	logger          *slog.Logger
}

// NewService creates a new auth service. A zero bcryptCost falls back to bcrypt.DefaultCost.
func NewService(userRepo UserRepository, tokenGen TokenGenerator, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		userRepo:        userRepo,
		tokenGenerator:  tokenGen,
		bcryptCost:      bcryptCost,
		defaultCurrency: defaultCurrency,
		logger:          logger,
	}
}

// WithDefaultCurrency sets the currency given to users that register without one.
func (s *Service) WithDefaultCurrency(currency string) *Service {
	if currency != "" {
		s.defaultCurrency = currency
	}
	return s
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

// NewJWTTokenGenerator creates a new JWT token generator
func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
	}
}

func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*User, AuthTokens, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, AuthTokens{}, err
	}

	if _, err := s.userRepo.GetCredentialsByEmail(ctx, dto.Email); err == nil {
		return nil, AuthTokens{}, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, AuthTokens{}, internal.NewStorageError("failed to check email", err)
	}

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		return nil, AuthTokens{}, internal.NewInternalError("failed to hash password", err)
	}

	currency := dto.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}

	user, err := s.userRepo.CreateUser(ctx, &NewUser{
		Email:        dto.Email,
		Name:         dto.Name,
		PasswordHash: hash,
		Currency:     currency,
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, AuthTokens{}, ErrEmailTaken
		}
		return nil, AuthTokens{}, internal.NewStorageError("failed to create user", err)
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, AuthTokens{}, err
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user, tokens, nil
}

// Authenticate validates credentials and returns tokens
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	creds, err := s.userRepo.GetCredentialsByEmail(ctx, dto.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return AuthTokens{}, ErrInvalidCredentials
		}
		return AuthTokens{}, internal.NewStorageError("failed to load credentials", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(dto.Password)); err != nil {
		return AuthTokens{}, ErrInvalidCredentials
	}

	if !creds.IsActive {
		return AuthTokens{}, ErrUserInactive
	}

	user, err := s.GetUser(ctx, creds.UserID)
	if err != nil {
		return AuthTokens{}, err
	}

	return s.issueTokens(user)
}

// RefreshTokens validates refresh token and returns new tokens
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	user, err := s.userRepo.GetActiveUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return AuthTokens{}, ErrUserInactive
		}
		return AuthTokens{}, internal.NewStorageError("failed to load user", err)
	}

	return s.issueTokens(user)
}

// ValidateAccessToken validates access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateAccessToken(tokenString)
}

func (s *Service) GetUser(ctx context.Context, userID string) (*User, error) {
	user, err := s.userRepo.GetActiveUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, internal.NewStorageError("failed to load user", err)
	}
	return user, nil
}

func (s *Service) issueTokens(user *User) (AuthTokens, error) {
	accessToken, err := s.tokenGenerator.GenerateAccessToken(user)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to sign access token", err)
	}

	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(user)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to sign refresh token", err)
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.tokenGenerator.AccessTTL(),
	}, nil
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// GenerateAccessToken creates a new access token
func (j *JWTTokenGenerator) GenerateAccessToken(user *User) (string, error) {
	return j.sign(user, TokenKindAccess, j.AccessTokenTTL, j.AccessTokenSecret)
}

// GenerateRefreshToken creates a new refresh token
func (j *JWTTokenGenerator) GenerateRefreshToken(user *User) (string, error) {
	return j.sign(user, TokenKindRefresh, j.RefreshTokenTTL, j.RefreshTokenSecret)
}

// AccessTTL is the access token lifetime in seconds.
func (j *JWTTokenGenerator) AccessTTL() int64 {
	return int64(j.AccessTokenTTL / time.Second)
}

func (j *JWTTokenGenerator) sign(user *User, kind TokenKind, ttl time.Duration, secret []byte) (string, error) {
	jti, err := GenerateRandomToken()
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (j *JWTTokenGenerator) ValidateAccessToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, TokenKindAccess, j.AccessTokenSecret)
}

func (j *JWTTokenGenerator) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, TokenKindRefresh, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) validate(tokenString string, kind TokenKind, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Kind != kind || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateRandomToken generates a cryptographically secure random token
func GenerateRandomToken() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
