package auth

import (
	"context"

	"github.com/frahmantamala/vesta-ledger/internal"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

// ContextUserKey holds the authenticated *User on the request context.
const ContextUserKey contextKey = "authUser"

// User is the authenticated principal attached to a request.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

// Credentials is what the repository returns for a login attempt.
type Credentials struct {
	UserID       string
	PasswordHash string
	IsActive     bool
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

type Claims struct {
	UserID string    `json:"user_id"`
	Email  string    `json:"email,omitempty"`
	Kind   TokenKind `json:"typ"`
	jwt.RegisteredClaims
}

// UserRepository is implemented by postgres.Repository.
type UserRepository interface {
	GetCredentialsByEmail(ctx context.Context, email string) (*Credentials, error)
	CreateUser(ctx context.Context, user *NewUser) (*User, error)
	GetActiveUser(ctx context.Context, userID string) (*User, error)
}

// NewUser is a registration that already carries a password hash.
type NewUser struct {
	Email        string
	Name         string
	PasswordHash string
	Currency     string
}

type TokenGenerator interface {
	GenerateAccessToken(user *User) (string, error)
	GenerateRefreshToken(user *User) (string, error)
	ValidateAccessToken(token string) (*Claims, error)
	ValidateRefreshToken(token string) (*Claims, error)
	AccessTTL() int64
}

type ServiceAPI interface {
	Register(ctx context.Context, dto RegisterDTO) (*User, AuthTokens, error)
	Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error)
	RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error)
	ValidateAccessToken(token string) (*Claims, error)
	GetUser(ctx context.Context, userID string) (*User, error)
}

var (
	ErrInvalidCredentials = internal.ErrInvalidCredentials
	ErrUserInactive       = internal.ErrUserInactive
	ErrInvalidToken       = internal.ErrInvalidToken
	ErrTokenExpired       = internal.ErrTokenExpired
	ErrEmailTaken         = internal.ErrEmailTaken
	ErrUserNotFound       = internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
)

// UserFromContext returns the user set by AuthMiddleware.
func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok && u != nil
}

// ContextWithUser stores user and its id on ctx.
func ContextWithUser(ctx context.Context, user *User) context.Context {
	ctx = context.WithValue(ctx, ContextUserKey, user)
	return internal.ContextWithUserID(ctx, user.ID)
}
