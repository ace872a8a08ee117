package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	domuser "github.com/storefronthq/storefront/internal/domain/user"
	"github.com/storefronthq/storefront/internal/pkg/logging"
)

var (
	ErrBadCredentials = errors.New("auth: invalid username or password")
	ErrInvalidInput   = errors.New("auth: invalid registration input")
	ErrUserExists     = domuser.ErrConflict
)

// TokenIssuer signs and verifies session tokens embedding the identity.
// The core never inspects the token format itself.
type TokenIssuer interface {
	Issue(identity Identity) (string, error)
	Verify(token string) (Identity, error)
}

type IDGenerator interface {
	NewID() string
}

type Service struct {
	users       domuser.Repository
	tokens      TokenIssuer
	idGenerator IDGenerator
}

func NewService(users domuser.Repository, tokens TokenIssuer, idGen IDGenerator) *Service {
	return &Service{
		users:       users,
		tokens:      tokens,
		idGenerator: idGen,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

func (s *Service) Register(ctx context.Context, input RegisterInput) (*domuser.User, error) {
	logger := logging.FromContext(ctx).With(zap.String("component", "auth_service"))
	if input.Username == "" || input.Email == "" {
		return nil, fmt.Errorf("%w: username and email are required", ErrInvalidInput)
	}
	if len(input.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}

	entity, err := domuser.New(s.idGenerator.NewID(), input.Username, input.Email, string(hash))
	if err != nil {
		return nil, err
	}
	if err := s.users.Insert(ctx, entity); err != nil {
		return nil, err
	}

	logger.Info("user_registered", zap.String("username", entity.Username))
	entity.PasswordHash = ""
	return entity, nil
}

type LoginResult struct {
	Token string
	User  *domuser.User
}

// Login verifies credentials and issues a signed session token. Unknown
// usernames and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	logger := logging.FromContext(ctx).With(zap.String("component", "auth_service"))

	entity, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, domuser.ErrNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(entity.PasswordHash), []byte(password)); err != nil {
		logger.Info("login_rejected", zap.String("username", username))
		return nil, ErrBadCredentials
	}

	token, err := s.tokens.Issue(Identity{
		UserID:   entity.ID,
		Username: entity.Username,
		Email:    entity.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("auth: issue token: %w", err)
	}

	logger.Info("login_success", zap.String("username", username))
	entity.PasswordHash = ""
	return &LoginResult{Token: token, User: entity}, nil
}

// VerifyToken resolves a bearer token into an identity.
func (s *Service) VerifyToken(token string) (Identity, error) {
	return s.tokens.Verify(token)
}
