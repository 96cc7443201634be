package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"roomcast/internal/core/domain"
	"roomcast/internal/core/ports"
	apperrors "roomcast/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthService issues, rotates, and revokes access/refresh token pairs.
type AuthService interface {
	Login(ctx context.Context, credentials domain.Credentials) (TokenPair, error)
	Signup(ctx context.Context, newUser domain.NewUser) (*domain.User, TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
	ValidateToken(token string) (*Claims, error)
}

// TokenPair is the login/signup/refresh response body.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Hasher is the password hashing dependency of the auth service.
// Satisfied by PasswordHasher.
type Hasher interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, encodedHash, password string) (bool, error)
}

type authService struct {
	credentials ports.CredentialsRepository
	tokens      ports.TokenRepository
	codec       *TokenCodec
	hasher      Hasher
	accessTTL   time.Duration
	refreshTTL  time.Duration
	recordTTL   time.Duration
	logger      *zap.SugaredLogger
}

func NewAuthService(
	credentials ports.CredentialsRepository,
	tokens ports.TokenRepository,
	codec *TokenCodec,
	hasher Hasher,
	accessTTL, refreshTTL, recordTTL time.Duration,
	logger *zap.SugaredLogger,
) AuthService {
	return &authService{
		credentials: credentials,
		tokens:      tokens,
		codec:       codec,
		hasher:      hasher,
		accessTTL:   accessTTL,
		refreshTTL:  refreshTTL,
		recordTTL:   recordTTL,
		logger:      logger,
	}
}

func (s *authService) Login(ctx context.Context, credentials domain.Credentials) (TokenPair, error) {
	userID, err := s.validateCredentials(ctx, credentials)
	if err != nil {
		return TokenPair{}, err
	}

	pair, err := s.createTokenPair(ctx, userID)
	if err != nil {
		return TokenPair{}, err
	}

	s.logger.Infow("user logged in", "user_id", userID)
	return pair, nil
}

// validateCredentials resolves the email to a stored hash, falling back to
// the dummy hash when the email is unknown. The argon2 verification always
// runs so the two paths cost the same.
func (s *authService) validateCredentials(ctx context.Context, credentials domain.Credentials) (domain.UserID, error) {
	expectedHash := dummyPasswordHash
	var userID *domain.UserID

	cred, err := s.credentials.GetCredential(ctx, credentials.Email)
	switch {
	case err == nil:
		userID = &cred.UserID
		expectedHash = cred.PasswordHash
	case errors.Is(err, domain.ErrUserNotFound):
	default:
		return domain.UserID{}, apperrors.NewUnexpectedError(err)
	}

	match, err := s.hasher.Verify(ctx, expectedHash, credentials.Password)
	if err != nil {
		return domain.UserID{}, apperrors.NewUnexpectedError(err)
	}
	if userID == nil || !match {
		return domain.UserID{}, apperrors.NewInvalidCredentialsError(errors.New("email or password rejected"))
	}
	return *userID, nil
}

func (s *authService) Signup(ctx context.Context, newUser domain.NewUser) (*domain.User, TokenPair, error) {
	_, err := s.credentials.GetUserByEmail(ctx, newUser.Email)
	switch {
	case err == nil:
		return nil, TokenPair{}, apperrors.NewConflictError(fmt.Sprintf("email %q is already registered", newUser.Email))
	case errors.Is(err, domain.ErrUserNotFound):
	default:
		return nil, TokenPair{}, apperrors.NewUnexpectedError(err)
	}

	passwordHash, err := s.hasher.Hash(ctx, newUser.Password)
	if err != nil {
		return nil, TokenPair{}, apperrors.NewUnexpectedError(err)
	}

	user, err := s.credentials.Signup(ctx, newUser.Name, newUser.Email, passwordHash, newUser.Code)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, TokenPair{}, apperrors.NewConflictError(fmt.Sprintf("email %q is already registered", newUser.Email))
		}
		return nil, TokenPair{}, apperrors.NewUnexpectedError(err)
	}

	pair, err := s.createTokenPair(ctx, user.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}

	s.logger.Infow("user signed up", "user_id", user.ID)
	return user, pair, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.codec.Verify(refreshToken)
	if err != nil {
		return TokenPair{}, apperrors.NewInvalidCredentialsError(err)
	}
	userID, err := claims.UserID()
	if err != nil {
		return TokenPair{}, apperrors.NewInvalidCredentialsError(err)
	}

	ownerID, err := s.tokens.Exist(ctx, claims.TokenID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			return TokenPair{}, apperrors.NewInvalidCredentialsError(err)
		}
		return TokenPair{}, apperrors.NewUnexpectedError(err)
	}

	// Rotation: the presented refresh token is consumed before a new pair
	// is issued, so a replayed token fails at the Exist check.
	if err := s.tokens.Delete(ctx, claims.TokenID, ownerID); err != nil {
		return TokenPair{}, apperrors.NewUnexpectedError(err)
	}

	return s.createTokenPair(ctx, ownerID)
}

func (s *authService) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.codec.Verify(accessToken)
	if err != nil {
		return apperrors.NewInvalidCredentialsError(err)
	}
	userID, err := claims.UserID()
	if err != nil {
		return apperrors.NewInvalidCredentialsError(err)
	}

	// Only the refresh record is revoked; the access token stays valid
	// until it expires.
	if err := s.tokens.Delete(ctx, claims.TokenID, userID); err != nil {
		return apperrors.NewUnexpectedError(err)
	}

	s.logger.Infow("user logged out", "user_id", userID)
	return nil
}

func (s *authService) ValidateToken(token string) (*Claims, error) {
	claims, err := s.codec.Verify(token)
	if err != nil {
		return nil, apperrors.NewInvalidCredentialsError(err)
	}
	return claims, nil
}

func (s *authService) createTokenPair(ctx context.Context, userID domain.UserID) (TokenPair, error) {
	tokenID := uuid.New()

	if err := s.tokens.Create(ctx, tokenID, userID, s.recordTTL); err != nil {
		return TokenPair{}, apperrors.NewUnexpectedError(err)
	}

	access, err := s.codec.Issue(userID, tokenID, s.accessTTL)
	if err != nil {
		return TokenPair{}, apperrors.NewUnexpectedError(err)
	}
	refresh, err := s.codec.Issue(userID, tokenID, s.refreshTTL)
	if err != nil {
		return TokenPair{}, apperrors.NewUnexpectedError(err)
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
