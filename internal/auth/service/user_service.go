package service

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/dishaagrawalcodes/eventmappr/config"
	"github.com/dishaagrawalcodes/eventmappr/internal/auth/domain"
	"github.com/dishaagrawalcodes/eventmappr/internal/auth/dto"
	autherror "github.com/dishaagrawalcodes/eventmappr/internal/errors"
	"github.com/dishaagrawalcodes/eventmappr/internal/metrics"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var (
	errStaleRefreshToken = errors.New("refresh token was rotated or revoked")
	errSubjectGone       = errors.New("token subject no longer exists")
	errPasswordTooLong   = autherror.New(autherror.KindBadRequest, "password must be at most 72 bytes")
)

// UserService is the session service: registration, credential checks and
// the access/refresh token lifecycle. Each user has at most one live refresh
// token; issuing a new one invalidates the previous one.
type UserService struct {
	repo    domain.UserRepository
	tokens  TokenGenerator
	cfg     *config.Config
	log     zerolog.Logger
	metrics *metrics.Metrics
}

type Option func(*UserService)

func WithLogger(log zerolog.Logger) Option {
	return func(s *UserService) { s.log = log }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *UserService) { s.metrics = m }
}

func NewUserService(repo domain.UserRepository, tokens TokenGenerator, cfg *config.Config, opts ...Option) *UserService {
	s := &UserService{
		repo:   repo,
		tokens: tokens,
		cfg:    cfg,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *UserService) Register(ctx context.Context, input dto.RegisterInput) (_ *dto.UserOutput, err error) {
	defer func() { s.metrics.AuthOperation("register", err) }()

	fullName := strings.TrimSpace(input.FullName)
	mobileNumber := strings.TrimSpace(input.MobileNumber)
	if fullName == "" || mobileNumber == "" || input.Password == "" {
		return nil, autherror.ErrMissingFields
	}

	existing, err := s.repo.FindByIdentity(ctx, fullName, mobileNumber)
	if err != nil {
		return nil, autherror.Internal(err)
	}
	if existing != nil {
		return nil, autherror.ErrUserAlreadyExists
	}

	hash, err := s.hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		FullName:     fullName,
		MobileNumber: mobileNumber,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, autherror.ErrUserAlreadyExists) {
			return nil, autherror.ErrUserAlreadyExists
		}
		return nil, autherror.Internal(err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return dto.NewUserOutput(user), nil
}

// Login accepts either identifier; when both are given a record matching
// either one is used.
func (s *UserService) Login(ctx context.Context, input dto.LoginInput) (_ *dto.LoginOutput, err error) {
	defer func() { s.metrics.AuthOperation("login", err) }()

	fullName := strings.TrimSpace(input.FullName)
	mobileNumber := strings.TrimSpace(input.MobileNumber)
	if fullName == "" && mobileNumber == "" {
		return nil, autherror.ErrIdentifierRequired
	}

	user, err := s.repo.FindByIdentity(ctx, fullName, mobileNumber)
	if err != nil {
		return nil, autherror.Internal(err)
	}
	if user == nil {
		return nil, autherror.ErrUserNotFound
	}

	if !checkPassword(user.PasswordHash, input.Password) {
		s.log.Info().Str("user_id", user.ID).Msg("login rejected: wrong password")
		return nil, autherror.ErrInvalidCredentials
	}

	accessToken, refreshToken, _, err := s.tokens.Generate(user.ID, user.FullName, user.MobileNumber)
	if err != nil {
		return nil, autherror.Internal(err)
	}

	// Overwriting the stored token invalidates any refresh token issued
	// before this login.
	if err := s.repo.SetRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return nil, autherror.Internal(err)
	}
	user.RefreshToken = refreshToken

	s.log.Info().Str("user_id", user.ID).Msg("user logged in")
	return &dto.LoginOutput{
		User:         dto.NewUserOutput(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh exchanges a valid, current refresh token for a new pair and rotates
// the stored token. Every rejection reaches the caller as the same
// unauthorized error; the cause is only logged.
func (s *UserService) Refresh(ctx context.Context, input dto.RefreshInput) (_ *dto.TokenResponse, err error) {
	defer func() { s.metrics.AuthOperation("refresh", err) }()

	presented := strings.TrimSpace(input.RefreshToken)
	if presented == "" {
		return nil, autherror.ErrRefreshTokenMissing
	}

	claims, err := s.tokens.VerifyRefreshToken(presented)
	if err != nil {
		s.log.Debug().Err(err).Msg("refresh rejected: verification failed")
		return nil, autherror.Wrap(autherror.ErrInvalidRefreshToken, err)
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, autherror.Internal(err)
	}
	if user == nil {
		s.log.Warn().Str("user_id", claims.UserID).Msg("refresh rejected: unknown subject")
		return nil, autherror.Wrap(autherror.ErrInvalidRefreshToken, errSubjectGone)
	}

	if subtle.ConstantTimeCompare([]byte(user.RefreshToken), []byte(presented)) != 1 {
		s.log.Warn().Str("user_id", user.ID).Msg("refresh rejected: stale token presented")
		return nil, autherror.Wrap(autherror.ErrInvalidRefreshToken, errStaleRefreshToken)
	}

	accessToken, refreshToken, _, err := s.tokens.Generate(user.ID, user.FullName, user.MobileNumber)
	if err != nil {
		return nil, autherror.Internal(err)
	}

	// Conditional write: a concurrent refresh or logout that already replaced
	// the token makes this one lose.
	rotated, err := s.repo.RotateRefreshToken(ctx, user.ID, presented, refreshToken)
	if err != nil {
		return nil, autherror.Internal(err)
	}
	if !rotated {
		s.log.Warn().Str("user_id", user.ID).Msg("refresh rejected: lost rotation race")
		return nil, autherror.Wrap(autherror.ErrInvalidRefreshToken, errStaleRefreshToken)
	}

	return &dto.TokenResponse{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Logout clears the stored refresh token. Clearing an absent token is not an
// error.
func (s *UserService) Logout(ctx context.Context, userID string) (err error) {
	defer func() { s.metrics.AuthOperation("logout", err) }()

	if err := s.repo.SetRefreshToken(ctx, userID, ""); err != nil {
		return autherror.Internal(err)
	}

	s.log.Info().Str("user_id", userID).Msg("user logged out")
	return nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID string, input dto.ChangePasswordInput) (err error) {
	defer func() { s.metrics.AuthOperation("change_password", err) }()

	if input.NewPassword != input.ConfirmPassword {
		return autherror.ErrPasswordMismatch
	}
	if input.NewPassword == "" {
		return autherror.ErrMissingFields
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return autherror.Internal(err)
	}
	if user == nil {
		return autherror.ErrUserNotFound
	}

	if !checkPassword(user.PasswordHash, input.OldPassword) {
		return autherror.ErrOldPasswordIncorrect
	}

	hash, err := s.hashPassword(input.NewPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return autherror.Internal(err)
	}

	revoke := s.revokeOnPasswordChange()
	if revoke {
		if err := s.repo.SetRefreshToken(ctx, user.ID, ""); err != nil {
			return autherror.Internal(err)
		}
	}

	s.log.Info().Str("user_id", user.ID).Bool("sessions_revoked", revoke).Msg("password changed")
	return nil
}

// CurrentUser projects the principal established by request authentication.
func (s *UserService) CurrentUser(principal *domain.User) *dto.UserOutput {
	return dto.NewUserOutput(principal)
}

// Authenticate verifies an access token and loads the user it names.
func (s *UserService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, autherror.ErrAccessTokenMissing
	}

	claims, err := s.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, autherror.Wrap(autherror.ErrInvalidAccessToken, err)
	}

	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, autherror.Internal(err)
	}
	if user == nil {
		return nil, autherror.Wrap(autherror.ErrInvalidAccessToken, errSubjectGone)
	}

	return user, nil
}

func (s *UserService) hashPassword(password string) (string, error) {
	cost := bcrypt.DefaultCost
	if s.cfg != nil && s.cfg.BcryptCost != 0 {
		cost = s.cfg.BcryptCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", errPasswordTooLong
		}
		return "", autherror.Internal(err)
	}
	return string(hash), nil
}

func (s *UserService) revokeOnPasswordChange() bool {
	return s.cfg == nil || s.cfg.RevokeSessionsOnPasswordChange
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
