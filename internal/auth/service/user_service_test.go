package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dishaagrawalcodes/eventmappr/config"
	"github.com/dishaagrawalcodes/eventmappr/internal/auth/domain"
	"github.com/dishaagrawalcodes/eventmappr/internal/auth/dto"
	"github.com/dishaagrawalcodes/eventmappr/internal/auth/service"
	autherror "github.com/dishaagrawalcodes/eventmappr/internal/errors"
	"github.com/dishaagrawalcodes/eventmappr/internal/metrics"
	"github.com/dishaagrawalcodes/eventmappr/internal/mocks"
	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		BcryptCost:                     bcrypt.MinCost,
		RevokeSessionsOnPasswordChange: true,
	}
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestUserService_Register_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	mockTokenService := mocks.NewMockTokenGenerator(ctrl)

	s := service.NewUserService(mockRepo, mockTokenService, testConfig())

	input := dto.RegisterInput{
		FullName:     "  Alice  ",
		Password:     "secret123",
		MobileNumber: " 555-0100 ",
	}

	var created *domain.User
	mockRepo.EXPECT().FindByIdentity(gomock.Any(), "Alice", "555-0100").Return(nil, nil)
	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *domain.User) error {
		created = u
		return nil
	})

	user, err := s.Register(context.Background(), input)

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "Alice", user.FullName)
	assert.Equal(t, "555-0100", user.MobileNumber)
	assert.NotZero(t, user.CreatedAt)

	require.NotNil(t, created)
	assert.Equal(t, user.ID, created.ID)
	assert.Empty(t, created.RefreshToken)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("secret123")))
}

func TestUserService_Register_MissingFields(t *testing.T) {
	tests := map[string]dto.RegisterInput{
		"no full name":   {Password: "secret123", MobileNumber: "555"},
		"blank name":     {FullName: "   ", Password: "secret123", MobileNumber: "555"},
		"no password":    {FullName: "Alice", MobileNumber: "555"},
		"no mobile":      {FullName: "Alice", Password: "secret123"},
		"empty":          {},
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			s := service.NewUserService(mocks.NewMockUserRepository(ctrl), mocks.NewMockTokenGenerator(ctrl), testConfig())

			user, err := s.Register(context.Background(), input)

			assert.Nil(t, user)
			assert.ErrorIs(t, err, autherror.ErrMissingFields)
			assert.Equal(t, autherror.KindBadRequest, autherror.KindOf(err))
		})
	}
}

func TestUserService_Register_UserAlreadyExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	s := service.NewUserService(mockRepo, mocks.NewMockTokenGenerator(ctrl), testConfig())

	mockRepo.EXPECT().FindByIdentity(gomock.Any(), "Alice", "555-0100").Return(&domain.User{ID: "existing"}, nil)

	user, err := s.Register(context.Background(), dto.RegisterInput{FullName: "Alice", Password: "x", MobileNumber: "555-0100"})

	assert.Nil(t, user)
	assert.ErrorIs(t, err, autherror.ErrUserAlreadyExists)
	assert.Equal(t, autherror.KindConflict, autherror.KindOf(err))
}

func TestUserService_Register_LookupError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	s := service.NewUserService(mockRepo, mocks.NewMockTokenGenerator(ctrl), testConfig())

	mockRepo.EXPECT().FindByIdentity(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("db error"))

	_, err := s.Register(context.Background(), dto.RegisterInput{FullName: "Alice", Password: "x", MobileNumber: "555"})

	assert.Equal(t, autherror.KindServerError, autherror.KindOf(err))
	assert.Equal(t, "server error", autherror.MessageOf(err))
}

func TestUserService_Register_CreateRace(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	s := service.NewUserService(mockRepo, mocks.NewMockTokenGenerator(ctrl), testConfig())

	mockRepo.EXPECT().FindByIdentity(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(autherror.ErrUserAlreadyExists)

	_, err := s.Register(context.Background(), dto.RegisterInput{FullName: "Alice", Password: "x", MobileNumber: "555"})

	assert.ErrorIs(t, err, autherror.ErrUserAlreadyExists)
}

func TestUserService_Register_CreateError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	s := service.NewUserService(mockRepo, mocks.NewMockTokenGenerator(ctrl), testConfig())

	mockRepo.EXPECT().FindByIdentity(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("insert failed"))

	_, err := s.Register(context.Background(), dto.RegisterInput{FullName: "Alice", Password: "x", MobileNumber: "555"})

	assert.Equal(t, autherror.KindServerError, autherror.KindOf(err))
}

func TestUserService_Register_PasswordTooLong(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	s := service.NewUserService(mockRepo, mocks.NewMockTokenGenerator(ctrl), testConfig())

	mockRepo.EXPECT().FindByIdentity(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

	_, err := s.Register(context.Background(), dto.RegisterInput{
		FullName:     "Alice",
		Password:     strings.Repeat("a", 73),
		MobileNumber: "555",
	})

	assert.Equal(t, autherror.KindBadRequest, autherror.KindOf(err))
}

func TestUserService_Login_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	mockTokenService := mocks.NewMockTokenGenerator(ctrl)
	s := service.NewUserService(mockRepo, mockTokenService, testConfig())

	user := &domain.User{
		ID:           "user-id",
		FullName:     "Alice",
		MobileNumber: "555-0100",
		PasswordHash: hashed(t, "secret123"),
		RefreshToken: "old-refresh",
	}

	mockRepo.EXPECT().FindByIdentity(gomock.Any(), "Alice", "").Return(user, nil)
	mockTokenService.EXPECT().Generate(user.ID, user.FullName, user.MobileNumber).
		Return("access-token", "refresh-token", time.Now().Add(15*time.Minute), nil)
	mockRepo.EXPECT().SetRefreshToken(gomock.Any(), user.ID, "refresh-token").Return(nil)

	out, err := s.Login(context.Background(), dto.LoginInput{FullName: "Alice", Password: "secret123"})

	require.NoError(t, err)
	assert.Equal(t, "access-token", out.AccessToken)
	assert.Equal(t, "refresh-token", out.RefreshToken)
	assert.Equal(t, "user-id", out.User.ID)
}

func TestUserService_Login_IdentifierRequired(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s := service.NewUserService(mocks.NewMockUserRepository(ctrl), mocks.NewMockTokenGenerator(ctrl), testConfig())

	_, err := s.Login(context.Background(), dto.LoginInput{FullName: " ", Password: "secret123"})

	assert.ErrorIs(t, err, autherror.ErrIdentifierRequired)
}

func TestUserService_Login_UserNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	s := service.NewUserService(mockRepo, mocks.NewMockTokenGenerator(ctrl), testConfig())

	mockRepo.EXPECT().FindByIdentity(gomock.Any(), "", "555-0199").Return(nil, nil)

	_, err := s.Login(context.Background(), dto.LoginInput{MobileNumber: "555-0199", Password: "secret123"})

	assert.ErrorIs(t, err, autherror.ErrUserNotFound)
	assert.Equal(t, autherror.KindNotFound, autherror.KindOf(err))
}

func TestUserService_Login_InvalidPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	s := service.NewUserService(mockRepo, mocks.NewMockTokenGenerator(ctrl), testConfig())

	user := &domain.User{ID: "user-id", FullName: "Alice", PasswordHash: hashed(t, "secret123")}
	mockRepo.EXPECT().FindByIdentity(gomock.Any(), "Alice", "").Return(user, nil)

	_, err := s.Login(context.Background(), dto.LoginInput{FullName: "Alice", Password: "wrongpass"})

	assert.ErrorIs(t, err, autherror.ErrInvalidCredentials)
	assert.Equal(t, autherror.KindUnauthorized, autherror.KindOf(err))
}

func TestUserService_Login_TokenGenerationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	mockTokenService := mocks.NewMockTokenGenerator(ctrl)
	s := service.NewUserService(mockRepo, mockTokenService, testConfig())

	user := &domain.User{ID: "user-id", FullName: "Alice", PasswordHash: hashed(t, "secret123")}
	mockRepo.EXPECT().FindByIdentity(gomock.Any(), gomock.Any(), gomock.Any()).Return(user, nil)
	mockTokenService.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", "", time.Time{}, errors.New("sign failed"))

	_, err := s.Login(context.Background(), dto.LoginInput{FullName: "Alice", Password: "secret123"})

	assert.Equal(t, autherror.KindServerError, autherror.KindOf(err))
}

func TestUserService_Login_StoreRefreshTokenError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	mockTokenService := mocks.NewMockTokenGenerator(ctrl)
	s := service.NewUserService(mockRepo, mockTokenService, testConfig())

	user := &domain.User{ID: "user-id", FullName: "Alice", PasswordHash: hashed(t, "secret123")}
	mockRepo.EXPECT().FindByIdentity(gomock.Any(), gomock.Any(), gomock.Any()).Return(user, nil)
	mockTokenService.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).
		Return("a", "r", time.Now(), nil)
	mockRepo.EXPECT().SetRefreshToken(gomock.Any(), "user-id", "r").Return(errors.New("db error"))

	out, err := s.Login(context.Background(), dto.LoginInput{FullName: "Alice", Password: "secret123"})

	assert.Nil(t, out)
	assert.Equal(t, autherror.KindServerError, autherror.KindOf(err))
}

func TestUserService_Refresh_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	mockTokenService := mocks.NewMockTokenGenerator(ctrl)
	s := service.NewUserService(mockRepo, mockTokenService, testConfig())

	user := &domain.User{ID: "user-id", FullName: "Alice", MobileNumber: "555", RefreshToken: "current"}

	mockTokenService.EXPECT().VerifyRefreshToken("current").Return(&service.JWTCustomClaims{UserID: "user-id"}, nil)
	mockRepo.EXPECT().FindByID(gomock.Any(), "user-id").Return(user, nil)
	mockTokenService.EXPECT().Generate("user-id", "Alice", "555").Return("new-access", "new-refresh", time.Now(), nil)
	mockRepo.EXPECT().RotateRefreshToken(gomock.Any(), "user-id", "current", "new-refresh").Return(true, nil)

	out, err := s.Refresh(context.Background(), dto.RefreshInput{RefreshToken: "current"})

	require.NoError(t, err)
	assert.Equal(t, "new-access", out.AccessToken)
	assert.Equal(t, "new-refresh", out.RefreshToken)
}

func TestUserService_Refresh_Missing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s := service.NewUserService(mocks.NewMockUserRepository(ctrl), mocks.NewMockTokenGenerator(ctrl), testConfig())

	_, err := s.Refresh(context.Background(), dto.RefreshInput{})

	assert.ErrorIs(t, err, autherror.ErrRefreshTokenMissing)
	assert.Equal(t, autherror.KindUnauthorized, autherror.KindOf(err))
}

func TestUserService_Refresh_InvalidToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockTokenService := mocks.NewMockTokenGenerator(ctrl)
	s := service.NewUserService(mocks.NewMockUserRepository(ctrl), mockTokenService, testConfig())

	mockTokenService.EXPECT().VerifyRefreshToken("garbage").Return(nil, errors.New("token is malformed"))

	_, err := s.Refresh(context.Background(), dto.RefreshInput{RefreshToken: "garbage"})

	assert.ErrorIs(t, err, autherror.ErrInvalidRefreshToken)
	assert.Equal(t, "invalid refresh token", autherror.MessageOf(err))
}

func TestUserService_Refresh_UnknownSubject(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	mockTokenService := mocks.NewMockTokenGenerator(ctrl)
	s := service.NewUserService(mockRepo, mockTokenService, testConfig())

	mockTokenService.EXPECT().VerifyRefreshToken("tok").Return(&service.JWTCustomClaims{UserID: "gone"}, nil)
	mockRepo.EXPECT().FindByID(gomock.Any(), "gone").Return(nil, nil)

	_, err := s.Refresh(context.Background(), dto.RefreshInput{RefreshToken: "tok"})

	assert.ErrorIs(t, err, autherror.ErrInvalidRefreshToken)
}

func TestUserService_Refresh_StaleToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	mockTokenService := mocks.NewMockTokenGenerator(ctrl)
	s := service.NewUserService(mockRepo, mockTokenService, testConfig())

	mockTokenService.EXPECT().VerifyRefreshToken("old").Return(&service.JWTCustomClaims{UserID: "user-id"}, nil)
	mockRepo.EXPECT().FindByID(gomock.Any(), "user-id").Return(&domain.User{ID: "user-id", RefreshToken: "newer"}, nil)

	_, err := s.Refresh(context.Background(), dto.RefreshInput{RefreshToken: "old"})

	assert.ErrorIs(t, err, autherror.ErrInvalidRefreshToken)
}

func TestUserService_Refresh_LostRotationRace(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	mockTokenService := mocks.NewMockTokenGenerator(ctrl)
	s := service.NewUserService(mockRepo, mockTokenService, testConfig())

	mockTokenService.EXPECT().VerifyRefreshToken("current").Return(&service.JWTCustomClaims{UserID: "user-id"}, nil)
	mockRepo.EXPECT().FindByID(gomock.Any(), "user-id").Return(&domain.User{ID: "user-id", RefreshToken: "current"}, nil)
	mockTokenService.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).Return("a", "r", time.Now(), nil)
	mockRepo.EXPECT().RotateRefreshToken(gomock.Any(), "user-id", "current", "r").Return(false, nil)

	out, err := s.Refresh(context.Background(), dto.RefreshInput{RefreshToken: "current"})

	assert.Nil(t, out)
	assert.ErrorIs(t, err, autherror.ErrInvalidRefreshToken)
}

func TestUserService_Refresh_RotateError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	mockTokenService := mocks.NewMockTokenGenerator(ctrl)
	s := service.NewUserService(mockRepo, mockTokenService, testConfig())

	mockTokenService.EXPECT().VerifyRefreshToken("current").Return(&service.JWTCustomClaims{UserID: "user-id"}, nil)
	mockRepo.EXPECT().FindByID(gomock.Any(), "user-id").Return(&domain.User{ID: "user-id", RefreshToken: "current"}, nil)
	mockTokenService.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).Return("a", "r", time.Now(), nil)
	mockRepo.EXPECT().RotateRefreshToken(gomock.Any(), "user-id", "current", "r").Return(false, errors.New("db error"))

	_, err := s.Refresh(context.Background(), dto.RefreshInput{RefreshToken: "current"})

	assert.Equal(t, autherror.KindServerError, autherror.KindOf(err))
}

func TestUserService_Logout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	s := service.NewUserService(mockRepo, mocks.NewMockTokenGenerator(ctrl), testConfig())

	mockRepo.EXPECT().SetRefreshToken(gomock.Any(), "user-id", "").Return(nil).Times(2)

	assert.NoError(t, s.Logout(context.Background(), "user-id"))
	assert.NoError(t, s.Logout(context.Background(), "user-id"))
}

func TestUserService_Logout_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	s := service.NewUserService(mockRepo, mocks.NewMockTokenGenerator(ctrl), testConfig())

	mockRepo.EXPECT().SetRefreshToken(gomock.Any(), "user-id", "").Return(errors.New("db error"))

	err := s.Logout(context.Background(), "user-id")

	assert.Equal(t, autherror.KindServerError, autherror.KindOf(err))
}

func TestUserService_ChangePassword_Success(t *testing.T) {
	tests := []struct {
		name   string
		revoke bool
	}{
		{"revokes sessions", true},
		{"keeps sessions", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockRepo := mocks.NewMockUserRepository(ctrl)
			cfg := testConfig()
			cfg.RevokeSessionsOnPasswordChange = tt.revoke
			s := service.NewUserService(mockRepo, mocks.NewMockTokenGenerator(ctrl), cfg)

			user := &domain.User{ID: "user-id", PasswordHash: hashed(t, "old-pass")}
			mockRepo.EXPECT().FindByID(gomock.Any(), "user-id").Return(user, nil)

			var stored string
			mockRepo.EXPECT().UpdatePasswordHash(gomock.Any(), "user-id", gomock.Any()).
				DoAndReturn(func(_ context.Context, _ string, hash string) error {
					stored = hash
					return nil
				})
			if tt.revoke {
				mockRepo.EXPECT().SetRefreshToken(gomock.Any(), "user-id", "").Return(nil)
			}

			err := s.ChangePassword(context.Background(), "user-id", dto.ChangePasswordInput{
				OldPassword:     "old-pass",
				NewPassword:     "new-pass",
				ConfirmPassword: "new-pass",
			})

			require.NoError(t, err)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored), []byte("new-pass")))
		})
	}
}

func TestUserService_ChangePassword_Mismatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s := service.NewUserService(mocks.NewMockUserRepository(ctrl), mocks.NewMockTokenGenerator(ctrl), testConfig())

	err := s.ChangePassword(context.Background(), "user-id", dto.ChangePasswordInput{
		OldPassword:     "old-pass",
		NewPassword:     "new-pass",
		ConfirmPassword: "other-pass",
	})

	assert.ErrorIs(t, err, autherror.ErrPasswordMismatch)
	assert.Equal(t, autherror.KindBadRequest, autherror.KindOf(err))
}

func TestUserService_ChangePassword_WrongOldPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	s := service.NewUserService(mockRepo, mocks.NewMockTokenGenerator(ctrl), testConfig())

	mockRepo.EXPECT().FindByID(gomock.Any(), "user-id").Return(&domain.User{ID: "user-id", PasswordHash: hashed(t, "old-pass")}, nil)

	err := s.ChangePassword(context.Background(), "user-id", dto.ChangePasswordInput{
		OldPassword:     "guess",
		NewPassword:     "new-pass",
		ConfirmPassword: "new-pass",
	})

	assert.ErrorIs(t, err, autherror.ErrOldPasswordIncorrect)
	assert.Equal(t, autherror.KindBadRequest, autherror.KindOf(err))
}

func TestUserService_ChangePassword_NilConfigRevokes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	s := service.NewUserService(mockRepo, mocks.NewMockTokenGenerator(ctrl), nil)

	mockRepo.EXPECT().FindByID(gomock.Any(), "user-id").Return(&domain.User{ID: "user-id", PasswordHash: hashed(t, "old-pass")}, nil)
	mockRepo.EXPECT().UpdatePasswordHash(gomock.Any(), "user-id", gomock.Any()).Return(nil)
	mockRepo.EXPECT().SetRefreshToken(gomock.Any(), "user-id", "").Return(nil)

	err := s.ChangePassword(context.Background(), "user-id", dto.ChangePasswordInput{
		OldPassword:     "old-pass",
		NewPassword:     "new-pass",
		ConfirmPassword: "new-pass",
	})

	assert.NoError(t, err)
}

func TestUserService_Authenticate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	mockTokenService := mocks.NewMockTokenGenerator(ctrl)
	s := service.NewUserService(mockRepo, mockTokenService, testConfig())

	t.Run("missing token", func(t *testing.T) {
		_, err := s.Authenticate(context.Background(), "  ")
		assert.ErrorIs(t, err, autherror.ErrAccessTokenMissing)
	})

	t.Run("invalid token", func(t *testing.T) {
		mockTokenService.EXPECT().VerifyAccessToken("bad").Return(nil, errors.New("token is expired"))

		_, err := s.Authenticate(context.Background(), "bad")
		assert.ErrorIs(t, err, autherror.ErrInvalidAccessToken)
	})

	t.Run("subject deleted", func(t *testing.T) {
		mockTokenService.EXPECT().VerifyAccessToken("orphan").Return(&service.JWTCustomClaims{UserID: "gone"}, nil)
		mockRepo.EXPECT().FindByID(gomock.Any(), "gone").Return(nil, nil)

		_, err := s.Authenticate(context.Background(), "orphan")
		assert.ErrorIs(t, err, autherror.ErrInvalidAccessToken)
	})

	t.Run("valid token", func(t *testing.T) {
		user := &domain.User{ID: "user-id", FullName: "Alice"}
		mockTokenService.EXPECT().VerifyAccessToken("good").Return(&service.JWTCustomClaims{UserID: "user-id"}, nil)
		mockRepo.EXPECT().FindByID(gomock.Any(), "user-id").Return(user, nil)

		got, err := s.Authenticate(context.Background(), "good")
		require.NoError(t, err)
		assert.Equal(t, user, got)

		out := s.CurrentUser(got)
		assert.Equal(t, "user-id", out.ID)
		assert.Equal(t, "Alice", out.FullName)
	})
}

func TestUserService_RecordsMetrics(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	m := metrics.New()
	s := service.NewUserService(mockRepo, mocks.NewMockTokenGenerator(ctrl), testConfig(), service.WithMetrics(m))

	mockRepo.EXPECT().FindByIdentity(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

	_, err := s.Login(context.Background(), dto.LoginInput{FullName: "Nobody", Password: "x"})
	require.Error(t, err)

	count, err := testutil.GatherAndCount(m.Registry(), "eventmappr_auth_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
