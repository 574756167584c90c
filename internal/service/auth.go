package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/openbanana/studio-server-go/internal/config"
	apperrors "github.com/openbanana/studio-server-go/internal/errors"
	"github.com/openbanana/studio-server-go/internal/mail"
	"github.com/openbanana/studio-server-go/internal/model"
	"github.com/openbanana/studio-server-go/internal/repository"
	"github.com/openbanana/studio-server-go/internal/token"
	"github.com/openbanana/studio-server-go/internal/util"
)

// VerificationCodes holds pending email verification codes with a TTL.
type VerificationCodes interface {
	Save(ctx context.Context, email, code string, ttl time.Duration) error
	Get(ctx context.Context, email string) (string, error)
	Delete(ctx context.Context, email string) error
}

// AuthService handles registration, login and email verification.
type AuthService struct {
	userRepo repository.UserRepository
	codes    VerificationCodes
	mailer   mail.Mailer
	tokens   *token.Manager
}

func NewAuthService(userRepo repository.UserRepository, codes VerificationCodes, mailer mail.Mailer, tokens *token.Manager) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		codes:    codes,
		mailer:   mailer,
		tokens:   tokens,
	}
}

// AuthResult pairs a signed access token with the authenticated user.
type AuthResult struct {
	Token string
	User  *model.User
}

// SendCode generates a verification code for the email and mails it. The
// code replaces any earlier pending code and lives for a few minutes.
func (s *AuthService) SendCode(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if !util.IsValidEmail(email) {
		return apperrors.InvalidInput("email", "not a valid email address")
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return apperrors.Database(err)
	}
	if existing != nil {
		return apperrors.AlreadyExists("Email")
	}

	code, err := util.GenerateNumericCode(config.VerificationCodeLength)
	if err != nil {
		return apperrors.Internal("Failed to generate verification code").WithCause(err)
	}
	if err := s.codes.Save(ctx, email, code, config.VerificationCodeTTL); err != nil {
		return apperrors.Internal("Failed to store verification code").WithCause(err)
	}
	if err := s.mailer.SendVerificationCode(email, code); err != nil {
		return apperrors.External("mail", err)
	}

	log.Info().Str("email", email).Msg("verification code sent")
	return nil
}

type RegisterParams struct {
	Username string
	Email    string
	Password string
	Code     string
}

// Register creates an account after verifying the emailed code and grants
// the starting point balance.
func (s *AuthService) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	params.Username = strings.TrimSpace(params.Username)
	params.Email = normalizeEmail(params.Email)

	if params.Username == "" {
		return nil, apperrors.MissingRequired("username")
	}
	if !util.IsValidEmail(params.Email) {
		return nil, apperrors.InvalidInput("email", "not a valid email address")
	}
	if len(params.Password) < config.MinPasswordLength {
		return nil, apperrors.ValidationError("Password is too short")
	}
	if params.Code == "" {
		return nil, apperrors.MissingRequired("code")
	}

	stored, err := s.codes.Get(ctx, params.Email)
	if err != nil {
		return nil, apperrors.Internal("Failed to load verification code").WithCause(err)
	}
	if stored == "" {
		return nil, apperrors.VerificationCodeExpired()
	}
	if stored != params.Code {
		return nil, apperrors.InvalidVerificationCode()
	}

	if existing, err := s.userRepo.FindByEmail(ctx, params.Email); err != nil {
		return nil, apperrors.Database(err)
	} else if existing != nil {
		return nil, apperrors.AlreadyExists("Email")
	}
	if existing, err := s.userRepo.FindByUsername(ctx, params.Username); err != nil {
		return nil, apperrors.Database(err)
	} else if existing != nil {
		return nil, apperrors.AlreadyExists("Username")
	}

	hash, err := util.HashPassword(params.Password)
	if err != nil {
		return nil, apperrors.Internal("Failed to hash password").WithCause(err)
	}

	user, err := s.userRepo.Create(ctx, model.CreateUserParams{
		ID:            uuid.NewString(),
		Username:      params.Username,
		Email:         params.Email,
		PasswordHash:  hash,
		Role:          model.RoleUser,
		DrawingPoints: config.RegisterBonusPoints,
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}

	if err := s.codes.Delete(ctx, params.Email); err != nil {
		log.Warn().Err(err).Str("email", params.Email).Msg("failed to clear consumed verification code")
	}

	signed, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue token").WithCause(err)
	}

	log.Info().Str("userId", user.ID).Str("username", user.Username).Msg("user registered")
	return &AuthResult{Token: signed, User: user}, nil
}

// Login authenticates by email or username plus password.
func (s *AuthService) Login(ctx context.Context, account, password string) (*AuthResult, error) {
	account = strings.TrimSpace(account)
	if account == "" || password == "" {
		return nil, apperrors.MissingRequired("account and password")
	}

	var (
		user *model.User
		err  error
	)
	if strings.Contains(account, "@") {
		user, err = s.userRepo.FindByEmail(ctx, normalizeEmail(account))
	} else {
		user, err = s.userRepo.FindByUsername(ctx, account)
	}
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if user == nil || !util.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperrors.Unauthorized("Invalid account or password")
	}

	signed, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue token").WithCause(err)
	}

	log.Info().Str("userId", user.ID).Msg("user logged in")
	return &AuthResult{Token: signed, User: user}, nil
}

// Me returns the current account for a verified token subject.
func (s *AuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if user == nil {
		return nil, apperrors.NotFound("User")
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
