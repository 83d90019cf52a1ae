package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/citizen"
	"github.com/dmehra2102/prod-golang-projects/healthportal/pkg/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrAccountLocked      = errors.New("account is temporarily locked due to multiple failed login attempts")
	ErrAccountInactive    = errors.New("account is inactive")
)

const maxFailedAttempts = 5

const lockDuration = 15 * time.Minute

const minPasswordLength = 8

type AccountRepository interface {
	Create(ctx context.Context, a *domain.Account) error
	GetByLogin(ctx context.Context, role domain.Role, login string) (*domain.Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	RecordLoginFailure(ctx context.Context, id uuid.UUID, failedCount int, lockedUntil *time.Time) error
	RecordLoginSuccess(ctx context.Context, id uuid.UUID, at time.Time) error
}

type AuthService struct {
	accounts   AccountRepository
	jwtManager *auth.JWTManager
	auditSvc   *AuditService
	log        *zap.Logger
	now        func() time.Time
}

func NewAuthService(accounts AccountRepository, jwtManager *auth.JWTManager, auditSvc *AuditService, log *zap.Logger) *AuthService {
	return &AuthService{
		accounts:   accounts,
		jwtManager: jwtManager,
		auditSvc:   auditSvc,
		log:        log,
		now:        time.Now,
	}
}

// NormalizeLogin canonicalises the login typed into a portal form: NIDs and
// license numbers are trimmed, government emails are also lower-cased.
func NormalizeLogin(role domain.Role, login string) string {
	switch role {
	case domain.RoleCitizen:
		return citizen.NormalizeNationalID(login)
	case domain.RoleGovernment:
		return strings.ToLower(strings.TrimSpace(login))
	default:
		return strings.TrimSpace(login)
	}
}

func (s *AuthService) Login(ctx context.Context, role domain.Role, login, password string, ip string) (*domain.TokenPair, error) {
	if !role.IsValid() {
		return nil, &ValidationError{Fields: []string{"portal must be one of citizen, hospital, government"}}
	}
	login = NormalizeLogin(role, login)

	account, err := s.accounts.GetByLogin(ctx, role, login)
	if err != nil {
		if !errors.Is(err, ErrAccountNotFound) {
			s.log.Error("failed to load account", zap.Error(err))
			return nil, transient("signing in", err)
		}
		// Hash anyway so response time does not reveal whether the login exists.
		_, _ = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		return nil, ErrInvalidCredentials
	}

	if !account.IsActive {
		return nil, ErrAccountInactive
	}

	now := s.now()
	if account.IsLocked(now) {
		return nil, ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		failed := account.FailedLoginCount + 1
		var lockedUntil *time.Time
		if failed >= maxFailedAttempts {
			until := now.Add(lockDuration)
			lockedUntil = &until
		}
		if err := s.accounts.RecordLoginFailure(ctx, account.ID, failed, lockedUntil); err != nil {
			s.log.Error("failed to record login failure", zap.Error(err))
		}
		s.log.Warn("failed login attempt",
			zap.String("portal", string(role)),
			zap.String("login", login),
			zap.String("ip", ip),
			zap.Int("failed_count", failed),
		)
		return nil, ErrInvalidCredentials
	}

	if err := s.accounts.RecordLoginSuccess(ctx, account.ID, now); err != nil {
		s.log.Error("failed to record login success", zap.Error(err))
	}

	pair, err := s.jwtManager.GenerateTokenPair(claimsFor(account))
	if err != nil {
		s.log.Error("failed to generate token pair", zap.Error(err))
		return nil, fmt.Errorf("generating tokens: %w", err)
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		AccountID:    account.ID,
		Role:         account.Role,
		Action:       domain.ActionLogin,
		ResourceType: "account",
		ResourceID:   account.ID.String(),
		IPAddress:    ip,
	})

	s.log.Info("account logged in",
		zap.String("account_id", account.ID.String()),
		zap.String("portal", string(role)),
		zap.String("ip", ip),
	)

	return pair, nil
}

// RefreshToken issues a new token pair given a valid refresh token.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	accountID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	// Re-validate the account is still active
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil || !account.IsActive {
		return nil, ErrInvalidCredentials
	}

	return s.jwtManager.GenerateTokenPair(claimsFor(account))
}

type CreateAccountCommand struct {
	Role        domain.Role
	Login       string
	Password    string
	DisplayName string
	InstituteID *int64
}

// CreateAccount provisions a portal login. Citizen accounts are linked to the
// NID they sign in with; hospital accounts must name their institute.
func (s *AuthService) CreateAccount(ctx context.Context, cmd *CreateAccountCommand) (*domain.Account, error) {
	var errs []string
	if !cmd.Role.IsValid() {
		errs = append(errs, "portal must be one of citizen, hospital, government")
	}
	login := NormalizeLogin(cmd.Role, cmd.Login)
	if login == "" {
		errs = append(errs, "login is required")
	}
	if len(cmd.Password) < minPasswordLength {
		errs = append(errs, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if cmd.Role == domain.RoleHospital && cmd.InstituteID == nil {
		errs = append(errs, "institute_id is required for hospital accounts")
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	a := &domain.Account{
		Role:         cmd.Role,
		Login:        login,
		PasswordHash: string(hash),
		DisplayName:  strings.TrimSpace(cmd.DisplayName),
		IsActive:     true,
	}
	switch cmd.Role {
	case domain.RoleCitizen:
		nid := login
		a.NationalID = &nid
	case domain.RoleHospital:
		a.InstituteID = cmd.InstituteID
	}

	if err := s.accounts.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("creating account: %w", err)
	}

	s.log.Info("account created",
		zap.String("account_id", a.ID.String()),
		zap.String("portal", string(a.Role)),
	)
	return a, nil
}

func claimsFor(a *domain.Account) *domain.Claims {
	return &domain.Claims{
		AccountID:   a.ID,
		Role:        a.Role,
		InstituteID: a.InstituteID,
		NationalID:  a.NationalID,
	}
}
