package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"ontheway/internal/models"
	"ontheway/internal/plan"
	"ontheway/internal/repository"
	"ontheway/internal/security"
	"ontheway/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
)

// RegisterInput is the registration form
type RegisterInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	GroupName string `json:"groupName"`
	Avatar    string `json:"avatar,omitempty"`
}

// AuthResult is a signed-in user with the token for the new session
type AuthResult struct {
	Token   string          `json:"token"`
	User    *models.User    `json:"user"`
	Session *models.Session `json:"-"`
}

// AuthService handles authentication business logic
type AuthService struct {
	users           repository.ProfileStore
	sessions        repository.SessionStore
	tokens          *security.TokenIssuer
	sessionDuration time.Duration
	planYear        int
	avatarMaxBytes  int64
	logger          *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(users repository.ProfileStore, sessions repository.SessionStore, tokens *security.TokenIssuer,
	sessionDuration time.Duration, planYear int, avatarMaxBytes int64, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:           users,
		sessions:        sessions,
		tokens:          tokens,
		sessionDuration: sessionDuration,
		planYear:        planYear,
		avatarMaxBytes:  avatarMaxBytes,
		logger:          logger,
	}
}

// Register creates a reader with a freshly generated plan and signs them in
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	name := security.SanitizeText(in.Name)
	group := security.SanitizeText(in.GroupName)

	if err := errors.Join(
		validation.ValidateName(name),
		validation.ValidateEmail(email),
		validation.ValidatePassword(in.Password),
		validation.ValidateGroupName(group),
		validation.ValidateAvatar(in.Avatar, s.avatarMaxBytes),
	); err != nil {
		return nil, err
	}

	passwordHash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		GroupName:    group,
		Avatar:       in.Avatar,
	}
	if err := s.users.CreateUser(ctx, user, plan.Generate(s.planYear)); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered", zap.Int64("user_id", user.ID), zap.String("group", group))
	return s.startSession(ctx, user)
}

// Login authenticates a user and creates a session
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !security.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	return s.startSession(ctx, user)
}

// Authenticate resolves a signed token to its live session and user
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Session, *models.User, error) {
	if token == "" {
		return nil, nil, ErrSessionNotFound
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, nil, ErrSessionNotFound
	}

	session, err := s.sessions.GetSession(ctx, claims.SessionID())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session.UserID != claims.UserID {
		return nil, nil, ErrSessionNotFound
	}

	if session.IsExpired() {
		if err := s.sessions.DeleteSession(ctx, session.ID); err != nil {
			s.logger.Warn("failed to delete expired session", zap.Error(err))
		}
		return nil, nil, ErrSessionExpired
	}

	user, err := s.users.GetUserByID(ctx, session.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}

	return session, user, nil
}

// Logout invalidates a session
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes expired sessions from the store
func (s *AuthService) CleanupExpiredSessions(ctx context.Context) error {
	n, err := s.sessions.DeleteExpiredSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	if n > 0 {
		s.logger.Info("expired sessions removed", zap.Int64("count", n))
	}
	return nil
}

// OAuthLogin authenticates or creates a user using an OAuth provider.
// An account that already uses the email is linked; a new account needs a group name.
func (s *AuthService) OAuthLogin(ctx context.Context, provider, subject, email, name, groupName string) (*AuthResult, error) {
	if provider == "" || subject == "" {
		return nil, errors.New("missing oauth provider information")
	}
	email = normalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByOAuth(ctx, provider, subject)
	if err == nil {
		return s.startSession(ctx, user)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to lookup oauth user: %w", err)
	}

	existing, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.OAuthProvider != "" && existing.OAuthProvider != provider {
			return nil, ErrEmailTaken
		}
		if err := s.users.LinkOAuthProvider(ctx, existing.ID, provider, subject); err != nil {
			return nil, fmt.Errorf("failed to link oauth provider: %w", err)
		}
		existing.OAuthProvider = provider
		return s.startSession(ctx, existing)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	name = security.SanitizeText(name)
	if name == "" {
		name = strings.Split(email, "@")[0]
	}
	group := security.SanitizeText(groupName)
	if err := errors.Join(validation.ValidateName(name), validation.ValidateGroupName(group)); err != nil {
		return nil, err
	}

	user = &models.User{
		Email:         email,
		Name:          name,
		GroupName:     group,
		OAuthProvider: provider,
		OAuthSubject:  subject,
	}
	if err := s.users.CreateUser(ctx, user, plan.Generate(s.planYear)); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create oauth user: %w", err)
	}

	s.logger.Info("oauth user registered", zap.Int64("user_id", user.ID), zap.String("provider", provider))
	return s.startSession(ctx, user)
}

func (s *AuthService) startSession(ctx context.Context, user *models.User) (*AuthResult, error) {
	expiresAt := time.Now().Add(s.sessionDuration)
	session, err := s.sessions.CreateSession(ctx, security.GenerateSessionID(), user.ID, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := s.tokens.Issue(session.ID, user.ID, session.ExpiresAt)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, User: user, Session: session}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
