package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"foodhub/internal/domain"
	"foodhub/internal/email"
	"foodhub/internal/repository"
	"foodhub/internal/storage"
)

const (
	defaultOTPTTL = 5 * time.Minute

	otpMailSubject   = "OTP for account verification"
	resetMailSubject = "Reset Password"
)

// UserServiceOptions agrupa dependencias opcionales; los valores cero toman defaults.
type UserServiceOptions struct {
	Hasher           PasswordHasher
	Limiter          OTPRateLimiter
	Random           io.Reader
	Now              func() time.Time
	OTPTTL           time.Duration
	ResetBaseURL     string
	UnifyLoginErrors bool
}

// UserService coordina el registro con OTP, el login y el reseteo de contraseña.
type UserService struct {
	logger   *zap.Logger
	users    repository.UserRepository
	pending  PendingRegistrationStore
	mailer   email.Sender
	sessions *JWTService
	resets   *ResetTokenService
	images   storage.ImageStore

	hasher           PasswordHasher
	limiter          OTPRateLimiter
	random           io.Reader
	now              func() time.Time
	otpTTL           time.Duration
	resetBaseURL     string
	unifyLoginErrors bool
}

func NewUserService(
	logger *zap.Logger,
	users repository.UserRepository,
	pending PendingRegistrationStore,
	mailer email.Sender,
	sessions *JWTService,
	resets *ResetTokenService,
	images storage.ImageStore,
	opts UserServiceOptions,
) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pending == nil {
		pending = NewMemoryPendingStore()
	}
	if opts.Hasher == nil {
		opts.Hasher = NewBcryptHasher(0)
	}
	if opts.Random == nil {
		opts.Random = rand.Reader
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.OTPTTL <= 0 {
		opts.OTPTTL = defaultOTPTTL
	}
	return &UserService{
		logger:           logger,
		users:            users,
		pending:          pending,
		mailer:           mailer,
		sessions:         sessions,
		resets:           resets,
		images:           images,
		hasher:           opts.Hasher,
		limiter:          opts.Limiter,
		random:           opts.Random,
		now:              opts.Now,
		otpTTL:           opts.OTPTTL,
		resetBaseURL:     strings.TrimRight(opts.ResetBaseURL, "/"),
		unifyLoginErrors: opts.UnifyLoginErrors,
	}
}

// AuthResult es la respuesta de los flujos que autentican al usuario.
type AuthResult struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

// BeginRegistration guarda un alta pendiente y envía el OTP por email.
// Si el envío falla la entrada no se guarda.
func (s *UserService) BeginRegistration(ctx context.Context, username, emailAddr, password string) error {
	username = strings.TrimSpace(username)
	emailAddr = strings.TrimSpace(emailAddr)
	if username == "" || emailAddr == "" || strings.TrimSpace(password) == "" {
		return fmt.Errorf("%w: username, email and password are required", ErrValidation)
	}
	if err := validateEmail(emailAddr); err != nil {
		return err
	}
	if s.limiter != nil && !s.limiter.Allow(emailAddr) {
		return ErrRateLimited
	}
	if err := s.ensureEmailFree(ctx, emailAddr); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	code, err := generateOTP(s.random)
	if err != nil {
		return err
	}
	entry := domain.PendingRegistration{
		Username:     username,
		Email:        emailAddr,
		PasswordHash: hash,
		Code:         code,
		ExpiresAt:    s.now().UTC().Add(s.otpTTL),
	}

	if err := s.send(ctx, emailAddr, otpMailSubject, fmt.Sprintf("Your OTP is %s", code)); err != nil {
		s.logger.Warn("send registration otp failed", zap.Error(err), zap.String("email", emailAddr))
		return fmt.Errorf("%w: %v", ErrDeliveryFailure, err)
	}

	// Último en escribir gana: un código enviado antes para el mismo email deja de servir.
	if err := s.pending.Put(ctx, entry); err != nil {
		return err
	}
	return nil
}

// VerifyRegistration promueve el alta pendiente a usuario durable y emite un token de sesión.
// Entrada inexistente, código erróneo o vencido devuelven siempre ErrInvalidOrExpiredCode.
func (s *UserService) VerifyRegistration(ctx context.Context, emailAddr, code string) (AuthResult, error) {
	entry, err := s.pending.Consume(ctx, strings.TrimSpace(emailAddr), code, s.now().UTC())
	if err != nil {
		if errors.Is(err, ErrInvalidOrExpiredCode) {
			return AuthResult{}, ErrInvalidOrExpiredCode
		}
		return AuthResult{}, err
	}

	now := s.now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Username:     entry.Username,
		Email:        entry.Email,
		PasswordHash: entry.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return AuthResult{}, ErrAlreadyRegistered
		}
		if rerr := s.pending.Restore(ctx, entry); rerr != nil {
			s.logger.Error("restore pending registration failed", zap.Error(rerr), zap.String("email", entry.Email))
		}
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}

	return s.authenticated(user)
}

// Signup crea el usuario directamente, sin OTP.
func (s *UserService) Signup(ctx context.Context, username, emailAddr, password string) (AuthResult, error) {
	username = strings.TrimSpace(username)
	emailAddr = strings.TrimSpace(emailAddr)
	if username == "" || emailAddr == "" || strings.TrimSpace(password) == "" {
		return AuthResult{}, fmt.Errorf("%w: username, email and password are required", ErrValidation)
	}
	if err := validateEmail(emailAddr); err != nil {
		return AuthResult{}, err
	}
	if err := s.ensureEmailFree(ctx, emailAddr); err != nil {
		return AuthResult{}, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}
	now := s.now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        emailAddr,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return AuthResult{}, ErrAlreadyRegistered
		}
		return AuthResult{}, fmt.Errorf("create user: %w", err)
	}
	return s.authenticated(user)
}

// Login valida credenciales. Un email desconocido es ErrUserNotFound salvo que
// UnifyLoginErrors esté activo, en cuyo caso se informa como ErrBadCredentials.
func (s *UserService) Login(ctx context.Context, emailAddr, password string) (AuthResult, error) {
	emailAddr = strings.TrimSpace(emailAddr)
	if emailAddr == "" || password == "" {
		return AuthResult{}, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if s.unifyLoginErrors {
				return AuthResult{}, ErrBadCredentials
			}
			return AuthResult{}, ErrUserNotFound
		}
		return AuthResult{}, err
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, ErrBadCredentials) {
			return AuthResult{}, ErrBadCredentials
		}
		return AuthResult{}, err
	}
	return s.authenticated(user)
}

// Authenticate resuelve el usuario dueño de un token de sesión.
func (s *UserService) Authenticate(ctx context.Context, token string) (domain.User, error) {
	userID, err := s.sessions.VerifySessionToken(token)
	if err != nil {
		return domain.User{}, ErrInvalidToken
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrInvalidToken
		}
		return domain.User{}, err
	}
	return user, nil
}

// RequestPasswordReset emite un link de reseteo y lo envía por email.
// Un fallo de entrega se informa como ErrDeliveryFailure.
func (s *UserService) RequestPasswordReset(ctx context.Context, emailAddr string) (string, error) {
	emailAddr = strings.TrimSpace(emailAddr)
	if emailAddr == "" {
		return "", fmt.Errorf("%w: email is required", ErrValidation)
	}
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	token, err := s.resets.Issue(ctx, user)
	if err != nil {
		return "", fmt.Errorf("issue reset token: %w", err)
	}
	link := fmt.Sprintf("%s/reset/%s/%s", s.resetBaseURL, user.ID, token)

	if err := s.send(ctx, user.Email, resetMailSubject, link); err != nil {
		s.logger.Warn("send reset link failed", zap.Error(err), zap.String("user_id", user.ID))
		return "", fmt.Errorf("%w: %v", ErrDeliveryFailure, err)
	}
	return link, nil
}

// ResetPassword reemplaza el hash si el token verifica contra el hash vigente.
// Devuelve el usuario actualizado y el email contenido en el token.
func (s *UserService) ResetPassword(ctx context.Context, userID, token, newPassword string) (domain.User, string, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return domain.User{}, "", err
	}
	if strings.TrimSpace(newPassword) == "" {
		return domain.User{}, "", fmt.Errorf("%w: password is required", ErrValidation)
	}

	claims, err := s.resets.Verify(ctx, user, token)
	if err != nil {
		return domain.User{}, "", err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hash password: %w", err)
	}
	now := s.now().UTC()
	// El update compara contra el hash verificado: dos usos concurrentes del mismo token
	// no pueden ganar ambos.
	if err := s.users.UpdatePassword(ctx, user.ID, user.PasswordHash, hash, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, "", ErrInvalidOrExpiredToken
		}
		return domain.User{}, "", err
	}
	user.PasswordHash = hash
	user.UpdatedAt = now
	return user, claims.Email, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) GetUser(ctx context.Context, id string) (domain.User, error) {
	return s.getUser(ctx, id)
}

func (s *UserService) DeleteUser(ctx context.Context, id string) (domain.User, error) {
	user, err := s.users.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// UpdateProfileInput trae sólo los campos a modificar; vacío significa sin cambios.
type UpdateProfileInput struct {
	Username string
	Email    string
	Avatar   *storage.Upload
}

func (s *UserService) UpdateProfile(ctx context.Context, id string, input UpdateProfileInput) (domain.User, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	if username := strings.TrimSpace(input.Username); username != "" {
		user.Username = username
	}
	if emailAddr := strings.TrimSpace(input.Email); emailAddr != "" && emailAddr != user.Email {
		if err := validateEmail(emailAddr); err != nil {
			return domain.User{}, err
		}
		if err := s.ensureEmailFree(ctx, emailAddr); err != nil {
			return domain.User{}, err
		}
		user.Email = emailAddr
	}
	var uploaded string
	if input.Avatar != nil {
		url, err := putImage(ctx, s.images, "users", *input.Avatar)
		if err != nil {
			return domain.User{}, err
		}
		user.Avatar = url
		uploaded = url
	}
	user.UpdatedAt = s.now().UTC()

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		discardImage(ctx, s.logger, s.images, uploaded)
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return domain.User{}, ErrAlreadyRegistered
		case errors.Is(err, repository.ErrNotFound):
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *UserService) getUser(ctx context.Context, id string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// validateEmail acepta sólo una dirección desnuda, sin nombre ni ángulos.
func validateEmail(emailAddr string) error {
	addr, err := mail.ParseAddress(emailAddr)
	if err != nil || addr.Address != emailAddr {
		return fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	return nil
}

func (s *UserService) ensureEmailFree(ctx context.Context, emailAddr string) error {
	_, err := s.users.GetByEmail(ctx, emailAddr)
	switch {
	case err == nil:
		return ErrAlreadyRegistered
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return err
	}
}

func (s *UserService) send(ctx context.Context, to, subject, body string) error {
	if s.mailer == nil {
		return errors.New("email sender not configured")
	}
	return s.mailer.Send(ctx, to, subject, body)
}

func (s *UserService) authenticated(user domain.User) (AuthResult, error) {
	if s.sessions == nil {
		return AuthResult{}, errors.New("session tokens not configured")
	}
	token, err := s.sessions.IssueSessionToken(user.ID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue session token: %w", err)
	}
	return AuthResult{User: user, Token: token}, nil
}
