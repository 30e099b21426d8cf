package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"unitex/internal/domain"
	"unitex/internal/repository"
)

// TokenIssuer firma la credencial de sesion. Lo implementa JWTService.
type TokenIssuer interface {
	Issue(user domain.User) (string, error)
}

// UserService coordina signup, login y los datos propios de cada identidad.
type UserService struct {
	logger      *zap.Logger
	store       repository.Store
	ledger      *XPLedger
	tokens      TokenIssuer
	leaderboard LeaderboardCache
}

func NewUserService(logger *zap.Logger, store repository.Store, ledger *XPLedger, tokens TokenIssuer, leaderboard LeaderboardCache) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if leaderboard == nil {
		leaderboard = NewNoopLeaderboardCache()
	}
	return &UserService{
		logger:      logger,
		store:       store,
		ledger:      ledger,
		tokens:      tokens,
		leaderboard: leaderboard,
	}
}

type SignupInput struct {
	Email        string
	Password     string
	Name         string
	ReferralCode string
}

// AuthResult es la respuesta de signup y login. XPAwarded solo se informa en login.
type AuthResult struct {
	Token     string
	User      domain.User
	XPAwarded int
}

// Profile es la vista publica de una identidad.
type Profile struct {
	domain.User
	ConnectionCount int `json:"connectionCount"`
}

// Signup crea la identidad con su bono de bienvenida, el de referido si corresponde
// y la configuracion por defecto. Todo ocurre en una unica transaccion.
func (s *UserService) Signup(ctx context.Context, input SignupInput) (AuthResult, error) {
	if s == nil || s.store == nil || s.ledger == nil || s.tokens == nil {
		return AuthResult{}, ErrServiceNotConfigured
	}

	emailAddr := normalizeEmail(input.Email)
	if emailAddr == "" || !strings.Contains(emailAddr, "@") {
		return AuthResult{}, ErrInvalidEmail
	}
	// la contrasena se hashea tal cual; solo se rechaza si es puro espacio
	if strings.TrimSpace(input.Password) == "" {
		return AuthResult{}, ErrPasswordRequired
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return AuthResult{}, ErrNameRequired
	}
	code := strings.ToUpper(strings.TrimSpace(input.ReferralCode))

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResult{}, err
	}
	handle, err := generateHandle()
	if err != nil {
		return AuthResult{}, err
	}
	referralCode, err := generateReferralCode()
	if err != nil {
		return AuthResult{}, err
	}

	var (
		result AuthResult
		grants []domain.XPGrant
	)
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		exists, err := tx.Users().EmailExists(ctx, emailAddr)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if exists {
			return ErrEmailTaken
		}

		var referrerID *int64
		if code != "" {
			referrer, err := tx.Users().GetByReferralCode(ctx, code)
			switch {
			case err == nil:
				referrerID = &referrer.ID
			case !repository.IsNotFound(err):
				return fmt.Errorf("resolve referral code: %w", err)
			}
		}

		user, err := tx.Users().Create(ctx, domain.User{
			Email:        emailAddr,
			Name:         name,
			Handle:       handle,
			PasswordHash: string(hashBytes),
			ReferralCode: referralCode,
			ReferredBy:   referrerID,
		})
		if err != nil {
			if repository.IsConflictOn(err, repository.ConstraintUsersEmail) {
				return ErrEmailTaken
			}
			return fmt.Errorf("create user: %w", err)
		}

		pending := []domain.XPGrant{{UserID: user.ID, Amount: domain.XPSignupWelcome, Reason: domain.ReasonSignupWelcome}}
		if referrerID != nil {
			pending = append(pending,
				domain.XPGrant{UserID: user.ID, Amount: domain.XPReferralReferee, Reason: domain.ReasonReferralReferee},
				domain.XPGrant{UserID: *referrerID, Amount: domain.XPReferralReferrer, Reason: domain.ReasonReferralReferrer},
			)
		}
		for _, g := range pending {
			balance, err := s.ledger.grantTx(ctx, tx, g.UserID, g.Amount, g.Reason)
			if err != nil {
				return err
			}
			if g.UserID == user.ID {
				user.XP = balance
			}
		}

		if err := tx.Settings().Create(ctx, domain.DefaultSettings(user.ID)); err != nil {
			return fmt.Errorf("create settings: %w", err)
		}

		token, err := s.tokens.Issue(user)
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}
		result = AuthResult{Token: token, User: user}
		grants = pending
		return nil
	})
	if err != nil {
		return AuthResult{}, err
	}

	s.ledger.observe(grants...)
	if result.User.ReferredBy != nil {
		s.leaderboard.Invalidate(ctx)
	}
	s.logger.Info("user signed up",
		zap.Int64("user_id", result.User.ID),
		zap.Bool("referred", result.User.ReferredBy != nil),
	)
	return result, nil
}

// Login valida la contrasena y acredita el bono diario en el primer login del dia UTC.
func (s *UserService) Login(ctx context.Context, emailAddr, password string) (AuthResult, error) {
	if s == nil || s.store == nil || s.ledger == nil || s.tokens == nil {
		return AuthResult{}, ErrServiceNotConfigured
	}

	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || strings.TrimSpace(password) == "" {
		return AuthResult{}, ErrInvalidCredentials
	}
	user, err := s.store.Users().GetByEmail(ctx, emailAddr)
	if err != nil {
		if repository.IsNotFound(err) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}
	if user.PasswordHash == "" {
		return AuthResult{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return AuthResult{}, ErrInvalidCredentials
	}

	balance, awarded, err := s.ledger.GrantDailyLogin(ctx, user.ID)
	if err != nil {
		return AuthResult{}, err
	}
	user.XP = balance

	token, err := s.tokens.Issue(user)
	if err != nil {
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}
	return AuthResult{Token: token, User: user, XPAwarded: awarded}, nil
}

func (s *UserService) Me(ctx context.Context, userID int64) (domain.User, error) {
	if s == nil || s.store == nil {
		return domain.User{}, ErrServiceNotConfigured
	}
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// Profile busca por id o handle e incluye la cantidad de conexiones aceptadas.
func (s *UserService) Profile(ctx context.Context, ref string) (Profile, error) {
	if s == nil || s.store == nil {
		return Profile{}, ErrServiceNotConfigured
	}
	user, err := resolveUser(ctx, s.store.Users(), ref)
	if err != nil {
		return Profile{}, err
	}
	count, err := s.store.Friendships().CountAccepted(ctx, user.ID)
	if err != nil {
		return Profile{}, fmt.Errorf("count connections: %w", err)
	}
	return Profile{User: user, ConnectionCount: count}, nil
}

// UpdateHandle cambia el handle; minimo 3 caracteres y unico.
func (s *UserService) UpdateHandle(ctx context.Context, userID int64, handle string) (string, error) {
	if s == nil || s.store == nil {
		return "", ErrServiceNotConfigured
	}
	handle = strings.TrimSpace(handle)
	if len(handle) < 3 {
		return "", ErrHandleInvalid
	}
	if err := s.store.Users().UpdateHandle(ctx, userID, handle); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return "", ErrHandleTaken
		case repository.IsNotFound(err):
			return "", ErrUserNotFound
		}
		return "", err
	}
	return handle, nil
}

// ProfileInput trae los campos editables del perfil; nil deja el valor actual.
type ProfileInput struct {
	Name        *string
	Bio         *string
	AvatarURL   *string
	Skills      *[]string
	GithubURL   *string
	LinkedinURL *string
	TwitterURL  *string
}

// UpdateProfile aplica solo los campos presentes y devuelve el usuario actualizado.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, input ProfileInput) (domain.User, error) {
	if s == nil || s.store == nil {
		return domain.User{}, ErrServiceNotConfigured
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return domain.User{}, ErrNameRequired
		}
		input.Name = &name
	}
	user, err := s.store.Users().UpdateProfile(ctx, userID, domain.ProfilePatch{
		Name:        input.Name,
		Bio:         input.Bio,
		AvatarURL:   input.AvatarURL,
		Skills:      input.Skills,
		GithubURL:   input.GithubURL,
		LinkedinURL: input.LinkedinURL,
		TwitterURL:  input.TwitterURL,
	})
	if err != nil {
		if repository.IsNotFound(err) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// GetSettings devuelve la configuracion, creando la de defecto si falta.
func (s *UserService) GetSettings(ctx context.Context, userID int64) (domain.Settings, error) {
	if s == nil || s.store == nil {
		return domain.Settings{}, ErrServiceNotConfigured
	}
	settings, err := s.store.Settings().Get(ctx, userID)
	if err == nil {
		return settings, nil
	}
	if !repository.IsNotFound(err) {
		return domain.Settings{}, err
	}
	if err := s.store.Settings().Create(ctx, domain.DefaultSettings(userID)); err != nil {
		return domain.Settings{}, fmt.Errorf("create settings: %w", err)
	}
	return s.store.Settings().Get(ctx, userID)
}

type SettingsInput struct {
	ProfileVisibility     *string
	NotificationIntensity *string
}

// UpdateSettings aplica solo los campos presentes.
func (s *UserService) UpdateSettings(ctx context.Context, userID int64, input SettingsInput) (domain.Settings, error) {
	if s == nil || s.store == nil {
		return domain.Settings{}, ErrServiceNotConfigured
	}
	if input.ProfileVisibility != nil && !domain.ValidVisibility(*input.ProfileVisibility) {
		return domain.Settings{}, ErrInvalidSettings
	}
	if input.NotificationIntensity != nil && !domain.ValidNotificationIntensity(*input.NotificationIntensity) {
		return domain.Settings{}, ErrInvalidSettings
	}
	if _, err := s.GetSettings(ctx, userID); err != nil {
		return domain.Settings{}, err
	}
	return s.store.Settings().Update(ctx, userID, input.ProfileVisibility, input.NotificationIntensity)
}
