package accounts

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/wenyfour/rideshare/internal/auth"
	"github.com/wenyfour/rideshare/internal/domain"
	"github.com/wenyfour/rideshare/internal/kafka"
	"github.com/wenyfour/rideshare/internal/repository"
)

type AccountUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	UpdateProfile(ctx context.Context, input UpdateProfileInput, userID string) error
	SetPicture(ctx context.Context, userID, url string) error
	VerifyEmail(ctx context.Context, userID, token string) error
	ResetPassword(ctx context.Context, userID, oldPassword, newPassword string) error
	ForgotPassword(ctx context.Context, email string) error
	ValidateResetLink(ctx context.Context, userID, token string) (string, error)
	ForgotPasswordReset(ctx context.Context, email, newPassword string) error
	ContactUs(ctx context.Context, input ContactInput) error
	Support(ctx context.Context, input SupportInput) error
	Delete(ctx context.Context, userID string) error
}

// TokenIssuer issues and validates the signed tokens used both for
// sessions and for the links embedded in verification and reset mail.
type TokenIssuer interface {
	Generate(userID, email, name string) (string, error)
	Parse(token string) (*auth.AppClaims, error)
}

// Mailer delivers staff mail for contact and support intake. Failures
// are logged, never surfaced to the submitting user.
type Mailer interface {
	SendRaw(to, subject, body string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type RegisterInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	NIN         string `json:"nin"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	About       string `json:"about,omitempty"`
	Password    string `json:"password"`
}

type UpdateProfileInput struct {
	Name        string `json:"name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	DateOfBirth string `json:"date_of_birth,omitempty"`
	About       string `json:"about,omitempty"`
}

type ContactInput struct {
	FullName string `json:"fullname"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Message  string `json:"message"`
}

type SupportInput struct {
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Session is the outcome of a successful login.
type Session struct {
	AccessToken string
	TokenType   string
	User        *domain.User
}

type AccountService struct {
	users              repository.UserRepository
	intake             repository.IntakeRepository
	tokens             TokenIssuer
	mailer             Mailer
	producer           Producer
	logger             *slog.Logger
	notificationsTopic string
	staffAddr          string
	now                func() time.Time
}

type AccountServiceOption func(*AccountService)

func WithNotificationsTopic(topic string) AccountServiceOption {
	return func(s *AccountService) {
		s.notificationsTopic = topic
	}
}

func WithStaffAddr(addr string) AccountServiceOption {
	return func(s *AccountService) {
		s.staffAddr = addr
	}
}

func NewAccountService(
	users repository.UserRepository,
	intake repository.IntakeRepository,
	tokens TokenIssuer,
	mailer Mailer,
	producer Producer,
	logger *slog.Logger,
	opts ...AccountServiceOption,
) *AccountService {
	service := &AccountService{
		users:    users,
		intake:   intake,
		tokens:   tokens,
		mailer:   mailer,
		producer: producer,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if input.Email == "" || input.Password == "" {
		return nil, errors.New("email and password are required")
	}

	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Email:        input.Email,
		Phone:        input.Phone,
		NIN:          input.NIN,
		About:        input.About,
		PasswordHash: string(hash),
	}
	if input.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", input.DateOfBirth)
		if err != nil {
			return nil, errors.New("invalid date_of_birth")
		}
		user.DateOfBirth = &dob
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(user.ID, user.Email, user.Name)
	if err != nil {
		s.logger.Error("failed to mint verification token", "user_id", user.ID, "error", err)
		return user, nil
	}
	s.notify(ctx, kafka.NotificationEvent{
		Kind:      kafka.KindAccountCreated,
		Recipient: user.Email,
		Payload:   map[string]string{"name": user.Name, "user_id": user.ID, "token": token},
		At:        s.now(),
	}, user.ID)
	return user, nil
}

func (s *AccountService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: token, TokenType: "bearer", User: user}, nil
}

func (s *AccountService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *AccountService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

func (s *AccountService) UpdateProfile(ctx context.Context, input UpdateProfileInput, userID string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	if input.Phone != "" {
		user.Phone = input.Phone
	}
	if input.About != "" {
		user.About = input.About
	}
	if input.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", input.DateOfBirth)
		if err != nil {
			return errors.New("invalid date_of_birth")
		}
		user.DateOfBirth = &dob
	}

	return s.users.UpdateProfile(ctx, user)
}

// SetPicture stores the profile picture URL. The image itself lives
// wherever the client uploaded it; only the reference is kept.
func (s *AccountService) SetPicture(ctx context.Context, userID, url string) error {
	if url == "" {
		return errors.New("picture url is required")
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}
	return s.users.SetPicture(ctx, userID, url)
}

// VerifyEmail flips the account active once the mailed token checks
// out against the account's email.
func (s *AccountService) VerifyEmail(ctx context.Context, userID, token string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	claims, err := s.tokens.Parse(token)
	if err != nil || claims.Email != user.Email {
		return domain.ErrInvalidCredentials
	}

	return s.users.SetActive(ctx, userID)
}

func (s *AccountService) ResetPassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.SetPassword(ctx, userID, string(hash))
}

func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := s.tokens.Generate(user.ID, user.Email, user.Name)
	if err != nil {
		return err
	}
	s.notify(ctx, kafka.NotificationEvent{
		Kind:      kafka.KindPasswordReset,
		Recipient: user.Email,
		Payload:   map[string]string{"name": user.Name, "user_id": user.ID, "token": token},
		At:        s.now(),
	}, user.ID)
	return nil
}

// ValidateResetLink checks a mailed reset token against the account it
// was issued for and returns the account email for the reset form.
func (s *AccountService) ValidateResetLink(ctx context.Context, userID, token string) (string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	claims, err := s.tokens.Parse(token)
	if err != nil || claims.UserID != user.ID {
		return "", domain.ErrInvalidCredentials
	}
	return user.Email, nil
}

func (s *AccountService) ForgotPasswordReset(ctx context.Context, email, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.SetPasswordByEmail(ctx, email, string(hash))
}

func (s *AccountService) ContactUs(ctx context.Context, input ContactInput) error {
	msg := &domain.ContactMessage{
		ID:       uuid.NewString(),
		FullName: input.FullName,
		Phone:    input.Phone,
		Email:    input.Email,
		Message:  input.Message,
	}
	if err := s.intake.CreateContact(ctx, msg); err != nil {
		return err
	}

	s.forwardToStaff("Contact us from "+input.FullName, input.Message)
	return nil
}

func (s *AccountService) Support(ctx context.Context, input SupportInput) error {
	req := &domain.SupportRequest{
		ID:      uuid.NewString(),
		Email:   input.Email,
		Subject: input.Subject,
		Body:    input.Body,
	}
	if err := s.intake.CreateSupport(ctx, req); err != nil {
		return err
	}

	s.forwardToStaff(input.Subject, input.Body)
	return nil
}

func (s *AccountService) Delete(ctx context.Context, userID string) error {
	return s.users.Delete(ctx, userID)
}

func (s *AccountService) forwardToStaff(subject, body string) {
	if s.mailer == nil || s.staffAddr == "" {
		return
	}
	if err := s.mailer.SendRaw(s.staffAddr, subject, body); err != nil {
		s.logger.Warn("failed to forward mail to staff", "subject", subject, "error", err)
	}
}

func (s *AccountService) notify(ctx context.Context, event kafka.NotificationEvent, key string) {
	if s.producer == nil || s.notificationsTopic == "" {
		return
	}
	if err := s.producer.Publish(ctx, s.notificationsTopic, key, event); err != nil {
		s.logger.Warn("failed to publish notification", "kind", event.Kind, "error", err)
	}
}

var _ AccountUseCase = (*AccountService)(nil)
