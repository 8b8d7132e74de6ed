package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iho/debtledger/internal/domain"
)

// RegistrationUseCase creates pending accounts and activates them.
type RegistrationUseCase struct {
	txManager  TransactionManager
	retrier    Retrier
	userRepo   UserRepository
	currencies *CurrencyResolver
	softDelete *SoftDeleteCoordinator
	tokens     TokenIssuer
	mailer     Mailer
	idGen      IDGenerator
	metrics    LedgerMetrics
	baseURL    string
}

// RegistrationDeps groups the collaborators of RegistrationUseCase.
type RegistrationDeps struct {
	TxManager  TransactionManager
	Retrier    Retrier
	UserRepo   UserRepository
	Currencies *CurrencyResolver
	SoftDelete *SoftDeleteCoordinator
	Tokens     TokenIssuer
	Mailer     Mailer
	IDGen      IDGenerator
	Metrics    LedgerMetrics
	// BaseURL is the public origin used in activation links.
	BaseURL string
}

// NewRegistrationUseCase creates a new RegistrationUseCase.
func NewRegistrationUseCase(deps RegistrationDeps) *RegistrationUseCase {
	return &RegistrationUseCase{
		txManager:  deps.TxManager,
		retrier:    deps.Retrier,
		userRepo:   deps.UserRepo,
		currencies: deps.Currencies,
		softDelete: deps.SoftDelete,
		tokens:     deps.Tokens,
		mailer:     deps.Mailer,
		idGen:      deps.IDGen,
		metrics:    metricsOrNoop(deps.Metrics),
		baseURL:    strings.TrimRight(deps.BaseURL, "/"),
	}
}

// RegisterInput represents a registration form.
type RegisterInput struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
	Password1 string
	Password2 string
	Currency  string
}

const blankField = "This field may not be blank."

// Register stores an inactive user with its currency and mails the activation link.
func (uc *RegistrationUseCase) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	input.Currency = strings.TrimSpace(input.Currency)

	if err := uc.validate(ctx, input); err != nil {
		uc.metrics.ObserveRegistration(RegistrationRejected)
		return nil, err
	}

	hashed, err := HashPassword(input.Password1)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:             uc.idGen.Generate(),
		Username:       input.Username,
		Email:          input.Email,
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		HashedPassword: hashed,
		Active:         false,
		CreatedAt:      time.Now().UTC(),
	}

	err = uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		if err := uc.userRepo.Create(ctx, tx, user); err != nil {
			return err
		}

		if _, err := uc.currencies.AttachCurrency(ctx, tx, user.ID, input.Currency); err != nil {
			return err
		}

		return tx.Commit(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	}

	if err := uc.sendActivation(ctx, user); err != nil {
		return nil, err
	}

	uc.metrics.ObserveRegistration(RegistrationCreated)
	log.Ctx(ctx).Info().Str("user_id", user.ID).Msg("user registered")

	return user.Public(), nil
}

// Activate confirms a pending account and removes stale duplicate registrations.
func (uc *RegistrationUseCase) Activate(ctx context.Context, uid, token string) error {
	userID, err := uc.tokens.VerifyActivationToken(token)
	if err != nil || userID != uid {
		return domain.ErrInvalidActivation
	}

	pending, err := uc.userRepo.GetByID(ctx, uid)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.ErrInvalidActivation
	}
	if err != nil {
		return err
	}
	if pending.Active {
		return domain.ErrInvalidActivation
	}

	// A concurrent registration with the same identity may have been confirmed first.
	if taken, err := uc.identityTaken(ctx, pending); err != nil {
		return err
	} else if taken {
		return domain.ErrInvalidActivation
	}

	err = uc.retrier.Retry(ctx, func() error {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		user, err := uc.userRepo.GetByIDForUpdate(ctx, tx, uid)
		if err != nil {
			return err
		}
		if user.Active {
			return domain.ErrInvalidActivation
		}

		if err := uc.userRepo.Activate(ctx, tx, user.ID); err != nil {
			return err
		}

		currencyIDs, err := uc.userRepo.DeleteInactiveDuplicates(ctx, tx, user)
		if err != nil {
			return err
		}

		for _, id := range currencyIDs {
			if _, err := uc.softDelete.DeactivateCurrencyIfOrphaned(ctx, tx, id); err != nil {
				return err
			}
		}

		return tx.Commit(ctx)
	})
	if errors.Is(err, domain.ErrInvalidActivation) || errors.Is(err, domain.ErrUserNotFound) {
		return domain.ErrInvalidActivation
	}
	if err != nil {
		return fmt.Errorf("activate user: %w", err)
	}

	uc.metrics.ObserveRegistration(RegistrationActivated)
	log.Ctx(ctx).Info().Str("user_id", uid).Msg("user activated")

	return nil
}

// ActivationLink builds the link mailed to a pending user.
func (uc *RegistrationUseCase) ActivationLink(uid, token string) string {
	return fmt.Sprintf("%s/api/v1/register/activate/%s/%s/", uc.baseURL, url.PathEscape(uid), url.PathEscape(token))
}

func (uc *RegistrationUseCase) sendActivation(ctx context.Context, user *domain.User) error {
	token, err := uc.tokens.GenerateActivationToken(user.ID)
	if err != nil {
		return fmt.Errorf("activation token: %w", err)
	}

	msg := ActivationMessage{
		Username: user.Username,
		Email:    user.Email,
		Link:     uc.ActivationLink(user.ID, token),
	}
	if err := uc.mailer.SendActivation(ctx, msg); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("user_id", user.ID).Msg("activation mail not sent")
		return fmt.Errorf("send activation mail: %w", err)
	}

	return nil
}

// validate reports field errors first. Password checks only run on an otherwise valid form.
func (uc *RegistrationUseCase) validate(ctx context.Context, input RegisterInput) error {
	v := &domain.ValidationError{}

	switch {
	case input.Username == "":
		v.Add("username", blankField)
	case len([]rune(input.Username)) > domain.MaxUsernameLength:
		v.Add("username", fmt.Sprintf("Ensure this field has no more than %d characters.", domain.MaxUsernameLength))
	default:
		taken, err := uc.userRepo.ActiveUsernameTaken(ctx, input.Username)
		if err != nil {
			return err
		}
		if taken {
			v.Add("username", "user with this username already exists.")
		}
	}

	switch {
	case input.Email == "":
		v.Add("email", blankField)
	case !domain.ValidateEmail(input.Email):
		v.Add("email", "Enter a valid email address.")
	default:
		taken, err := uc.userRepo.ActiveEmailTaken(ctx, input.Email)
		if err != nil {
			return err
		}
		if taken {
			v.Add("email", "user with this email already exists.")
		}
	}

	switch {
	case input.Currency == "":
		v.Add("currency", blankField)
	case len([]rune(input.Currency)) > domain.MaxCurrencyNameLength:
		v.Add("currency", fmt.Sprintf("Ensure this field has no more than %d characters.", domain.MaxCurrencyNameLength))
	}

	if input.Password1 == "" {
		v.Add("password1", blankField)
	}
	if input.Password2 == "" {
		v.Add("password2", blankField)
	}

	if !v.Empty() {
		return v
	}

	if input.Password1 != input.Password2 {
		return domain.NewValidationError(domain.NonFieldErrors, "Passwords do not match")
	}

	if problems := domain.PasswordProblems(input.Password1); len(problems) > 0 {
		return domain.NewValidationError(domain.NonFieldErrors, domain.PasswordError(problems))
	}

	return nil
}

func (uc *RegistrationUseCase) identityTaken(ctx context.Context, user *domain.User) (bool, error) {
	taken, err := uc.userRepo.ActiveUsernameTaken(ctx, user.Username)
	if err != nil || taken {
		return taken, err
	}
	return uc.userRepo.ActiveEmailTaken(ctx, user.Email)
}
