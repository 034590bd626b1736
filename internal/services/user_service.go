package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"chainbank-backend/internal/apperrors"
	"chainbank-backend/internal/auth"
	"chainbank-backend/internal/dto"
	"chainbank-backend/internal/events"
	"chainbank-backend/internal/metrics"
	"chainbank-backend/internal/models"
	"chainbank-backend/internal/repository"
)

// UserService implements registration, login and account administration on
// top of the user repository.
type UserService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	totpSecret string
	publisher  *events.Publisher
	logger     *logrus.Logger
}

// NewUserService wires the user service. publisher may be nil.
func NewUserService(
	users repository.UserRepository,
	tokens *auth.TokenManager,
	totpSecret string,
	publisher *events.Publisher,
	logger *logrus.Logger,
) *UserService {
	return &UserService{
		users:      users,
		tokens:     tokens,
		totpSecret: totpSecret,
		publisher:  publisher,
		logger:     logger,
	}
}

// Register creates a regular user account. The role is always "user"; admins
// are created through AdminCreateUser.
func (s *UserService) Register(ctx context.Context, req dto.RegisterRequest) (*models.User, error) {
	if err := s.checkUnique(ctx, req.Username, req.Email); err != nil {
		return nil, err
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to hash password", err)
	}

	username := req.Username
	user := &models.User{
		Username:       &username,
		Email:          req.Email,
		FullName:       req.FullName,
		HashedPassword: hashed,
		Role:           models.RoleUser,
		PublicAddress:  req.PublicAddress,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to create user", err)
	}

	metrics.UsersRegisteredTotal.Inc()
	s.publisher.Publish(events.SubjectUserRegistered, map[string]interface{}{
		"username":  username,
		"email":     req.Email,
		"timestamp": time.Now().Unix(),
	})
	s.logger.WithFields(logrus.Fields{
		"username": username,
		"email":    req.Email,
	}).Info("User registered")

	return user, nil
}

// Login verifies credentials and returns a signed access token. Admin
// accounts must also present a valid TOTP code when a shared secret is
// configured.
func (s *UserService) Login(ctx context.Context, email, password, totpCode string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			metrics.AuthFailuresTotal.WithLabelValues("bad_credentials").Inc()
			return "", apperrors.New(apperrors.Unauthorized, "Incorrect email or password")
		}
		return "", apperrors.Wrap(apperrors.Internal, "user lookup failed", err)
	}

	if !auth.VerifyPassword(password, user.HashedPassword) {
		metrics.AuthFailuresTotal.WithLabelValues("bad_credentials").Inc()
		return "", apperrors.New(apperrors.Unauthorized, "Incorrect email or password")
	}

	if user.Disabled {
		metrics.AuthFailuresTotal.WithLabelValues("disabled").Inc()
		return "", apperrors.New(apperrors.Forbidden, "Inactive user")
	}

	if user.Role == models.RoleAdmin && s.totpSecret != "" {
		if !auth.ValidateTOTP(s.totpSecret, totpCode) {
			metrics.AuthFailuresTotal.WithLabelValues("bad_totp").Inc()
			return "", apperrors.New(apperrors.Unauthorized, "Invalid TOTP code")
		}
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return "", apperrors.Wrap(apperrors.Internal, "failed to sign token", err)
	}
	return token, nil
}

// GetByEmail loads a user for the authentication middleware.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.New(apperrors.Unauthorized, "User not found")
		}
		return nil, apperrors.Wrap(apperrors.Internal, "user lookup failed", err)
	}
	return user, nil
}

// AdminCreateUser creates an account with an explicit role.
func (s *UserService) AdminCreateUser(ctx context.Context, req dto.AdminCreateUserRequest) (*models.User, error) {
	role := models.Role(req.Role)
	if req.Role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, apperrors.Newf(apperrors.Validation, "invalid role: %q", req.Role)
	}

	if err := s.checkUnique(ctx, req.Username, req.Email); err != nil {
		return nil, err
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to hash password", err)
	}

	username := req.Username
	user := &models.User{
		Username:       &username,
		Email:          req.Email,
		FullName:       req.FullName,
		HashedPassword: hashed,
		Role:           role,
		PublicAddress:  req.PublicAddress,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to create user", err)
	}

	s.logger.WithFields(logrus.Fields{
		"username": username,
		"role":     role,
	}).Info("User created by administrator")

	return user, nil
}

// ListUsers returns all accounts.
func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to list users", err)
	}
	return users, nil
}

// UpdateProfile applies the non-nil fields of req to the user's own account.
// Username and email changes are re-checked for uniqueness.
func (s *UserService) UpdateProfile(ctx context.Context, user *models.User, req dto.UpdateProfileRequest) (*models.User, error) {
	if req.Username != nil {
		current := ""
		if user.Username != nil {
			current = *user.Username
		}
		if *req.Username != current {
			if _, err := s.users.GetByUsername(ctx, *req.Username); err == nil {
				return nil, apperrors.New(apperrors.Conflict, "Username already exists")
			} else if !errors.Is(err, repository.ErrNotFound) {
				return nil, apperrors.Wrap(apperrors.Internal, "username lookup failed", err)
			}
		}
		user.Username = req.Username
	}

	if req.Email != nil && *req.Email != user.Email {
		if _, err := s.users.GetByEmail(ctx, *req.Email); err == nil {
			return nil, apperrors.New(apperrors.Conflict, "Email already registered")
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Wrap(apperrors.Internal, "email lookup failed", err)
		}
		user.Email = *req.Email
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.PublicAddress != nil {
		user.PublicAddress = *req.PublicAddress
	}
	if req.Password != nil {
		hashed, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.Internal, "failed to hash password", err)
		}
		user.HashedPassword = hashed
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to update user", err)
	}
	return user, nil
}

// DeleteAccount removes the user's own account.
func (s *UserService) DeleteAccount(ctx context.Context, userID uint) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.New(apperrors.NotFound, "User not found")
		}
		return apperrors.Wrap(apperrors.Internal, "failed to delete user", err)
	}
	return nil
}

// SetDisabled activates or deactivates an account by id.
func (s *UserService) SetDisabled(ctx context.Context, userID uint, disabled bool) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.New(apperrors.NotFound, "User not found")
		}
		return nil, apperrors.Wrap(apperrors.Internal, "user lookup failed", err)
	}

	if err := s.users.SetDisabled(ctx, userID, disabled); err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to update user status", err)
	}
	user.Disabled = disabled
	return user, nil
}

// checkUnique rejects usernames and emails that are already taken.
func (s *UserService) checkUnique(ctx context.Context, username, email string) error {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return apperrors.New(apperrors.Conflict, "Email already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return apperrors.Wrap(apperrors.Internal, "email lookup failed", err)
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return apperrors.New(apperrors.Conflict, "Username already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return apperrors.Wrap(apperrors.Internal, "username lookup failed", err)
	}
	return nil
}
