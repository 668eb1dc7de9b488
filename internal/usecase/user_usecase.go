package usecase

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sanad-org/sanad/internal/domain"
)

// UserUseCase handles administrative user management. Permission gating
// happens at the HTTP boundary; these operations assume the caller was
// already cleared for the users resource.
type UserUseCase struct {
	userRepo UserRepository
	idGen    IDGenerator
}

// NewUserUseCase creates a new user use case.
func NewUserUseCase(userRepo UserRepository, idGen IDGenerator) *UserUseCase {
	return &UserUseCase{
		userRepo: userRepo,
		idGen:    idGen,
	}
}

// CreateUserInput represents input for creating a user.
type CreateUserInput struct {
	Username   string
	Email      string
	Password   string
	FullName   string
	Phone      string
	Role       domain.Role
	Department string
	Position   string
}

// CreateUser creates a new active user with a hashed password. Username
// and email must be unique across all identities.
func (uc *UserUseCase) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	if err := domain.ValidateUsername(input.Username); err != nil {
		return nil, err
	}
	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	if err := domain.ValidateFullName(input.FullName); err != nil {
		return nil, err
	}
	if !input.Role.IsValid() {
		return nil, domain.ErrUnknownRole
	}

	if existing, err := uc.userRepo.GetByUsername(ctx, input.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, domain.ErrUsernameTaken
	}

	if existing, err := uc.userRepo.GetByEmail(ctx, input.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uc.idGen.Generate(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		FullName:     input.FullName,
		Phone:        input.Phone,
		Role:         input.Role,
		Status:       domain.StatusActive,
		Department:   input.Department,
		Position:     input.Position,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	// Don't return the hash
	user.PasswordHash = ""
	return user, nil
}

// GetUser retrieves a user by ID.
func (uc *UserUseCase) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

// UpdateUserInput represents a partial update of a user.
type UpdateUserInput struct {
	ID         string
	FullName   *string
	Phone      *string
	Role       *domain.Role
	Status     *domain.Status
	Department *string
	Position   *string
	Password   *string
}

// UpdateUser applies a partial update. Changing the password or status
// does not revoke existing sessions; they run until logout or expiry.
func (uc *UserUseCase) UpdateUser(ctx context.Context, input UpdateUserInput) (*domain.User, error) {
	user, err := uc.userRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		if err := domain.ValidateFullName(*input.FullName); err != nil {
			return nil, err
		}
		user.FullName = *input.FullName
	}

	if input.Phone != nil {
		user.Phone = *input.Phone
	}

	if input.Role != nil {
		if !input.Role.IsValid() {
			return nil, domain.ErrUnknownRole
		}
		user.Role = *input.Role
	}

	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, domain.ErrUnknownStatus
		}
		user.Status = *input.Status
	}

	if input.Department != nil {
		user.Department = *input.Department
	}

	if input.Position != nil {
		user.Position = *input.Position
	}

	if input.Password != nil {
		if err := domain.ValidatePassword(*input.Password); err != nil {
			return nil, err
		}
		hash, err := hashPassword(*input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	user.UpdatedAt = time.Now().UTC()

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

// DeactivateUser transitions a user to inactive. Accounts are never hard
// deleted; deactivation is the normal retirement path.
func (uc *UserUseCase) DeactivateUser(ctx context.Context, id string) (*domain.User, error) {
	status := domain.StatusInactive
	return uc.UpdateUser(ctx, UpdateUserInput{ID: id, Status: &status})
}

// ListUsers lists all users with pagination.
func (uc *UserUseCase) ListUsers(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	limit, offset, _ = domain.ValidatePagination(limit, offset)

	users, err := uc.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	// Remove password hashes
	for _, user := range users {
		user.PasswordHash = ""
	}

	return users, nil
}

// hashPassword hashes a password using bcrypt.
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
