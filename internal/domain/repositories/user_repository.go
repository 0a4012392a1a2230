package repositories

import (
	"context"

	"github.com/google/uuid"

	"campus-market.backend/internal/domain/entities"
)

// UserRepository reads marketplace accounts
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	// GetByEmail resolves the platform account that collects fees.
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
}
