package interfaces

import (
	"context"

	"github.com/vladimiradmaev/health-helper/internal/database"
	"github.com/vladimiradmaev/health-helper/internal/services"
)

// UserServiceInterface defines the contract for user operations
type UserServiceInterface interface {
	RegisterUser(ctx context.Context, telegramID int64, username, firstName, lastName string) (*database.User, error)
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*database.User, error)
}

// SessionServiceInterface defines the contract for per-user health sessions
type SessionServiceInterface interface {
	Get(ctx context.Context, telegramID int64) (*services.Session, error)
}
