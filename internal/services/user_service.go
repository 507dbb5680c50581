package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/vladimiradmaev/health-helper/internal/database"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// RegisterUser creates the user on first contact and refreshes profile names afterwards.
func (s *UserService) RegisterUser(ctx context.Context, telegramID int64, username, firstName, lastName string) (*database.User, error) {
	user := &database.User{}
	result := s.db.WithContext(ctx).
		Where(database.User{TelegramID: telegramID}).
		Assign(database.User{Username: username, FirstName: firstName, LastName: lastName}).
		FirstOrCreate(user)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to register user: %w", result.Error)
	}
	return user, nil
}

func (s *UserService) GetUserByTelegramID(ctx context.Context, telegramID int64) (*database.User, error) {
	var user database.User
	if err := s.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}
