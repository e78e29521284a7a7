package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/xy-planning-network/gate"
	"gorm.io/gorm"
)

// User is a row in the users table.
type User struct {
	TelegramID int64 `gorm:"primaryKey"`
	Username   string
	IsPremium  bool
}

// TableName pins the table GORM reads User from.
func (User) TableName() string { return "users" }

// ToGate converts the row into the record handed back to verified clients.
func (u User) ToGate() *gate.User {
	return &gate.User{TelegramID: u.TelegramID, Username: u.Username, IsPremium: u.IsPremium}
}

// UserStore reads users through GORM.
type UserStore struct {
	db *gorm.DB
}

// NewUserStore constructs a UserStore from a *gorm.DB.
func NewUserStore(db *gorm.DB) *UserStore { return &UserStore{db: db} }

// FindUser fetches the user with the Telegram ID.
//
// If there is no such user, FindUser returns gate.ErrNotExist.
func (s *UserStore) FindUser(ctx context.Context, telegramID int64) (*gate.User, error) {
	var u User
	err := s.db.WithContext(ctx).Where("telegram_id = ?", telegramID).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user %d", gate.ErrNotExist, telegramID)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %s", gate.ErrUnexpected, err)
	}

	return u.ToGate(), nil
}
