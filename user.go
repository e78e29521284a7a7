package gate

import "log/slog"

// A User is the record the auth server reports for a verified token.
//
// A User is never persisted by gate; each verification builds a new one.
type User struct {
	TelegramID int64  `json:"telegram_id"`
	Username   string `json:"username"`
	IsPremium  bool   `json:"is_premium"`
}

// GetID returns the auth server's identifier for the User.
func (u User) GetID() int64 { return u.TelegramID }

// GetUsername returns the User's handle.
func (u User) GetUsername() string { return u.Username }

// LogValue implements [log/slog.LogValuer].
func (u User) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("id", u.TelegramID),
		slog.String("username", u.Username),
	)
}
