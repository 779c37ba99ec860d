package teacher

import "context"

// Repository stores teachers. Lookups return ErrNotFound for unknown ids; Create returns
// ErrDuplicateTelegramID when the chat account is already registered.
type Repository interface {
	Create(ctx context.Context, t *Teacher) error
	GetByID(ctx context.Context, id int64) (*Teacher, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*Teacher, error)
	// Update saves the name and the active flag.
	Update(ctx context.Context, t *Teacher) error
	// ListActive is ordered by name, ListAll by id.
	ListActive(ctx context.Context) ([]*Teacher, error)
	ListAll(ctx context.Context) ([]*Teacher, error)
}
