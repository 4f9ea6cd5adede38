package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"window-measure/internal/domain/entity"
	"window-measure/internal/domain/port"
)

// MemoryUserRepository in-memory хранилище пользователей.
// Наружу отдаются копии, изменения попадают в хранилище только через Save и Update*.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[int64]entity.User
}

// NewMemoryUserRepository создаёт новое in-memory хранилище
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[int64]entity.User),
	}
}

// Get возвращает пользователя по ID, создаёт нового если не найден
func (r *MemoryUserRepository) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	r.mu.RLock()
	user, exists := r.users[userID]
	r.mu.RUnlock()
	if exists {
		return cloneUser(user), nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// пока ждали блокировку, пользователя мог создать другой запрос
	if user, exists = r.users[userID]; !exists {
		user = *entity.NewUser(userID, chatID)
		r.users[userID] = user
	}
	return cloneUser(user), nil
}

// Save сохраняет состояние пользователя
func (r *MemoryUserRepository) Save(ctx context.Context, user *entity.User) error {
	if user == nil {
		return errors.New("save: nil user")
	}
	r.mu.Lock()
	r.users[user.ID] = *cloneUser(*user)
	r.mu.Unlock()

	return nil
}

// UpdateState обновляет состояние пользователя
func (r *MemoryUserRepository) UpdateState(ctx context.Context, userID int64, state entity.UserState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, exists := r.users[userID]; exists {
		user.SetState(state)
		r.users[userID] = user
	}

	return nil
}

// UpdateMarker сохраняет личные настройки маркера пользователя
func (r *MemoryUserRepository) UpdateMarker(ctx context.Context, userID int64, marker entity.MarkerConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.users[userID]
	if !exists {
		return fmt.Errorf("user %d not found", userID)
	}
	user.Marker = &marker
	r.users[userID] = user

	return nil
}

func cloneUser(u entity.User) *entity.User {
	if u.Marker != nil {
		m := *u.Marker
		u.Marker = &m
	}
	return &u
}

// Проверка реализации интерфейса
var _ port.UserRepository = (*MemoryUserRepository)(nil)
