package memory

import (
	"sort"
	"strings"
	"sync"

	"github.com/vladislavdragonenkov/salesconsole/internal/domain"
)

type userRecord struct {
	user domain.User
	hash []byte
}

// userRepositoryInMemory — in-memory реализация UserRepository.
type userRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]userRecord
}

// NewUserRepository возвращает in-memory хранилище сотрудников.
func NewUserRepository() domain.UserRepository {
	return &userRepositoryInMemory{
		items: make(map[string]userRecord),
	}
}

// Create сохраняет пользователя; email уникален без учёта регистра.
func (r *userRepositoryInMemory) Create(user domain.User, passwordHash []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rec := range r.items {
		if strings.EqualFold(rec.user.Email, user.Email) {
			return domain.ErrEmailTaken
		}
	}

	hash := make([]byte, len(passwordHash))
	copy(hash, passwordHash)
	r.items[user.ID] = userRecord{user: user, hash: hash}
	return nil
}

// Get возвращает пользователя по идентификатору.
func (r *userRepositoryInMemory) Get(id string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.items[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return rec.user, nil
}

// GetByEmail возвращает пользователя и хэш пароля для проверки входа.
func (r *userRepositoryInMemory) GetByEmail(email string) (domain.User, []byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.items {
		if strings.EqualFold(rec.user.Email, email) {
			hash := make([]byte, len(rec.hash))
			copy(hash, rec.hash)
			return rec.user, hash, nil
		}
	}
	return domain.User{}, nil, domain.ErrUserNotFound
}

// List возвращает пользователей, отсортированных по имени.
func (r *userRepositoryInMemory) List() ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]domain.User, 0, len(r.items))
	for _, rec := range r.items {
		users = append(users, rec.user)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Name != users[j].Name {
			return users[i].Name < users[j].Name
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

var _ domain.UserRepository = (*userRepositoryInMemory)(nil)
