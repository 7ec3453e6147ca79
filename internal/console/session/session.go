package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/natefinch/atomic"
	log "github.com/sirupsen/logrus"
)

// Store хранит bearer-токен сессии в файле и отдаёт его транспорту.
// Явный объект вместо неявного глобального хранилища: teardown — это Clear.
type Store struct {
	mu     sync.RWMutex
	path   string
	token  string
	logger *log.Entry
}

// NewStore создаёт хранилище и подхватывает токен из файла, если он есть.
func NewStore(path string, logger *log.Entry) *Store {
	if logger == nil {
		logger = log.WithField("component", "session")
	}

	s := &Store{path: path, logger: logger}
	if data, err := os.ReadFile(path); err == nil {
		s.token = strings.TrimSpace(string(data))
	}
	return s
}

// Token возвращает текущий bearer-токен; пустая строка — сессии нет.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Authenticated сообщает, есть ли сохранённая сессия.
func (s *Store) Authenticated() bool {
	return s.Token() != ""
}

// Set сохраняет токен атомарной записью файла.
func (s *Store) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := atomic.WriteFile(s.path, strings.NewReader(token)); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	s.token = token
	return nil
}

// Clear снимает сессию: забывает токен и удаляет файл.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// ExpiresAt извлекает срок действия из JWT без проверки подписи.
// Подпись проверяет сервер; клиенту exp нужен только для подсказки
// "сессия истекла" до первого запроса.
func (s *Store) ExpiresAt() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
