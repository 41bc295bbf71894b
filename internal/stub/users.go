package stub

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	errUserExists         = errors.New("user with email exists")
	errInvalidCredentials = errors.New("invalid credentials")
)

type user struct {
	ID    string `json:"id"`
	Name  string `json:"full_name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	hash  []byte
}

// userStore keeps accounts in memory, keyed by lower-cased email.
type userStore struct {
	mu    sync.RWMutex
	byKey map[string]*user
	cost  int
}

func newUserStore(cost int) *userStore {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &userStore{byKey: make(map[string]*user), cost: cost}
}

func (s *userStore) create(name, email, password, role string) (*user, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("stub.create: %w", err)
	}
	key := strings.ToLower(strings.TrimSpace(email))

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byKey[key]; ok {
		return nil, errUserExists
	}
	u := &user{
		ID:    uuid.NewString(),
		Name:  name,
		Email: email,
		Role:  role,
		hash:  hash,
	}
	s.byKey[key] = u
	return u, nil
}

func (s *userStore) authenticate(email, password string) (*user, error) {
	s.mu.RLock()
	u, ok := s.byKey[strings.ToLower(strings.TrimSpace(email))]
	s.mu.RUnlock()
	if !ok {
		return nil, errInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(u.hash, []byte(password)) != nil {
		return nil, errInvalidCredentials
	}
	return u, nil
}

func (s *userStore) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byKey)
}
