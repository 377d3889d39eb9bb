// Package memory provides in-process implementations of the repository
// contracts. They back the handler and service tests and honor the same
// ordering, ownership and uniqueness rules as the PostgreSQL stores.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mindlog/mindlog/internal/model"
	"github.com/mindlog/mindlog/internal/repository"
)

// Users is an in-memory user store.
type Users struct {
	mu    sync.RWMutex
	users map[string]*model.User // by id
}

// NewUsers creates an empty user store.
func NewUsers() *Users {
	return &Users{users: make(map[string]*model.User)}
}

func (u *Users) CreateUser(_ context.Context, user *model.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	for _, existing := range u.users {
		if existing.Username == user.Username {
			return repository.ErrUsernameExists
		}
		if user.Email != "" && existing.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	cp := *user
	u.users[user.ID] = &cp
	return nil
}

func (u *Users) GetUserByID(_ context.Context, id string) (*model.User, error) {
	return u.find(func(x *model.User) bool { return x.ID == id })
}

func (u *Users) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	return u.find(func(x *model.User) bool { return x.Username == username })
}

func (u *Users) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	if email == "" {
		return nil, repository.ErrUserNotFound
	}
	return u.find(func(x *model.User) bool { return x.Email == email })
}

func (u *Users) find(match func(*model.User) bool) (*model.User, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	for _, x := range u.users {
		if match(x) {
			cp := *x
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// Records is an in-memory append-only store for one record kind.
type Records[T model.Record] struct {
	mu      sync.RWMutex
	records []T
	appends int
}

// NewRecords creates an empty record store.
func NewRecords[T model.Record]() *Records[T] {
	return &Records[T]{}
}

func (r *Records[T]) Append(_ context.Context, rec T) error {
	r.mu.Lock()
	r.records = append(r.records, rec)
	r.appends++
	r.mu.Unlock()
	return nil
}

// ListRecent returns at most limit records of userID, newest first.
func (r *Records[T]) ListRecent(_ context.Context, userID string, limit int) ([]T, error) {
	out := r.owned(userID)
	// Later appends win ties, like ordering by id in SQL.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp().After(out[j].Timestamp())
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListAll returns every record of userID, oldest first.
func (r *Records[T]) ListAll(_ context.Context, userID string) ([]T, error) {
	out := r.owned(userID)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp().Before(out[j].Timestamp())
	})
	return out, nil
}

// Appends reports how many records were ever stored.
func (r *Records[T]) Appends() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.appends
}

func (r *Records[T]) owned(userID string) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []T{}
	for _, rec := range r.records {
		if rec.Owner() == userID {
			out = append(out, rec)
		}
	}
	return out
}
