package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dishaagrawalcodes/eventmappr/internal/auth/domain"
	autherror "github.com/dishaagrawalcodes/eventmappr/internal/errors"
)

var _ domain.UserRepository = (*UserRepository)(nil)

// UserRepository keeps users in process memory. It backs STORE_DRIVER=memory
// and the end-to-end session tests. Records are copied on the way in and out
// so callers never share state with the store.
type UserRepository struct {
	users     map[string]*domain.User
	mobileIDs map[string]string // mobile number to user id
	order     []string          // user ids in creation order
	lock      sync.RWMutex
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:     make(map[string]*domain.User),
		mobileIDs: make(map[string]string),
	}
}

// FindByIdentity prefers a mobile number match, then the earliest user with
// the given full name.
func (r *UserRepository) FindByIdentity(_ context.Context, fullName, mobileNumber string) (*domain.User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if mobileNumber != "" {
		if id, ok := r.mobileIDs[mobileNumber]; ok {
			return clone(r.users[id]), nil
		}
	}
	if fullName != "" {
		for _, id := range r.order {
			if r.users[id].FullName == fullName {
				return clone(r.users[id]), nil
			}
		}
	}
	return nil, nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return clone(r.users[id]), nil
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.mobileIDs[user.MobileNumber]; ok {
		return autherror.ErrUserAlreadyExists
	}
	if _, ok := r.users[user.ID]; ok {
		return autherror.ErrUserAlreadyExists
	}

	r.users[user.ID] = clone(user)
	r.mobileIDs[user.MobileNumber] = user.ID
	r.order = append(r.order, user.ID)
	return nil
}

func (r *UserRepository) UpdatePasswordHash(_ context.Context, id, passwordHash string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	user, ok := r.users[id]
	if !ok {
		return autherror.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *UserRepository) SetRefreshToken(_ context.Context, id, token string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if user, ok := r.users[id]; ok {
		user.RefreshToken = token
		user.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (r *UserRepository) RotateRefreshToken(_ context.Context, id, expected, next string) (bool, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	user, ok := r.users[id]
	if !ok || expected == "" || user.RefreshToken != expected {
		return false, nil
	}
	user.RefreshToken = next
	user.UpdatedAt = time.Now().UTC()
	return true, nil
}

func clone(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
