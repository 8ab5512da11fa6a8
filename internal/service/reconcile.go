package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"estate-api/internal/domain"
	"estate-api/pkg/utils"
)

// Reconciler applies identity-provider lifecycle events to the user store.
// It never retries; the delivery layer owns redelivery.
type Reconciler struct {
	store domain.UserStore
	log   *zap.Logger
	hash  func(string) (string, error)
}

func NewReconciler(store domain.UserStore, log *zap.Logger) *Reconciler {
	return &Reconciler{store: store, log: log, hash: utils.HashPassword}
}

// sealPassword hashes a plaintext password so that nothing readable reaches the store.
func (r *Reconciler) sealPassword(pw *string) (*string, error) {
	if pw == nil || utils.IsPasswordHash(*pw) {
		return pw, nil
	}
	h, err := r.hash(*pw)
	if err != nil {
		return nil, domain.Internal("hash password", err)
	}
	return &h, nil
}

func passThrough(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrDuplicateUser) || errors.Is(err, domain.ErrMalformedEvent) {
		return err
	}
	return domain.Internal(op, err)
}

func (r *Reconciler) CreateUser(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		return domain.Malformed("event has no user id")
	}
	pw, err := r.sealPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = pw
	u.UserType = u.UserType.OrDefault()
	if err := r.store.Create(ctx, u); err != nil {
		return passThrough("create user", err)
	}
	r.log.Info("user created from identity event", zap.String("user_id", u.ID))
	return nil
}

func (r *Reconciler) UpdateUser(ctx context.Context, id string, f domain.UserFields) error {
	if id == "" {
		return domain.Malformed("event has no user id")
	}
	pw, err := r.sealPassword(f.Password)
	if err != nil {
		return err
	}
	f.Password = pw
	f.UserType = f.UserType.OrDefault()
	if err := r.store.Update(ctx, id, f); err != nil {
		return passThrough("update user", err)
	}
	r.log.Info("user updated from identity event", zap.String("user_id", id))
	return nil
}

func (r *Reconciler) DeleteUser(ctx context.Context, id string) error {
	if id == "" {
		return domain.Malformed("event has no user id")
	}
	if err := r.store.Delete(ctx, id); err != nil {
		return passThrough("delete user", err)
	}
	r.log.Info("user deleted from identity event", zap.String("user_id", id))
	return nil
}
