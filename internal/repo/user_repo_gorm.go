package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"estate-api/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

var _ domain.UserStore = (*UserRepo)(nil)

func (r *UserRepo) FindByEmailOrPhone(ctx context.Context, email, phone string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where("email = ? OR phone = ?", email, phone).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	return translate(r.db.WithContext(ctx).Create(u).Error)
}

// Update overwrites every identity column, including empty and nil values.
func (r *UserRepo) Update(ctx context.Context, id string, f domain.UserFields) error {
	tx := r.db.WithContext(ctx)
	res := tx.Model(&domain.User{}).Where("id = ?", id).Updates(map[string]any{
		"name":      f.Name,
		"email":     f.Email,
		"phone":     f.Phone,
		"password":  f.Password,
		"location":  f.Location,
		"user_type": f.UserType,
		"avatar":    f.Avatar,
	})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	// mysql reports zero affected rows when nothing changed
	var n int64
	if err := tx.Model(&domain.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFound("user not found")
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("user not found")
	}
	return nil
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDupKey(err) {
		return &domain.Error{Kind: domain.KindDuplicate, Msg: "Email or phone already exists", Err: err}
	}
	return err
}

func isDupKey(err error) bool {
	// drivers without TranslateError support still say so in the message
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
