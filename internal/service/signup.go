package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"estate-api/internal/domain"
	"estate-api/pkg/utils"
)

const (
	MsgFieldsRequired  = "All fields are required: name, email, phone, password, location"
	MsgInvalidUserType = "userType must be one of USER, AGENT"
	MsgUserExists      = "User already exists with this email or phone"
	MsgInternal        = "Internal server error"
)

type SignupInput struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required"`
	Phone    string `json:"phone"    validate:"required"`
	Password string `json:"password" validate:"required"`
	Location string `json:"location" validate:"required"`
	UserType string `json:"userType" validate:"omitempty,oneof=USER AGENT"`
}

type UserService struct {
	store    domain.UserStore
	log      *zap.Logger
	validate *validator.Validate
	hash     func(string) (string, error)
}

func NewUserService(store domain.UserStore, log *zap.Logger) *UserService {
	return &UserService{
		store:    store,
		log:      log,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		hash:     utils.HashPassword,
	}
}

func (in *SignupInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Location = strings.TrimSpace(in.Location)
	in.UserType = strings.ToUpper(strings.TrimSpace(in.UserType))
}

func (s *UserService) Validate(in *SignupInput) error {
	in.normalize()
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == "required" {
				return domain.Validation(MsgFieldsRequired)
			}
		}
		return domain.Validation(MsgInvalidUserType)
	}
	return domain.Internal("validate signup", err)
}

// Signup creates a locally registered user. The returned user carries no password.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	if err := s.Validate(&in); err != nil {
		return nil, err
	}

	existing, err := s.store.FindByEmailOrPhone(ctx, in.Email, in.Phone)
	if err != nil {
		return nil, domain.Internal("lookup user", err)
	}
	if existing != nil {
		return nil, domain.Duplicate(MsgUserExists)
	}

	hashed, err := s.hash(in.Password)
	if err != nil {
		return nil, domain.Internal("hash password", err)
	}

	u := &domain.User{
		ID:       utils.NewID(),
		Name:     in.Name,
		Email:    in.Email,
		Phone:    domain.StringPtr(in.Phone),
		Password: &hashed,
		Location: in.Location,
		UserType: domain.UserType(in.UserType).OrDefault(),
	}
	if err := s.store.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			return nil, err
		}
		return nil, domain.Internal("create user", err)
	}
	s.log.Info("user signed up", zap.String("user_id", u.ID), zap.String("user_type", string(u.UserType)))

	u.Password = nil
	return u, nil
}
