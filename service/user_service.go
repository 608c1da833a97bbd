package service

import (
	"context"
	"strings"
	"time"

	"github.com/cydxin/mokjang-sdk/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	*Service
	userDao      *models.UserDAO
	tokenService *TokenService
}

func NewUserService(s *Service) *UserService {
	log.Debug().Msg("NewUserService")
	return &UserService{
		Service:      s,
		userDao:      models.NewUserDAO(s.DB),
		tokenService: NewTokenService(s.RDB),
	}
}

// ProfileDTO 作者/成员等场景展示用的精简资料
type ProfileDTO struct {
	ID        uint64 `json:"id"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

type UserDTO struct {
	ID        uint64    `json:"id"`
	UID       string    `json:"uid"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

type RegisterReq struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required,max=100"`
}

type LoginReq struct {
	Account  string `json:"account" validate:"required"` // username/email
	Password string `json:"password" validate:"required"`
}

type LoginResp struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

type UpdateProfileReq struct {
	FullName  *string `json:"full_name" validate:"omitempty,max=100"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,max=500"`
}

func toUserDTO(u *models.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		UID:       u.UID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}

func toProfile(u *models.User) *ProfileDTO {
	if u == nil || u.ID == 0 {
		return nil
	}
	return &ProfileDTO{ID: u.ID, FullName: u.FullName, AvatarURL: u.AvatarURL}
}

// Register 注册
func (s *UserService) Register(ctx context.Context, req RegisterReq) (*UserDTO, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FullName = strings.TrimSpace(req.FullName)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	exists, err := s.userDao.ExistsByAccount(req.Username, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, conflict("username or email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		UID:      uuid.New().String(),
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Password: string(hash),
	}
	if err := s.userDao.Create(user); err != nil {
		return nil, err
	}
	dto := toUserDTO(user)
	return &dto, nil
}

// Login 账号密码登录，成功后签发 token
func (s *UserService) Login(ctx context.Context, req LoginReq) (*LoginResp, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	u, err := s.userDao.FindByAccount(req.Account)
	if err != nil {
		if s.userDao.IsNotFound(err) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)) != nil {
		return nil, ErrUnauthenticated
	}

	token, err := s.tokenService.Issue(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResp{Token: token, User: toUserDTO(u)}, nil
}

// GetUser 查询用户
func (s *UserService) GetUser(userID uint64) (*UserDTO, error) {
	u, err := s.userDao.FindByID(userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	dto := toUserDTO(u)
	return &dto, nil
}

// UpdateProfile 修改显示名/头像
func (s *UserService) UpdateProfile(userID uint64, req UpdateProfileReq) error {
	if err := requireActor(userID); err != nil {
		return err
	}
	if err := validateStruct(req); err != nil {
		return err
	}
	updates := map[string]any{}
	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return invalidArgument("full_name cannot be empty")
		}
		updates["full_name"] = name
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = strings.TrimSpace(*req.AvatarURL)
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now()
	return s.userDao.UpdateFields(userID, updates)
}

// UpdatePassword 修改密码
func (s *UserService) UpdatePassword(userID uint64, newPassword string) error {
	if err := requireActor(userID); err != nil {
		return err
	}
	if len(strings.TrimSpace(newPassword)) < 6 {
		return invalidArgument("password too short")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.userDao.UpdatePassword(userID, string(hash)); err != nil {
		return err
	}
	return nil
}
