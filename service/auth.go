package service

import (
	"context"
	"errors"

	"github.com/3xSu/FilmComment/config"
	"github.com/3xSu/FilmComment/dao"
	"github.com/3xSu/FilmComment/models"
	"github.com/3xSu/FilmComment/pkg/jwt"
	"github.com/3xSu/FilmComment/pkg/log"
	"github.com/3xSu/FilmComment/pkg/response"
	"github.com/3xSu/FilmComment/types"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var _ IAuthService = (*AuthService)(nil)

type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*types.LoginResponse, error)
	Login(ctx context.Context, req *types.LoginRequest) (*types.LoginResponse, error)
	Profile(ctx context.Context, userID int64) (*types.UserBrief, error)
}

type AuthService struct {
	UserDAO   *dao.UserDAO
	Directory *UserDirectory
	JwtConfig *config.Jwt
}

func (s *AuthService) Register(ctx context.Context, req *types.RegisterRequest) (*types.LoginResponse, error) {
	exist, err := s.UserDAO.IsExist(ctx, "username = ?", req.Username)
	if err != nil {
		return nil, storeErr(err, "")
	}
	if exist {
		return nil, response.AlreadyExists("用户名已存在")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         types.RoleUser,
	}
	if err := s.UserDAO.Create(ctx, user); err != nil {
		if errors.Is(err, dao.ErrUniqueViolation) {
			return nil, response.AlreadyExists("用户名已存在")
		}
		return nil, storeErr(err, "")
	}
	log.L.Info("user registered", zap.Int64("user_id", user.UserID))
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, req *types.LoginRequest) (*types.LoginResponse, error) {
	user, err := s.UserDAO.GetByUsername(ctx, req.Username)
	if errors.Is(err, dao.ErrNotFound) {
		return nil, response.Unauthorized("用户名或密码错误")
	}
	if err != nil {
		return nil, storeErr(err, "")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, response.Unauthorized("用户名或密码错误")
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*types.LoginResponse, error) {
	token, err := jwt.GenerateToken([]byte(s.JwtConfig.Secret), user.UserID, user.Role, jwt.TypeAccess, s.JwtConfig.Expire())
	if err != nil {
		return nil, err
	}
	return &types.LoginResponse{
		UserID:   user.UserID,
		Username: user.Username,
		Role:     user.Role,
		Token:    token,
	}, nil
}

func (s *AuthService) Profile(ctx context.Context, userID int64) (*types.UserBrief, error) {
	brief, err := s.Directory.Brief(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "用户不存在")
	}
	return &brief, nil
}
