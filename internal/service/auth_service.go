package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"department-graphql/internal/core/apperr"
	"department-graphql/internal/core/auth"
	"department-graphql/internal/core/cache"
	"department-graphql/internal/domain"
	"department-graphql/pkg/utils"
)

const TokenTypeBearer = "Bearer"

// Token login 的返回
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
	User        *domain.User
}

type AuthOptions struct {
	BcryptCost int
	UserTTL    time.Duration // me 查询的缓存时长
}

type AuthService struct {
	users domain.UserRepository
	jwt   *auth.JWTer
	cache *cache.Cache
	opts  AuthOptions
	log   *zap.Logger

	verify func(pw, digest string) (mismatch bool, err error)
	// dummyDigest 用户不存在时也做一次同成本的 bcrypt 比较，两种失败耗时一致
	dummyDigest string
}

func NewAuthService(users domain.UserRepository, jwter *auth.JWTer, c *cache.Cache, opts AuthOptions, l *zap.Logger) *AuthService {
	if opts.UserTTL <= 0 {
		opts.UserTTL = 5 * time.Minute
	}
	s := &AuthService{users: users, jwt: jwter, cache: c, opts: opts, log: l.Named("auth"), verify: utils.IsDigestMismatch}
	dummy, err := utils.HashPassword(utils.NewID(), opts.BcryptCost)
	if err != nil {
		s.log.Warn("dummy digest unavailable", zap.Error(err))
	}
	s.dummyDigest = dummy
	return s
}

func (s *AuthService) userNotFound(password string) error {
	if s.dummyDigest != "" {
		_, _ = s.verify(password, s.dummyDigest)
	}
	return apperr.New(apperr.UserNotFound, "user not found")
}

// Register 用户名唯一、密码至少 6 位；密码以 bcrypt 摘要存储
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username, err := normalizeUsername(username)
	if err != nil {
		return nil, err
	}
	existing, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.New(apperr.UsernameTaken, "username is already taken").
			WithDetails(map[string]any{"username": username})
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}

	digest, err := utils.HashPassword(password, s.opts.BcryptCost)
	if err != nil {
		return nil, apperr.Wrap(err, "hash password")
	}
	u := &domain.User{Username: username, PasswordDigest: digest}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.String("user_id", u.ID), zap.String("username", u.Username))
	return u, nil
}

// ValidateCredentials 内部区分 UserNotFound / InvalidCredentials，对外文案一致
func (s *AuthService) ValidateCredentials(ctx context.Context, username, password string) (*domain.User, error) {
	username, err := normalizeUsername(username)
	if err != nil {
		return nil, s.userNotFound(password)
	}
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, s.userNotFound(password)
	}
	mismatch, err := s.verify(password, u.PasswordDigest)
	if err != nil {
		return nil, apperr.Wrap(err, "verify password")
	}
	if mismatch {
		return nil, apperr.New(apperr.InvalidCredentials, "invalid credentials")
	}
	return u, nil
}

// Login 为已验证的用户签发令牌
func (s *AuthService) Login(_ context.Context, u *domain.User) (*Token, error) {
	tok, exp, err := s.jwt.Issue(u.ID, u.Username)
	if err != nil {
		return nil, err
	}
	return &Token{AccessToken: tok, TokenType: TokenTypeBearer, ExpiresAt: exp, User: u}, nil
}

// SignIn ValidateCredentials + Login
func (s *AuthService) SignIn(ctx context.Context, username, password string) (*Token, error) {
	u, err := s.ValidateCredentials(ctx, username, password)
	if err != nil {
		if r := apperr.ReasonOf(err); r == apperr.UserNotFound || r == apperr.InvalidCredentials {
			s.log.Info("login rejected", zap.String("username", username), zap.String("reason", string(r)))
		}
		return nil, err
	}
	return s.Login(ctx, u)
}

func userCacheKey(id string) string { return "user:" + id }

// CurrentUser 令牌里的用户
func (s *AuthService) CurrentUser(ctx context.Context, caller auth.Caller) (*domain.User, error) {
	return s.UserByID(ctx, caller.ID)
}

// UserByID 用户记录只增不改，可直接缓存
func (s *AuthService) UserByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := cache.GetOrLoadJSON(s.cache, ctx, userCacheKey(id), s.opts.UserTTL,
		func(ctx context.Context) (*domain.User, error) {
			return s.users.FindByID(ctx, id)
		})
	if err != nil {
		return nil, apperr.Wrap(err, "load user")
	}
	if u == nil {
		return nil, apperr.New(apperr.UserNotFound, "user no longer exists")
	}
	return u, nil
}
