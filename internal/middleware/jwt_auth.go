package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"dropship_admin_v1/internal/model"
)

// JWTConfig 签名参数，启动时由 config.JWTConfig 覆盖
type JWTConfig struct {
	SecretKey       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Issuer          string
}

var jwtConfig = &JWTConfig{
	SecretKey:       "dropship-admin-secret-key-change-in-production",
	AccessTokenTTL:  2 * time.Hour,
	RefreshTokenTTL: 7 * 24 * time.Hour,
	Issuer:          "dropship-admin",
}

// SetJWTConfig 设置 JWT 配置
func SetJWTConfig(cfg *JWTConfig) {
	jwtConfig = cfg
}

// Principal 当前登录员工
// Role 即 RequireModule 读取模块权限时使用的角色名
type Principal struct {
	UserID   int64
	Username string
	Role     string
}

// SuperAdmin 超管不受模块权限约束
func (p Principal) SuperAdmin() bool {
	return p.Role == model.RoleSuperAdmin
}

// TokenKind 区分 access / refresh，防止 refresh token 直接访问接口
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

// Claims 签入 Token 的员工身份，Subject 为员工 ID
type Claims struct {
	Username string    `json:"usr"`
	Role     string    `json:"role"`
	Kind     TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// Principal 还原登录员工
func (c *Claims) Principal() (Principal, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id <= 0 {
		return Principal{}, fmt.Errorf("%w: subject %q", ErrTokenInvalid, c.Subject)
	}
	return Principal{UserID: id, Username: c.Username, Role: c.Role}, nil
}

// TokenPair 登录 / 刷新返回的 Token 对
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time // access token 过期时间
}

// IssueTokens 为员工签发 Token 对
func IssueTokens(p Principal) (TokenPair, error) {
	now := time.Now()
	access, err := sign(p, TokenAccess, now, jwtConfig.AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := sign(p, TokenRefresh, now, jwtConfig.RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    now.Add(jwtConfig.AccessTokenTTL),
	}, nil
}

func sign(p Principal, kind TokenKind, now time.Time, ttl time.Duration) (string, error) {
	claims := &Claims{
		Username: p.Username,
		Role:     p.Role,
		Kind:     kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtConfig.Issuer,
			Subject:   strconv.FormatInt(p.UserID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtConfig.SecretKey))
}

// ParseToken 校验签名、签发者与 Token 类型
func ParseToken(raw string, kind TokenKind) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(jwtConfig.SecretKey), nil
	}, jwt.WithIssuer(jwtConfig.Issuer))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if claims.Kind != kind {
		return nil, fmt.Errorf("%w: want %s, got %s", ErrTokenKind, kind, claims.Kind)
	}
	return claims, nil
}

// ContextKeyPrincipal 登录员工 (Principal)
const ContextKeyPrincipal = "principal"

// JWTAuth 校验 access token 并把 Principal 写入 Context
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, found := bearerToken(c.GetHeader("Authorization"))
		if !found {
			abortUnauthorized(c, "未提供认证信息，应为 Bearer {token}")
			return
		}

		claims, err := ParseToken(raw, TokenAccess)
		if err != nil {
			msg := "Token 无效或已过期"
			if errors.Is(err, ErrTokenKind) {
				msg = "Token 类型错误"
			}
			abortUnauthorized(c, msg)
			return
		}
		p, err := claims.Principal()
		if err != nil {
			abortUnauthorized(c, "Token 无效或已过期")
			return
		}

		c.Set(ContextKeyPrincipal, p)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" || token == "" {
		return "", false
	}
	return token, true
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    401,
		"message": msg,
	})
}

// CurrentUser 从 Context 获取登录员工，未登录时返回零值
func CurrentUser(c *gin.Context) Principal {
	if v, exists := c.Get(ContextKeyPrincipal); exists {
		if p, ok := v.(Principal); ok {
			return p
		}
	}
	return Principal{}
}

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenKind    = errors.New("token kind mismatch")
)
