// Package utils 通用工具（JWT 解析等）
package utils

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims 承载桌面端签发的访问令牌声明。
// 令牌由桌面壳层用共享密钥按 HS256 签出，本服务只做校验。
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTManager 校验 Bearer Token
type JWTManager struct {
	secret string
	issuer string
}

func NewJWTManager(secret, issuer string) *JWTManager {
	return &JWTManager{secret: secret, issuer: issuer}
}

// ParseToken 解析并校验签名、算法、有效期与签发者（配置了 issuer 时）。
// 过期返回 ErrExpiredToken，其余校验失败一律 ErrInvalidToken。
func (m *JWTManager) ParseToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, m.signingKey, opts...)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, ErrInvalidToken
	case !token.Valid:
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (m *JWTManager) signingKey(*jwt.Token) (any, error) {
	return []byte(m.secret), nil
}
