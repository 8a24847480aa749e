package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims 是 access token 的负载，uuid 为用户公开标识
type Claims struct {
	UUID string `json:"uuid"`
	jwt.RegisteredClaims
}

// signingMethod 把配置的算法名解析为 HMAC 签名方法。
// 密钥是对称的 secret，非 HMAC 族算法一律拒绝。
func signingMethod(alg string) (*jwt.SigningMethodHMAC, error) {
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm: %s", alg)
	}
	return method, nil
}

// GenerateToken 用配置的算法生成 JWT access token
func GenerateToken(secret, alg, userUUID string, expire time.Duration) (string, error) {
	method, err := signingMethod(alg)
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := Claims{
		UUID: userUUID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expire)),
		},
	}
	token := jwt.NewWithClaims(method, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken 解析并校验 JWT access token，只接受配置的签名算法
func ParseToken(secret, alg, tokenStr string) (*Claims, error) {
	if _, err := signingMethod(alg); err != nil {
		return nil, err
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{alg}))
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrTokenInvalidClaims
}
