package server

import (
	"errors"
	"net/http"
	"strings"

	"AuthQ/core/auth"
	"AuthQ/logger"
	"AuthQ/repository"
)

// requireAuth 校验 Bearer token 并把用户装入请求上下文。
// 凭证问题 -> 5000，token 指向的用户不存在 -> 5001。
func (h *APIHandler) requireAuth(next apiFunc) apiFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			return userTokenError("Authorization header is required")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return userTokenError("invalid authorization header format")
		}
		tokenStr := parts[1]

		cfg := h.cfg()
		claims, err := auth.ParseToken(cfg.SecretKey, cfg.JWTAlgorithm, tokenStr)
		if err != nil {
			return userTokenError("token invalid or expired")
		}

		// 缓存中记录的是用户最近一次登录签发的 token，
		// 不一致说明已被新登录顶替
		cached := ""
		if h.tokens != nil {
			cached, err = h.tokens.Get(r.Context(), claims.UUID)
			if err != nil {
				logger.Warn("读取token缓存失败", logger.ErrorField(err))
				cached = ""
			} else if cached != "" && cached != tokenStr {
				return userTokenError("token has been superseded")
			}
		}

		user, err := h.users.GetByUUID(r.Context(), claims.UUID)
		if errors.Is(err, repository.ErrUserNotFound) {
			return userNotFoundError("token user not found")
		}
		if err != nil {
			return err
		}

		// 缓存未命中时回落到库里持久化的 access_token 做同一比较
		if cached == "" && user.AccessToken != "" && user.AccessToken != tokenStr {
			return userTokenError("token has been superseded")
		}

		return next(w, r.WithContext(withUser(r.Context(), user)))
	}
}
