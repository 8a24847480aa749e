package server

import (
	"net/http"
	"strings"
	"time"

	"AuthQ/config"
	"AuthQ/logger"
)

// corsMiddleware 按配置的白名单放行跨域请求。
// 配置通过 provider 读取，.env 热更新后立即生效。
func corsMiddleware(provider func() *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cfg := provider()
			origin := r.Header.Get("Origin")

			allowed := ""
			switch {
			case len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*":
				allowed = "*"
			case origin != "" && cfg.AllowOrigin(origin):
				allowed = origin
			}

			if allowed != "" {
				w.Header().Set("Access-Control-Allow-Origin", allowed)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.Header().Set("Access-Control-Max-Age", "86400")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// statusWriter 捕获写出的状态码，供访问日志使用
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// loggingMiddleware 记录每一对请求/响应
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		logger.Info("访问记录",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", sw.status),
			logger.String("remote", remoteIP(r)),
			logger.Duration("elapsed", time.Since(start)))
	})
}

func remoteIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return r.RemoteAddr
}

// recoverMiddleware 把 panic 收敛到统一的 500 封套
func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("全局异常",
					logger.String("method", r.Method),
					logger.String("url", r.URL.String()),
					logger.Any("headers", r.Header),
					logger.Any("panic", rec),
					logger.Stack("stacktrace"))
				respServerError(w, "Server Error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
