package server

import (
	"errors"
	"net/http"

	"AuthQ/logger"

	"github.com/go-playground/validator/v10"
)

// apiFunc 是业务 handler 的签名：只负责成功路径的响应，
// 失败直接返回 error，由 wrap 统一映射为响应封套。
type apiFunc func(w http.ResponseWriter, r *http.Request) error

// wrap 将 apiFunc 接入路由。映射是全量的：任何到达这里的失败
// 都恰好产生一个封套，不会裸露到传输层。
func wrap(fn apiFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			mapError(w, r, err)
		}
	}
}

// mapError 错误到封套的唯一转换点，每条错误路径都带上下文落日志
func mapError(w http.ResponseWriter, r *http.Request, err error) {
	logError := func(msg string) {
		logger.Error(msg,
			logger.String("method", r.Method),
			logger.String("url", r.URL.String()),
			logger.Any("headers", r.Header),
			logger.ErrorField(err),
			logger.Stack("stacktrace"))
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case KindUserNotFound:
			logError("token未知用户")
			respUserNotFound(w, appErr.Desc)
		case KindUserToken:
			logError("用户认证异常")
			respTokenError(w, appErr.Desc)
		case KindPostParams, KindGetParams:
			logError("参数查询异常")
			respBadRequest(w, appErr.Desc, nil)
		case KindValidation:
			logError("内部参数验证错误")
			respServerError(w, appErr.Desc)
		case KindRequestValidation:
			logError("请求参数格式错误")
			respUnprocessable(w, appErr.Desc, appErr.Desc)
		default:
			logError("全局异常")
			respServerError(w, "Server Error")
		}
		return
	}

	// validator 错误未经 decodeAndValidate 包装时兜底为 422
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		logError("请求参数格式错误")
		respUnprocessable(w, verrs.Error(), verrs.Error())
		return
	}

	logError("全局异常")
	respServerError(w, "Server Error")
}
