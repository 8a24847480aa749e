package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"AuthQ/config"
	"AuthQ/model"
	"AuthQ/mq"
	"AuthQ/repository"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// TokenStore 记录用户当前有效的 access token（db.TokenCache 实现）
type TokenStore interface {
	Set(ctx context.Context, userUUID, token string) error
	Get(ctx context.Context, userUUID string) (string, error)
}

// SMSPublisher 投递短信后台任务（mq.Publisher 实现）
type SMSPublisher interface {
	PublishSMS(ctx context.Context, job mq.SMSJob) error
}

// AvatarStore 保存头像对象并返回可访问地址（storage.AvatarStore 实现）
type AvatarStore interface {
	UploadAvatar(ctx context.Context, userUUID string, r io.Reader, size int64, contentType string) (string, error)
}

// APIHandler 聚合各 handler 依赖的资源句柄
type APIHandler struct {
	db       *gorm.DB
	users    repository.UserRepository
	tokens   TokenStore
	sms      SMSPublisher // 可为 nil：队列不可用时注册流程跳过短信
	avatars  AvatarStore  // 可为 nil：对象存储未配置时头像上传不可用
	cfg      func() *config.Config
	validate *validator.Validate
}

// NewAPIHandler 构建 API 处理器
func NewAPIHandler(gdb *gorm.DB, users repository.UserRepository, tokens TokenStore,
	sms SMSPublisher, avatars AvatarStore, cfg func() *config.Config) *APIHandler {
	return &APIHandler{
		db:       gdb,
		users:    users,
		tokens:   tokens,
		sms:      sms,
		avatars:  avatars,
		cfg:      cfg,
		validate: validator.New(),
	}
}

// decodeAndValidate 解析请求体并做字段校验。
// 客户端数据问题返回 422 类错误，校验器自身的问题按内部校验失败处理。
func (h *APIHandler) decodeAndValidate(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return requestValidationError(fmt.Sprintf("invalid request body: %v", err))
	}

	if err := h.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return requestValidationError(verrs.Error())
		}
		return validationError("request validation misconfigured", err)
	}
	return nil
}

type contextKey string

const userContextKey contextKey = "authq.user"

func withUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// userFrom 取出认证中间件放入的当前用户
func userFrom(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userContextKey).(*model.User)
	return user, ok
}
