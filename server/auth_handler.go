package server

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"AuthQ/core/auth"
	"AuthQ/db"
	"AuthQ/logger"
	"AuthQ/model"
	"AuthQ/mq"
	"AuthQ/repository"

	"gorm.io/gorm"
)

// LoginRequest represents the login request body.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	IMSI     string `json:"imsi" validate:"omitempty"`
	Code     string `json:"code" validate:"omitempty"`
	BizType  string `json:"biz_type" validate:"omitempty"`
}

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"omitempty,max=128"`
	Phone    string `json:"phone" validate:"omitempty,max=128"`
	Gender   string `json:"gender" validate:"omitempty,oneof=male female"`
}

// LoginHandler 用户邮箱登录。
// 未知邮箱与密码错误返回同一个 4000 封套，不暴露邮箱是否注册。
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) error {
	var req LoginRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		return err
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if errors.Is(err, repository.ErrUserNotFound) {
		logger.Warn("[Login] 用户不存在", logger.String("email", req.Email))
		respMismatch(w)
		return nil
	}
	if err != nil {
		return err
	}

	// 盐和存储摘要来自刚查出的用户行
	if !auth.VerifyPassword(req.Password, user.Salt, user.HashedPassword) {
		logger.Warn("[Login] 密码验证失败", logger.String("email", req.Email))
		respMismatch(w)
		return nil
	}

	cfg := h.cfg()
	token, err := auth.GenerateToken(cfg.SecretKey, cfg.JWTAlgorithm, user.UUID, cfg.TokenExpire())
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	now := time.Now().Unix()
	err = db.RunInTx(r.Context(), h.db, func(tx *gorm.DB) error {
		return repository.NewGormUserRepository(tx).UpdateLoginState(r.Context(), user.ID, now, token)
	})
	if err != nil {
		return err
	}

	if h.tokens != nil {
		if err := h.tokens.Set(r.Context(), user.UUID, token); err != nil {
			// 缓存失败不阻断登录，中间件会回落到数据库
			logger.Warn("[Login] 写入token缓存失败", logger.ErrorField(err))
		}
	}

	logger.Info("[Login] 登录成功", logger.String("uuid", user.UUID))
	respSuccess(w, map[string]interface{}{})
	return nil
}

// RegisterHandler 用户邮箱注册。留了手机号时异步下发验证码短信。
func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) error {
	var req RegisterRequest
	if err := h.decodeAndValidate(r, &req); err != nil {
		return err
	}

	salt := auth.NewSalt()
	user := &model.User{
		Name:              req.Name,
		Phone:             req.Phone,
		Gender:            model.Gender(req.Gender),
		Salt:              salt,
		HashedPassword:    auth.HashPassword(req.Password, salt),
		Email:             req.Email,
		RegisterTimestamp: time.Now().Unix(),
	}

	err := h.users.Create(r.Context(), user)
	if errors.Is(err, repository.ErrDuplicateUser) {
		logger.Warn("[Register] 邮箱已存在", logger.String("email", req.Email))
		respBadRequest(w, "Email already registered", nil)
		return nil
	}
	if err != nil {
		return err
	}

	cfg := h.cfg()
	if req.Phone != "" && h.sms != nil && cfg.SMSRegisterTemplate != "" {
		job := mq.SMSJob{
			Phone:          req.Phone,
			SignName:       cfg.SMSSignName,
			TemplateCode:   cfg.SMSRegisterTemplate,
			TemplateParams: map[string]string{"code": smsCode()},
		}
		if err := h.sms.PublishSMS(r.Context(), job); err != nil {
			// 注册本身已成功，短信失败只记录
			logger.Error("[Register] 短信任务投递失败", logger.ErrorField(err))
		}
	}

	logger.Info("[Register] 注册成功", logger.String("uuid", user.UUID))
	respSuccess(w, user.Profile())
	return nil
}

// smsCode 生成 6 位数字验证码
func smsCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		// crypto/rand 不可用时退化为时间低位
		return fmt.Sprintf("%06d", time.Now().UnixNano()%1000000)
	}
	return fmt.Sprintf("%06d", n.Int64())
}
