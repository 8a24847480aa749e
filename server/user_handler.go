package server

import (
	"errors"
	"net/http"
	"strings"

	"AuthQ/db"
	"AuthQ/logger"
	"AuthQ/model"
	"AuthQ/repository"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

const maxAvatarSize = 8 << 20 // 8MB

// ProfileHandler 返回当前用户的公开资料
func (h *APIHandler) ProfileHandler(w http.ResponseWriter, r *http.Request) error {
	user, ok := userFrom(r.Context())
	if !ok {
		return userTokenError("no authenticated user in context")
	}
	respSuccess(w, user.Profile())
	return nil
}

// lookupTarget 根据路径里的 uuid 找到目标用户
func (h *APIHandler) lookupTarget(r *http.Request) (*model.User, error) {
	targetUUID := mux.Vars(r)["uuid"]
	if targetUUID == "" {
		return nil, getParamsError("target uuid is required")
	}

	target, err := h.users.GetByUUID(r.Context(), targetUUID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, postParamsError("target user not found")
	}
	if err != nil {
		return nil, err
	}
	return target, nil
}

// FollowHandler 关注目标用户
func (h *APIHandler) FollowHandler(w http.ResponseWriter, r *http.Request) error {
	user, ok := userFrom(r.Context())
	if !ok {
		return userTokenError("no authenticated user in context")
	}

	target, err := h.lookupTarget(r)
	if err != nil {
		return err
	}
	if target.ID == user.ID {
		return postParamsError("cannot follow yourself")
	}

	if err := h.users.Follow(r.Context(), user.ID, target.ID); err != nil {
		return err
	}

	logger.Info("关注成功",
		logger.String("user", user.UUID),
		logger.String("target", target.UUID))
	respSuccess(w, map[string]interface{}{})
	return nil
}

// UnfollowHandler 取消关注目标用户
func (h *APIHandler) UnfollowHandler(w http.ResponseWriter, r *http.Request) error {
	user, ok := userFrom(r.Context())
	if !ok {
		return userTokenError("no authenticated user in context")
	}

	target, err := h.lookupTarget(r)
	if err != nil {
		return err
	}

	if err := h.users.Unfollow(r.Context(), user.ID, target.ID); err != nil {
		return err
	}
	respSuccess(w, map[string]interface{}{})
	return nil
}

// FollowersHandler 关注当前用户的人
func (h *APIHandler) FollowersHandler(w http.ResponseWriter, r *http.Request) error {
	user, ok := userFrom(r.Context())
	if !ok {
		return userTokenError("no authenticated user in context")
	}

	users, err := h.users.Followers(r.Context(), user.ID)
	if err != nil {
		return err
	}
	respSuccess(w, profiles(users))
	return nil
}

// FollowingHandler 当前用户关注的人
func (h *APIHandler) FollowingHandler(w http.ResponseWriter, r *http.Request) error {
	user, ok := userFrom(r.Context())
	if !ok {
		return userTokenError("no authenticated user in context")
	}

	users, err := h.users.Following(r.Context(), user.ID)
	if err != nil {
		return err
	}
	respSuccess(w, profiles(users))
	return nil
}

func profiles(users []*model.User) []model.Profile {
	out := make([]model.Profile, 0, len(users))
	for _, u := range users {
		out = append(out, u.Profile())
	}
	return out
}

// AvatarHandler 上传头像到对象存储并更新用户记录
func (h *APIHandler) AvatarHandler(w http.ResponseWriter, r *http.Request) error {
	user, ok := userFrom(r.Context())
	if !ok {
		return userTokenError("no authenticated user in context")
	}
	if h.avatars == nil {
		return postParamsError("avatar storage is not configured")
	}

	if err := r.ParseMultipartForm(maxAvatarSize); err != nil {
		return requestValidationError("invalid multipart form: " + err.Error())
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		return requestValidationError("avatar file is required")
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return requestValidationError("avatar must be an image")
	}

	url, err := h.avatars.UploadAvatar(r.Context(), user.UUID, file, header.Size, contentType)
	if err != nil {
		return err
	}

	err = db.RunInTx(r.Context(), h.db, func(tx *gorm.DB) error {
		return repository.NewGormUserRepository(tx).UpdateAvatar(r.Context(), user.ID, url)
	})
	if err != nil {
		return err
	}

	respSuccess(w, map[string]interface{}{"avatar": url})
	return nil
}
