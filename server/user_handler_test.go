package server

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"AuthQ/core/auth"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bearer 为 uuid 签发一个 token 并写入缓存，模拟登录后的状态
func (e *testEnv) bearer(t *testing.T, userUUID string) string {
	t.Helper()
	token, err := auth.GenerateToken("test-secret", "HS256", userUUID, time.Hour)
	require.NoError(t, err)
	e.tokens.tokens[userUUID] = token
	return "Bearer " + token
}

func (e *testEnv) do(t *testing.T, method, path, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		r.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, r)
	return w
}

func (e *testEnv) expectUserByUUID(rows *sqlmock.Rows) {
	e.mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `user` WHERE uuid = ?")).
		WillReturnRows(rows)
}

func TestProfile_Success(t *testing.T) {
	env := newTestEnv(t)
	env.expectUserByUUID(storedUserRows(goodHash))

	w := env.do(t, http.MethodGet, "/api/v1/authq/user/profile", env.bearer(t, "user-uuid-0001"))

	assert.Equal(t, 200, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, 200, resp.Code)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "user-uuid-0001", data["uuid"])
	assert.Equal(t, "a@b.com", data["email"])
	// hashed_password 和 salt 绝不能出现在响应里
	assert.NotContains(t, data, "hashed_password")
	assert.NotContains(t, data, "salt")
}

func TestAuth_MissingHeader(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/authq/user/profile", "")

	assert.Equal(t, 500, w.Code)
	assert.Equal(t, 5000, decodeEnvelope(t, w).Code)
}

func TestAuth_BadScheme(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/authq/user/profile", "Basic dXNlcjpwYXNz")

	assert.Equal(t, 500, w.Code)
	assert.Equal(t, 5000, decodeEnvelope(t, w).Code)
}

func TestAuth_SupersededToken(t *testing.T) {
	env := newTestEnv(t)

	old, err := auth.GenerateToken("test-secret", "HS256", "user-uuid-0001", time.Hour)
	require.NoError(t, err)
	// 缓存里已是新登录签发的另一个 token
	env.tokens.tokens["user-uuid-0001"] = "newer-token"

	w := env.do(t, http.MethodGet, "/api/v1/authq/user/profile", "Bearer "+old)

	assert.Equal(t, 500, w.Code)
	assert.Equal(t, 5000, decodeEnvelope(t, w).Code)
}

func TestAuth_TokenUserGone(t *testing.T) {
	env := newTestEnv(t)
	env.expectUserByUUID(sqlmock.NewRows([]string{"id"}))

	w := env.do(t, http.MethodGet, "/api/v1/authq/user/profile", env.bearer(t, "user-uuid-0001"))

	assert.Equal(t, 500, w.Code)
	assert.Equal(t, 5001, decodeEnvelope(t, w).Code)
}

func storedUserRowsWithToken(hash, accessToken string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "uuid", "name", "phone", "avatar", "gender",
		"salt", "hashed_password", "email", "email_check",
		"access_token", "last_login", "register_timestamp",
	}).AddRow(
		int64(1), "user-uuid-0001", "alice", "13800000000", "", "female",
		"pepper", hash, "a@b.com", true, accessToken, int64(0), int64(0))
}

func TestAuth_CacheMissRejectsSupersededStoredToken(t *testing.T) {
	env := newTestEnv(t)

	// 缓存为空，库里的 access_token 已被新登录覆盖
	old, err := auth.GenerateToken("test-secret", "HS256", "user-uuid-0001", time.Hour)
	require.NoError(t, err)
	env.expectUserByUUID(storedUserRowsWithToken(goodHash, "issued-by-newer-login"))

	w := env.do(t, http.MethodGet, "/api/v1/authq/user/profile", "Bearer "+old)

	assert.Equal(t, 500, w.Code)
	assert.Equal(t, 5000, decodeEnvelope(t, w).Code)
}

func TestAuth_CacheMissAcceptsStoredToken(t *testing.T) {
	env := newTestEnv(t)

	token, err := auth.GenerateToken("test-secret", "HS256", "user-uuid-0001", time.Hour)
	require.NoError(t, err)
	env.expectUserByUUID(storedUserRowsWithToken(goodHash, token))

	w := env.do(t, http.MethodGet, "/api/v1/authq/user/profile", "Bearer "+token)

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, 200, decodeEnvelope(t, w).Code)
}

func targetUserRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "uuid", "name", "phone", "avatar", "gender",
		"salt", "hashed_password", "email", "email_check",
		"access_token", "last_login", "register_timestamp",
	}).AddRow(
		int64(2), "user-uuid-0002", "carol", "", "", "female",
		"s2", "h2", "c@b.com", true, "", int64(0), int64(0))
}

func TestFollow_Success(t *testing.T) {
	env := newTestEnv(t)
	env.expectUserByUUID(storedUserRows(goodHash)) // 鉴权查当前用户
	env.expectUserByUUID(targetUserRows())         // 查目标用户
	env.mock.ExpectExec(regexp.QuoteMeta("INSERT IGNORE INTO user_following")).
		WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := env.do(t, http.MethodPost, "/api/v1/authq/user/follow/user-uuid-0002", env.bearer(t, "user-uuid-0001"))

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, 200, decodeEnvelope(t, w).Code)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestFollow_Self(t *testing.T) {
	env := newTestEnv(t)
	env.expectUserByUUID(storedUserRows(goodHash))
	env.expectUserByUUID(storedUserRows(goodHash))

	w := env.do(t, http.MethodPost, "/api/v1/authq/user/follow/user-uuid-0001", env.bearer(t, "user-uuid-0001"))

	assert.Equal(t, 400, w.Code)
	assert.Equal(t, 400, decodeEnvelope(t, w).Code)
}

func TestFollow_TargetMissing(t *testing.T) {
	env := newTestEnv(t)
	env.expectUserByUUID(storedUserRows(goodHash))
	env.expectUserByUUID(sqlmock.NewRows([]string{"id"}))

	w := env.do(t, http.MethodPost, "/api/v1/authq/user/follow/no-such-uuid", env.bearer(t, "user-uuid-0001"))

	assert.Equal(t, 400, w.Code)
	resp := decodeEnvelope(t, w)
	assert.Equal(t, 400, resp.Code)
	assert.Equal(t, "target user not found", resp.Message)
}

func TestUnfollow_Success(t *testing.T) {
	env := newTestEnv(t)
	env.expectUserByUUID(storedUserRows(goodHash))
	env.expectUserByUUID(targetUserRows())
	env.mock.ExpectExec(regexp.QuoteMeta("DELETE FROM user_following WHERE user_id = ? AND following_id = ?")).
		WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := env.do(t, http.MethodDelete, "/api/v1/authq/user/follow/user-uuid-0002", env.bearer(t, "user-uuid-0001"))

	assert.Equal(t, 200, w.Code)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestFollowing_List(t *testing.T) {
	env := newTestEnv(t)
	env.expectUserByUUID(storedUserRows(goodHash))
	env.mock.ExpectQuery(regexp.QuoteMeta("JOIN user_following uf ON uf.following_id = user.id")).
		WillReturnRows(targetUserRows())

	w := env.do(t, http.MethodGet, "/api/v1/authq/user/following", env.bearer(t, "user-uuid-0001"))

	assert.Equal(t, 200, w.Code)
	resp := decodeEnvelope(t, w)
	list, ok := resp.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, list, 1)
	first, ok := list[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "user-uuid-0002", first["uuid"])
}

func TestFollowers_Empty(t *testing.T) {
	env := newTestEnv(t)
	env.expectUserByUUID(storedUserRows(goodHash))
	env.mock.ExpectQuery(regexp.QuoteMeta("JOIN user_following uf ON uf.user_id = user.id")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w := env.do(t, http.MethodGet, "/api/v1/authq/user/followers", env.bearer(t, "user-uuid-0001"))

	assert.Equal(t, 200, w.Code)
	resp := decodeEnvelope(t, w)
	list, ok := resp.Data.([]interface{})
	require.True(t, ok)
	assert.Empty(t, list)
}

func TestAvatar_StorageNotConfigured(t *testing.T) {
	env := newTestEnv(t)
	env.expectUserByUUID(storedUserRows(goodHash))

	w := env.do(t, http.MethodPost, "/api/v1/authq/user/avatar", env.bearer(t, "user-uuid-0001"))

	assert.Equal(t, 400, w.Code)
	assert.Equal(t, 400, decodeEnvelope(t, w).Code)
}
