package auth

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// HashPassword 计算 hex(sha1(password + salt))。
// 摘要算法由既有用户数据的存储格式决定，不可替换。
func HashPassword(password, salt string) string {
	sum := sha1.Sum([]byte(password + salt))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword compares the salted digest of password against the stored
// hash. It never fails with an error; an empty salt or hash simply does not
// match.
func VerifyPassword(password, salt, hashedPassword string) bool {
	if hashedPassword == "" {
		return false
	}
	return HashPassword(password, salt) == hashedPassword
}

// NewSalt 为新用户生成随机 salt
func NewSalt() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
