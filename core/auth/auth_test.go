package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_KnownVector(t *testing.T) {
	// sha1("123456" + "a1b2c3salt")
	got := HashPassword("123456", "a1b2c3salt")
	assert.Equal(t, "805a1d878f8fe69494e5d13bd6ccc1e705dc4d66", got)
}

func TestVerifyPassword_Match(t *testing.T) {
	salt := NewSalt()
	hashed := HashPassword("secret-password", salt)
	assert.True(t, VerifyPassword("secret-password", salt, hashed))
}

// 对 password/salt/hash 任意一处的单字符变动都必须验证失败
func TestVerifyPassword_Mutations(t *testing.T) {
	password := "good"
	salt := "pepper"
	hashed := HashPassword(password, salt) // 4f4b292b16aed486908cd198b5fb23db5ea6662a

	mutate := func(s string, i int) string {
		b := []byte(s)
		if b[i] == 'x' {
			b[i] = 'y'
		} else {
			b[i] = 'x'
		}
		return string(b)
	}

	for i := range password {
		assert.False(t, VerifyPassword(mutate(password, i), salt, hashed),
			"mutated password at %d should not verify", i)
	}
	for i := range salt {
		assert.False(t, VerifyPassword(password, mutate(salt, i), hashed),
			"mutated salt at %d should not verify", i)
	}
	for i := range hashed {
		assert.False(t, VerifyPassword(password, salt, mutate(hashed, i)),
			"mutated hash at %d should not verify", i)
	}
}

func TestVerifyPassword_EmptyHash(t *testing.T) {
	assert.False(t, VerifyPassword("anything", "salt", ""))
}

func TestNewSalt(t *testing.T) {
	s1 := NewSalt()
	s2 := NewSalt()
	require.Len(t, s1, 32)
	assert.NotEqual(t, s1, s2)
}
