package model

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Gender 性别枚举，与 user 表的 enum 列对应
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// User represents a user in the system.
// UUID 是对外的公开标识，创建时生成一次，之后不再变更。
type User struct {
	ID                int64  `gorm:"primaryKey;autoIncrement" json:"-"`
	UUID              string `gorm:"column:uuid;type:varchar(32);uniqueIndex;<-:create" json:"uuid"`
	Name              string `gorm:"type:varchar(128)" json:"name"`
	Phone             string `gorm:"type:varchar(128)" json:"phone"`
	Avatar            string `gorm:"type:varchar(1024)" json:"avatar"`
	Gender            Gender `gorm:"type:enum('male','female')" json:"gender,omitempty"`
	Salt              string `gorm:"type:varchar(128)" json:"-"`
	HashedPassword    string `gorm:"type:text" json:"-"`
	Email             string `gorm:"type:varchar(128);uniqueIndex" json:"email"`
	EmailCheck        bool   `gorm:"not null;default:0" json:"emailCheck"`
	AccessToken       string `gorm:"type:text" json:"-"`
	LastLogin         int64  `json:"lastLogin"`
	RegisterTimestamp int64  `json:"registerTimestamp"`

	// 自引用关注关系，user_following 为联结表
	Following []*User `gorm:"many2many:user_following;joinForeignKey:UserID;joinReferences:FollowingID;constraint:OnDelete:CASCADE" json:"-"`
	Followers []*User `gorm:"many2many:user_following;joinForeignKey:FollowingID;joinReferences:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 与原表名保持一致
func (User) TableName() string {
	return "user"
}

// BeforeCreate 在创建时生成公开标识
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UUID == "" {
		u.UUID = NewUUID()
	}
	return nil
}

// NewUUID 生成 32 位 hex 形式的公开标识
func NewUUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Profile 用户对外公开的资料投影
type Profile struct {
	UUID   string `json:"uuid"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

// Profile returns the public projection of the user.
func (u *User) Profile() Profile {
	return Profile{
		UUID:   u.UUID,
		Name:   u.Name,
		Phone:  u.Phone,
		Email:  u.Email,
		Avatar: u.Avatar,
	}
}
