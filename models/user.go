package models

// User 用户表
type User struct {
	UserID       int64  `gorm:"column:user_id;primaryKey;autoIncrement" json:"userId"`
	Username     string `gorm:"column:username;size:32;not null;uniqueIndex:uk_user_username" json:"username"`
	PasswordHash string `gorm:"column:password_hash;size:100;not null" json:"-"`
	AvatarURL    string `gorm:"column:avatar_url;size:512" json:"avatarUrl"`
	Role         int    `gorm:"column:role;not null;default:1" json:"role"` // 1-普通用户 2-管理员
	Timestamps
}

func (User) TableName() string { return "users" }
