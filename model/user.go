package model

// AdminUser identifies a privileged operator. Rows are provisioned out of band.
type AdminUser struct {
	ID           int64   `gorm:"primaryKey" json:"id"`
	Username     string  `gorm:"size:100;not null;uniqueIndex" json:"username"`
	PasswordHash string  `gorm:"size:255;not null" json:"-"`
	AdminCode    *string `gorm:"size:64;uniqueIndex" json:"-"` // nullable: not every admin has a code
}

// TableName 指定表名
func (AdminUser) TableName() string { return "admin_users" }

// User is a shared access code. IsAdmin grants elevated claims without the
// admin_code path.
type User struct {
	ID      int64  `gorm:"primaryKey" json:"id"`
	Code    string `gorm:"size:64;not null;uniqueIndex" json:"-"`
	IsAdmin bool   `gorm:"not null;default:false" json:"isAdmin"`
}

func (User) TableName() string { return "users" }
