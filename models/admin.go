package models

// Admin is an operator account, provisioned out of band.
type Admin struct {
	ID           uint   `gorm:"primaryKey;column:id" json:"id"`
	Username     string `gorm:"column:username;uniqueIndex;size:100" json:"username"`
	PasswordHash string `gorm:"column:password_hash" json:"-"`
}

func (Admin) TableName() string {
	return "admin"
}
