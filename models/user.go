package models

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCustomer
}

type User struct {
	Base
	Username       string `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	HashedPassword string `gorm:"type:varchar(255);not null" json:"-"`
	Role           Role   `gorm:"type:varchar(20);not null;default:'customer'" json:"role"`
}
