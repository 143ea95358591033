package models

type MenuItem struct {
	Base
	Name        string  `gorm:"type:varchar(255);not null" json:"name"`
	Description *string `gorm:"type:text" json:"description"`
	Price       Money   `gorm:"type:decimal(10,2);not null;check:price >= 0" json:"price"`
	Category    *string `gorm:"type:varchar(100);index" json:"category"`
	ImageURL    *string `gorm:"column:image_url;type:text" json:"image_url"`
	IsAvailable bool    `gorm:"not null;default:true" json:"is_available"`
}
