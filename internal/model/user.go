package model

// User API Key 持有者，本服务只读
type User struct {
	ID     int    `json:"id" db:"id"`
	APIKey string `json:"-" db:"api_key" gorm:"column:api_key;unique"`
	Name   string `json:"name" db:"name"`
}

func (User) TableName() string {
	return "users"
}
