package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const GuestUsername = "guest"

// Order is one line item of a checkout. Every row written by the same
// checkout carries the same Username and Total.
type Order struct {
	ID        uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    *uint64         `json:"userId" gorm:"index"`
	User      *User           `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`
	Username  string          `json:"username" gorm:"type:varchar(100);index"`
	ItemName  string          `json:"itemName" gorm:"type:varchar(200);not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Total     decimal.Decimal `json:"total" gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time       `json:"createdAt" gorm:"autoCreateTime"`
}

type LineItem struct {
	Name  string
	Price decimal.Decimal
}
