package entity

import "time"

const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
	ProductStatusSold     = "sold"
)

type Product struct {
	ID          string    `firestore:"-" json:"id"`
	SellerID    string    `firestore:"sellerId" json:"sellerId"`
	Title       string    `firestore:"title" json:"title"`
	Description string    `firestore:"description" json:"description"`
	Price       float64   `firestore:"price" json:"price"`
	Images      []string  `firestore:"images" json:"images"`
	Status      string    `firestore:"status" json:"status"`
	CreatedAt   time.Time `firestore:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt" json:"updatedAt"`
}

func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}
