package models

// Customer is a saved contact an owner bills repeatedly.
type Customer struct {
	ID        string
	OwnerID   string
	Name      string
	Phone     string
	Email     string
	Address   string
	CreatedAt int64
}
