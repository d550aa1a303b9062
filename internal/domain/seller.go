package domain

type Seller struct {
	ID     string `json:"id" bson:"_id"`
	Name   string `json:"name" bson:"name"`
	Phone  string `json:"phone" bson:"phone"`
	Email  string `json:"email" bson:"email"`
	Active bool   `json:"active" bson:"active"`
}
