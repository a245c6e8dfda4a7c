package dto

// CreateMarqetaUserRequest is the JSON body for POST /marqeta/users/.
type CreateMarqetaUserRequest struct {
	FirstName  string `json:"first_name" binding:"required"`
	LastName   string `json:"last_name" binding:"required"`
	Address1   string `json:"address1" binding:"required"`
	City       string `json:"city" binding:"required"`
	State      string `json:"state" binding:"required"`
	PostalCode string `json:"postal_code" binding:"required"`
	Country    string `json:"country" binding:"required"`
}

// CreateCardRequest is the JSON body for POST /marqeta/cards/.
type CreateCardRequest struct {
	CardProductToken string `json:"card_product_token" binding:"required"`
	UserToken        string `json:"user_token" binding:"required"`
}
