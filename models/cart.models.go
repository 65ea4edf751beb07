package models

// CartItem represents an item in the client-local cart
type CartItem struct {
	Product  string `json:"product" validate:"required,hexadecimal,len=24"`
	Option   string `json:"option" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

// CartQuoteRequest asks the server to price a cart against the catalog
type CartQuoteRequest struct {
	Items []CartItem `json:"items" validate:"required,min=1,dive"`
}

// QuoteLine is one priced cart line
type QuoteLine struct {
	Product  string  `json:"product"`
	Name     string  `json:"name"`
	Option   string  `json:"option"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Subtotal float64 `json:"subtotal"`
	InStock  bool    `json:"inStock"`
}

// Quote is a priced cart
type Quote struct {
	Items       []QuoteLine `json:"items"`
	TotalAmount float64     `json:"totalAmount"`
}
