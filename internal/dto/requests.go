package dto

type CreateOrderRequest struct {
	DeliveryDate        string  `json:"deliveryDate"`
	DeliveryHour        string  `json:"deliveryHour"`
	DeliveryAddress     string  `json:"deliveryAddress"`
	PersonCount         int     `json:"personCount"`
	MenuPrice           float64 `json:"menuPrice"`
	SpecialInstructions *string `json:"specialInstructions,omitempty"`
}

type UpdateOrderDetailsRequest struct {
	DeliveryDate        *string  `json:"deliveryDate,omitempty"`
	DeliveryHour        *string  `json:"deliveryHour,omitempty"`
	DeliveryAddress     *string  `json:"deliveryAddress,omitempty"`
	PersonCount         *int     `json:"personCount,omitempty"`
	MenuPrice           *float64 `json:"menuPrice,omitempty"`
	SpecialInstructions *string  `json:"specialInstructions,omitempty"`
}

type TransitionStatusRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes,omitempty"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}
