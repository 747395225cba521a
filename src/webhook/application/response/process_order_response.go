package response

// ProcessOrderResponse representa el resultado de procesar un webhook de orden
type ProcessOrderResponse struct {
	OrderID        int64  `json:"order_id"`
	OrderName      string `json:"order_name"`
	Records        int    `json:"records"`
	LookupFailures int    `json:"lookup_failures"`
	Tracked        bool   `json:"tracked"`
	Annotated      bool   `json:"annotated"`
	Status         string `json:"status"` // processed | skipped
}
