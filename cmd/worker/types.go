package main

// WorkerMessage is the payload sent from API -> SQS -> Worker.
type WorkerMessage struct {
	SaleID         string `json:"sale_id"`
	IdempotencyKey string `json:"idempotency_key"`
	CorrelationID  string `json:"correlation_id,omitempty"`
}
