package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"

	"github.com/bakeflow/pos-checkout/internal/aws"
)

func main() {
	runLocal := os.Getenv("RUN_LOCAL") == "true"
	if runLocal {
		if err := godotenv.Load(); err != nil {
			log.Printf("no .env file loaded: %v", err)
		}
	}

	clients, err := aws.NewAWSClients(context.Background())
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	shopName := os.Getenv("SHOP_NAME")
	if shopName == "" {
		shopName = "Bakeflow POS"
	}

	p := NewProcessor(clients, os.Getenv("SALES_TABLE"), shopName)

	// If RUN_LOCAL=true, simulate a single SQS event for local testing.
	if runLocal {
		testBody := os.Getenv("LOCAL_SQS_BODY")
		if testBody == "" {
			testBody = `{"sale_id":"local-sale-1","idempotency_key":"local-key-1"}`
		}
		event := events.SQSEvent{
			Records: []events.SQSMessage{
				{Body: testBody},
			},
		}
		if err := p.Handle(context.Background(), event); err != nil {
			log.Fatalf("local handler error: %v", err)
		}
		return
	}

	lambda.Start(p.Handle)
}
