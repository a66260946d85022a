package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	sqssvc "github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/bakeflow/pos-checkout/internal/gateway"
)

// mockDynamo backs both the sales journal and the idempotency table in
// handler tests. Items live per table keyed by their primary key value.
type mockDynamo struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{tables: map[string]map[string]map[string]types.AttributeValue{}}
}

func (m *mockDynamo) ensureTable(tbl string) {
	if _, ok := m.tables[tbl]; !ok {
		m.tables[tbl] = map[string]map[string]types.AttributeValue{}
	}
}

// idempotency items carry both their key and a sale_id attribute, so the
// idempotency_key check must come first
func mockPK(item map[string]types.AttributeValue) (string, error) {
	if v, ok := item["idempotency_key"]; ok {
		return v.(*types.AttributeValueMemberS).Value, nil
	}
	if v, ok := item["sale_id"]; ok {
		return v.(*types.AttributeValueMemberS).Value, nil
	}
	return "", errors.New("no primary key in item")
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *params.TableName
	m.ensureTable(table)
	pk, err := mockPK(params.Item)
	if err != nil {
		return nil, err
	}
	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists(idempotency_key)" {
		if _, exists := m.tables[table][pk]; exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	m.tables[table][pk] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *params.TableName
	m.ensureTable(table)
	pk, err := mockPK(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.tables[table][pk]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

// placeholders used by the sales and idempotency stores' update expressions
var mockUpdatePlaceholders = map[string]string{
	":new":    "status",
	":done":   "status",
	":failed": "status",
	":rb":     "response_body",
	":rs":     "response_status",
	":n":      "note",
	":ua":     "updated_at",
}

func (m *mockDynamo) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	table := *params.TableName
	m.ensureTable(table)
	pk, err := mockPK(params.Key)
	if err != nil {
		return nil, err
	}
	item, exists := m.tables[table][pk]
	if !exists {
		return nil, errors.New("item not found")
	}
	if params.ConditionExpression != nil && *params.ConditionExpression == "#s = :expected" {
		curr, ok := item["status"].(*types.AttributeValueMemberS)
		if !ok {
			return nil, &types.ConditionalCheckFailedException{}
		}
		expected := params.ExpressionAttributeValues[":expected"].(*types.AttributeValueMemberS).Value
		if curr.Value != expected {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	for placeholder, attr := range mockUpdatePlaceholders {
		if v, ok := params.ExpressionAttributeValues[placeholder]; ok {
			item[attr] = v
		}
	}
	m.tables[table][pk] = item
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}

func (m *mockDynamo) TransactWriteItems(ctx context.Context, params *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range params.TransactItems {
		p := it.Put
		if p == nil || p.ConditionExpression == nil || *p.ConditionExpression != "attribute_not_exists(idempotency_key)" {
			continue
		}
		table := *p.TableName
		m.ensureTable(table)
		pk, err := mockPK(p.Item)
		if err != nil {
			return nil, err
		}
		if _, exists := m.tables[table][pk]; exists {
			return nil, &types.TransactionCanceledException{}
		}
	}
	for _, it := range params.TransactItems {
		if p := it.Put; p != nil {
			table := *p.TableName
			m.ensureTable(table)
			pk, err := mockPK(p.Item)
			if err != nil {
				return nil, err
			}
			m.tables[table][pk] = p.Item
		}
	}
	return &dyn.TransactWriteItemsOutput{}, nil
}

func (m *mockDynamo) stringAttr(table, pk, attr string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.tables[table][pk]
	if !ok {
		return ""
	}
	v, ok := item[attr].(*types.AttributeValueMemberS)
	if !ok {
		return ""
	}
	return v.Value
}

// mockSQS records sent messages.
type mockSQS struct {
	mu       sync.Mutex
	messages []string
	fail     bool
}

func (m *mockSQS) SendMessage(ctx context.Context, params *sqssvc.SendMessageInput, optFns ...func(*sqssvc.Options)) (*sqssvc.SendMessageOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return nil, errors.New("sqs unavailable")
	}
	m.messages = append(m.messages, *params.MessageBody)
	return &sqssvc.SendMessageOutput{}, nil
}

func (m *mockSQS) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

// fakeGateway implements GatewayAPI with overridable behavior per method.
type fakeGateway struct {
	loginFn       func(username, password string) (*gateway.LoginResult, error)
	listFn        func(f gateway.ProductFilter) (*gateway.ProductPage, error)
	categoriesFn  func() ([]gateway.Category, error)
	getCustomerFn func(id int) (*gateway.Customer, error)
	submitFn      func(sale gateway.SaleSubmission) error
	expensesFn    func(f gateway.ExpenseFilter) (json.RawMessage, error)
	createExpFn   func(payload json.RawMessage) (json.RawMessage, error)
	expSummaryFn  func() (json.RawMessage, error)
	topSellingFn  func(count int) (json.RawMessage, error)
	cashierPerfFn func() (json.RawMessage, error)

	mu          sync.Mutex
	submissions []gateway.SaleSubmission
}

func (f *fakeGateway) Login(ctx context.Context, username, password string) (*gateway.LoginResult, error) {
	if f.loginFn != nil {
		return f.loginFn(username, password)
	}
	return &gateway.LoginResult{Token: "tok", FullName: "Amina B", Role: "cashier", Permissions: "127"}, nil
}

func (f *fakeGateway) ListProducts(ctx context.Context, token string, fl gateway.ProductFilter) (*gateway.ProductPage, error) {
	if f.listFn != nil {
		return f.listFn(fl)
	}
	return &gateway.ProductPage{}, nil
}

func (f *fakeGateway) GetCustomer(ctx context.Context, token string, id int) (*gateway.Customer, error) {
	if f.getCustomerFn != nil {
		return f.getCustomerFn(id)
	}
	return &gateway.Customer{ID: id, Name: "Client", DiscountPercentage: 10}, nil
}

func (f *fakeGateway) SubmitSale(ctx context.Context, token string, sale gateway.SaleSubmission) error {
	f.mu.Lock()
	f.submissions = append(f.submissions, sale)
	f.mu.Unlock()
	if f.submitFn != nil {
		return f.submitFn(sale)
	}
	return nil
}

func (f *fakeGateway) ListCategories(ctx context.Context, token string) ([]gateway.Category, error) {
	if f.categoriesFn != nil {
		return f.categoriesFn()
	}
	return []gateway.Category{{ID: 1, Name: "Viennoiserie"}}, nil
}

func (f *fakeGateway) ListExpenses(ctx context.Context, token string, fl gateway.ExpenseFilter) (json.RawMessage, error) {
	if f.expensesFn != nil {
		return f.expensesFn(fl)
	}
	return json.RawMessage(`{"data":[],"totalRecords":0}`), nil
}

func (f *fakeGateway) CreateExpense(ctx context.Context, token string, payload json.RawMessage) (json.RawMessage, error) {
	if f.createExpFn != nil {
		return f.createExpFn(payload)
	}
	return payload, nil
}

func (f *fakeGateway) ExpenseSummary(ctx context.Context, token string) (json.RawMessage, error) {
	if f.expSummaryFn != nil {
		return f.expSummaryFn()
	}
	return json.RawMessage(`{"total":0}`), nil
}

func (f *fakeGateway) TopSellingProducts(ctx context.Context, token string, count int) (json.RawMessage, error) {
	if f.topSellingFn != nil {
		return f.topSellingFn(count)
	}
	return json.RawMessage(`[]`), nil
}

func (f *fakeGateway) CashierPerformance(ctx context.Context, token string) (json.RawMessage, error) {
	if f.cashierPerfFn != nil {
		return f.cashierPerfFn()
	}
	return json.RawMessage(`[]`), nil
}

func (f *fakeGateway) lastSubmission() (gateway.SaleSubmission, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.submissions) == 0 {
		return gateway.SaleSubmission{}, false
	}
	return f.submissions[len(f.submissions)-1], true
}
