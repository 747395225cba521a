package entity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrder_FullPayload(t *testing.T) {
	body := []byte(`{
		"id": 820982911946154500,
		"name": "#9999",
		"email": "top@example.com",
		"contact_email": "contact@example.com",
		"created_at": "2024-05-01T10:30:00-04:00",
		"currency": "USD",
		"total_price": "59.90",
		"customer": {"email": "jon@example.com", "first_name": "Jon", "last_name": "Snow"},
		"billing_address": {"first_name": "John", "last_name": "Smith", "name": "John Smith"},
		"line_items": [
			{"id": 1, "product_id": 788032119674292900, "title": "VIP Night", "quantity": 2, "price": "24.95"},
			{"id": 2, "product_id": 788032119674292922, "title": "Poster", "quantity": 1, "price": "10.00"}
		]
	}`)

	order, err := ParseOrder(body)
	require.NoError(t, err)

	assert.Equal(t, int64(820982911946154500), order.ID)
	assert.Len(t, order.LineItems, 2)
	assert.Equal(t, 2, order.LineItems[0].Quantity)
	assert.Equal(t, "gid://shopify/Product/788032119674292900", order.LineItems[0].ProductGID())
	assert.Equal(t, "gid://shopify/Order/820982911946154500", order.AdminGID())
	assert.True(t, order.TotalPriceDecimal().Equal(decimal.RequireFromString("59.90")))
}

func TestParseOrder_MalformedJSON(t *testing.T) {
	_, err := ParseOrder([]byte(`{"id": not-json`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestParseOrder_NoCustomerNoLineItems(t *testing.T) {
	order, err := ParseOrder([]byte(`{"id": 1, "name": "#1"}`))
	require.NoError(t, err)

	assert.Nil(t, order.Customer)
	assert.Empty(t, order.LineItems)
	assert.True(t, order.TotalPriceDecimal().IsZero())
}

func TestIdentity_CustomerWins(t *testing.T) {
	order := &Order{
		Email:        "top@example.com",
		ContactEmail: "contact@example.com",
		Customer:     &Customer{Email: "jon@example.com", FirstName: "Jon", LastName: "Snow"},
	}

	identity := order.Identity()
	assert.Equal(t, "jon@example.com", identity.Email)
	assert.Equal(t, "Jon", identity.FirstName)
	assert.Equal(t, "Snow", identity.LastName)
}

func TestIdentity_FallbackOrder(t *testing.T) {
	// customer presente pero sin email → cae al top-level email
	order := &Order{
		Email:        "top@example.com",
		ContactEmail: "contact@example.com",
		Customer:     &Customer{},
	}
	assert.Equal(t, "top@example.com", order.Identity().Email)

	// sin top-level email → contact_email
	order = &Order{ContactEmail: "contact@example.com"}
	assert.Equal(t, "contact@example.com", order.Identity().Email)
}

func TestIdentity_BillingAddressName(t *testing.T) {
	order := &Order{
		ContactEmail: "contact@example.com",
		Billing:      &BillingAddress{FirstName: "John", LastName: "Smith"},
	}

	identity := order.Identity()
	assert.Equal(t, "contact@example.com", identity.Email)
	assert.Equal(t, "John", identity.FirstName)
	assert.Equal(t, "Smith", identity.LastName)
}

func TestIdentity_AllSourcesEmpty(t *testing.T) {
	order := &Order{}

	identity := order.Identity()
	assert.Empty(t, identity.Email)
	assert.Empty(t, identity.FirstName)
	assert.Empty(t, identity.LastName)
}

func TestTotalPriceDecimal_Unparseable(t *testing.T) {
	order := &Order{TotalPrice: "not-a-number"}
	assert.True(t, order.TotalPriceDecimal().IsZero())
}
