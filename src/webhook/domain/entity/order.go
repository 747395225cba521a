package entity

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Order representa el payload de un webhook orders/create de Shopify.
// Es inmutable una vez parseado: el pipeline solo lo lee.
type Order struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	ContactEmail string          `json:"contact_email"`
	CreatedAt    time.Time       `json:"created_at"`
	Currency     string          `json:"currency"`
	TotalPrice   string          `json:"total_price"`
	Customer     *Customer       `json:"customer"`
	Billing      *BillingAddress `json:"billing_address"`
	LineItems    []LineItem      `json:"line_items"`
}

// Customer es el objeto customer anidado (puede no venir en el payload)
type Customer struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// BillingAddress es la dirección de facturación (puede no venir)
type BillingAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Name      string `json:"name"`
}

// LineItem representa un item (SKU + cantidad) dentro de la orden
type LineItem struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

// CustomerIdentity es la identidad resuelta por la cadena de fallbacks
type CustomerIdentity struct {
	Email     string
	FirstName string
	LastName  string
}

// ParseOrder deserializa el body crudo (ya verificado) de un webhook.
// Un JSON malformado es fatal para la invocación; un payload sin customer
// o sin line_items es válido y produce una orden con esos campos vacíos.
func ParseOrder(body []byte) (*Order, error) {
	var order Order
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return &order, nil
}

// emailExtractor extrae un posible email de alguna ubicación del payload
type emailExtractor func(*Order) string

// emailFallbackChain define el orden de búsqueda del email del cliente.
// Los payloads de Shopify varían de forma según el canal de venta; gana el
// primer valor no vacío.
var emailFallbackChain = []emailExtractor{
	func(o *Order) string {
		if o.Customer != nil {
			return o.Customer.Email
		}
		return ""
	},
	func(o *Order) string { return o.Email },
	func(o *Order) string { return o.ContactEmail },
}

// Identity resuelve email y nombre del cliente aplicando la cadena de
// fallbacks: customer → email top-level → contact_email → billing_address.
// Devuelve strings vacíos cuando ninguna fuente tiene valor; el caller
// decide si eso es un skip o no.
func (o *Order) Identity() CustomerIdentity {
	identity := CustomerIdentity{}

	for _, extract := range emailFallbackChain {
		if email := strings.TrimSpace(extract(o)); email != "" {
			identity.Email = email
			break
		}
	}

	// Nombre: customer primero, billing_address como fallback
	if o.Customer != nil && (o.Customer.FirstName != "" || o.Customer.LastName != "") {
		identity.FirstName = o.Customer.FirstName
		identity.LastName = o.Customer.LastName
		return identity
	}
	if o.Billing != nil {
		identity.FirstName = o.Billing.FirstName
		identity.LastName = o.Billing.LastName
	}

	return identity
}

// AdminGID devuelve el ID global de la orden para la Admin API GraphQL
func (o *Order) AdminGID() string {
	return fmt.Sprintf("gid://shopify/Order/%d", o.ID)
}

// ProductGID devuelve el ID global del producto del line item
func (li *LineItem) ProductGID() string {
	return fmt.Sprintf("gid://shopify/Product/%d", li.ProductID)
}

// TotalPriceDecimal parsea el total de la orden. Shopify envía montos como
// strings; un valor ausente o ilegible se trata como cero en lugar de
// abortar el pipeline.
func (o *Order) TotalPriceDecimal() decimal.Decimal {
	if o.TotalPrice == "" {
		return decimal.Zero
	}
	total, err := decimal.NewFromString(o.TotalPrice)
	if err != nil {
		return decimal.Zero
	}
	return total
}
