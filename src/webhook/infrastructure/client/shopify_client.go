package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/admin-rsn8-inc/shopify-calendly-klaviyo-integration/src/shared/infrastructure/config"
	"github.com/admin-rsn8-inc/shopify-calendly-klaviyo-integration/src/webhook/domain/entity"
)

// ShopifyClient cliente HTTP para la Admin API GraphQL de Shopify.
// Cubre las dos operaciones del pipeline: lookup del metaobject de evento
// de un producto y sobreescritura de la nota de una orden.
type ShopifyClient struct {
	httpClient         *http.Client
	endpoint           string
	accessToken        string
	metafieldNamespace string
	metafieldKey       string
}

// NewShopifyClient crea una nueva instancia del cliente
func NewShopifyClient(cfg config.AppConfig) *ShopifyClient {
	return &ShopifyClient{
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		endpoint: fmt.Sprintf("https://%s/admin/api/%s/graphql.json",
			cfg.ShopifyShopDomain, cfg.ShopifyAPIVersion),
		accessToken:        cfg.ShopifyAccessToken,
		metafieldNamespace: cfg.MetafieldNamespace,
		metafieldKey:       cfg.MetafieldKey,
	}
}

// graphqlRequest es el envelope estándar de la Admin API
type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

// execute hace el POST GraphQL y devuelve el campo data crudo.
// Un array errors no vacío a nivel top se trata como fallo.
func (c *ShopifyClient) execute(ctx context.Context, gql graphqlRequest) (json.RawMessage, error) {
	jsonData, err := json.Marshal(gql)
	if err != nil {
		return nil, fmt.Errorf("error marshalling graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error calling shopify admin api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("shopify admin api returned status %d: %s", resp.StatusCode, string(body))
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphqlError  `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("error unmarshalling graphql response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return nil, fmt.Errorf("shopify graphql errors: %s", string(body))
	}

	return envelope.Data, nil
}

const eventDetailsQuery = `
query ProductEventDetails($id: ID!, $namespace: String!, $key: String!) {
  product(id: $id) {
    metafield(namespace: $namespace, key: $key) {
      reference {
        ... on Metaobject {
          fields {
            key
            value
          }
        }
      }
    }
  }
}`

// GetEventDetails consulta el metafield de evento del producto y resuelve el
// metaobject referenciado. Producto sin metafield o sin referencia devuelve
// (nil, nil): "sin datos" no es un error para el pipeline.
func (c *ShopifyClient) GetEventDetails(ctx context.Context, productGID string) (*entity.EventDetails, error) {
	data, err := c.execute(ctx, graphqlRequest{
		Query: eventDetailsQuery,
		Variables: map[string]interface{}{
			"id":        productGID,
			"namespace": c.metafieldNamespace,
			"key":       c.metafieldKey,
		},
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		Product *struct {
			Metafield *struct {
				Reference *struct {
					Fields []entity.EventField `json:"fields"`
				} `json:"reference"`
			} `json:"metafield"`
		} `json:"product"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("error unmarshalling product response: %w", err)
	}

	if result.Product == nil || result.Product.Metafield == nil || result.Product.Metafield.Reference == nil {
		return nil, nil
	}

	return &entity.EventDetails{Fields: result.Product.Metafield.Reference.Fields}, nil
}

const orderNoteMutation = `
mutation OrderNoteUpdate($input: OrderInput!) {
  orderUpdate(input: $input) {
    order {
      id
    }
    userErrors {
      field
      message
    }
  }
}`

// UpdateOrderNote sobreescribe la nota de la orden con el texto dado.
// No hay merge con la nota pre-existente. Cualquier userError de la
// mutación se trata como fallo.
func (c *ShopifyClient) UpdateOrderNote(ctx context.Context, orderGID, note string) error {
	data, err := c.execute(ctx, graphqlRequest{
		Query: orderNoteMutation,
		Variables: map[string]interface{}{
			"input": map[string]interface{}{
				"id":   orderGID,
				"note": note,
			},
		},
	})
	if err != nil {
		return err
	}

	var result struct {
		OrderUpdate struct {
			UserErrors []struct {
				Field   []string `json:"field"`
				Message string   `json:"message"`
			} `json:"userErrors"`
		} `json:"orderUpdate"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("error unmarshalling orderUpdate response: %w", err)
	}

	if len(result.OrderUpdate.UserErrors) > 0 {
		return fmt.Errorf("orderUpdate user errors: %+v", result.OrderUpdate.UserErrors)
	}

	return nil
}
