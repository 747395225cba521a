package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/admin-rsn8-inc/shopify-calendly-klaviyo-integration/src/shared/infrastructure/config"
	"github.com/admin-rsn8-inc/shopify-calendly-klaviyo-integration/src/webhook/domain/entity"
)

// KlaviyoClient cliente HTTP para la Events API de Klaviyo.
// El perfil se identifica por email + nombre, la métrica es configurable
// (default "Order Contains Event") y el timestamp va en ISO-8601, que es
// la representación que exige POST /api/events/.
type KlaviyoClient struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	apiRevision string
	metricName  string
}

// NewKlaviyoClient crea una nueva instancia del cliente
func NewKlaviyoClient(cfg config.AppConfig) *KlaviyoClient {
	return &KlaviyoClient{
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		baseURL:     cfg.KlaviyoBaseURL,
		apiKey:      cfg.KlaviyoAPIKey,
		apiRevision: cfg.KlaviyoAPIVersion,
		metricName:  cfg.KlaviyoMetricName,
	}
}

// TrackOrderEvent publica un único evento agregado con todos los records de
// la orden. El caller garantiza identity.Email no vacío y records no vacío.
func (c *KlaviyoClient) TrackOrderEvent(ctx context.Context, order *entity.Order, identity entity.CustomerIdentity, records []entity.EnrichedRecord) error {
	payload := map[string]interface{}{
		"data": map[string]interface{}{
			"type": "event",
			"attributes": map[string]interface{}{
				"time":      order.CreatedAt.UTC().Format(time.RFC3339),
				"unique_id": uuid.New().String(),
				"metric": map[string]interface{}{
					"data": map[string]interface{}{
						"type": "metric",
						"attributes": map[string]interface{}{
							"name": c.metricName,
						},
					},
				},
				"profile": map[string]interface{}{
					"data": map[string]interface{}{
						"type": "profile",
						"attributes": map[string]interface{}{
							"email":      identity.Email,
							"first_name": identity.FirstName,
							"last_name":  identity.LastName,
						},
					},
				},
				"value": order.TotalPriceDecimal().InexactFloat64(),
				"properties": map[string]interface{}{
					"order_id":   order.ID,
					"order_name": order.Name,
					"currency":   order.Currency,
					"tickets":    records,
				},
			},
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshalling event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/events/", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Klaviyo-API-Key "+c.apiKey)
	req.Header.Set("revision", c.apiRevision)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error calling klaviyo: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response: %w", err)
	}

	// /api/events/ responde 202 Accepted en el caso feliz
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("klaviyo returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
