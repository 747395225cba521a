package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/admin-rsn8-inc/shopify-calendly-klaviyo-integration/src/shared/infrastructure/config"
	"github.com/admin-rsn8-inc/shopify-calendly-klaviyo-integration/src/webhook/domain/entity"
)

// CalendlyClient cliente HTTP para la API REST de Calendly.
// El flujo por link es: resolver el URI del usuario dueño del token,
// listar sus event types, matchear el slug exacto y acuñar un
// scheduling link de un solo uso contra ese event type.
type CalendlyClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewCalendlyClient crea una nueva instancia del cliente
func NewCalendlyClient(cfg config.AppConfig) *CalendlyClient {
	return &CalendlyClient{
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		baseURL: cfg.CalendlyBaseURL,
		token:   cfg.CalendlyToken,
	}
}

// doJSON ejecuta un request autenticado y devuelve el body si el status es 2xx
func (c *CalendlyClient) doJSON(ctx context.Context, method, rawURL string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("error marshalling request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error calling calendly: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("calendly returned status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// resolveOwnerURI obtiene el URI del usuario del token vía GET /users/me.
// Se resuelve en cada invocación: el pipeline no retiene estado entre webhooks.
func (c *CalendlyClient) resolveOwnerURI(ctx context.Context) (string, error) {
	body, err := c.doJSON(ctx, "GET", c.baseURL+"/users/me", nil)
	if err != nil {
		return "", fmt.Errorf("error resolving calendly user: %w", err)
	}

	var result struct {
		Resource struct {
			URI string `json:"uri"`
		} `json:"resource"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("error unmarshalling users/me response: %w", err)
	}
	if result.Resource.URI == "" {
		return "", fmt.Errorf("calendly users/me returned empty resource uri")
	}

	return result.Resource.URI, nil
}

// findEventTypeURI lista los event types del usuario y matchea el slug exacto
func (c *CalendlyClient) findEventTypeURI(ctx context.Context, ownerURI, slug string) (string, error) {
	listURL := fmt.Sprintf("%s/event_types?user=%s", c.baseURL, url.QueryEscape(ownerURI))
	body, err := c.doJSON(ctx, "GET", listURL, nil)
	if err != nil {
		return "", fmt.Errorf("error listing event types: %w", err)
	}

	var result struct {
		Collection []struct {
			URI  string `json:"uri"`
			Slug string `json:"slug"`
		} `json:"collection"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("error unmarshalling event_types response: %w", err)
	}

	for _, eventType := range result.Collection {
		if eventType.Slug == slug {
			return eventType.URI, nil
		}
	}

	return "", fmt.Errorf("%w: %q", entity.ErrEventTypeNotFound, slug)
}

// CreateSchedulingLink acuña un link de agendamiento de un solo uso para el
// event type con el slug dado. Los datos del invitado van como query params
// de prellenado en el booking URL; el título del ticket viaja como utm_content
// para poder atribuir el booking a la unidad comprada.
func (c *CalendlyClient) CreateSchedulingLink(ctx context.Context, slug, ticketTitle string, invitee entity.CustomerIdentity) (string, error) {
	if slug == "" {
		return "", entity.ErrSchedulingSlugEmpty
	}

	// 1. Resolver identidad del dueño del token
	ownerURI, err := c.resolveOwnerURI(ctx)
	if err != nil {
		return "", err
	}

	// 2. Matchear el slug contra los event types del dueño
	eventTypeURI, err := c.findEventTypeURI(ctx, ownerURI, slug)
	if err != nil {
		return "", err
	}

	// 3. Acuñar el link de un solo uso
	body, err := c.doJSON(ctx, "POST", c.baseURL+"/scheduling_links", map[string]interface{}{
		"max_event_count": 1,
		"owner":           eventTypeURI,
		"owner_type":      "EventType",
	})
	if err != nil {
		return "", fmt.Errorf("error creating scheduling link: %w", err)
	}

	var result struct {
		Resource struct {
			BookingURL string `json:"booking_url"`
		} `json:"resource"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("error unmarshalling scheduling_links response: %w", err)
	}
	if result.Resource.BookingURL == "" {
		return "", fmt.Errorf("calendly returned empty booking_url")
	}

	return withInviteePrefill(result.Resource.BookingURL, ticketTitle, invitee), nil
}

// withInviteePrefill agrega los query params de prellenado al booking URL
func withInviteePrefill(bookingURL, ticketTitle string, invitee entity.CustomerIdentity) string {
	parsed, err := url.Parse(bookingURL)
	if err != nil {
		return bookingURL
	}

	query := parsed.Query()
	if invitee.Email != "" {
		query.Set("email", invitee.Email)
	}
	if invitee.FirstName != "" || invitee.LastName != "" {
		query.Set("name", joinName(invitee.FirstName, invitee.LastName))
	}
	if ticketTitle != "" {
		query.Set("utm_content", ticketTitle)
	}
	parsed.RawQuery = query.Encode()

	return parsed.String()
}

func joinName(first, last string) string {
	if first == "" {
		return last
	}
	if last == "" {
		return first
	}
	return first + " " + last
}
