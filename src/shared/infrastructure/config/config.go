package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// AppConfig contiene toda la configuración del servicio, cargada una sola vez
// al arrancar. Es inmutable: se pasa por valor a los constructores y ningún
// componente lee variables de entorno por su cuenta.
type AppConfig struct {
	// Shopify Admin API
	ShopifyShopDomain    string // ej: mi-tienda.myshopify.com
	ShopifyAccessToken   string
	ShopifyAPIVersion    string
	ShopifyWebhookSecret string

	// Namespace/key del metafield que referencia el metaobject de evento
	MetafieldNamespace string
	MetafieldKey       string

	// Calendly API
	CalendlyBaseURL string
	CalendlyToken   string

	// Klaviyo API
	KlaviyoBaseURL    string
	KlaviyoAPIKey     string
	KlaviyoAPIVersion string
	KlaviyoMetricName string

	// Timeout para todas las llamadas HTTP salientes
	HTTPTimeout time.Duration
}

// getEnv obtiene una variable de entorno o devuelve un valor por defecto
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// LoadConfig construye la configuración desde variables de entorno.
// Falla si falta alguna credencial obligatoria.
func LoadConfig() (AppConfig, error) {
	cfg := AppConfig{
		ShopifyShopDomain:    os.Getenv("SHOPIFY_SHOP_DOMAIN"),
		ShopifyAccessToken:   os.Getenv("SHOPIFY_ACCESS_TOKEN"),
		ShopifyAPIVersion:    getEnv("SHOPIFY_API_VERSION", "2024-04"),
		ShopifyWebhookSecret: os.Getenv("SHOPIFY_WEBHOOK_SECRET"),
		MetafieldNamespace:   getEnv("EVENT_METAFIELD_NAMESPACE", "custom"),
		MetafieldKey:         getEnv("EVENT_METAFIELD_KEY", "event_details"),
		CalendlyBaseURL:      getEnv("CALENDLY_BASE_URL", "https://api.calendly.com"),
		CalendlyToken:        os.Getenv("CALENDLY_TOKEN"),
		KlaviyoBaseURL:       getEnv("KLAVIYO_BASE_URL", "https://a.klaviyo.com"),
		KlaviyoAPIKey:        os.Getenv("KLAVIYO_API_KEY"),
		KlaviyoAPIVersion:    getEnv("KLAVIYO_API_REVISION", "2024-02-15"),
		KlaviyoMetricName:    getEnv("KLAVIYO_METRIC_NAME", "Order Contains Event"),
		HTTPTimeout:          15 * time.Second,
	}

	if seconds := os.Getenv("OUTBOUND_TIMEOUT_SECONDS"); seconds != "" {
		n, err := strconv.Atoi(seconds)
		if err != nil || n <= 0 {
			return AppConfig{}, fmt.Errorf("invalid OUTBOUND_TIMEOUT_SECONDS: %q", seconds)
		}
		cfg.HTTPTimeout = time.Duration(n) * time.Second
	}

	// Credenciales obligatorias: sin ellas el pipeline no puede operar
	if cfg.ShopifyShopDomain == "" {
		return AppConfig{}, fmt.Errorf("SHOPIFY_SHOP_DOMAIN is required")
	}
	if cfg.ShopifyAccessToken == "" {
		return AppConfig{}, fmt.Errorf("SHOPIFY_ACCESS_TOKEN is required")
	}
	if cfg.ShopifyWebhookSecret == "" {
		return AppConfig{}, fmt.Errorf("SHOPIFY_WEBHOOK_SECRET is required")
	}
	if cfg.CalendlyToken == "" {
		return AppConfig{}, fmt.Errorf("CALENDLY_TOKEN is required")
	}
	if cfg.KlaviyoAPIKey == "" {
		return AppConfig{}, fmt.Errorf("KLAVIYO_API_KEY is required")
	}

	return cfg, nil
}
