package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	sharedConfig "github.com/admin-rsn8-inc/shopify-calendly-klaviyo-integration/src/shared/infrastructure/config"
	"github.com/admin-rsn8-inc/shopify-calendly-klaviyo-integration/src/webhook/application/usecase"
	webhookClient "github.com/admin-rsn8-inc/shopify-calendly-klaviyo-integration/src/webhook/infrastructure/client"
	webhookController "github.com/admin-rsn8-inc/shopify-calendly-klaviyo-integration/src/webhook/infrastructure/controller"
)

// getEnv obtiene una variable de entorno o devuelve un valor por defecto
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func main() {
	log.Println("🚀 Shopify → Calendly → Klaviyo Webhook Service - Iniciando...")

	// Cargar configuración inmutable desde variables de entorno
	cfg, err := sharedConfig.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Error loading configuration: %v", err)
	}

	// Configurar el router con Gin
	router := gin.New()

	// Agregar middlewares básicos necesarios
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Configurar Prometheus metrics si está habilitado
	if getEnv("PROMETHEUS_ENABLED", "false") == "true" {
		log.Println("Registering /metrics endpoint for webhook service")
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	} else {
		log.Println("Prometheus metrics disabled for webhook service")
	}

	// Health check
	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	// Clientes HTTP hacia los servicios externos
	shopifyClient := webhookClient.NewShopifyClient(cfg)
	calendlyClient := webhookClient.NewCalendlyClient(cfg)
	klaviyoClient := webhookClient.NewKlaviyoClient(cfg)

	// Caso de uso del pipeline (Shopify cumple dos roles: catálogo y annotator)
	processOrderUC := usecase.NewProcessOrderUseCase(
		shopifyClient,
		calendlyClient,
		klaviyoClient,
		shopifyClient,
	)

	// Controlador del webhook
	controller := webhookController.NewWebhookController(processOrderUC, cfg.ShopifyWebhookSecret)
	controller.RegisterRoutes(router.Group("/"))

	// Arrancar el servidor
	port := getEnv("PORT", "8080")
	log.Printf("✅ Webhook service listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("❌ Error starting server: %v", err)
	}
}
