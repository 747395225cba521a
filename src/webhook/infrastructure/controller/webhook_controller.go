package controller

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/admin-rsn8-inc/shopify-calendly-klaviyo-integration/src/shared/infrastructure/middleware"
	"github.com/admin-rsn8-inc/shopify-calendly-klaviyo-integration/src/shared/infrastructure/security"
	"github.com/admin-rsn8-inc/shopify-calendly-klaviyo-integration/src/webhook/application/usecase"
	"github.com/admin-rsn8-inc/shopify-calendly-klaviyo-integration/src/webhook/domain/entity"
)

// ShopifyHmacHeader header con la firma base64 HMAC-SHA256 del body
const ShopifyHmacHeader = "X-Shopify-Hmac-Sha256"

// WebhookController maneja las peticiones HTTP del webhook orders/create
type WebhookController struct {
	processOrderUC *usecase.ProcessOrderUseCase
	webhookSecret  string
}

// NewWebhookController crea una nueva instancia del controlador
func NewWebhookController(processOrderUC *usecase.ProcessOrderUseCase, webhookSecret string) *WebhookController {
	return &WebhookController{
		processOrderUC: processOrderUC,
		webhookSecret:  webhookSecret,
	}
}

// RegisterRoutes registra las rutas del controlador
func (c *WebhookController) RegisterRoutes(router *gin.RouterGroup) {
	webhooks := router.Group("/webhooks")
	webhooks.Use(middleware.RawBodyCapture())
	{
		webhooks.POST("/orders/create", c.HandleOrderCreated)
	}

	log.Println("Rutas Webhook disponibles:")
	log.Println("  POST   /webhooks/orders/create")
}

// HandleOrderCreated procesa un webhook orders/create de Shopify.
// Superficie de respuesta: 200 (procesado, salteado o parcial), 401 (firma
// inválida), 500 (cualquier otro error). Ningún detalle de error viaja al
// caller.
func (c *WebhookController) HandleOrderCreated(ctx *gin.Context) {
	// Correlation id para seguir la invocación en los logs
	requestID := uuid.New().String()

	// 1. Body crudo capturado por el middleware (bytes exactos del wire)
	body, ok := middleware.RawBody(ctx)
	if !ok {
		log.Printf("[%s] raw body missing from context", requestID)
		webhookRequests.WithLabelValues("error").Inc()
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	// 2. Verificar firma ANTES de parsear o llamar a cualquier servicio
	signature := ctx.GetHeader(ShopifyHmacHeader)
	if !security.VerifyWebhookSignature(c.webhookSecret, body, signature) {
		log.Printf("[%s] webhook signature verification failed", requestID)
		webhookRequests.WithLabelValues("unauthorized").Inc()
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	// 3. Parsear la orden (JSON malformado es fatal → 500)
	order, err := entity.ParseOrder(body)
	if err != nil {
		log.Printf("[%s] %v", requestID, err)
		webhookRequests.WithLabelValues("error").Inc()
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	log.Printf("[%s] processing order %s (%d line items)", requestID, order.Name, len(order.LineItems))

	// 4. Ejecutar el pipeline
	resp, err := c.processOrderUC.Execute(ctx.Request.Context(), order)
	if err != nil {
		log.Printf("[%s] order %s pipeline failed: %v", requestID, order.Name, err)
		webhookRequests.WithLabelValues("error").Inc()
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if resp.LookupFailures > 0 {
		enrichmentFailures.Add(float64(resp.LookupFailures))
	}
	webhookRequests.WithLabelValues(resp.Status).Inc()

	log.Printf("[%s] order %s done: status=%s records=%d tracked=%t annotated=%t",
		requestID, order.Name, resp.Status, resp.Records, resp.Tracked, resp.Annotated)

	ctx.JSON(http.StatusOK, resp)
}
