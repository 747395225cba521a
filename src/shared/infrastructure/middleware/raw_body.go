package middleware

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RawBodyKey es la clave bajo la cual el middleware guarda los bytes crudos
// del request en el contexto de Gin.
const RawBodyKey = "raw_body"

// MaxWebhookBodySize límite de tamaño del body para webhooks (1 MB).
// Shopify no envía payloads de orden mayores a esto.
const MaxWebhookBodySize = 1 << 20

// RawBodyCapture lee el body completo del request y lo guarda en el contexto
// antes de cualquier binding. La verificación HMAC necesita los bytes exactos
// que llegaron por el wire; un re-marshal de JSON produciría otra firma.
func RawBodyCapture() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.Body == nil {
			ctx.Set(RawBodyKey, []byte{})
			ctx.Next()
			return
		}

		body, err := io.ReadAll(io.LimitReader(ctx.Request.Body, MaxWebhookBodySize+1))
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "could not read request body"})
			return
		}
		if len(body) > MaxWebhookBodySize {
			ctx.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return
		}

		// Reponer el body por si algún handler posterior quiere leerlo
		ctx.Request.Body = io.NopCloser(bytes.NewReader(body))
		ctx.Set(RawBodyKey, body)
		ctx.Next()
	}
}

// RawBody recupera los bytes crudos guardados por RawBodyCapture.
func RawBody(ctx *gin.Context) ([]byte, bool) {
	value, exists := ctx.Get(RawBodyKey)
	if !exists {
		return nil, false
	}
	body, ok := value.([]byte)
	return body, ok
}
