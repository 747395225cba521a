package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// VerifyWebhookSignature valida la firma HMAC-SHA256 de un webhook de Shopify.
// El digest se calcula sobre los bytes crudos del body (tal como llegaron por
// el wire, NO sobre JSON re-serializado) y se compara en base64 contra el
// header X-Shopify-Hmac-Sha256.
//
// La comparación es en tiempo constante (hmac.Equal) para no filtrar
// información por timing.
func VerifyWebhookSignature(secret string, body []byte, signatureHeader string) bool {
	if secret == "" || signatureHeader == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signatureHeader))
}

// ComputeWebhookSignature calcula la firma esperada para un body dado.
// Usado por tests y herramientas de verificación manual.
func ComputeWebhookSignature(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
