package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admin-rsn8-inc/shopify-calendly-klaviyo-integration/src/shared/infrastructure/security"
	"github.com/admin-rsn8-inc/shopify-calendly-klaviyo-integration/src/webhook/application/usecase"
	"github.com/admin-rsn8-inc/shopify-calendly-klaviyo-integration/src/webhook/domain/entity"
)

const testSecret = "shpss_test_secret"

type stubCatalog struct {
	details *entity.EventDetails
	calls   int
}

func (s *stubCatalog) GetEventDetails(context.Context, string) (*entity.EventDetails, error) {
	s.calls++
	return s.details, nil
}

type stubScheduler struct{}

func (stubScheduler) CreateSchedulingLink(context.Context, string, string, entity.CustomerIdentity) (string, error) {
	return "https://calendly.com/d/abc", nil
}

type stubTracker struct {
	err   error
	calls int
}

func (s *stubTracker) TrackOrderEvent(context.Context, *entity.Order, entity.CustomerIdentity, []entity.EnrichedRecord) error {
	s.calls++
	return s.err
}

type stubAnnotator struct {
	err   error
	calls int
}

func (s *stubAnnotator) UpdateOrderNote(context.Context, string, string) error {
	s.calls++
	return s.err
}

type stubs struct {
	catalog   *stubCatalog
	tracker   *stubTracker
	annotator *stubAnnotator
}

func newTestRouter(t *testing.T, s stubs) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	uc := usecase.NewProcessOrderUseCase(s.catalog, stubScheduler{}, s.tracker, s.annotator)
	ctrl := NewWebhookController(uc, testSecret)

	router := gin.New()
	ctrl.RegisterRoutes(router.Group("/"))
	return router
}

func defaultStubs() stubs {
	return stubs{
		catalog: &stubCatalog{details: &entity.EventDetails{Fields: []entity.EventField{
			{Key: "title", Value: "Wine Tasting"},
		}}},
		tracker:   &stubTracker{},
		annotator: &stubAnnotator{},
	}
}

func postWebhook(router *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/webhooks/orders/create", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set(ShopifyHmacHeader, signature)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func orderBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"id":    42,
		"name":  "#1042",
		"email": "jon@example.com",
		"line_items": []map[string]interface{}{
			{"product_id": 100, "title": "Wine Tasting", "quantity": 1},
		},
	})
	require.NoError(t, err)
	return body
}

func TestHandleOrderCreated_Success(t *testing.T) {
	s := defaultStubs()
	router := newTestRouter(t, s)
	body := orderBody(t)

	recorder := postWebhook(router, body, security.ComputeWebhookSignature(testSecret, body))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, 1, s.tracker.calls)
	assert.Equal(t, 1, s.annotator.calls)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, "processed", resp["status"])
	assert.Equal(t, float64(1), resp["records"])
}

func TestHandleOrderCreated_InvalidSignature(t *testing.T) {
	s := defaultStubs()
	router := newTestRouter(t, s)
	body := orderBody(t)

	recorder := postWebhook(router, body, "AAAA invalid AAAA")

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	// Short-circuit: ni parseo con efectos ni llamadas externas
	assert.Zero(t, s.catalog.calls)
	assert.Zero(t, s.tracker.calls)
	assert.Zero(t, s.annotator.calls)
}

func TestHandleOrderCreated_MissingSignatureHeader(t *testing.T) {
	s := defaultStubs()
	router := newTestRouter(t, s)

	recorder := postWebhook(router, orderBody(t), "")

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Zero(t, s.catalog.calls)
}

func TestHandleOrderCreated_SignedBodyMutated(t *testing.T) {
	s := defaultStubs()
	router := newTestRouter(t, s)
	body := orderBody(t)
	signature := security.ComputeWebhookSignature(testSecret, body)

	mutated := bytes.Replace(body, []byte(`"#1042"`), []byte(`"#1043"`), 1)
	recorder := postWebhook(router, mutated, signature)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestHandleOrderCreated_MalformedJSONAfterValidSignature(t *testing.T) {
	s := defaultStubs()
	router := newTestRouter(t, s)
	body := []byte(`{"id": definitely-not-json`)

	recorder := postWebhook(router, body, security.ComputeWebhookSignature(testSecret, body))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Zero(t, s.catalog.calls)
	// Body genérico, sin detalle del error
	assert.JSONEq(t, `{"error": "internal server error"}`, recorder.Body.String())
}

func TestHandleOrderCreated_EmptyLineItemsSkips(t *testing.T) {
	s := defaultStubs()
	router := newTestRouter(t, s)
	body := []byte(`{"id": 42, "name": "#1042", "email": "jon@example.com"}`)

	recorder := postWebhook(router, body, security.ComputeWebhookSignature(testSecret, body))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Zero(t, s.tracker.calls)
	assert.Zero(t, s.annotator.calls)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, "skipped", resp["status"])
}

func TestHandleOrderCreated_AnnotatorFailureIs500(t *testing.T) {
	s := defaultStubs()
	s.annotator.err = errors.New("userErrors: note rejected")
	router := newTestRouter(t, s)
	body := orderBody(t)

	recorder := postWebhook(router, body, security.ComputeWebhookSignature(testSecret, body))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Equal(t, 1, s.tracker.calls, "tracker ya corrió cuando falla la anotación")
	assert.JSONEq(t, `{"error": "internal server error"}`, recorder.Body.String())
}

func TestHandleOrderCreated_TrackerFailureIs500(t *testing.T) {
	s := defaultStubs()
	s.tracker.err = errors.New("klaviyo 400")
	router := newTestRouter(t, s)
	body := orderBody(t)

	recorder := postWebhook(router, body, security.ComputeWebhookSignature(testSecret, body))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Zero(t, s.annotator.calls)
}
