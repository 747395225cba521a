package port

import (
	"context"

	"github.com/admin-rsn8-inc/shopify-calendly-klaviyo-integration/src/webhook/domain/entity"
)

// ProductCatalog consulta los datos de evento asociados a un producto.
// Devuelve (nil, nil) cuando el producto no tiene metafield o referencia:
// "sin datos" no es un error.
type ProductCatalog interface {
	GetEventDetails(ctx context.Context, productGID string) (*entity.EventDetails, error)
}

// SchedulingService acuña un link de agendamiento de un solo uso para un
// event type identificado por su slug, con los datos del invitado prellenados.
type SchedulingService interface {
	CreateSchedulingLink(ctx context.Context, slug, ticketTitle string, invitee entity.CustomerIdentity) (string, error)
}

// EventTracker publica el evento de marketing agregado de la orden
type EventTracker interface {
	TrackOrderEvent(ctx context.Context, order *entity.Order, identity entity.CustomerIdentity, records []entity.EnrichedRecord) error
}

// OrderAnnotator sobreescribe la nota de una orden en la plataforma de comercio
type OrderAnnotator interface {
	UpdateOrderNote(ctx context.Context, orderGID, note string) error
}
