package usecase

import (
	"context"
	"fmt"
	"log"

	"github.com/admin-rsn8-inc/shopify-calendly-klaviyo-integration/src/webhook/application/response"
	"github.com/admin-rsn8-inc/shopify-calendly-klaviyo-integration/src/webhook/domain/entity"
	"github.com/admin-rsn8-inc/shopify-calendly-klaviyo-integration/src/webhook/domain/port"
)

// ProcessOrderUseCase caso de uso que ejecuta el pipeline completo sobre una
// orden ya verificada y parseada: enriquecer line items, trackear el evento
// de marketing y anotar la orden.
type ProcessOrderUseCase struct {
	catalog   port.ProductCatalog
	scheduler port.SchedulingService
	tracker   port.EventTracker
	annotator port.OrderAnnotator
}

// NewProcessOrderUseCase crea una nueva instancia del caso de uso
func NewProcessOrderUseCase(
	catalog port.ProductCatalog,
	scheduler port.SchedulingService,
	tracker port.EventTracker,
	annotator port.OrderAnnotator,
) *ProcessOrderUseCase {
	return &ProcessOrderUseCase{
		catalog:   catalog,
		scheduler: scheduler,
		tracker:   tracker,
		annotator: annotator,
	}
}

// Execute procesa una orden de principio a fin:
// 1. Enriquecer cada line item, una unidad por vez (fallos por item se
//    loguean y no aportan records; nunca abortan el loop)
// 2. Sin records → no hay llamadas salientes, la invocación termina en skip
// 3. Trackear el evento en Klaviyo (se saltea si no hay email resoluble)
// 4. Sobreescribir la nota de la orden en Shopify
// Los errores de los pasos 3 y 4 son fatales para la invocación.
func (uc *ProcessOrderUseCase) Execute(ctx context.Context, order *entity.Order) (*response.ProcessOrderResponse, error) {
	// ========================================================================
	// PASO 1: Enriquecimiento por line item, por unidad comprada
	// ========================================================================
	records, failures := uc.enrich(ctx, order)

	resp := &response.ProcessOrderResponse{
		OrderID:        order.ID,
		OrderName:      order.Name,
		Records:        len(records),
		LookupFailures: failures,
	}

	// ========================================================================
	// PASO 2: Gate: sin records no se llama ni al tracker ni al annotator
	// ========================================================================
	if len(records) == 0 {
		log.Printf("Order %s: no enrichable line items, skipping tracking and annotation", order.Name)
		resp.Status = "skipped"
		return resp, nil
	}

	// ========================================================================
	// PASO 3: Evento de marketing (requiere identidad con email)
	// ========================================================================
	identity := order.Identity()
	if identity.Email == "" {
		log.Printf("WARNING: order %s has no resolvable customer email, skipping event tracking", order.Name)
	} else {
		if err := uc.tracker.TrackOrderEvent(ctx, order, identity, records); err != nil {
			return nil, fmt.Errorf("%w: %v", entity.ErrTrackingFailed, err)
		}
		resp.Tracked = true
	}

	// ========================================================================
	// PASO 4: Nota de la orden (sobreescritura, no append)
	// ========================================================================
	note := entity.RenderOrderNote(records)
	if err := uc.annotator.UpdateOrderNote(ctx, order.AdminGID(), note); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrAnnotationFailed, err)
	}
	resp.Annotated = true

	resp.Status = "processed"
	return resp, nil
}

// enrich recorre los line items en orden de payload y genera un record por
// unidad comprada. Cualquier fallo de lookup se loguea y esa unidad (o ese
// item) no aporta nada; el loop siempre continúa.
func (uc *ProcessOrderUseCase) enrich(ctx context.Context, order *entity.Order) ([]entity.EnrichedRecord, int) {
	var records []entity.EnrichedRecord
	failures := 0
	identity := order.Identity()

	for _, item := range order.LineItems {
		// Lookup de catálogo: una vez por item, aplica a todas sus unidades
		details, err := uc.catalog.GetEventDetails(ctx, item.ProductGID())
		if err != nil {
			log.Printf("Order %s: event details lookup failed for product %d (%s): %v",
				order.Name, item.ProductID, item.Title, err)
			failures++
			continue
		}
		if details == nil {
			// Producto sin metafield de evento: no es un error
			continue
		}

		slug := details.Field("calendly_event_slug")

		for unit := 1; unit <= item.Quantity; unit++ {
			record := entity.EnrichedRecord{
				TicketTitle:   entity.TicketTitle(item.Title, unit),
				LineItemTitle: item.Title,
				Fields:        details.Fields,
			}

			// Evento agendable: un link de un solo uso por unidad
			if slug != "" {
				url, err := uc.scheduler.CreateSchedulingLink(ctx, slug, record.TicketTitle, identity)
				if err != nil {
					log.Printf("Order %s: scheduling link failed for %q: %v", order.Name, record.TicketTitle, err)
					failures++
					continue
				}
				record.SchedulingURL = url
			}

			records = append(records, record)
		}
	}

	return records, failures
}
