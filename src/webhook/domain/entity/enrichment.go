package entity

import (
	"fmt"
	"strings"
)

// EventField es un campo plano key→value del metaobject de evento.
// Se conserva como slice (no map) para preservar el orden en que la
// Admin API devuelve los campos: la nota de la orden lo muestra verbatim.
type EventField struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// EventDetails es el metaobject de evento referenciado por el metafield
// del producto. Forma variable: el esquema lo define el comercio.
type EventDetails struct {
	Fields []EventField `json:"fields"`
}

// Field devuelve el valor de un campo por key, "" si no existe
func (d *EventDetails) Field(key string) string {
	if d == nil {
		return ""
	}
	for _, f := range d.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return ""
}

// EnrichedRecord es el resultado del enriquecimiento de UNA unidad comprada
// de un line item. Cantidad N de un item produce hasta N records, cada uno
// con su propio link de agendamiento de un solo uso.
type EnrichedRecord struct {
	TicketTitle   string       `json:"ticket_title"`
	LineItemTitle string       `json:"line_item_title"`
	Fields        []EventField `json:"fields"`
	SchedulingURL string       `json:"scheduling_url,omitempty"`
}

// TicketTitle construye el título de una unidad: título del line item más
// el índice de ticket en base 1.
func TicketTitle(lineItemTitle string, unit int) string {
	return fmt.Sprintf("%s - Ticket %d", lineItemTitle, unit)
}

// RenderOrderNote genera el texto de la nota de la orden: una estrofa por
// record, separadas por línea en blanco. El orden de los records (items en
// orden de payload, unidades en orden 1..N) se muestra tal cual.
func RenderOrderNote(records []EnrichedRecord) string {
	var b strings.Builder

	for i, record := range records {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(record.TicketTitle)
		for _, field := range record.Fields {
			b.WriteString("\n")
			b.WriteString(field.Key)
			b.WriteString(": ")
			b.WriteString(field.Value)
		}
		if record.SchedulingURL != "" {
			b.WriteString("\nBooking link: ")
			b.WriteString(record.SchedulingURL)
		}
	}

	return b.String()
}
