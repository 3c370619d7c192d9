package metrics

import (
	"time"

	"github.com/zeusync/showroom/internal/core/events/bus"
)

var _ bus.EventBusObserver = (*BusObserver)(nil)

// BusObserver counts deliveries per event type. One observer can watch any
// number of buses.
type BusObserver struct {
	reg *Registry
}

func NewBusObserver(reg *Registry) *BusObserver {
	return &BusObserver{reg: reg}
}

func (o *BusObserver) OnPublish(eventType string, _ bus.Event) {
	o.reg.Counter("events_published_total", map[string]string{"type": eventType}).Inc()
}

func (o *BusObserver) OnDelivered(eventType string, handlers int, err error, took time.Duration) {
	tags := map[string]string{"type": eventType}
	o.reg.Counter("event_handlers_invoked_total", tags).Add(float64(handlers))
	o.reg.Counter("event_delivery_seconds_total", tags).Add(took.Seconds())
	if err != nil {
		o.reg.Counter("event_handler_errors_total", tags).Inc()
	}
}
