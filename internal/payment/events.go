package payment

import (
	"encoding/json"
	"net/url"
)

type EventKind string

const (
	EventPayment       EventKind = "payment"
	EventMerchantOrder EventKind = "merchant_order"
	EventUnrecognized  EventKind = "unrecognized"
)

// Event — закрытое размеченное объединение входящих уведомлений.
// Нераспознанные формы не трогаются дальше логирования.
type Event struct {
	Kind       EventKind
	ResourceID string
}

type webhookBody struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// ParseEvent извлекает тип и id ресурса из тела и query-параметров.
// Провайдер дублирует id в query как data.id — query имеет приоритет,
// потому что именно он участвует в подписи.
func ParseEvent(body []byte, query url.Values) Event {
	var b webhookBody
	_ = json.Unmarshal(body, &b)

	resourceID := query.Get("data.id")
	if resourceID == "" {
		resourceID = b.Data.ID
	}

	kind := EventKind(b.Type)
	if kind == "" {
		kind = EventKind(query.Get("type"))
	}

	switch kind {
	case EventPayment, EventMerchantOrder:
		return Event{Kind: kind, ResourceID: resourceID}
	default:
		return Event{Kind: EventUnrecognized, ResourceID: resourceID}
	}
}
