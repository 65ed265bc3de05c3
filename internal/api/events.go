package api

import (
	"encoding/json"
	"fmt"

	"github.com/nhle/stockwatch/internal/model"
)

// DecodeNotification parses a notification pushed over the event
// stream. Pushed notifications use the same document shape as the
// batch fetch endpoint.
func DecodeNotification(data json.RawMessage) (model.Notification, error) {
	var p notificationPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return model.Notification{}, fmt.Errorf("decoding pushed notification: %w", err)
	}
	return p.toModel(), nil
}

// PriceAlertEvent is the payload of a pushed price-alert trigger.
type PriceAlertEvent struct {
	Symbol      string  `json:"symbol"`
	Condition   string  `json:"condition"`
	TargetPrice float64 `json:"target_price"`
}

// DecodePriceAlert parses a price-alert event pushed over the stream.
func DecodePriceAlert(data json.RawMessage) (PriceAlertEvent, error) {
	var e PriceAlertEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return PriceAlertEvent{}, fmt.Errorf("decoding price alert event: %w", err)
	}
	return e, nil
}
