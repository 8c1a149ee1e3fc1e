// Package logging emits one JSON object per line so log collectors can
// index entries without a parsing step.
package logging

import (
	"encoding/json"
	"log"
	"time"
)

type Fields struct {
	Service    string `json:"service"`
	UserID     int64  `json:"user_id,omitempty"`
	OrderID    int64  `json:"order_id,omitempty"`
	ProductID  int64  `json:"product_id,omitempty"`
	Step       string `json:"step,omitempty"`
	Status     string `json:"status,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
	Message    string `json:"message,omitempty"`
}

type line struct {
	Fields
	Timestamp string `json:"timestamp"`
}

func Log(fields Fields) {
	data, err := json.Marshal(line{
		Fields:    fields,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		log.Printf("{\"service\":%q,\"status\":\"log_error\",\"error\":%q}", fields.Service, err.Error())
		return
	}
	log.Print(string(data))
}
