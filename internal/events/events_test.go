package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

type failingPublisher struct{ calls int }

func (f *failingPublisher) Publish(context.Context, ...Event) error {
	f.calls++
	return errors.New("broker down")
}
func (f *failingPublisher) Close() error { return nil }

func TestToMessage(t *testing.T) {
	ev, err := New(InvoicePosted, "INV-20240301-093000", InvoicePostedPayload{InvoiceID: 7, InvoiceNo: "INV-20240301-093000", Total: 99.5, TotalItems: 3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	msg, err := toMessage(ev)
	if err != nil {
		t.Fatalf("toMessage: %v", err)
	}
	if string(msg.Key) != "INV-20240301-093000" {
		t.Errorf("key = %q", msg.Key)
	}
	if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != InvoicePosted {
		t.Errorf("headers = %+v", msg.Headers)
	}

	var decoded struct {
		ID      string `json:"id"`
		Type    string `json:"type"`
		Payload struct {
			InvoiceID int64   `json:"invoice_id"`
			Total     float64 `json:"total"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.ID != ev.ID.String() || decoded.Type != InvoicePosted {
		t.Errorf("envelope = %+v", decoded)
	}
	if decoded.Payload.InvoiceID != 7 || decoded.Payload.Total != 99.5 {
		t.Errorf("payload = %+v", decoded.Payload)
	}
}

func TestEmitSwallowsErrors(t *testing.T) {
	p := &failingPublisher{}
	Emit(context.Background(), p, StockAdjusted, "1", StockPayload{MedicineID: 1, Delta: -2})
	if p.calls != 1 {
		t.Errorf("calls = %d, want 1", p.calls)
	}
	Emit(context.Background(), nil, StockAdjusted, "1", nil)
}

func TestFromConfig(t *testing.T) {
	if _, ok := FromConfig(nil, "topic").(Noop); !ok {
		t.Error("FromConfig without brokers should return Noop")
	}
}
