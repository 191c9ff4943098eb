package mail

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type flakyMailer struct {
	failures int
	calls    int
}

func (f *flakyMailer) Send(context.Context, Message) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("connection refused")
	}
	return nil
}

func TestSendWithRetryEventuallySucceeds(t *testing.T) {
	m := &flakyMailer{failures: 2}
	err := SendWithRetry(context.Background(), m, Message{To: "a@b.c"}, 3, time.Millisecond)
	if err != nil {
		t.Fatalf("want success on third attempt, got %v", err)
	}
	if m.calls != 3 {
		t.Fatalf("want 3 attempts, got %d", m.calls)
	}
}

func TestSendWithRetryExhaustsAttempts(t *testing.T) {
	m := &flakyMailer{failures: 10}
	err := SendWithRetry(context.Background(), m, Message{To: "a@b.c"}, 3, time.Millisecond)
	if err == nil {
		t.Fatal("want error after attempts exhausted")
	}
	if m.calls != 3 {
		t.Fatalf("want exactly 3 attempts, got %d", m.calls)
	}
}

func TestSendWithRetryRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := &flakyMailer{failures: 10}
	err := SendWithRetry(ctx, m, Message{To: "a@b.c"}, 3, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if m.calls != 1 {
		t.Fatalf("cancelled context should stop after first attempt, got %d", m.calls)
	}
}

func TestOrderBodiesComputeTotals(t *testing.T) {
	d := OrderEmailData{
		Ref:      "SJ-123456-ABCD",
		Subtotal: 200, Shipping: 80, Total: 280,
		PaymentLabel: "Cash On Delivery",
	}
	body, err := CustomerOrderBody(d)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"SJ-123456-ABCD", "200.00", "80.00", "280.00", "Cash On Delivery"} {
		if !strings.Contains(body, want) {
			t.Fatalf("customer body missing %q", want)
		}
	}

	d.ConfirmURL = "http://localhost:3000/api/confirm-payment?id=tok&email=a%40b.c"
	owner, err := OwnerOrderBody(d)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(owner, "Confirm Instapay Payment") {
		t.Fatal("owner body missing confirmation button")
	}
}
