package services

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"shinejewelry/internal/domain"
	applog "shinejewelry/internal/log"
	"shinejewelry/internal/mail"
	"shinejewelry/internal/repos"
	"shinejewelry/internal/validate"
)

const (
	mailAttempts = 3
	mailBackoff  = 2 * time.Second
)

type OrderService struct {
	Mail       mail.Mailer
	Pending    *Pending
	Orders     *repos.OrderRepo
	OwnerEmail string
	BaseURL    string

	// Backoff is overridable so the retry path stays testable.
	Attempts int
	Backoff  time.Duration
}

func NewOrderService(m mail.Mailer, pending *Pending, orders *repos.OrderRepo, ownerEmail, baseURL string) *OrderService {
	return &OrderService{
		Mail:       m,
		Pending:    pending,
		Orders:     orders,
		OwnerEmail: ownerEmail,
		BaseURL:    baseURL,
		Attempts:   mailAttempts,
		Backoff:    mailBackoff,
	}
}

type PlaceResult struct {
	Ref             string
	AwaitingConfirm bool
}

// Place validates the order, records it in the archive, and drives the
// notification flow: COD notifies both parties synchronously, Instapay
// queues the customer email behind an owner confirmation link.
func (s *OrderService) Place(ctx context.Context, ord domain.OrderRequest) (PlaceResult, error) {
	if _, ok := validate.Email(ord.Customer.Email); !ok {
		return PlaceResult{}, ErrMissingFields
	}
	if len(ord.Items) == 0 {
		return PlaceResult{}, ErrMissingFields
	}
	if !validate.PaymentType(ord.PaymentType) {
		return PlaceResult{}, ErrUnknownPayment
	}

	ref := orderRef(time.Now())
	archiveID := uuid.NewString()
	data := mail.NewOrderEmailData(ref, ord, s.BaseURL)

	customerBody, err := mail.CustomerOrderBody(data)
	if err != nil {
		return PlaceResult{}, err
	}
	customerMsg := mail.Message{
		FromName: "Shine Jewelry",
		To:       ord.Customer.Email,
		Subject:  "Order confirmation - Shine Jewelry",
		HTML:     customerBody,
	}

	if ord.PaymentType == domain.PaymentInstapay {
		token := uuid.NewString()
		data.ConfirmURL = s.BaseURL + "/api/confirm-payment?id=" + token +
			"&email=" + url.QueryEscape(ord.Customer.Email)
		s.Pending.Put(token, pendingEntry{
			msg:       customerMsg,
			ref:       ref,
			archiveID: archiveID,
			email:     ord.Customer.Email,
		})
		s.archive(archiveID, ref, repos.StatusPending, ord)

		if err := s.sendOwner(ctx, data, ord); err != nil {
			return PlaceResult{}, err
		}
		return PlaceResult{Ref: ref, AwaitingConfirm: true}, nil
	}

	s.archive(archiveID, ref, repos.StatusPlaced, ord)
	if err := s.sendOwner(ctx, data, ord); err != nil {
		return PlaceResult{}, err
	}
	if err := mail.SendWithRetry(ctx, s.Mail, customerMsg, s.Attempts, s.Backoff); err != nil {
		return PlaceResult{}, err
	}
	return PlaceResult{Ref: ref}, nil
}

// Confirm delivers the queued customer confirmation for a token. The
// entry is evicted only after a successful send, so a delivery failure
// leaves the link usable for another attempt.
func (s *OrderService) Confirm(ctx context.Context, id string) error {
	e, ok := s.Pending.Get(id)
	if !ok {
		return ErrNoPending
	}
	if err := mail.SendWithRetry(ctx, s.Mail, e.msg, s.Attempts, s.Backoff); err != nil {
		return err
	}
	s.Pending.Delete(id)
	if s.Orders != nil {
		if err := s.Orders.SetStatus(e.archiveID, repos.StatusConfirm); err != nil {
			applog.Error(nil, "archive.status.fail", err, map[string]any{"ref": e.ref})
		}
	}
	return nil
}

// HasPending reports whether the token still resolves to a queued
// confirmation (used before rendering the confirmation page).
func (s *OrderService) HasPending(id string) bool {
	_, ok := s.Pending.Get(id)
	return ok
}

func (s *OrderService) sendOwner(ctx context.Context, data mail.OrderEmailData, ord domain.OrderRequest) error {
	body, err := mail.OwnerOrderBody(data)
	if err != nil {
		return err
	}
	msg := mail.Message{
		FromName: "Order Notification",
		To:       s.OwnerEmail,
		Subject:  fmt.Sprintf("New order from %s (%s)", ord.Customer.Name, ord.Customer.Email),
		HTML:     body,
	}
	return mail.SendWithRetry(ctx, s.Mail, msg, s.Attempts, s.Backoff)
}

func (s *OrderService) archive(id, ref, status string, ord domain.OrderRequest) {
	if s.Orders == nil {
		return
	}
	if err := s.Orders.Save(id, ref, status, ord); err != nil {
		applog.Error(nil, "archive.save.fail", err, map[string]any{"ref": ref})
	}
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// orderRef builds "SJ-" + last six digits of the millisecond timestamp
// + four random base36 chars, uppercased. Collision-improbable at this
// traffic scale; cryptographic uniqueness is a non-goal.
func orderRef(now time.Time) string {
	ts := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ts) > 6 {
		ts = ts[len(ts)-6:]
	}
	var b strings.Builder
	for i := 0; i < 4; i++ {
		b.WriteByte(base36[rand.Intn(len(base36))])
	}
	return "SJ-" + ts + "-" + strings.ToUpper(b.String())
}
