package services

import (
	"context"
	"time"

	"shinejewelry/internal/domain"
	applog "shinejewelry/internal/log"
	"shinejewelry/internal/mail"
	"shinejewelry/internal/repos"
	"shinejewelry/internal/validate"
)

type ContactService struct {
	Mail       mail.Mailer
	Contacts   *repos.ContactRepo
	OwnerEmail string

	Attempts int
	Backoff  time.Duration
}

func NewContactService(m mail.Mailer, contacts *repos.ContactRepo, ownerEmail string) *ContactService {
	return &ContactService{
		Mail:       m,
		Contacts:   contacts,
		OwnerEmail: ownerEmail,
		Attempts:   mailAttempts,
		Backoff:    mailBackoff,
	}
}

// Send forwards a contact-form message to the store owner with the
// visitor's address as Reply-To.
func (s *ContactService) Send(ctx context.Context, msg domain.ContactMessage) error {
	if msg.Name == "" || msg.Message == "" {
		return ErrMissingFields
	}
	if _, ok := validate.Email(msg.Email); !ok {
		return ErrMissingFields
	}

	if s.Contacts != nil {
		if err := s.Contacts.Save(msg); err != nil {
			applog.Error(nil, "archive.contact.fail", err, nil)
		}
	}
	return mail.SendWithRetry(ctx, s.Mail, mail.Message{
		FromName: "Website Contact",
		To:       s.OwnerEmail,
		ReplyTo:  msg.Email,
		Subject:  "Contact message from " + msg.Name,
		Text:     mail.ContactBody(msg),
	}, s.Attempts, s.Backoff)
}
