package mail

import (
	"context"
	"time"

	gomail "github.com/wneessen/go-mail"

	applog "shinejewelry/internal/log"
)

type Message struct {
	FromName string
	To       string
	ReplyTo  string
	Subject  string
	HTML     string
	Text     string
}

// Mailer is the external mail-sending capability. Kept as an interface
// so tests and the order flow can swap in a recorder.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPMailer struct {
	client *gomail.Client
	from   string
}

func NewSMTPMailer(host string, port int, user, pass string) (*SMTPMailer, error) {
	client, err := gomail.NewClient(host,
		gomail.WithPort(port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(user),
		gomail.WithPassword(pass),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	)
	if err != nil {
		return nil, err
	}
	return &SMTPMailer{client: client, from: user}, nil
}

func (s *SMTPMailer) Send(ctx context.Context, msg Message) error {
	m := gomail.NewMsg()
	if msg.FromName != "" {
		if err := m.FromFormat(msg.FromName, s.from); err != nil {
			return err
		}
	} else if err := m.From(s.from); err != nil {
		return err
	}
	if err := m.To(msg.To); err != nil {
		return err
	}
	if msg.ReplyTo != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return err
		}
	}
	m.Subject(msg.Subject)
	if msg.HTML != "" {
		m.SetBodyString(gomail.TypeTextHTML, msg.HTML)
	} else {
		m.SetBodyString(gomail.TypeTextPlain, msg.Text)
	}
	return s.client.DialAndSendWithContext(ctx, m)
}

// SendWithRetry attempts delivery up to attempts times, sleeping
// attempt*backoff between tries. The last error is surfaced.
func SendWithRetry(ctx context.Context, m Mailer, msg Message, attempts int, backoff time.Duration) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = m.Send(ctx, msg); err == nil {
			return nil
		}
		applog.Error(nil, "mail.send.fail", err, map[string]any{"attempt": attempt, "to": msg.To})
		if attempt == attempts {
			break
		}
		select {
		case <-time.After(time.Duration(attempt) * backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
