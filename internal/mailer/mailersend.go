package mailer

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
)

const sessionTimeLayout = "02/01/2006 15:04"

type MailerSend struct {
	client *mailersend.Mailersend
	from   mailersend.From
}

func NewMailerSend(apiKey, fromName, fromEmail string) *MailerSend {
	return &MailerSend{
		client: mailersend.NewMailersend(apiKey),
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}
}

func (m *MailerSend) SendAppointmentConfirmed(toEmail string, start, end time.Time, price float64) error {
	subject := "Sessão confirmada"
	text := fmt.Sprintf(
		"Sua sessão está confirmada para %s (até %s). Valor: R$ %.2f.",
		start.Format(sessionTimeLayout), end.Format("15:04"), price,
	)
	html := fmt.Sprintf(
		`<p>Sua sessão está confirmada para <b>%s</b> (até %s).</p><p>Valor: R$ %.2f</p>`,
		start.Format(sessionTimeLayout), end.Format("15:04"), price,
	)
	return m.send(toEmail, subject, text, html)
}

func (m *MailerSend) SendCheckoutLink(toEmail, checkoutURL string, start time.Time, price float64) error {
	subject := "Finalize o pagamento da sua sessão"
	text := fmt.Sprintf(
		"Sua sessão de %s está reservada por 15 minutos. Pague em: %s (R$ %.2f)",
		start.Format(sessionTimeLayout), checkoutURL, price,
	)
	html := fmt.Sprintf(
		`<p>Sua sessão de <b>%s</b> está reservada por 15 minutos.</p><p><a href="%s">Pagar agora</a> (R$ %.2f)</p>`,
		start.Format(sessionTimeLayout), checkoutURL, price,
	)
	return m.send(toEmail, subject, text, html)
}

func (m *MailerSend) send(toEmail, subject, text, html string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Email: toEmail}})
	msg.SetSubject(subject)
	msg.SetText(text)
	msg.SetHTML(html)

	res, err := m.client.Email.Send(ctx, msg)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("mailersend error: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
