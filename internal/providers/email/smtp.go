package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type SMTPProvider struct {
	cfg Config
}

func NewSMTP(cfg Config) *SMTPProvider {
	return &SMTPProvider{cfg: cfg}
}

func (p *SMTPProvider) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	if len(to) == 0 {
		return fmt.Errorf("email: no recipients")
	}

	auth := smtp.PlainAuth("", p.cfg.Username, p.cfg.Password, p.cfg.Host)
	addr := fmt.Sprintf("%s:%d", p.cfg.Host, p.cfg.Port)

	mime := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n"
	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\n%s\r\n%s", to[0], subject, mime, htmlBody))

	return smtp.SendMail(addr, auth, p.cfg.From, to, msg)
}

var orderConfirmationTmpl = template.Must(template.New("order_confirmation").Parse(`
<h2>Thanks for your order!</h2>
<p>Order <strong>{{.Number}}</strong> has been paid.</p>
<table>
{{range .Items}}
  <tr><td>{{.Title}}</td><td>{{.Quantity}} x {{.UnitPrice}}</td></tr>
{{end}}
</table>
<p>Shipping: {{.ShippingFee}}</p>
<p><strong>Total: {{.Total}}</strong></p>
`))

// OrderConfirmation holds template data for the paid-order email.
type OrderConfirmation struct {
	Number      string
	ShippingFee string
	Total       string
	Items       []OrderConfirmationItem
}

type OrderConfirmationItem struct {
	Title     string
	Quantity  int
	UnitPrice string
}

// RenderOrderConfirmation renders the confirmation body.
func RenderOrderConfirmation(data OrderConfirmation) (string, error) {
	var body bytes.Buffer
	if err := orderConfirmationTmpl.Execute(&body, data); err != nil {
		return "", fmt.Errorf("render order confirmation: %w", err)
	}
	return body.String(), nil
}
