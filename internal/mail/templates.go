package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"shinejewelry/internal/domain"
)

// OrderEmailData feeds both the owner notification and the customer
// confirmation body. Subtotal is always Total minus Shipping.
type OrderEmailData struct {
	Ref          string
	Customer     domain.Customer
	Items        []domain.OrderItem
	Subtotal     float64
	Shipping     float64
	Total        float64
	PaymentLabel string
	ConfirmURL   string
	BaseURL      string
	GeneratedAt  string
}

func NewOrderEmailData(ref string, ord domain.OrderRequest, baseURL string) OrderEmailData {
	label := "Cash On Delivery"
	if ord.PaymentType == domain.PaymentInstapay {
		label = "Instapay (Paid)"
	}
	return OrderEmailData{
		Ref:          ref,
		Customer:     ord.Customer,
		Items:        ord.Items,
		Subtotal:     ord.Total - ord.Shipping,
		Shipping:     ord.Shipping,
		Total:        ord.Total,
		PaymentLabel: label,
		BaseURL:      baseURL,
		GeneratedAt:  time.Now().Format("2006-01-02 15:04"),
	}
}

var funcs = template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
}

const itemsTableTmpl = `
<table style="width:100%;border-collapse:collapse;margin-top:8px;font-size:0.9rem;">
  <thead>
    <tr style="background:#fdf2d6;">
      <th style="padding:10px 12px;text-align:left;color:#a97a2f;border-bottom:2px solid #e8c980;">Item</th>
      <th style="padding:10px 12px;text-align:left;color:#a97a2f;border-bottom:2px solid #e8c980;">Title</th>
      <th style="padding:10px 12px;text-align:center;color:#a97a2f;border-bottom:2px solid #e8c980;">Qty</th>
      <th style="padding:10px 12px;text-align:right;color:#a97a2f;border-bottom:2px solid #e8c980;">Price</th>
    </tr>
  </thead>
  <tbody>
  {{range .Items}}
    <tr style="background:#fff;">
      <td style="padding:8px 12px;">{{if .Img}}<img src="{{$.BaseURL}}/{{.Img}}" alt="{{.Title}}" style="width:60px;height:60px;object-fit:contain;border-radius:8px;border:1px solid #f1d9a6;">{{end}}</td>
      <td style="padding:8px 12px;font-weight:600;color:#7c4d00;">{{.Title}}</td>
      <td style="padding:8px 12px;text-align:center;color:#7c4d00;">{{.Qty}}</td>
      <td style="padding:8px 12px;text-align:right;color:#7c4d00;">{{.Price}} EGP</td>
    </tr>
  {{end}}
  </tbody>
</table>
<div style="margin-top:16px;padding:14px 18px;background:#fffbe9;border:1px solid #f1d9a6;border-radius:14px;">
  <div style="font-weight:600;color:#7c4d00;">Subtotal: {{money .Subtotal}} EGP</div>
  <div style="font-weight:600;color:#7c4d00;">Shipping: {{money .Shipping}} EGP</div>
  <div style="font-weight:800;color:#a97a2f;font-size:1.05rem;">Total: {{money .Total}} EGP</div>
  <div style="margin-top:10px;font-size:0.8rem;color:#7c4d00;"><strong>Payment:</strong> {{.PaymentLabel}}</div>
</div>`

const customerDetailsTmpl = `
<div style="background:#fffbe9;border:1px solid #f1d9a6;border-radius:14px;padding:14px 18px;margin-bottom:18px;">
  <div style="font-weight:700;color:#a97a2f;margin-bottom:8px;">Customer Details</div>
  <div style="font-size:0.85rem;line-height:1.5;color:#7c4d00;">
    <strong>Name:</strong> {{.Customer.Name}}<br>
    <strong>Email:</strong> {{.Customer.Email}}<br>
    <strong>Phone:</strong> {{if .Customer.Phone}}{{.Customer.Phone}}{{else}}N/A{{end}}<br>
    <strong>Address:</strong> {{if .Customer.Address}}{{.Customer.Address}}{{else}}N/A{{end}}<br>
    <strong>City:</strong> {{if .Customer.City}}{{.Customer.City}}{{else}}N/A{{end}}<br>
    <strong>Governorate:</strong> {{if .Customer.Governorate}}{{.Customer.Governorate}}{{else}}N/A{{end}}
  </div>
</div>`

var ownerTmpl = template.Must(template.New("owner").Funcs(funcs).Parse(`
<h2 style="color:#a97a2f;margin:0 0 6px;font-size:1.4rem;">New Order Received</h2>
<div style="font-size:0.9rem;color:#7c4d00;margin-bottom:14px;">Order Reference: <strong>{{.Ref}}</strong></div>
` + customerDetailsTmpl + `
<div style="font-weight:700;color:#a97a2f;margin-bottom:8px;">Items</div>
` + itemsTableTmpl + `
{{if .ConfirmURL}}
<div style="margin-top:24px;"><a href="{{.ConfirmURL}}" style="background:#4bb543;color:#fff;padding:10px 18px;border-radius:8px;text-decoration:none;font-weight:700;">Confirm Instapay Payment</a></div>
{{end}}
<div style="margin-top:18px;font-size:0.75rem;color:#9c6d16;">Generated automatically &bull; {{.GeneratedAt}}</div>`))

var customerTmpl = template.Must(template.New("customer").Funcs(funcs).Parse(`
<h2 style="color:#a97a2f;margin:0 0 6px;font-size:1.5rem;">Order Confirmed</h2>
<p style="font-size:0.95rem;color:#7c4d00;line-height:1.55;margin:0 0 14px;">Hi {{.Customer.Name}},<br><br>
Thank you for shopping with <strong>Shine Jewelry</strong>. Your order has been <strong>successfully received</strong> and is now being prepared. Estimated delivery: <strong>3&ndash;4 business days</strong>.<br><br>
Below is a summary of your order (<strong>Reference:</strong> {{.Ref}}).</p>
` + customerDetailsTmpl + itemsTableTmpl + `
<p style="font-size:0.82rem;line-height:1.55;color:#7c4d00;margin:18px 0 8px;">If you have any questions, problems, or feedback, please send us a message using the contact form on our website and we will get back to you shortly.<br><br>
Warm regards,<br>&mdash; Shine Jewelry Team</p>
<div style="margin-top:10px;font-size:0.7rem;color:#b08844;text-align:center;">This email was generated automatically. Please do not reply directly.</div>`))

func OwnerOrderBody(d OrderEmailData) (string, error) {
	var buf bytes.Buffer
	if err := ownerTmpl.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func CustomerOrderBody(d OrderEmailData) (string, error) {
	var buf bytes.Buffer
	if err := customerTmpl.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ContactBody is plain text; the contact form carries no markup.
func ContactBody(msg domain.ContactMessage) string {
	return fmt.Sprintf("Name: %s\nEmail: %s\n\nMessage:\n%s", msg.Name, msg.Email, msg.Message)
}
