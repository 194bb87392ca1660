package mailer

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"text/template"

	"github.com/go-faster/errors"

	"storefront/internal/models"
)

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

var funcs = map[string]any{
	"money": func(v float64) string { return fmt.Sprintf("%.0f", v) },
	"lineTotal": func(item models.OrderItem) float64 {
		return item.Price * float64(item.Quantity)
	},
}

var orderConfirmationHTML = htmltemplate.Must(htmltemplate.New("order").Funcs(funcs).Parse(`<!doctype html>
<html><body style="font-family:Arial,sans-serif">
<h2>Thank you for your order, {{.Name}}!</h2>
<p>Order <strong>#{{.Order.ID.Hex}}</strong> was placed on {{.Order.CreatedAt.Format "02/01/2006 15:04"}}.</p>
<table cellpadding="6" style="border-collapse:collapse">
<tr><th align="left">Product</th><th>Qty</th><th align="right">Price</th><th align="right">Total</th></tr>
{{range .Order.Items}}<tr><td>{{.ProductName}}</td><td align="center">{{.Quantity}}</td><td align="right">{{money .Price}}</td><td align="right">{{money (lineTotal .)}}</td></tr>
{{end}}</table>
<p>Subtotal: {{money .Order.TotalPrice}} VND<br>
Points redeemed: {{.Order.PointsRedeemed}}<br>
<strong>Amount due: {{money .Order.PayableAmount}} VND</strong><br>
Points earned: {{.Order.PointsEarned}}</p>
<h3>Shipping to</h3>
<p>{{.Order.ShippingAddress.FullName}}{{with .Order.ShippingAddress.Phone}} ({{.}}){{end}}<br>
{{.Order.ShippingAddress.AddressLine}}{{with .Order.ShippingAddress.Ward}}, {{.}}{{end}}{{with .Order.ShippingAddress.District}}, {{.}}{{end}}{{with .Order.ShippingAddress.City}}, {{.}}{{end}}
{{with .Order.ShippingAddress.Note}}<br><em>{{.}}</em>{{end}}</p>
</body></html>`))

var orderConfirmationText = template.Must(template.New("order").Funcs(funcs).Parse(`Thank you for your order, {{.Name}}!

Order #{{.Order.ID.Hex}}
{{range .Order.Items}}- {{.ProductName}} x{{.Quantity}}: {{money (lineTotal .)}}
{{end}}
Subtotal: {{money .Order.TotalPrice}} VND
Points redeemed: {{.Order.PointsRedeemed}}
Amount due: {{money .Order.PayableAmount}} VND
Points earned: {{.Order.PointsEarned}}

Shipping to: {{.Order.ShippingAddress.FullName}}, {{.Order.ShippingAddress.AddressLine}}
`))

var passwordText = template.Must(template.New("password").Parse(`Hello {{.Name}},

Here is your auto-generated password: {{.Password}}

Please log in and change it as soon as possible.
`))

type orderData struct {
	Name  string
	Order *models.Order
}

// OrderConfirmationMessage renders the confirmation for order.
func OrderConfirmationMessage(user *models.User, order *models.Order) (Message, error) {
	data := orderData{Name: displayName(user.FullName), Order: order}

	var html, text bytes.Buffer
	if err := orderConfirmationHTML.Execute(&html, data); err != nil {
		return Message{}, errors.Wrap(err, "render order html")
	}
	if err := orderConfirmationText.Execute(&text, data); err != nil {
		return Message{}, errors.Wrap(err, "render order text")
	}
	return Message{
		To:      user.Email,
		Subject: fmt.Sprintf("Order confirmation #%s", order.ID.Hex()),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

// PasswordMessage renders the email carrying a generated password.
func PasswordMessage(to, name, password string) (Message, error) {
	var text bytes.Buffer
	err := passwordText.Execute(&text, struct{ Name, Password string }{displayName(name), password})
	if err != nil {
		return Message{}, errors.Wrap(err, "render password email")
	}
	return Message{To: to, Subject: "Your auto-generated password", Text: text.String()}, nil
}

func displayName(name string) string {
	if name == "" {
		return "User"
	}
	return name
}
