package utils

import (
	"fmt"
	"html"
	"strings"

	"emporium_back_end/internal/models"
	"emporium_back_end/internal/orders"
)

// OrderStatusEmail renders the subject and HTML body sent when an
// order changes status.
func OrderStatusEmail(order models.Order, userName string) (string, string) {
	subject := statusSubject(order.Status)

	var rows strings.Builder
	for _, item := range order.Items {
		title := item.Title
		if title == "" {
			title = item.Product.Hex()
		}
		fmt.Fprintf(&rows, `
			<tr>
				<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%d</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%.2f</td>
			</tr>`, html.EscapeString(title), item.Quantity, item.Price)
	}

	body := fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>%s</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: %s;">%s</h2>
		<p>Hello %s,</p>
		<p>%s</p>
		<p>Order <strong>#%s</strong></p>
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Product</th>
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Quantity</th>
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Unit price</th>
				</tr>
			</thead>
			<tbody>%s
			</tbody>
		</table>
		<p><strong>Total: %.2f</strong></p>
	</div>
</body>
</html>`,
		html.EscapeString(subject),
		statusColor(order.Status), html.EscapeString(string(order.Status)),
		html.EscapeString(userName),
		statusMessage(order.Status),
		order.ID.Hex(),
		rows.String(),
		order.Total,
	)
	return subject, body
}

// WelcomeEmail renders the message sent after signup.
func WelcomeEmail(userName string) (string, string) {
	subject := "Welcome to Emporium"
	body := fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<body style="font-family: Arial, sans-serif; padding: 20px;">
	<h2>Welcome, %s!</h2>
	<p>Your account is ready. Happy shopping.</p>
</body>
</html>`, html.EscapeString(userName))
	return subject, body
}

func statusSubject(s orders.Status) string {
	switch s {
	case orders.StatusPending:
		return "We received your order"
	case orders.StatusDispatched:
		return "Your order has been dispatched"
	case orders.StatusOutForDelivery:
		return "Your order is out for delivery"
	case orders.StatusDelivered:
		return "Your order has been delivered"
	case orders.StatusCancelled:
		return "Your order has been cancelled"
	}
	return "Your order was updated"
}

func statusMessage(s orders.Status) string {
	switch s {
	case orders.StatusPending:
		return "Thanks for shopping with us. We will let you know when it ships."
	case orders.StatusDispatched:
		return "Your package has left our warehouse."
	case orders.StatusOutForDelivery:
		return "Your package will arrive today."
	case orders.StatusDelivered:
		return "Your package was delivered. Enjoy!"
	case orders.StatusCancelled:
		return "Your order was cancelled and any reserved stock released."
	}
	return "The status of your order changed."
}

func statusColor(s orders.Status) string {
	switch s {
	case orders.StatusDelivered:
		return "#2e7d32"
	case orders.StatusCancelled:
		return "#c62828"
	case orders.StatusOutForDelivery, orders.StatusDispatched:
		return "#1565c0"
	}
	return "#333333"
}
