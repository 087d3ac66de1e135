package notify

import "fmt"

func welcomePrompt(d welcomeData) string {
	return fmt.Sprintf(`Generate a professional and warm welcome email for a new coaching client.

Client Information:
- Name: %s
- Email: %s
- Package Type: %s
- Start Date: %s
- End Date: %s
- Amount Paid: $%s

Create an HTML email that:
1. Welcomes them warmly
2. Acknowledges their coaching investment
3. Sets expectations for the program
4. Provides next steps
5. Is professional yet personable

Sign it as %q.
Return only the HTML body, wrapped in <html> tags.`,
		d.Name, d.Email, d.Package, d.StartDate, d.EndDate, d.Amount, d.Signature)
}

func invoicePrompt(d invoiceData) string {
	balance := "not applicable (pay per session)"
	if d.ShowBalance {
		balance = "$" + d.RemainingBalance
	}

	return fmt.Sprintf(`Generate a professional invoice confirmation email for a coaching session.

Session Information:
- Client Name: %s
- Invoice Number: %s
- Coaching Type: %s
- Session Date: %s
- Hours: %s
- Participants: %d
- Amount: $%s
- Remaining Balance: %s

Create an HTML email that:
1. Thanks them for the session
2. Provides a clear summary of services rendered
3. Shows the amount due/paid
4. Is professional and clear

Sign it as %q.
Return only the HTML body, wrapped in <html> tags.`,
		d.Name, d.InvoiceNumber, d.CoachingType, d.SessionDate, d.Hours, d.Participants, d.Amount, balance, d.Signature)
}
