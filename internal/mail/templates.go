package mail

import (
	"fmt"
	"html"
	"strings"

	"github.com/spec-kit/site-api/internal/domain"
)

// RefHeader carries the originating record id on outbound email so inbound
// provider events can be correlated back to it.
const RefHeader = "X-Entity-Ref-ID"

// ContactAdminNotification is the copy of a new contact submission sent to
// the configured admin address.
func ContactAdminNotification(from, adminEmail string, contact *domain.ContactSubmission) Message {
	esc := html.EscapeString
	body := fmt.Sprintf(
		`<h2>New contact submission</h2>
<p><strong>From:</strong> %s &lt;%s&gt;</p>
<p>%s</p>
<p><em>Reference: %s</em></p>`,
		esc(contact.Name), esc(contact.Email), paragraphs(contact.Message), esc(contact.ID))

	return Message{
		From:    from,
		To:      []string{adminEmail},
		Subject: fmt.Sprintf("New contact from %s", contact.Name),
		HTML:    body,
		Text:    fmt.Sprintf("New contact from %s <%s>\n\n%s", contact.Name, contact.Email, contact.Message),
		Headers: map[string]string{RefHeader: contact.ID},
	}
}

// ContactConfirmation acknowledges the submitter's message. Replying to this
// email threads back to the submission via the stored provider email id.
func ContactConfirmation(from string, contact *domain.ContactSubmission) Message {
	body := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>Thanks for getting in touch. We received your message and will reply soon.
You can answer this email directly to add to the conversation.</p>
<blockquote>%s</blockquote>`,
		html.EscapeString(contact.Name), paragraphs(contact.Message))

	return Message{
		From:    from,
		To:      []string{contact.Email},
		Subject: "We received your message",
		HTML:    body,
		Text:    fmt.Sprintf("Hi %s,\n\nThanks for getting in touch. We received your message and will reply soon.\n\n> %s", contact.Name, contact.Message),
		Headers: map[string]string{RefHeader: contact.ID},
	}
}

// ContactReply delivers a staff reply together with a quoted copy of the
// original message.
func ContactReply(from string, contact *domain.ContactSubmission, reply string) Message {
	body := fmt.Sprintf(
		`<p>Hi %s,</p>
%s
<hr>
<p><em>Your original message:</em></p>
<blockquote>%s</blockquote>`,
		html.EscapeString(contact.Name), paragraphs(reply), paragraphs(contact.Message))

	return Message{
		From:    from,
		To:      []string{contact.Email},
		Subject: "Re: your message",
		HTML:    body,
		Text:    fmt.Sprintf("Hi %s,\n\n%s\n\n---\nYour original message:\n> %s", contact.Name, reply, contact.Message),
		Headers: map[string]string{RefHeader: contact.ID},
	}
}

// TicketConfirmation tells the requester their ticket code and where to
// check on it.
func TicketConfirmation(from, siteBaseURL string, ticket *domain.SupportTicket) Message {
	lookupURL := strings.TrimRight(siteBaseURL, "/") + "/support"
	body := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>Your support ticket <strong>%s</strong> has been created.</p>
<p>Subject: %s</p>
<p>Track it any time at <a href="%s">%s</a> using your ticket code and email address.</p>`,
		html.EscapeString(ticket.Name), html.EscapeString(ticket.TicketCode),
		html.EscapeString(ticket.Subject), lookupURL, lookupURL)

	return Message{
		From:    from,
		To:      []string{ticket.Email},
		Subject: fmt.Sprintf("Support ticket %s created", ticket.TicketCode),
		HTML:    body,
		Text:    fmt.Sprintf("Hi %s,\n\nYour support ticket %s has been created.\nSubject: %s\nTrack it at %s using your ticket code and email address.", ticket.Name, ticket.TicketCode, ticket.Subject, lookupURL),
		Headers: map[string]string{RefHeader: ticket.ID},
	}
}

// TicketReply notifies the requester of a staff reply on their ticket.
func TicketReply(from, siteBaseURL string, ticket *domain.SupportTicket, reply string) Message {
	lookupURL := strings.TrimRight(siteBaseURL, "/") + "/support"
	body := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>There is a new reply on your support ticket <strong>%s</strong>:</p>
%s
<p>Reply at <a href="%s">%s</a> using your ticket code and email address.</p>`,
		html.EscapeString(ticket.Name), html.EscapeString(ticket.TicketCode),
		paragraphs(reply), lookupURL, lookupURL)

	return Message{
		From:    from,
		To:      []string{ticket.Email},
		Subject: fmt.Sprintf("Re: support ticket %s", ticket.TicketCode),
		HTML:    body,
		Text:    fmt.Sprintf("Hi %s,\n\nNew reply on your support ticket %s:\n\n%s\n\nReply at %s using your ticket code and email address.", ticket.Name, ticket.TicketCode, reply, lookupURL),
		Headers: map[string]string{RefHeader: ticket.ID},
	}
}

func paragraphs(text string) string {
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(strings.TrimSpace(line)))
		b.WriteString("</p>\n")
	}
	return strings.TrimSpace(b.String())
}
