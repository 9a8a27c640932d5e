package email

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/staffhub/staffhub/internal/application/billing/usecases"
	"github.com/staffhub/staffhub/internal/infrastructure/adapters"
	"github.com/staffhub/staffhub/internal/shared/logger"
)

// RecipientResolver finds the mailboxes for a notification target. A zero
// userID addresses the tenant's billing contacts.
type RecipientResolver interface {
	Resolve(ctx context.Context, tenantID, userID uint) ([]adapters.Recipient, error)
}

// BillingNotifier mails billing notices to tenant contacts.
type BillingNotifier struct {
	sender     Sender
	recipients RecipientResolver
	baseURL    string
	logger     logger.Interface
	title      cases.Caser
}

func NewBillingNotifier(sender Sender, recipients RecipientResolver, baseURL string, logger logger.Interface) *BillingNotifier {
	return &BillingNotifier{
		sender:     sender,
		recipients: recipients,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
		title:      cases.Title(language.English),
	}
}

func (n *BillingNotifier) Notify(ctx context.Context, msg usecases.Notification) error {
	to, err := n.recipients.Resolve(ctx, msg.TenantID, msg.UserID)
	if err != nil {
		return err
	}
	if len(to) == 0 {
		n.logger.Warnw("no recipients for billing notice", "tenant_id", msg.TenantID, "kind", msg.Kind)
		return nil
	}

	var errs []error
	for _, r := range to {
		if err := n.sender.Send(n.render(r, msg)); err != nil {
			n.logger.Errorw("failed to mail billing notice", "tenant_id", msg.TenantID, "kind", msg.Kind, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (n *BillingNotifier) render(r adapters.Recipient, msg usecases.Notification) Message {
	name := n.title.String(strings.TrimSpace(r.Name))
	if name == "" {
		name = "there"
	}
	link := n.baseURL + msg.Link

	plain := fmt.Sprintf("Hi %s,\n\n%s\n\nView details: %s\n", name, msg.Message, link)
	body := fmt.Sprintf(`
		<html>
		<body>
			<p>Hi %s,</p>
			<p>%s</p>
			<p><a href="%s">View details</a></p>
		</body>
		</html>
	`, html.EscapeString(name), html.EscapeString(msg.Message), html.EscapeString(link))

	return Message{
		To:        r.Email,
		Subject:   "StaffHub: " + msg.Title,
		PlainBody: plain,
		HTMLBody:  body,
	}
}
