package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/bcgov/restoration-tracker/pkg/model"
)

// Templates names the GC Notify templates used by the API.
type Templates struct {
	RequestAccess  string
	AccessApproved string
}

// Mailer composes the access workflow emails. Delivery failures are logged
// and reported to Observe, never returned.
type Mailer struct {
	Notifier   Notifier
	Templates  Templates
	AdminEmail string
	AppHost    string
	Observe    func(template string, err error)
}

func (m *Mailer) send(ctx context.Context, e Email) {
	if m == nil || m.Notifier == nil {
		return
	}
	err := m.Notifier.SendEmail(ctx, e)
	if m.Observe != nil {
		m.Observe(e.TemplateID, err)
	}
	if err != nil {
		zap.L().Error("failed to send notification",
			zap.String("template", e.TemplateID),
			zap.Error(err),
		)
	}
}

// AccessRequested tells the administrator a new access request is waiting.
func (m *Mailer) AccessRequested(ctx context.Context, req model.AccessRequest) {
	if m == nil || m.AdminEmail == "" {
		return
	}
	m.send(ctx, Email{
		To:         m.AdminEmail,
		TemplateID: m.Templates.RequestAccess,
		Personalisation: map[string]any{
			"name":            req.Name,
			"username":        req.Username,
			"email":           req.Email,
			"identitySource":  req.IdentitySource,
			"role":            req.Role,
			"reason":          req.Reason,
			"regionalOffices": req.RegionalOffices,
			"url":             m.AppHost + "/admin/users",
		},
	})
}

// AccessApproved tells the requester their access was granted.
func (m *Mailer) AccessApproved(ctx context.Context, email, name string) {
	if m == nil || email == "" {
		return
	}
	m.send(ctx, Email{
		To:         email,
		TemplateID: m.Templates.AccessApproved,
		Personalisation: map[string]any{
			"name": name,
			"url":  m.AppHost,
		},
	})
}
