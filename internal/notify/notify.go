package notify

import "context"

// Template names for account lifecycle mail.
const (
	TemplateWelcome      = "welcome"
	TemplateAppGenerated = "app_generated"
	TemplatePlanChanged  = "plan_changed"
)

// Notifier delivers account lifecycle notifications. Implementations must be
// safe for concurrent use.
type Notifier interface {
	Send(ctx context.Context, to, subject, templateName string, data map[string]any) error
}

// Noop discards every notification. Used when SMTP is not configured.
type Noop struct{}

func (Noop) Send(ctx context.Context, to, subject, templateName string, data map[string]any) error {
	return nil
}
