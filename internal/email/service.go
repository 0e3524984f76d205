package email

import "context"

// Service sends the few notifications this system produces. A nil or
// unconfigured SMTP setup degrades to the no-op implementation so the
// record path never depends on a mail server being reachable.
type Service interface {
	// SendRecordNotification tells a patient a lab has published a new
	// record under their identifier.
	SendRecordNotification(ctx context.Context, to, patientName, labName, recordTitle string) error
	// SendWelcome greets a newly registered principal.
	SendWelcome(ctx context.Context, to, name string) error
}

type noopService struct{}

// NewNoopService returns a Service that silently drops all mail.
func NewNoopService() Service {
	return noopService{}
}

func (noopService) SendRecordNotification(ctx context.Context, to, patientName, labName, recordTitle string) error {
	return nil
}

func (noopService) SendWelcome(ctx context.Context, to, name string) error {
	return nil
}
