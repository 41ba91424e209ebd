package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/nayeemhasan/glamspot-backend/pkg/config"
	pkgerrors "github.com/nayeemhasan/glamspot-backend/pkg/errors"
)

type sendgridSender struct {
	client   *sendgrid.Client
	from     string
	fromName string
}

// NewSendgridSender builds the production email sender.
func NewSendgridSender(cfg config.SendgridConfig) (Sender, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("sendgrid api key is required")
	}
	if strings.TrimSpace(cfg.DefaultFrom) == "" {
		return nil, fmt.Errorf("sendgrid from email is required")
	}
	return &sendgridSender{
		client:   sendgrid.NewSendClient(cfg.APIKey),
		from:     cfg.DefaultFrom,
		fromName: cfg.FromName,
	}, nil
}

func (s *sendgridSender) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient email required")
	}

	from := mail.NewEmail(s.fromName, s.from)
	to := mail.NewEmail("", msg.To)
	html := msg.HTML
	if html == "" {
		html = msg.Text
	}
	email := mail.NewSingleEmail(from, msg.Subject, to, msg.Text, html)

	resp, err := s.client.SendWithContext(ctx, email)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send email")
	}
	if resp.StatusCode >= 400 {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("sendgrid rejected message (%d)", resp.StatusCode))
	}
	return nil
}
