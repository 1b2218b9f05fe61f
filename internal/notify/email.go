package notify

import (
	"errors"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"remarket/server/config"
	"remarket/server/internal/models"
)

// EmailNotifier mails the digest over SMTP.
type EmailNotifier struct {
	logger *logrus.Logger
	cfg    config.EmailConfig
}

func NewEmailNotifier(cfg config.EmailConfig, logger *logrus.Logger) *EmailNotifier {
	return &EmailNotifier{
		logger: logger,
		cfg:    cfg,
	}
}

func (s *EmailNotifier) Name() string {
	return "email"
}

func (s *EmailNotifier) SendDigest(digest *models.Digest) error {
	if s.cfg.SMTPHost == "" {
		return errors.New("SMTP host is not configured")
	}
	if len(s.cfg.To) == 0 {
		return errors.New("no digest recipients configured")
	}

	e := email.NewEmail()
	e.From = s.cfg.From
	e.To = s.cfg.To
	e.Subject = fmt.Sprintf("Undervalued listings digest: %d opportunities", len(digest.Opportunities))

	body := fmt.Sprintf("Market digest for %s\n\n", digest.GeneratedAt.Format("2006-01-02"))
	if len(digest.Opportunities) == 0 {
		body += fmt.Sprintf("No listings are currently more than %.0f%% below their predicted value.\n", digest.MinDiscount)
	} else {
		for i, p := range digest.Opportunities {
			body += fmt.Sprintf("%d. %s\n", i+1, opportunityLine(&p))
		}
	}
	body += fmt.Sprintf("\nScanned %d listings, threshold %.0f%%.\n", digest.TotalListings, digest.MinDiscount)
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send digest email: %v", err)
		return fmt.Errorf("failed to send digest email: %w", err)
	}

	s.logger.Infof("Email digest sent to %d recipients", len(s.cfg.To))
	return nil
}
