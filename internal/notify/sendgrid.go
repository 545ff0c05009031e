package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendGrid delivers mail through the SendGrid v3 API.
type SendGrid struct {
	key  string
	from *sgmail.Email
	log  zerolog.Logger
	// api performs the HTTP call; replaced in tests.
	api func(rest.Request) (*rest.Response, error)
}

var _ Dispatcher = (*SendGrid)(nil)

// NewSendGrid creates a SendGrid dispatcher sending as fromName <fromAddress>.
func NewSendGrid(apiKey, fromName, fromAddress string, log zerolog.Logger) *SendGrid {
	return &SendGrid{
		key:  apiKey,
		from: sgmail.NewEmail(fromName, fromAddress),
		log:  log.With().Str("component", "sendgrid").Logger(),
		api:  sendgrid.API,
	}
}

// Notify sends a plain-text email and blocks until SendGrid answers.
func (s *SendGrid) Notify(ctx context.Context, to, subject, body string) error {
	if err := validate(to, subject, body); err != nil {
		return err
	}
	if s.key == "" {
		return fmt.Errorf("%w: SENDGRID_API_KEY is not configured", ErrDelivery)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	msg := sgmail.NewV3MailInit(s.from, subject, sgmail.NewEmail("", to), sgmail.NewContent("text/plain", body))

	req := sendgrid.GetRequest(s.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(msg)

	res, err := s.api(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: sendgrid status %d: %s", ErrDelivery, res.StatusCode, res.Body)
	}

	s.log.Info().Str("to", to).Int("status", res.StatusCode).Msg("Email sent")
	return nil
}
