package sms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	"github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
)

type messageCreator func(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)

// TwilioDispatcher envía el código como SMS de texto plano.
type TwilioDispatcher struct {
	create messageCreator
	from   string
	logger *zap.Logger
}

func NewTwilioDispatcher(accountSID, authToken, from string, logger *zap.Logger) (*TwilioDispatcher, error) {
	if strings.TrimSpace(accountSID) == "" || strings.TrimSpace(authToken) == "" {
		return nil, fmt.Errorf("twilio credentials are required")
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("twilio from number is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	rest := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioDispatcher{
		create: rest.Api.CreateMessage,
		from:   from,
		logger: logger,
	}, nil
}

type twilioResult struct {
	msg *twilioApi.ApiV2010Message
	err error
}

// Send acota la llamada con ctx; el cliente de Twilio no recibe contexto.
func (d *TwilioDispatcher) Send(ctx context.Context, phone, code string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(phone)
	params.SetFrom(d.from)
	params.SetBody(fmt.Sprintf("Your verification code: %s", code))

	done := make(chan twilioResult, 1)
	go func() {
		msg, err := d.create(params)
		done <- twilioResult{msg: msg, err: err}
	}()

	select {
	case <-ctx.Done():
		return classifyTransportError(ctx.Err())
	case res := <-done:
		if res.err != nil {
			var restErr *client.TwilioRestError
			if errors.As(res.err, &restErr) {
				d.logger.Warn("twilio rejected message", zap.Int("status", restErr.Status), zap.Int("code", restErr.Code))
				return fmt.Errorf("%w: twilio status=%d", ErrBadStatus, restErr.Status)
			}
			return classifyTransportError(res.err)
		}
		if res.msg != nil && res.msg.Sid != nil {
			d.logger.Debug("twilio message queued", zap.String("sid", *res.msg.Sid))
		}
		return nil
	}
}
