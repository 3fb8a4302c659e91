package services

import (
	"os"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSNotifier sends short booking notifications. Implementations must treat
// delivery as best effort; callers never fail a request over a lost SMS.
type SMSNotifier interface {
	Send(to, message string) error
}

// TwilioNotifier sends SMS through the Twilio REST API.
type TwilioNotifier struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioNotifier returns nil when the Twilio credentials are not
// configured, which disables SMS notifications.
func NewTwilioNotifier() *TwilioNotifier {
	accountSID := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTHTOKEN")
	from := os.Getenv("TWILIO_PHONENUMBER")
	if accountSID == "" || authToken == "" || from == "" {
		return nil
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioNotifier{client: client, from: from}
}

func (t *TwilioNotifier) Send(to, message string) error {
	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(message)

	_, err := t.client.Api.CreateMessage(params)
	return err
}
