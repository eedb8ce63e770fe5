// Package ses emails consumers about bill and power events through
// Amazon SES. Only events carrying an owner email address are mailed;
// everything else is skipped.
package ses

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"palika/internal/domain"
	"palika/internal/port"
)

type sesNotifier struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
}

// NewSESNotifier creates a new SES-backed Notifier.
func NewSESNotifier(region, fromAddress, fromName string) (port.Notifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return &sesNotifier{
		client:      sesv2.NewFromConfig(cfg),
		fromAddress: fromAddress,
		fromName:    fromName,
	}, nil
}

func (n *sesNotifier) Publish(ctx context.Context, event domain.Event) error {
	toEmail := event.Data["owner_email"]
	if toEmail == "" {
		return nil
	}

	var subject, body string
	switch event.Kind {
	case domain.EventBillGenerated:
		subject = fmt.Sprintf("Bill %s generated", event.Data["bill_number"])
		body = fmt.Sprintf(
			"Dear %s,\n\nYour bill %s for connection %s has been generated.\nAmount due: %s\nDue date: %s\n\nMunicipal Utility Services",
			event.Data["owner_name"], event.Data["bill_number"], event.Data["connection_number"],
			event.Data["total_amount"], event.Data["due_date"])
	case domain.EventCriticalPowerAlert:
		subject = "Critical load violation on your connection"
		body = fmt.Sprintf(
			"Dear %s,\n\nConnection %s recorded demand of %s kW against a sanctioned load of %s kW.\nPlease reduce usage or apply for a load enhancement.\n\nMunicipal Utility Services",
			event.Data["owner_name"], event.Data["connection_number"],
			event.Data["observed_demand"], event.Data["sanctioned_load"])
	default:
		return nil
	}

	from := fmt.Sprintf("%s <%s>", n.fromName, n.fromAddress)
	_, err := n.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Text: &types.Content{Data: &body},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}
