package sns

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/go-mobile-verification/internal/config"
	"github.com/go-mobile-verification/internal/domain"
)

// Publisher is the subset of *sns.Client used to send SMS.
type Publisher interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Sender delivers verification messages as transactional SMS via AWS SNS.
type Sender struct {
	client Publisher
}

func NewSender(ctx context.Context, cfg *config.Config) (*Sender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return NewSenderWithClient(sns.NewFromConfig(awsCfg)), nil
}

func NewSenderWithClient(client Publisher) *Sender {
	return &Sender{client: client}
}

func (s *Sender) Send(ctx context.Context, phone domain.PhoneNumber, message string) error {
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(phone.String()),
		Message:     aws.String(message),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SMSType": {DataType: aws.String("String"), StringValue: aws.String("Transactional")},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}
