package sns

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/go-mobile-verification/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, in)
	if out, _ := args.Get(0).(*sns.PublishOutput); out != nil {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestSend_PublishesTransactionalSMS(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		attr := in.MessageAttributes["AWS.SNS.SMS.SMSType"]
		return *in.PhoneNumber == "+989140000000" &&
			*in.Message == "Code: 12345" &&
			*attr.StringValue == "Transactional"
	})).Return(&sns.PublishOutput{}, nil).Once()

	s := NewSenderWithClient(pub)
	require.NoError(t, s.Send(context.Background(), domain.MustPhoneNumber("+989140000000"), "Code: 12345"))
	pub.AssertExpectations(t)
}

func TestSend_PropagatesError(t *testing.T) {
	pub := &mockPublisher{}
	boom := errors.New("opted out")
	pub.On("Publish", mock.Anything, mock.Anything).Return(nil, boom)

	err := NewSenderWithClient(pub).Send(context.Background(), domain.MustPhoneNumber("9140000000"), "x")
	assert.True(t, errors.Is(err, boom))
}
