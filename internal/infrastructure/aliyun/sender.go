package aliyun

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aliyun/alibaba-cloud-sdk-go/services/dysmsapi"
	"github.com/go-mobile-verification/internal/config"
	"github.com/go-mobile-verification/internal/domain"
)

// SMSAPI is the subset of *dysmsapi.Client used to send SMS.
type SMSAPI interface {
	SendSms(request *dysmsapi.SendSmsRequest) (*dysmsapi.SendSmsResponse, error)
}

// Sender delivers verification messages through Aliyun SMS. Aliyun only
// sends pre-approved templates, so the rendered message is passed as the
// template's ${message} parameter.
type Sender struct {
	client       SMSAPI
	signName     string
	templateCode string
}

func NewSender(cfg *config.Config) (*Sender, error) {
	client, err := dysmsapi.NewClientWithAccessKey(
		cfg.AliyunRegion,
		cfg.AliyunAccessKeyID,
		cfg.AliyunAccessKeySecret,
	)
	if err != nil {
		return nil, fmt.Errorf("init aliyun sms client: %w", err)
	}
	return NewSenderWithClient(client, cfg.AliyunSignName, cfg.AliyunTemplateCode), nil
}

func NewSenderWithClient(client SMSAPI, signName, templateCode string) *Sender {
	return &Sender{client: client, signName: signName, templateCode: templateCode}
}

func (s *Sender) Send(ctx context.Context, phone domain.PhoneNumber, message string) error {
	// The SDK call is not context-aware; at least don't start one that is already cancelled.
	if err := ctx.Err(); err != nil {
		return err
	}
	param, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return fmt.Errorf("encode template param: %w", err)
	}

	request := dysmsapi.CreateSendSmsRequest()
	request.Scheme = "https"
	request.PhoneNumbers = phone.String()
	request.SignName = s.signName
	request.TemplateCode = s.templateCode
	request.TemplateParam = string(param)

	resp, err := s.client.SendSms(request)
	if err != nil {
		return fmt.Errorf("aliyun send sms: %w", err)
	}
	if resp.Code != "OK" {
		return fmt.Errorf("aliyun send sms rejected: %s - %s", resp.Code, resp.Message)
	}
	return nil
}
