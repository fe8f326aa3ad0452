package sms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/andreyxaxa/Candidate-Verifier/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

var ErrInvalidPhone = errors.New("invalid phone number")

type publisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSSender delivers transactional text messages through AWS SNS.
type SNSSender struct {
	client             publisher
	senderID           string
	defaultCountryCode string
}

func NewSNSSender(client publisher, senderID, defaultCountryCode string) *SNSSender {
	return &SNSSender{
		client:             client,
		senderID:           senderID,
		defaultCountryCode: defaultCountryCode,
	}
}

func (s *SNSSender) SendSMS(ctx context.Context, phone, message string) error {
	to, err := NormalizePhone(phone, s.defaultCountryCode)
	if err != nil {
		return fmt.Errorf("SNSSender - SendSMS - NormalizePhone: %w", err)
	}

	attrs := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {
			DataType:    aws.String("String"),
			StringValue: aws.String("Transactional"),
		},
	}
	if s.senderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(s.senderID),
		}
	}

	_, err = s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       aws.String(to),
		Message:           aws.String(message),
		MessageAttributes: attrs,
	})
	if err != nil {
		return fmt.Errorf("SNSSender - SendSMS - s.client.Publish: %w", err)
	}

	return nil
}

// NormalizePhone converts a spreadsheet phone value to E.164. Numbers without
// a leading plus get defaultCountryCode; a national trunk zero is dropped.
func NormalizePhone(phone, defaultCountryCode string) (string, error) {
	phone = strings.TrimSpace(phone)

	var digits strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}

	d := digits.String()
	if len(d) < 7 || len(d) > 15 {
		return "", fmt.Errorf("%w: %q", ErrInvalidPhone, phone)
	}

	if strings.HasPrefix(phone, "+") {
		return "+" + d, nil
	}

	if strings.HasPrefix(d, "00") {
		return "+" + d[2:], nil
	}

	cc := strings.TrimPrefix(defaultCountryCode, "+")
	d = strings.TrimPrefix(d, "0")

	return "+" + cc + d, nil
}

// LogSender stands in when SMS delivery is disabled.
type LogSender struct {
	l logger.Interface
}

func NewLogSender(l logger.Interface) *LogSender {
	return &LogSender{l}
}

func (s *LogSender) SendSMS(_ context.Context, phone, message string) error {
	s.l.Info("sms disabled, skipping message to %s: %s", phone, message)

	return nil
}
