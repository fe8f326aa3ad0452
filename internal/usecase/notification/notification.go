package notification

import (
	"context"
	"fmt"

	"github.com/andreyxaxa/Candidate-Verifier/internal/dto"
	"github.com/andreyxaxa/Candidate-Verifier/internal/infrastructure"
	"github.com/andreyxaxa/Candidate-Verifier/pkg/logger"
)

const linkMessage = "Dear %s, please complete your background verification: %s"

type NotificationUseCase struct {
	sms    infrastructure.SMSSender
	logger logger.Interface
}

func New(sms infrastructure.SMSSender, l logger.Interface) *NotificationUseCase {
	return &NotificationUseCase{
		sms:    sms,
		logger: l,
	}
}

// SendLink texts the verification link to an imported candidate. Records
// without a phone number are skipped.
func (uc *NotificationUseCase) SendLink(ctx context.Context, event dto.CandidateImportedEvent) error {
	if event.PhoneNumber == "" {
		uc.logger.Warn("candidate %s has no phone number, link not sent", event.CandidateID)
		return nil
	}

	name := event.CandidateName
	if name == "" {
		name = "candidate"
	}

	err := uc.sms.SendSMS(ctx, event.PhoneNumber, fmt.Sprintf(linkMessage, name, event.UniqueLink))
	if err != nil {
		return fmt.Errorf("NotificationUseCase - SendLink - uc.sms.SendSMS: %w", err)
	}

	return nil
}
