package mq

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/shandysiswandi/gotp/internal/authenticator/usecase"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/messaging"
	"github.com/shandysiswandi/gotp/internal/shared/event"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	keyOfCorrelationID string = "cID"
	keyOfEventID       string = "eID"
)

type Messaging struct {
	client messaging.Publisher
	ins    instrument.Instrumentation
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation) *Messaging {
	return &Messaging{client: client, ins: ins}
}

func (m *Messaging) PublishOTPEnabled(ctx context.Context, msg usecase.OTPEnabledEvent) error {
	ctx, span := m.ins.Tracer("authenticator.outbound.mq").Start(ctx, "PublishOTPEnabled")
	defer span.End()

	return m.publish(ctx, span, event.OTPEnabledDestination, msg.UserID, msg.EventID, event.OTPEnabledMessage{
		EventID:    msg.EventID,
		UserID:     msg.UserID,
		OccurredAt: msg.OccurredAt,
	})
}

func (m *Messaging) PublishOTPDisabled(ctx context.Context, msg usecase.OTPDisabledEvent) error {
	ctx, span := m.ins.Tracer("authenticator.outbound.mq").Start(ctx, "PublishOTPDisabled")
	defer span.End()

	return m.publish(ctx, span, event.OTPDisabledDestination, msg.UserID, msg.EventID, event.OTPDisabledMessage{
		EventID:    msg.EventID,
		UserID:     msg.UserID,
		Reason:     msg.Reason,
		OccurredAt: msg.OccurredAt,
	})
}

// publish keys every message by user id so per-user events keep their order
// on brokers that partition.
func (m *Messaging) publish(ctx context.Context, span trace.Span, dest string, userID int64, eventID string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	cID := instrument.GetCorrelationID(ctx)
	if _, err := m.client.Publish(ctx, dest, messaging.OutgoingMessage{
		Body: body,
		Key:  []byte(strconv.FormatInt(userID, 10)),
		Headers: []messaging.Header{
			{Key: keyOfCorrelationID, Value: []byte(cID)},
			{Key: keyOfEventID, Value: []byte(eventID)},
		},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
