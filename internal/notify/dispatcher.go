package notify

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/jeni-t/flightbooking/internal/domain"
)

type PushSender interface {
	PushToSession(sessionID string, record domain.FlightStatusRecord)
}

type SMSSender interface {
	SendSMS(ctx context.Context, phone, text string) error
}

type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, text string) error
}

// ChannelOutcome records what happened on one delivery channel. A channel that
// was skipped (no contact info, or the change did not warrant it) has
// Attempted == false and a nil error.
type ChannelOutcome struct {
	Attempted bool
	Err       error
}

type Outcome struct {
	Push  ChannelOutcome
	SMS   ChannelOutcome
	Email ChannelOutcome
}

// Dispatcher fans a status record out to the session's channels. The websocket
// push goes out on every dispatch; SMS and email only when the status changed
// to Delayed or Canceled, so routine on-time confirmations do not spam anyone.
type Dispatcher struct {
	push  PushSender
	sms   SMSSender
	email EmailSender
}

func NewDispatcher(push PushSender, sms SMSSender, email EmailSender) *Dispatcher {
	return &Dispatcher{push: push, sms: sms, email: email}
}

// Dispatch never fails outright: each channel is attempted independently and a
// failure in one is logged without blocking the others.
func (d *Dispatcher) Dispatch(ctx context.Context, session domain.TrackedSession, previous, current domain.FlightStatusRecord) Outcome {
	var outcome Outcome

	if d.push != nil {
		d.push.PushToSession(session.SessionID, current)
		outcome.Push.Attempted = true
	}

	if !shouldAlert(previous, current) {
		return outcome
	}

	text := alertText(current)

	var wg sync.WaitGroup
	if d.sms != nil && session.Contact.Phone != "" {
		outcome.SMS.Attempted = true
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := d.sms.SendSMS(ctx, session.Contact.Phone, text); err != nil {
				log.Printf("sms to %s failed: %v", session.Contact.Phone, err)
				outcome.SMS.Err = err
			}
		}()
	}
	if d.email != nil && session.Contact.Email != "" {
		outcome.Email.Attempted = true
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := d.email.SendEmail(ctx, session.Contact.Email, "Flight Status Update", text); err != nil {
				log.Printf("email to %s failed: %v", session.Contact.Email, err)
				outcome.Email.Err = err
			}
		}()
	}
	wg.Wait()

	return outcome
}

// shouldAlert gates SMS/email on a meaningful change: the status differs from
// the last observation and the new state is Delayed or Canceled.
func shouldAlert(previous, current domain.FlightStatusRecord) bool {
	if current.Status == previous.Status {
		return false
	}
	return current.Status == domain.StatusDelayed || current.Status == domain.StatusCanceled
}

func alertText(record domain.FlightStatusRecord) string {
	switch record.Status {
	case domain.StatusCanceled:
		return fmt.Sprintf("Flight %s on %s has been canceled. Please contact your airline to rebook.", record.FlightNumber, record.Date)
	default:
		return fmt.Sprintf("Flight %s on %s is now %s. Check your departure time before heading to the airport.", record.FlightNumber, record.Date, record.Status)
	}
}
