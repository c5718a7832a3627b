package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jeni-t/flightbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockSMSSender struct {
	mock.Mock
	mu sync.Mutex
}

func (m *MockSMSSender) SendSMS(ctx context.Context, phone, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	args := m.Called(ctx, phone, text)
	return args.Error(0)
}

type MockEmailSender struct {
	mock.Mock
	mu sync.Mutex
}

func (m *MockEmailSender) SendEmail(ctx context.Context, to, subject, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	args := m.Called(ctx, to, subject, text)
	return args.Error(0)
}

type recordingPush struct {
	mu     sync.Mutex
	pushed []string
}

func (p *recordingPush) PushToSession(sessionID string, record domain.FlightStatusRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushed = append(p.pushed, sessionID)
}

func (p *recordingPush) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pushed)
}

func session() domain.TrackedSession {
	return domain.TrackedSession{
		SessionID:    "session-1",
		FlightNumber: "AI202",
		Date:         "2025-04-05",
		Contact:      domain.Contact{Email: "a@example.com", Phone: "+15551234567"},
	}
}

func record(status domain.FlightStatus) domain.FlightStatusRecord {
	return domain.FlightStatusRecord{FlightNumber: "AI202", Date: "2025-04-05", Status: status}
}

func TestDispatcher_UnchangedOnTimeOnlyPushes(t *testing.T) {
	push := &recordingPush{}
	sms := &MockSMSSender{}
	email := &MockEmailSender{}
	dispatcher := NewDispatcher(push, sms, email)

	outcome := dispatcher.Dispatch(context.Background(), session(), record(domain.StatusOnTime), record(domain.StatusOnTime))

	assert.True(t, outcome.Push.Attempted)
	assert.False(t, outcome.SMS.Attempted)
	assert.False(t, outcome.Email.Attempted)
	assert.Equal(t, 1, push.count())
	sms.AssertNotCalled(t, "SendSMS")
	email.AssertNotCalled(t, "SendEmail")
}

func TestDispatcher_ChangeToDelayedSendsSMSAndEmail(t *testing.T) {
	push := &recordingPush{}
	sms := &MockSMSSender{}
	email := &MockEmailSender{}
	dispatcher := NewDispatcher(push, sms, email)

	sms.On("SendSMS", mock.Anything, "+15551234567", mock.Anything).Return(nil).Once()
	email.On("SendEmail", mock.Anything, "a@example.com", "Flight Status Update", mock.Anything).Return(nil).Once()

	outcome := dispatcher.Dispatch(context.Background(), session(), record(domain.StatusOnTime), record(domain.StatusDelayed))

	assert.True(t, outcome.Push.Attempted)
	assert.True(t, outcome.SMS.Attempted)
	assert.True(t, outcome.Email.Attempted)
	assert.NoError(t, outcome.SMS.Err)
	assert.NoError(t, outcome.Email.Err)
	assert.Equal(t, 1, push.count())

	sms.AssertExpectations(t)
	email.AssertExpectations(t)
}

func TestDispatcher_BackToOnTimeDoesNotAlert(t *testing.T) {
	push := &recordingPush{}
	sms := &MockSMSSender{}
	email := &MockEmailSender{}
	dispatcher := NewDispatcher(push, sms, email)

	outcome := dispatcher.Dispatch(context.Background(), session(), record(domain.StatusDelayed), record(domain.StatusOnTime))

	assert.True(t, outcome.Push.Attempted)
	assert.False(t, outcome.SMS.Attempted)
	assert.False(t, outcome.Email.Attempted)
	sms.AssertNotCalled(t, "SendSMS")
	email.AssertNotCalled(t, "SendEmail")
}

func TestDispatcher_SMSFailureDoesNotBlockEmail(t *testing.T) {
	push := &recordingPush{}
	sms := &MockSMSSender{}
	email := &MockEmailSender{}
	dispatcher := NewDispatcher(push, sms, email)

	smsErr := errors.New("number rejected")
	sms.On("SendSMS", mock.Anything, "+15551234567", mock.Anything).Return(smsErr).Once()
	email.On("SendEmail", mock.Anything, "a@example.com", "Flight Status Update", mock.Anything).Return(nil).Once()

	outcome := dispatcher.Dispatch(context.Background(), session(), record(domain.StatusOnTime), record(domain.StatusCanceled))

	assert.True(t, outcome.SMS.Attempted)
	assert.Equal(t, smsErr, outcome.SMS.Err)
	assert.True(t, outcome.Email.Attempted)
	assert.NoError(t, outcome.Email.Err)

	sms.AssertExpectations(t)
	email.AssertExpectations(t)
}

func TestDispatcher_MissingContactInfoSkipsChannel(t *testing.T) {
	push := &recordingPush{}
	sms := &MockSMSSender{}
	email := &MockEmailSender{}
	dispatcher := NewDispatcher(push, sms, email)

	s := session()
	s.Contact.Phone = ""
	email.On("SendEmail", mock.Anything, "a@example.com", "Flight Status Update", mock.Anything).Return(nil).Once()

	outcome := dispatcher.Dispatch(context.Background(), s, record(domain.StatusOnTime), record(domain.StatusDelayed))

	assert.False(t, outcome.SMS.Attempted)
	assert.True(t, outcome.Email.Attempted)
	sms.AssertNotCalled(t, "SendSMS")
	email.AssertExpectations(t)
}
