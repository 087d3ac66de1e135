package mailer

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/mikeohgml-jpg/coaching-portal/internal/adapter/metrics"
	"github.com/mikeohgml-jpg/coaching-portal/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

type fakeSender struct {
	mu   sync.Mutex
	msgs []*mail.Msg
	err  error
}

func (f *fakeSender) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, messages...)
	return nil
}

func welcome() domain.EmailContent {
	return domain.EmailContent{
		Kind:     domain.EmailWelcome,
		To:       "jane@example.com",
		Subject:  "Welcome to Your Coaching Program, Jane!",
		TextBody: "Hello Jane",
		HTMLBody: "<html><body>Hello Jane</body></html>",
	}
}

func TestSend_BuildsMultipartMessage(t *testing.T) {
	fake := &fakeSender{}
	m := newSMTPMailer(fake, "coach@example.com", "Coaching Team", nil)

	require.NoError(t, m.Send(context.Background(), welcome()))

	require.Len(t, fake.msgs, 1)
	msg := fake.msgs[0]
	assert.Equal(t, []string{"Welcome to Your Coaching Program, Jane!"}, msg.GetGenHeader(mail.HeaderSubject))
	require.Len(t, msg.GetToString(), 1)
	assert.Contains(t, msg.GetToString()[0], "jane@example.com")
	require.Len(t, msg.GetFromString(), 1)
	assert.Contains(t, msg.GetFromString()[0], "Coaching Team")
	assert.Contains(t, msg.GetFromString()[0], "<coach@example.com>")

	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "multipart/alternative")
	assert.Contains(t, buf.String(), "text/plain")
	assert.Contains(t, buf.String(), "text/html")
}

func TestSend_InvalidRecipient(t *testing.T) {
	fake := &fakeSender{}
	m := newSMTPMailer(fake, "coach@example.com", "Coaching Team", nil)

	c := welcome()
	c.To = "not an address"
	assert.Error(t, m.Send(context.Background(), c))
	assert.Empty(t, fake.msgs)
}

func TestSend_RecordsDeliveryMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	nm := metrics.NewNotificationMetrics(reg)
	fake := &fakeSender{}
	m := newSMTPMailer(fake, "coach@example.com", "Coaching Team", nm)

	require.NoError(t, m.Send(context.Background(), welcome()))
	fake.err = errors.New("connection refused")
	require.Error(t, m.Send(context.Background(), welcome()))

	assert.Equal(t, 1.0, testutil.ToFloat64(nm.EmailsSent.WithLabelValues("welcome")))
	assert.Equal(t, 1.0, testutil.ToFloat64(nm.EmailsFailed.WithLabelValues("welcome")))
}

func TestSend_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	fake := &fakeSender{err: errors.New("connection refused")}
	m := newSMTPMailer(fake, "coach@example.com", "Coaching Team", nil)

	for range 5 {
		err := m.Send(context.Background(), welcome())
		require.Error(t, err)
		assert.NotErrorIs(t, err, circuitbreaker.ErrOpen)
	}

	err := m.Send(context.Background(), welcome())
	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
	assert.True(t, m.cb.IsOpen())
}
