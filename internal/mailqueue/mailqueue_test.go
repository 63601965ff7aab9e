package mailqueue

import (
	"context"
	"errors"
	"testing"
	"time"

	"seatsnag/pkg/kafka"
	"seatsnag/pkg/logger"
	"seatsnag/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	published []kafka.Message
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, msg kafka.Message) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, msg)
	return nil
}

type recordingEnqueuer struct {
	mails []model.Mail
	err   error
}

func (r *recordingEnqueuer) Enqueue(_ context.Context, m model.Mail) error {
	if r.err != nil {
		return r.err
	}
	r.mails = append(r.mails, m)
	return nil
}

func welcome(t *testing.T) model.Mail {
	t.Helper()
	m, err := WelcomeMail("Admin@Acme.io", WelcomeData{
		AdminName:    "Dana",
		CompanyName:  "Acme",
		Email:        "Admin@Acme.io",
		TrialDays:    14,
		TrialEndDate: time.Date(2025, 3, 24, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return m
}

func TestKafkaEnqueuer_PublishesMailEvent(t *testing.T) {
	pub := &fakePublisher{}
	e := NewKafkaEnqueuer(pub, "seatsnag.mail")
	e.now = func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) }

	require.NoError(t, e.Enqueue(context.Background(), welcome(t)))
	require.Len(t, pub.published, 1)

	msg := pub.published[0]
	assert.Equal(t, "admin@acme.io", msg.Key)
	assert.Equal(t, "seatsnag.mail", msg.Topic)
	assert.Equal(t, EventTypeMailRequested, msg.GetEventType())
	assert.NotEmpty(t, msg.GetEventID())

	var body model.Mail
	require.NoError(t, msg.DecodeValue(&body))
	assert.Equal(t, []string{"Admin@Acme.io"}, body.To)
	assert.Contains(t, body.Message.Subject, "Trial is Active")
	assert.Equal(t, 2025, body.CreatedAt.Year())
}

func TestKafkaEnqueuer_WrapsPublishError(t *testing.T) {
	boom := errors.New("broker down")
	e := NewKafkaEnqueuer(&fakePublisher{err: boom}, "seatsnag.mail")

	err := e.Enqueue(context.Background(), welcome(t))
	assert.ErrorIs(t, err, boom)
}

func TestInstrument_ValidatesBeforeEnqueue(t *testing.T) {
	rec := &recordingEnqueuer{}
	e := Instrument(rec, "mongo", nil, logger.Discard())

	cases := []struct {
		name string
		mail model.Mail
	}{
		{"no recipients", model.Mail{Message: model.MailContent{Subject: "Hi"}}},
		{"bad recipient", model.Mail{To: []string{"not-an-address"}, Message: model.MailContent{Subject: "Hi"}}},
		{"no subject", model.Mail{To: []string{"a@b.io"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, e.Enqueue(context.Background(), tc.mail), ErrInvalidMail)
		})
	}
	assert.Empty(t, rec.mails)

	require.NoError(t, e.Enqueue(context.Background(), welcome(t)))
	assert.Len(t, rec.mails, 1)
}

func TestInstrument_PassesBackendError(t *testing.T) {
	boom := errors.New("insert failed")
	e := Instrument(&recordingEnqueuer{err: boom}, "mongo", nil, logger.Discard())

	assert.ErrorIs(t, e.Enqueue(context.Background(), welcome(t)), boom)
}

func TestTemplates_EscapeUserInput(t *testing.T) {
	m, err := VerificationMail("a@b.io", VerificationData{
		AdminName:   "<script>x</script>",
		CompanyName: "Acme & Co",
		Email:       "a@b.io",
		Link:        "https://app.seatsnag.io/verify?token=t1&company=c1",
		TrialDays:   14,
	})
	require.NoError(t, err)

	assert.NotContains(t, m.Message.HTML, "<script>")
	assert.Contains(t, m.Message.HTML, "Acme &amp; Co")
	assert.Contains(t, m.Message.HTML, "14-day free trial")
	assert.Contains(t, m.Message.HTML, "token=t1&amp;company=c1")
}

func TestTrialExtendedMail(t *testing.T) {
	m, err := TrialExtendedMail("a@b.io", TrialExtendedData{
		CompanyName:  "Acme",
		Days:         30,
		TrialEndDate: time.Date(2025, 4, 23, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Contains(t, m.Message.HTML, "30 days")
	assert.Contains(t, m.Message.HTML, "April 23, 2025")
}
