package email

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailService_RendersOTP(t *testing.T) {
	sender := NewLogSender(zerolog.Nop())
	svc := NewEmailService(sender, "UniCampus", "http://campus.local/", zerolog.Nop())

	require.NoError(t, svc.SendOTPEmail(context.Background(), "ali@uni.edu", "Ali <Khan>", "123456", 10*time.Minute))

	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "ali@uni.edu", sent[0].To)
	assert.Equal(t, "[UniCampus] Your password reset code", sent[0].Subject)
	assert.Contains(t, sent[0].HTML, "<strong>123456</strong>")
	assert.Contains(t, sent[0].HTML, "Ali &lt;Khan&gt;")
	assert.Contains(t, sent[0].Text, "expires in 10 minutes")
	assert.Contains(t, sent[0].Text, "Code: 123456")
}

func TestEmailService_Shortage(t *testing.T) {
	sender := NewLogSender(zerolog.Nop())
	svc := NewEmailService(sender, "UniCampus", "", zerolog.Nop())

	require.NoError(t, svc.SendAttendanceShortageEmail(context.Background(), "s@uni.edu", "Sara", "CS-101", 62.5))
	assert.Contains(t, sender.Sent()[0].Text, "62.50%")
}

func TestSendGridSender_BuildMail(t *testing.T) {
	s := NewSendGridSender("key", "UniCampus", "no-reply@uni.edu")
	m := s.BuildMail(Message{To: "x@uni.edu", ToName: "X", Subject: "Hi", HTML: "<p>hi</p>", Text: "hi"})

	raw, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"subject":"Hi"`)
	assert.Contains(t, string(raw), `"email":"no-reply@uni.edu"`)
	assert.Contains(t, string(raw), `"email":"x@uni.edu"`)
}

func TestSMTPSender_WithoutCredentialsOnlyLogs(t *testing.T) {
	s := NewSMTPSender(SMTPConfig{Host: "localhost", Port: 25}, zerolog.Nop())
	assert.NoError(t, s.Send(context.Background(), Message{To: "a@b.c", Subject: "s"}))
}
