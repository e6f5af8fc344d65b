package email

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledSender(t *testing.T) {
	err := NewDisabledSender("").Send(context.Background(), "a@x.com", "s", "b")
	require.EqualError(t, err, "email sender disabled")

	err = NewDisabledSender("smtp not configured").Send(context.Background(), "a@x.com", "s", "b")
	require.EqualError(t, err, "smtp not configured")
}

func TestNewSMTPSender_Validation(t *testing.T) {
	_, err := NewSMTPSender("", 25, "", "", "from@x.com", "", false)
	require.Error(t, err)

	_, err = NewSMTPSender("smtp.example.com", 25, "", "", " ", "", false)
	require.Error(t, err)

	s, err := NewSMTPSender("smtp.example.com", 0, "", "", "from@x.com", "", false)
	require.NoError(t, err)
	assert.Equal(t, 587, s.port)
}

func TestSMTPSender_RejectsEmptyRecipient(t *testing.T) {
	s, err := NewSMTPSender("smtp.example.com", 25, "", "", "from@x.com", "", false)
	require.NoError(t, err)
	require.Error(t, s.Send(context.Background(), "  ", "subject", "body"))
}

func TestBuildMessage(t *testing.T) {
	msg := buildMessage("from@x.com", "Foodhub", "to@x.com", "Reset Password", "link")

	assert.True(t, strings.HasPrefix(msg, "From: Foodhub <from@x.com>\r\n"))
	assert.Contains(t, msg, "To: to@x.com\r\n")
	assert.Contains(t, msg, "Subject: Reset Password\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\nlink"))

	plain := buildMessage("from@x.com", "", "to@x.com", "s", "b")
	assert.True(t, strings.HasPrefix(plain, "From: from@x.com\r\n"))
}
