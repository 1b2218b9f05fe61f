package notify

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remarket/server/config"
)

func TestEmailNotifier_Name(t *testing.T) {
	n := NewEmailNotifier(config.EmailConfig{}, logrus.New())

	assert.Equal(t, "email", n.Name())
}

func TestEmailNotifier_ConfigValidation(t *testing.T) {
	n := NewEmailNotifier(config.EmailConfig{}, logrus.New())
	require.EqualError(t, n.SendDigest(testDigest()), "SMTP host is not configured")

	n = NewEmailNotifier(config.EmailConfig{SMTPHost: "smtp.example.com"}, logrus.New())
	require.EqualError(t, n.SendDigest(testDigest()), "no digest recipients configured")
}
