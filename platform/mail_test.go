package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMailer(t *testing.T) {
	m, err := NewMailer(&Config{})
	require.NoError(t, err)
	assert.Nil(t, m)

	_, err = NewMailer(&Config{SMTPAddr: "no-port"})
	assert.Error(t, err)

	m, err = NewMailer(&Config{SMTPAddr: "smtp.example.com:587", SMTPUser: "u", SMTPPassword: "p", MailFrom: "x@example.com"})
	require.NoError(t, err)
	assert.NotNil(t, m.auth)
	assert.Equal(t, "x@example.com", m.from)
}
