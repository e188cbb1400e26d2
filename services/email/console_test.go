package emailsvc

import (
	"bytes"
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wingscc/rollcall/core"
)

func TestConsoleServiceMock(t *testing.T) {
	svc := NewConsoleServiceMock()
	to := []mail.Address{{Name: "Office", Address: "office@wings.test"}}

	withAttachment := &core.EmailMessage{To: to, Subject: "report"}
	require.NoError(t, withAttachment.Attach(bytes.NewBufferString("%PDF-1.3"), "report.pdf", "application/pdf"))

	svc.SendMessages(
		&core.EmailMessage{To: to, Subject: "absentees", TextContent: "1. RAVI"},
		&core.EmailMessage{Subject: "no recipient", TextContent: "x"},
		&core.EmailMessage{To: to, Subject: "no content"},
		withAttachment,
	)

	sent := svc.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "absentees", sent[0].Subject)
	assert.Equal(t, "report", sent[1].Subject)
	assert.Equal(t, "application/pdf", sent[1].Attachments[0].ContentType)
	assert.Equal(t, "JVBERi0xLjM=", sent[1].Attachments[0].Content.String())

	svc.Reset()
	assert.Empty(t, svc.Sent())
}

func TestJoinAddresses(t *testing.T) {
	got := joinAddresses([]mail.Address{{Address: "a@wings.test"}, {Name: "B", Address: "b@wings.test"}})
	assert.Equal(t, `<a@wings.test>, "B" <b@wings.test>`, got)
}
