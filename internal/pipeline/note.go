package pipeline

import (
	"strings"

	"github.com/askeland/mailfold/internal/message"
)

// renderNote formats a standalone markdown note for a directly composed
// message: metadata header, then the converted body.
func renderNote(msg *message.Message, body string) string {
	subject := strings.TrimSpace(msg.Subject)
	if subject == "" {
		subject = "(no subject)"
	}

	var sb strings.Builder
	sb.WriteString("# ")
	sb.WriteString(subject)
	sb.WriteString("\n\n")

	sb.WriteString("- From: ")
	sb.WriteString(formatSender(msg))
	sb.WriteString("\n")
	sb.WriteString("- Date: ")
	sb.WriteString(msg.ReceivedAt.UTC().Format("2006-01-02 15:04"))
	sb.WriteString("\n")
	sb.WriteString("- Message-ID: ")
	sb.WriteString(msg.ID)
	sb.WriteString("\n")
	for _, name := range msg.AttachmentNames {
		sb.WriteString("- Attachment: ")
		sb.WriteString(name)
		sb.WriteString("\n")
	}

	sb.WriteString("\n---\n\n")
	sb.WriteString(strings.TrimSpace(body))
	sb.WriteString("\n")

	return sb.String()
}

func formatSender(msg *message.Message) string {
	name := strings.TrimSpace(msg.From.DisplayName)
	addr := msg.From.Address
	switch {
	case name != "" && addr != "":
		return name + " <" + addr + ">"
	case addr != "":
		return addr
	case name != "":
		return name
	default:
		return "(unknown)"
	}
}
