// Package message holds the decoded inbound email value and its MIME decoding.
package message

import (
	"strings"
	"time"
)

// Address is one email address with an optional display name.
type Address struct {
	DisplayName string
	Address     string
}

// Header is one raw header field. Names are case-insensitive and duplicates
// are allowed, so headers are kept as an ordered list, not a map.
type Header struct {
	Name  string
	Value string
}

// Message is a decoded inbound email. Immutable once decoded.
type Message struct {
	// ID is the Message-ID header value, or a generated ULID when absent
	ID string

	From    Address
	To      []Address
	Subject string

	// ReceivedAt selects the digest day for newsletter messages
	ReceivedAt time.Time

	HTMLBody string
	TextBody string

	// Headers preserves every raw header field in wire order
	Headers []Header

	// AttachmentNames lists attachment filenames; bodies are not retained
	AttachmentNames []string
}

// Header returns the first header value with the given name, case-insensitive.
func (m *Message) Header(name string) (string, bool) {
	for _, h := range m.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}

// HasHeader reports whether any header with the given name is present.
func (m *Message) HasHeader(name string) bool {
	_, ok := m.Header(name)
	return ok
}

// SenderName returns the best display name for the sender: the From display
// name, or the address when the display name is empty.
func (m *Message) SenderName() string {
	if name := strings.TrimSpace(m.From.DisplayName); name != "" {
		return name
	}
	return m.From.Address
}

// IsNewsletter reports whether the message is bulk mail: it carries an
// unsubscribe-capability header, or was delivered to a configured newsletter
// routing address.
func (m *Message) IsNewsletter(newsletterAddresses []string) bool {
	if m.HasHeader("List-Unsubscribe") || m.HasHeader("List-Id") {
		return true
	}
	for _, to := range m.To {
		for _, addr := range newsletterAddresses {
			if strings.EqualFold(strings.TrimSpace(addr), to.Address) {
				return true
			}
		}
	}
	return false
}
