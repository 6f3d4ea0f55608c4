package message

import (
	"bytes"
	"crypto/rand"
	"io"
	"strings"
	"time"

	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/oklog/ulid/v2"

	"github.com/askeland/mailfold/internal/errors"
)

// Decode parses raw RFC 5322 bytes into a Message. Body decode problems are
// tolerated part by part; only an unreadable header fails the whole decode.
func Decode(raw []byte) (*Message, error) {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.NewDecodeFailed(err)
	}

	msg := &Message{}

	fields := mr.Header.Fields()
	for fields.Next() {
		msg.Headers = append(msg.Headers, Header{Name: fields.Key(), Value: fields.Value()})
	}

	if id, err := mr.Header.MessageID(); err == nil && id != "" {
		msg.ID = id
	} else {
		msg.ID = generateID()
	}

	if subject, err := mr.Header.Subject(); err == nil {
		msg.Subject = subject
	}

	if date, err := mr.Header.Date(); err == nil && !date.IsZero() {
		msg.ReceivedAt = date
	} else {
		msg.ReceivedAt = time.Now()
	}

	if from, err := mr.Header.AddressList("From"); err == nil && len(from) > 0 {
		msg.From = Address{DisplayName: from[0].Name, Address: from[0].Address}
	}
	if to, err := mr.Header.AddressList("To"); err == nil {
		for _, a := range to {
			msg.To = append(msg.To, Address{DisplayName: a.Name, Address: a.Address})
		}
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A broken part must not lose the parts already read
			break
		}

		switch h := part.Header.(type) {
		case *mail.InlineHeader:
			contentType, _, _ := h.ContentType()
			body, err := io.ReadAll(part.Body)
			if err != nil {
				continue
			}
			switch {
			case strings.HasPrefix(contentType, "text/html") && msg.HTMLBody == "":
				msg.HTMLBody = string(body)
			case strings.HasPrefix(contentType, "text/plain") && msg.TextBody == "":
				msg.TextBody = string(body)
			}
		case *mail.AttachmentHeader:
			if name, err := h.Filename(); err == nil && name != "" {
				msg.AttachmentNames = append(msg.AttachmentNames, name)
			}
		}
	}

	return msg, nil
}

// generateID returns a ULID for messages that arrive without a Message-ID.
func generateID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
