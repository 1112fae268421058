// Package mailer delivers messages over SMTP.
package mailer

//go:generate mockgen -source=sender.go -destination=mocks/mocks.go -package=mocks Sender

import (
	"context"
)

// Attachment is a file carried by a Message.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Message is one outgoing email.
type Message struct {
	To          string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Sender delivers a message. Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
