package domain

import (
	"strings"
	"time"
)

// MemberNamePlaceholder is replaced with each recipient's name
const MemberNamePlaceholder = "{{member_name}}"

// PaymentReminderTitle and PaymentReminderMessage form the standard reminder
const (
	PaymentReminderTitle   = "Payment Reminder"
	PaymentReminderMessage = "Dear " + MemberNamePlaceholder + ", this is a friendly reminder that your membership payment is overdue. Please contact us at your earliest convenience."
)

// Communication is a message sent to one or more members
type Communication struct {
	ID               uint
	Title            string
	MessageContent   string
	CreatedAt        time.Time
	SentAt           *time.Time
	Type             CommunicationType
	SentToAllMembers bool
	Deliveries       []*MessageDelivery
}

// NewCommunication validates and builds an unsent communication
func NewCommunication(title, content string, typ CommunicationType, now time.Time) (*Communication, error) {
	c := &Communication{
		Title:          strings.TrimSpace(title),
		MessageContent: content,
		Type:           typ,
		CreatedAt:      now,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewPaymentReminder builds the standard payment reminder
func NewPaymentReminder(now time.Time) *Communication {
	return &Communication{
		Title:          PaymentReminderTitle,
		MessageContent: PaymentReminderMessage,
		Type:           CommunicationReminder,
		CreatedAt:      now,
	}
}

func (c *Communication) Validate() error {
	if c.Title == "" {
		return ErrInvalidCommunication.OnField("title", "title is required")
	}
	if strings.TrimSpace(c.MessageContent) == "" {
		return ErrInvalidCommunication.OnField("messageContent", "message content is required")
	}
	if _, err := ParseCommunicationType(string(c.Type)); err != nil {
		return err
	}
	return nil
}

// Personalize substitutes the recipient's name into the content
func (c *Communication) Personalize(name string) string {
	return PersonalizeMessage(c.MessageContent, name)
}

// PersonalizeMessage replaces every member name placeholder in content
func PersonalizeMessage(content, name string) string {
	return strings.ReplaceAll(content, MemberNamePlaceholder, name)
}

// MarkSent stamps the dispatch time
func (c *Communication) MarkSent(now time.Time) {
	c.SentAt = &now
}

// AddDelivery appends a pending delivery for recipient
func (c *Communication) AddDelivery(recipientID uint, channel DeliveryChannel) *MessageDelivery {
	d := &MessageDelivery{
		CommunicationID: c.ID,
		RecipientID:     recipientID,
		Channel:         channel,
		Status:          DeliveryPending,
	}
	c.Deliveries = append(c.Deliveries, d)
	return d
}

// DeliveryCounts tallies deliveries by status
func (c *Communication) DeliveryCounts() map[DeliveryStatus]int {
	counts := make(map[DeliveryStatus]int, 4)
	for _, d := range c.Deliveries {
		counts[d.Status]++
	}
	return counts
}

// MessageDelivery tracks one communication to one recipient on one channel
type MessageDelivery struct {
	ID              uint
	CommunicationID uint
	RecipientID     uint
	Channel         DeliveryChannel
	Status          DeliveryStatus
	DeliveredAt     *time.Time
	ResponseNotes   string
}

// PendingDelivery rebuilds an in-flight delivery from its stored id
func PendingDelivery(id, recipientID uint, channel DeliveryChannel) *MessageDelivery {
	return &MessageDelivery{ID: id, RecipientID: recipientID, Channel: channel, Status: DeliveryPending}
}

func (d *MessageDelivery) MarkSent(now time.Time) error {
	return d.transition(DeliverySent, now, "")
}

func (d *MessageDelivery) MarkFailed(now time.Time, note string) error {
	return d.transition(DeliveryFailed, now, note)
}

func (d *MessageDelivery) transition(to DeliveryStatus, now time.Time, note string) error {
	if d.Status.IsTerminal() {
		return ErrInvalidDeliveryStatus.With("delivery %d is already %s", d.ID, d.Status)
	}
	d.Status = to
	d.DeliveredAt = &now
	d.ResponseNotes = note
	return nil
}
