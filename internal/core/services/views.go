package services

import (
	"time"

	"membertracker/internal/core/domain"

	"github.com/shopspring/decimal"
)

// MemberView is the JSON shape of a member
type MemberView struct {
	ID                      uint       `json:"id"`
	Name                    string     `json:"name"`
	Email                   string     `json:"email"`
	Phone                   string     `json:"phone,omitempty"`
	JoinDate                time.Time  `json:"joinDate"`
	LastPaymentDate         *time.Time `json:"lastPaymentDate,omitempty"`
	ConsecutiveMonthsMissed int        `json:"consecutiveMonthsMissed"`
	Active                  bool       `json:"active"`
	PaymentOverdue          bool       `json:"paymentOverdue"`
	CreatedAt               time.Time  `json:"createdAt"`
	UpdatedAt               time.Time  `json:"updatedAt"`
}

func NewMemberView(m *domain.Member) *MemberView {
	return &MemberView{
		ID:                      m.ID,
		Name:                    m.Name,
		Email:                   m.Email.String(),
		Phone:                   m.Phone.String(),
		JoinDate:                m.JoinDate,
		LastPaymentDate:         m.LastPaymentDate,
		ConsecutiveMonthsMissed: m.ConsecutiveMonthsMissed,
		Active:                  m.Active,
		PaymentOverdue:          m.IsPaymentOverdue(),
		CreatedAt:               m.CreatedAt,
		UpdatedAt:               m.UpdatedAt,
	}
}

func NewMemberViews(members []*domain.Member) []*MemberView {
	out := make([]*MemberView, len(members))
	for i, m := range members {
		out[i] = NewMemberView(m)
	}
	return out
}

// PaymentView is the JSON shape of a payment
type PaymentView struct {
	ID          uint            `json:"id"`
	MemberID    uint            `json:"memberId"`
	MemberName  string          `json:"memberName,omitempty"`
	Period      domain.Period   `json:"period"`
	PaymentDate time.Time       `json:"paymentDate"`
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"paymentMethod"`
	MethodName  string          `json:"paymentMethodName"`
	Notes       string          `json:"notes,omitempty"`
	OnTime      bool            `json:"onTime"`
	DaysLate    int             `json:"daysLate"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func NewPaymentView(p *domain.Payment) *PaymentView {
	return &PaymentView{
		ID:          p.ID,
		MemberID:    p.MemberID,
		Period:      p.Period,
		PaymentDate: p.PaymentDate,
		Amount:      p.Amount,
		Method:      string(p.Method),
		MethodName:  p.Method.DisplayName(),
		Notes:       p.Notes,
		OnTime:      p.IsOnTime(),
		DaysLate:    p.DaysLate(),
		CreatedAt:   p.CreatedAt,
	}
}

func NewPaymentViews(payments []*domain.Payment) []*PaymentView {
	out := make([]*PaymentView, len(payments))
	for i, p := range payments {
		out[i] = NewPaymentView(p)
	}
	return out
}

// DeliveryView is the JSON shape of a message delivery
type DeliveryView struct {
	ID              uint       `json:"id"`
	CommunicationID uint       `json:"communicationId"`
	RecipientID     uint       `json:"recipientId"`
	Channel         string     `json:"channel"`
	Status          string     `json:"status"`
	DeliveredAt     *time.Time `json:"deliveredAt,omitempty"`
	ResponseNotes   string     `json:"responseNotes,omitempty"`
}

func NewDeliveryView(d *domain.MessageDelivery) *DeliveryView {
	return &DeliveryView{
		ID:              d.ID,
		CommunicationID: d.CommunicationID,
		RecipientID:     d.RecipientID,
		Channel:         string(d.Channel),
		Status:          string(d.Status),
		DeliveredAt:     d.DeliveredAt,
		ResponseNotes:   d.ResponseNotes,
	}
}

func NewDeliveryViews(deliveries []*domain.MessageDelivery) []*DeliveryView {
	out := make([]*DeliveryView, len(deliveries))
	for i, d := range deliveries {
		out[i] = NewDeliveryView(d)
	}
	return out
}

// CommunicationView is the JSON shape of a communication with delivery totals
type CommunicationView struct {
	ID               uint            `json:"id"`
	Title            string          `json:"title"`
	MessageContent   string          `json:"messageContent"`
	Type             string          `json:"type"`
	CreatedAt        time.Time       `json:"createdAt"`
	SentAt           *time.Time      `json:"sentDate,omitempty"`
	SentToAllMembers bool            `json:"sentToAllMembers"`
	Recipients       int             `json:"recipients"`
	Pending          int             `json:"pending"`
	Sent             int             `json:"sent"`
	Failed           int             `json:"failed"`
	Deliveries       []*DeliveryView `json:"deliveries,omitempty"`
}

// NewCommunicationView summarizes c; deliveries are listed when withDeliveries is set
func NewCommunicationView(c *domain.Communication, withDeliveries bool) *CommunicationView {
	counts := c.DeliveryCounts()
	v := &CommunicationView{
		ID:               c.ID,
		Title:            c.Title,
		MessageContent:   c.MessageContent,
		Type:             string(c.Type),
		CreatedAt:        c.CreatedAt,
		SentAt:           c.SentAt,
		SentToAllMembers: c.SentToAllMembers,
		Recipients:       len(c.Deliveries),
		Pending:          counts[domain.DeliveryPending],
		Sent:             counts[domain.DeliverySent],
		Failed:           counts[domain.DeliveryFailed],
	}
	if withDeliveries {
		v.Deliveries = NewDeliveryViews(c.Deliveries)
	}
	return v
}

func NewCommunicationViews(comms []*domain.Communication) []*CommunicationView {
	out := make([]*CommunicationView, len(comms))
	for i, c := range comms {
		out[i] = NewCommunicationView(c, false)
	}
	return out
}
