package domain

import "strings"

// PaymentMethod is the closed set of accepted payment methods
type PaymentMethod string

const (
	PaymentCash          PaymentMethod = "CASH"
	PaymentBankTransfer  PaymentMethod = "BANK_TRANSFER"
	PaymentCreditCard    PaymentMethod = "CREDIT_CARD"
	PaymentDebitCard     PaymentMethod = "DEBIT_CARD"
	PaymentMobilePayment PaymentMethod = "MOBILE_PAYMENT"
	PaymentOnline        PaymentMethod = "ONLINE_PAYMENT"
)

var paymentMethodNames = map[PaymentMethod]string{
	PaymentCash:          "Cash",
	PaymentBankTransfer:  "Bank Transfer",
	PaymentCreditCard:    "Credit Card",
	PaymentDebitCard:     "Debit Card",
	PaymentMobilePayment: "Mobile Payment",
	PaymentOnline:        "Online Payment",
}

// PaymentMethods lists every method in display order
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		PaymentCash,
		PaymentBankTransfer,
		PaymentCreditCard,
		PaymentDebitCard,
		PaymentMobilePayment,
		PaymentOnline,
	}
}

// ParsePaymentMethod resolves a code case-insensitively
func ParsePaymentMethod(code string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToUpper(strings.TrimSpace(code)))
	if _, ok := paymentMethodNames[m]; !ok {
		return "", ErrPaymentMethodNotSupported.OnField("paymentMethod", "payment method not supported: %s", code)
	}
	return m, nil
}

func (m PaymentMethod) DisplayName() string {
	return paymentMethodNames[m]
}

// UserRole is the closed set of user roles
type UserRole string

const (
	RoleMember    UserRole = "MEMBER"
	RoleVolunteer UserRole = "VOLUNTEER"
	RoleStaff     UserRole = "STAFF"
	RoleAdmin     UserRole = "ADMIN"
)

type roleInfo struct {
	name        string
	description string
}

var roles = map[UserRole]roleInfo{
	RoleMember:    {"Member", "Basic authenticated member with limited access"},
	RoleVolunteer: {"Volunteer", "Volunteer with limited operational access"},
	RoleStaff:     {"Staff", "Staff member who can manage members and communications"},
	RoleAdmin:     {"Administrator", "Full system access with administrative privileges"},
}

// ParseUserRole resolves a role code case-insensitively
func ParseUserRole(code string) (UserRole, error) {
	r := UserRole(strings.ToUpper(strings.TrimSpace(code)))
	if _, ok := roles[r]; !ok {
		return "", ErrInvalidUserData.OnField("role", "unknown role: %s", code)
	}
	return r, nil
}

func (r UserRole) DisplayName() string { return roles[r].name }
func (r UserRole) Description() string { return roles[r].description }

// IsStaffOrAdmin reports whether the role may manage members and communications
func (r UserRole) IsStaffOrAdmin() bool {
	return r == RoleStaff || r == RoleAdmin
}

// CommunicationType classifies a communication
type CommunicationType string

const (
	CommunicationAnnouncement CommunicationType = "ANNOUNCEMENT"
	CommunicationReminder     CommunicationType = "REMINDER"
	CommunicationPersonal     CommunicationType = "PERSONAL"
)

func ParseCommunicationType(code string) (CommunicationType, error) {
	switch t := CommunicationType(strings.ToUpper(strings.TrimSpace(code))); t {
	case CommunicationAnnouncement, CommunicationReminder, CommunicationPersonal:
		return t, nil
	}
	return "", ErrCommunicationTypeUnknown.OnField("type", "unknown communication type: %s", code)
}

// DeliveryChannel is the medium used to reach one recipient
type DeliveryChannel string

const (
	ChannelEmail    DeliveryChannel = "EMAIL"
	ChannelSMS      DeliveryChannel = "SMS"
	ChannelWhatsApp DeliveryChannel = "WHATSAPP"
)

func ParseDeliveryChannel(code string) (DeliveryChannel, error) {
	switch c := DeliveryChannel(strings.ToUpper(strings.TrimSpace(code))); c {
	case ChannelEmail, ChannelSMS, ChannelWhatsApp:
		return c, nil
	}
	return "", ErrDeliveryChannelUnknown.OnField("channel", "unknown delivery channel: %s", code)
}

// DeliveryStatus tracks one delivery: PENDING moves to SENT or FAILED.
// DELIVERED is reserved for read receipts.
type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "PENDING"
	DeliverySent      DeliveryStatus = "SENT"
	DeliveryFailed    DeliveryStatus = "FAILED"
	DeliveryDelivered DeliveryStatus = "DELIVERED"
)

func (s DeliveryStatus) IsTerminal() bool {
	return s == DeliverySent || s == DeliveryFailed || s == DeliveryDelivered
}
