package repositories

import (
	"membertracker/internal/adapters/persistence/models"
	"membertracker/internal/core/domain"
)

func toDomainMember(m *models.Member) *domain.Member {
	member := &domain.Member{
		ID:                      m.ID,
		Name:                    m.Name,
		Email:                   domain.RestoreEmail(m.Email),
		Phone:                   domain.RestorePhoneNumber(m.Phone),
		JoinDate:                m.JoinDate,
		LastPaymentDate:         m.LastPaymentDate,
		ConsecutiveMonthsMissed: m.ConsecutiveMonthsMissed,
		Active:                  m.Active,
		CreatedAt:               m.CreatedAt,
		UpdatedAt:               m.UpdatedAt,
	}
	if m.LastMissedPeriod != nil {
		if p, err := domain.ParsePeriod(*m.LastMissedPeriod); err == nil {
			member.LastMissedPeriod = &p
		}
	}
	return member
}

func fromDomainMember(m *domain.Member) *models.Member {
	model := &models.Member{
		ID:                      m.ID,
		Name:                    m.Name,
		Email:                   m.Email.String(),
		Phone:                   m.Phone.String(),
		JoinDate:                m.JoinDate,
		LastPaymentDate:         m.LastPaymentDate,
		ConsecutiveMonthsMissed: m.ConsecutiveMonthsMissed,
		Active:                  m.Active,
		CreatedAt:               m.CreatedAt,
		UpdatedAt:               m.UpdatedAt,
	}
	if m.LastMissedPeriod != nil {
		s := m.LastMissedPeriod.String()
		model.LastMissedPeriod = &s
	}
	return model
}

func toDomainPayment(p *models.Payment) *domain.Payment {
	period, _ := domain.ParsePeriod(p.Period)
	return &domain.Payment{
		ID:          p.ID,
		MemberID:    p.MemberID,
		Period:      period,
		PaymentDate: p.PaymentDate,
		Amount:      p.Amount,
		Method:      domain.PaymentMethod(p.Method),
		Notes:       p.Notes,
		CreatedAt:   p.CreatedAt,
	}
}

func fromDomainPayment(p *domain.Payment) *models.Payment {
	return &models.Payment{
		ID:          p.ID,
		MemberID:    p.MemberID,
		Period:      p.Period.String(),
		PaymentDate: p.PaymentDate,
		Amount:      p.Amount,
		Method:      string(p.Method),
		Notes:       p.Notes,
		CreatedAt:   p.CreatedAt,
	}
}

func toDomainCommunication(c *models.Communication) *domain.Communication {
	comm := &domain.Communication{
		ID:               c.ID,
		Title:            c.Title,
		MessageContent:   c.MessageContent,
		CreatedAt:        c.CreatedAt,
		SentAt:           c.SentAt,
		Type:             domain.CommunicationType(c.Type),
		SentToAllMembers: c.SentToAllMembers,
	}
	for i := range c.Deliveries {
		comm.Deliveries = append(comm.Deliveries, toDomainDelivery(&c.Deliveries[i]))
	}
	return comm
}

func fromDomainCommunication(c *domain.Communication) *models.Communication {
	model := &models.Communication{
		ID:               c.ID,
		Title:            c.Title,
		MessageContent:   c.MessageContent,
		Type:             string(c.Type),
		SentToAllMembers: c.SentToAllMembers,
		CreatedAt:        c.CreatedAt,
		SentAt:           c.SentAt,
	}
	for _, d := range c.Deliveries {
		model.Deliveries = append(model.Deliveries, *fromDomainDelivery(d))
	}
	return model
}

func toDomainDelivery(d *models.MessageDelivery) *domain.MessageDelivery {
	return &domain.MessageDelivery{
		ID:              d.ID,
		CommunicationID: d.CommunicationID,
		RecipientID:     d.RecipientID,
		Channel:         domain.DeliveryChannel(d.Channel),
		Status:          domain.DeliveryStatus(d.Status),
		DeliveredAt:     d.DeliveredAt,
		ResponseNotes:   d.ResponseNotes,
	}
}

func fromDomainDelivery(d *domain.MessageDelivery) *models.MessageDelivery {
	return &models.MessageDelivery{
		ID:              d.ID,
		CommunicationID: d.CommunicationID,
		RecipientID:     d.RecipientID,
		Channel:         string(d.Channel),
		Status:          string(d.Status),
		DeliveredAt:     d.DeliveredAt,
		ResponseNotes:   d.ResponseNotes,
	}
}

func toDomainUser(u *models.User) *domain.User {
	return &domain.User{
		ID:                  u.ID,
		Email:               domain.RestoreEmail(u.Email),
		PasswordHash:        u.Password,
		Role:                domain.UserRole(u.Role),
		Enabled:             u.Enabled,
		Locked:              u.Locked,
		FailedLoginAttempts: u.FailedLoginAttempts,
		LastPasswordChange:  u.LastPasswordChange,
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		Phone:               u.Phone,
		Bio:                 u.Bio,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
	}
}

func fromDomainUser(u *domain.User) *models.User {
	return &models.User{
		ID:                  u.ID,
		Email:               u.Email.String(),
		Password:            u.PasswordHash,
		Role:                string(u.Role),
		Enabled:             u.Enabled,
		Locked:              u.Locked,
		FailedLoginAttempts: u.FailedLoginAttempts,
		LastPasswordChange:  u.LastPasswordChange,
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		Phone:               u.Phone,
		Bio:                 u.Bio,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
	}
}

func toDomainRefreshToken(t *models.RefreshToken) *domain.RefreshToken {
	return &domain.RefreshToken{
		ID:        t.ID,
		UserID:    t.UserID,
		TokenHash: t.TokenHash,
		ExpiresAt: t.ExpiresAt,
		CreatedAt: t.CreatedAt,
		RevokedAt: t.RevokedAt,
	}
}
