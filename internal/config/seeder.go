package config

import (
	"time"

	"membertracker/internal/adapters/persistence/models"
	"membertracker/internal/core/domain"
	"membertracker/internal/pkg/password"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db  *gorm.DB
	cfg *Config
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg *Config) *Seeder {
	return &Seeder{db: db, cfg: cfg}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Info().Msg("🌱 Running database seeders...")

	if err := s.seedAdminUser(); err != nil {
		log.Warn().Err(err).Msg("⚠️ Admin seeder skipped")
	}

	if s.cfg.IsDev() {
		if err := s.seedSampleMembers(); err != nil {
			log.Warn().Err(err).Msg("⚠️ Sample member seeder skipped")
		}
	}

	log.Info().Msg("✅ Database seeding completed")
	return nil
}

// seedAdminUser creates the first admin from ADMIN_EMAIL and ADMIN_PASSWORD.
// Nothing happens when an admin exists or the variables are unset.
func (s *Seeder) seedAdminUser() error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("role = ?", string(domain.RoleAdmin)).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	email := getEnv("ADMIN_EMAIL", "")
	plain := getEnv("ADMIN_PASSWORD", "")
	if email == "" || plain == "" {
		log.Warn().Msg("⚠️ Skipping admin seed: ADMIN_EMAIL or ADMIN_PASSWORD not set")
		return nil
	}

	addr, err := domain.NewEmail(email)
	if err != nil {
		return err
	}
	if err := domain.ValidatePasswordStrength(plain); err != nil {
		return err
	}

	hashed, err := password.Hash(plain)
	if err != nil {
		return err
	}

	now := time.Now()
	admin := &models.User{
		Email:              addr.String(),
		Password:           hashed,
		Role:               string(domain.RoleAdmin),
		Enabled:            true,
		FirstName:          "System",
		LastName:           "Administrator",
		LastPasswordChange: &now,
	}
	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Info().Str("email", admin.Email).Msg("✅ Admin user created")
	return nil
}

// seedSampleMembers fills an empty members table for local development
func (s *Seeder) seedSampleMembers() error {
	var count int64
	if err := s.db.Model(&models.Member{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now()
	samples := []models.Member{
		{Name: "Abebe Kebede", Email: "abebe@example.com", Phone: "5551234567", JoinDate: now.AddDate(-2, 0, 0), Active: true},
		{Name: "Hana Tesfaye", Email: "hana@example.com", Phone: "5552345678", JoinDate: now.AddDate(-1, -3, 0), Active: true, ConsecutiveMonthsMissed: 2},
		{Name: "Dawit Alemu", Email: "dawit@example.com", Phone: "5553456789", JoinDate: now.AddDate(0, -8, 0), Active: false, ConsecutiveMonthsMissed: 4},
	}
	if err := s.db.Create(&samples).Error; err != nil {
		return err
	}

	log.Info().Int("count", len(samples)).Msg("✅ Sample members created")
	return nil
}
