package models

import (
	"fmt"

	"github.com/laporwarga/backend/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// ComplaintCategoryNames are seeded with ids 1..6 in this order.
var ComplaintCategoryNames = []string{
	"Infrastruktur",
	"Transportasi",
	"Kesehatan",
	"Lingkungan",
	"Keamanan",
	"Pendidikan",
}

var NewsCategoryNames = []string{
	"Pengumuman",
	"Kegiatan",
	"Layanan Publik",
	"Infrastruktur",
}

func InitDB(cfg *config.DatabaseConfig, mode string) error {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	logLevel := logger.Warn
	if mode == "debug" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect database: %w", err)
	}

	DB = db
	return nil
}

func AutoMigrate() error {
	return Migrate(DB)
}

// Migrate creates or updates every table on db.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&OTPCode{},
		&ComplaintCategory{},
		&Complaint{},
		&Feedback{},
		&NewsCategory{},
		&News{},
		&Comment{},
		&ChatbotSuggestion{},
		&ChatbotHistory{},
		&ChatbotResponse{},
		&LLMConfig{},
		&SystemConfig{},
		&SystemLog{},
		&SchedulerLock{},
	)
}

func GetDB() *gorm.DB {
	return DB
}

// SeedDefaultData creates default data if not exists
func SeedDefaultData() error {
	return Seed(DB)
}

func Seed(db *gorm.DB) error {
	for i, name := range ComplaintCategoryNames {
		cat := ComplaintCategory{ID: uint(i + 1), Name: name}
		if err := db.Where(ComplaintCategory{ID: cat.ID}).FirstOrCreate(&cat).Error; err != nil {
			return err
		}
	}

	for i, name := range NewsCategoryNames {
		cat := NewsCategory{ID: uint(i + 1), Name: name}
		if err := db.Where(NewsCategory{ID: cat.ID}).FirstOrCreate(&cat).Error; err != nil {
			return err
		}
	}

	defaultConfigs := []SystemConfig{
		{Key: "ldap_enabled", Value: "false", Type: "bool", Group: "ldap", Label: "Enable LDAP Authentication"},
		{Key: "ldap_host", Value: "", Type: "string", Group: "ldap", Label: "LDAP Server Host"},
		{Key: "ldap_port", Value: "389", Type: "int", Group: "ldap", Label: "LDAP Server Port"},
		{Key: "ldap_base_dn", Value: "", Type: "string", Group: "ldap", Label: "LDAP Base DN"},
		{Key: "ldap_bind_dn", Value: "", Type: "string", Group: "ldap", Label: "LDAP Bind DN"},
		{Key: "ldap_bind_password", Value: "", Type: "string", Group: "ldap", Label: "LDAP Bind Password"},
		{Key: "ldap_user_filter", Value: "(uid=%s)", Type: "string", Group: "ldap", Label: "LDAP User Filter"},
		{Key: "ldap_use_ssl", Value: "false", Type: "bool", Group: "ldap", Label: "Use SSL/TLS"},
		{Key: "auth_access_token_expire_hours", Value: "24", Type: "int", Group: "auth", Label: "Access Token Lifetime (hours)"},
		{Key: "auth_refresh_token_expire_hours", Value: "720", Type: "int", Group: "auth", Label: "Refresh Token Lifetime (hours)"},
		{Key: "chatbot_enabled", Value: "true", Type: "bool", Group: "chatbot", Label: "Enable Chatbot"},
		{Key: "log_retention_days", Value: "30", Type: "int", Group: "maintenance", Label: "System Log Retention Days"},
		{Key: "maintenance_cron", Value: "0 3 * * *", Type: "string", Group: "maintenance", Label: "Maintenance Schedule (cron)"},
	}

	for _, cfg := range defaultConfigs {
		var count int64
		db.Model(&SystemConfig{}).Where(&SystemConfig{Key: cfg.Key}).Count(&count)
		if count == 0 {
			if err := db.Create(&cfg).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
