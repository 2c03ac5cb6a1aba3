package services

import (
	"errors"
	"strconv"

	"github.com/laporwarga/backend/internal/config"
	"github.com/laporwarga/backend/internal/models"
	"gorm.io/gorm"
)

type SystemConfigService struct {
	db *gorm.DB
}

func NewSystemConfigService(db *gorm.DB) *SystemConfigService {
	return &SystemConfigService{db: db}
}

func (s *SystemConfigService) Get(key string) (string, error) {
	var cfg models.SystemConfig
	if err := s.db.Where(&models.SystemConfig{Key: key}).First(&cfg).Error; err != nil {
		return "", err
	}
	return cfg.Value, nil
}

func (s *SystemConfigService) GetWithDefault(key, defaultValue string) string {
	value, err := s.Get(key)
	if err != nil {
		return defaultValue
	}
	return value
}

func (s *SystemConfigService) GetInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(s.GetWithDefault(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return v
}

func (s *SystemConfigService) GetBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(s.GetWithDefault(key, strconv.FormatBool(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return v
}

func (s *SystemConfigService) Set(key, value string) error {
	var cfg models.SystemConfig
	err := s.db.Where(&models.SystemConfig{Key: key}).First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cfg = models.SystemConfig{
			Key:   key,
			Value: value,
		}
		return s.db.Create(&cfg).Error
	}
	if err != nil {
		return err
	}
	return s.db.Model(&cfg).Update("value", value).Error
}

func (s *SystemConfigService) GetByGroup(group string) ([]models.SystemConfig, error) {
	var configs []models.SystemConfig
	if err := s.db.Where(&models.SystemConfig{Group: group}).Order("id ASC").Find(&configs).Error; err != nil {
		return nil, err
	}
	for i := range configs {
		if configs[i].Key == "ldap_bind_password" && configs[i].Value != "" {
			configs[i].Value = "****"
		}
	}
	return configs, nil
}

// LDAPConfig merges database settings over the file configuration.
// A host stored in the database wins; otherwise the file section is used.
func (s *SystemConfigService) LDAPConfig(fallback *config.LDAPConfig) *config.LDAPConfig {
	out := config.LDAPConfig{}
	if fallback != nil {
		out = *fallback
	}
	host := s.GetWithDefault("ldap_host", "")
	if host == "" {
		out.Enabled = out.Enabled && s.GetBool("ldap_enabled", true)
		return &out
	}

	out.Enabled = s.GetBool("ldap_enabled", false)
	out.Host = host
	out.Port = s.GetInt("ldap_port", 389)
	out.BaseDN = s.GetWithDefault("ldap_base_dn", out.BaseDN)
	out.BindDN = s.GetWithDefault("ldap_bind_dn", out.BindDN)
	out.BindPassword = s.GetWithDefault("ldap_bind_password", out.BindPassword)
	out.UserFilter = s.GetWithDefault("ldap_user_filter", "(uid=%s)")
	out.UseSSL = s.GetBool("ldap_use_ssl", false)
	return &out
}

type UpdateConfigRequest struct {
	Values map[string]string `json:"values" binding:"required"`
}

// UpdateGroup writes only keys that already belong to group.
func (s *SystemConfigService) UpdateGroup(group string, req *UpdateConfigRequest) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for key, value := range req.Values {
			var cfg models.SystemConfig
			if err := tx.Where(&models.SystemConfig{Key: key, Group: group}).First(&cfg).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errUnknownConfigKey(key)
				}
				return err
			}
			if key == "ldap_bind_password" && value == "****" {
				continue
			}
			if err := tx.Model(&cfg).Update("value", value).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
