package services

import (
	"crypto/tls"
	"errors"
	"fmt"

	"github.com/go-ldap/ldap/v3"
	"github.com/laporwarga/backend/internal/config"
)

var ErrLDAPDisabled = errors.New("LDAP is not enabled")

type LDAPUser struct {
	DN    string
	UID   string
	Email string
	Name  string
	Phone string
}

type LDAPService struct {
	config *config.LDAPConfig
}

func NewLDAPService(cfg *config.LDAPConfig) *LDAPService {
	return &LDAPService{config: cfg}
}

func (s *LDAPService) IsEnabled() bool {
	return s.config != nil && s.config.Enabled && s.config.Host != ""
}

// Authenticate looks the officer up with the service account, then binds as
// the found DN to check the password.
func (s *LDAPService) Authenticate(username, password string) (*LDAPUser, error) {
	if !s.IsEnabled() {
		return nil, ErrLDAPDisabled
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	var conn *ldap.Conn
	var err error
	if s.config.UseSSL {
		conn, err = ldap.DialURL("ldaps://"+addr, ldap.DialWithTLSConfig(&tls.Config{ServerName: s.config.Host}))
	} else {
		conn, err = ldap.DialURL("ldap://" + addr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to LDAP server: %w", err)
	}
	defer conn.Close()

	if s.config.BindDN != "" {
		if err := conn.Bind(s.config.BindDN, s.config.BindPassword); err != nil {
			return nil, fmt.Errorf("failed to bind with service account: %w", err)
		}
	}

	searchRequest := ldap.NewSearchRequest(
		s.config.BaseDN,
		ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 0, 0, false,
		userFilter(s.config.UserFilter, username),
		[]string{"dn", "cn", "mail", "uid", "sAMAccountName", "telephoneNumber"},
		nil,
	)

	result, err := conn.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("LDAP search failed: %w", err)
	}
	if len(result.Entries) != 1 {
		return nil, fmt.Errorf("expected one LDAP entry, found %d", len(result.Entries))
	}

	entry := result.Entries[0]
	if err := conn.Bind(entry.DN, password); err != nil {
		return nil, errors.New("invalid credentials")
	}

	user := &LDAPUser{
		DN:    entry.DN,
		UID:   entry.GetAttributeValue("uid"),
		Email: entry.GetAttributeValue("mail"),
		Name:  entry.GetAttributeValue("cn"),
		Phone: entry.GetAttributeValue("telephoneNumber"),
	}
	if user.UID == "" {
		user.UID = entry.GetAttributeValue("sAMAccountName")
	}
	return user, nil
}

func userFilter(pattern, username string) string {
	if pattern == "" {
		pattern = "(uid=%s)"
	}
	return fmt.Sprintf(pattern, ldap.EscapeFilter(username))
}
