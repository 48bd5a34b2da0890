package discord

import "albionbot/internal/domain"

// DomainErrorKey maps a domain error to its i18n message key, or "" when
// err carries no domain code. Adapters feed the key to the translator so
// every user-facing error message lives in the locale catalogs.
func DomainErrorKey(err error) string {
	if err == nil {
		return ""
	}
	if code := domain.Code(err); code != "" {
		return "errors." + code
	}
	return ""
}
