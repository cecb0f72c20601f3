// Package urlutil содержит утилиты для безопасного логирования адресов.
package urlutil

import (
	"net/url"
	"regexp"
)

// MaskURL оставляет от URL только scheme и host.
// Path и query могут содержать токены, userinfo содержит пароль.
//
//	"https://hooks.slack.com/services/XXX/YYY" → "https://hooks.slack.com/***"
func MaskURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "***invalid-url***"
	}
	return u.Scheme + "://" + u.Host + "/***"
}

var dsnSecretRe = regexp.MustCompile(`(?i)\b(password|pwd)\s*=\s*[^;\s]*`)

// MaskDSN маскирует строку подключения к БД.
// URL-форма (postgres://, sqlserver://) сводится к MaskURL,
// key=value форма сохраняется, но значения password/pwd заменяются на ***.
func MaskDSN(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" && u.Host != "" {
		return MaskURL(dsn)
	}
	return dsnSecretRe.ReplaceAllString(dsn, "$1=***")
}
