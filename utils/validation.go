package utils

import (
	"reflect"
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail is the same check the portal forms run before submitting.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// TrimStrings trims every exported string field of the struct pointed to by v.
func TrimStrings(v any) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if f.Kind() == reflect.String && f.CanSet() {
			f.SetString(strings.TrimSpace(f.String()))
		}
	}
}

// MaskEmail returns masked email for safe display
func MaskEmail(email string) string {
	email = strings.TrimSpace(email)
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}
	local := parts[0]
	domain := parts[1]

	maskedLocal := local
	if len(local) > 2 {
		maskedLocal = local[:1] + strings.Repeat("*", len(local)-2) + local[len(local)-1:]
	} else if len(local) == 2 {
		maskedLocal = local[:1] + "*"
	}

	domainParts := strings.Split(domain, ".")
	if len(domainParts) >= 2 && len(domainParts[0]) > 1 {
		domainParts[0] = domainParts[0][:1] + strings.Repeat("*", len(domainParts[0])-1)
	}

	return maskedLocal + "@" + strings.Join(domainParts, ".")
}
