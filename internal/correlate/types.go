package correlate

import (
	"fmt"
	"strings"
)

// TypeID identifies a correlation type. Values are stable; they key the
// central repository's type table and its entry rows.
type TypeID int

const (
	TypeFiles  TypeID = 0
	TypeDomain TypeID = 1
	TypeEmail  TypeID = 2
	TypePhone  TypeID = 3
	TypeUSBID  TypeID = 4
	TypeSSID   TypeID = 5
	TypeMAC    TypeID = 6
	TypeIMEI   TypeID = 7
	TypeIMSI   TypeID = 8
	TypeICCID  TypeID = 9
)

// Type is a correlation type descriptor: identity plus the normalization
// rule every value of the type must pass before it is usable as a
// cross-case key.
type Type struct {
	ID          TypeID
	Name        string
	DisplayName string
	normalize   func(string) (string, error)
}

// Normalize validates and canonicalizes a raw value for this type.
// The returned value is the form stored and compared across cases.
func (t Type) Normalize(value string) (string, error) {
	if t.normalize == nil {
		return strings.TrimSpace(value), nil
	}
	return t.normalize(value)
}

// Registry hands back type descriptors by id. The extractor consults it;
// the central repository implements it.
type Registry interface {
	TypeByID(id TypeID) (Type, error)
}

// BuiltinRegistry serves the built-in type table directly, for callers
// that derive entries without connecting to a central repository.
type BuiltinRegistry struct {
	types map[TypeID]Type
}

// NewBuiltinRegistry builds a registry over DefaultTypes.
func NewBuiltinRegistry() *BuiltinRegistry {
	r := &BuiltinRegistry{types: make(map[TypeID]Type)}
	for _, t := range DefaultTypes() {
		r.types[t.ID] = t
	}
	return r
}

// TypeByID implements Registry.
func (r *BuiltinRegistry) TypeByID(id TypeID) (Type, error) {
	t, ok := r.types[id]
	if !ok {
		return Type{}, fmt.Errorf("unknown correlation type id %d", id)
	}
	return t, nil
}

// DefaultTypes returns the built-in correlation type table.
func DefaultTypes() []Type {
	return []Type{
		{ID: TypeFiles, Name: "files", DisplayName: "Files", normalize: normalizeMD5},
		{ID: TypeDomain, Name: "domain", DisplayName: "Domains", normalize: normalizeDomain},
		{ID: TypeEmail, Name: "email_address", DisplayName: "Email Addresses", normalize: normalizeEmail},
		{ID: TypePhone, Name: "phone_number", DisplayName: "Phone Numbers", normalize: NormalizePhone},
		{ID: TypeUSBID, Name: "usb_devices", DisplayName: "USB Devices", normalize: normalizeVerbatim},
		{ID: TypeSSID, Name: "wireless_networks", DisplayName: "Wireless Networks", normalize: normalizeVerbatim},
		{ID: TypeMAC, Name: "mac_address", DisplayName: "MAC Addresses", normalize: normalizeMAC},
		{ID: TypeIMEI, Name: "imei_number", DisplayName: "IMEI Number", normalize: normalizeIMEI},
		{ID: TypeIMSI, Name: "imsi_number", DisplayName: "IMSI Number", normalize: normalizeIMSI},
		{ID: TypeICCID, Name: "iccid_number", DisplayName: "ICCID Number", normalize: normalizeICCID},
	}
}

// minPhoneLen is the shortest normalized phone value worth correlating.
// Short dial codes (3-5 digits) are valid numbers but match too many
// unrelated records to be distinctive.
const minPhoneLen = 6

// NormalizePhone keeps only digits, preserving a leading "+". Values
// shorter than minPhoneLen after normalization are rejected.
func NormalizePhone(value string) (string, error) {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	normalized := b.String()
	if strings.HasPrefix(strings.TrimSpace(value), "+") {
		normalized = "+" + normalized
	}
	if len(normalized) < minPhoneLen {
		return "", fmt.Errorf("phone number %q too short after normalization", value)
	}
	return normalized, nil
}

func normalizeVerbatim(value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("empty value")
	}
	return value, nil
}

func normalizeMD5(value string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if len(v) != 32 || !isHex(v) {
		return "", fmt.Errorf("%q is not an MD5 hash", value)
	}
	return v, nil
}

func normalizeDomain(value string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" || strings.ContainsAny(v, " \t") || !strings.Contains(v, ".") {
		return "", fmt.Errorf("%q is not a domain", value)
	}
	return v, nil
}

func normalizeEmail(value string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	at := strings.Index(v, "@")
	if at < 1 || at == len(v)-1 || strings.ContainsAny(v, " \t") {
		return "", fmt.Errorf("%q is not an email address", value)
	}
	return v, nil
}

// normalizeMAC strips common separators and lowercases. EUI-48 and EUI-64
// are both accepted.
func normalizeMAC(value string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	v = strings.Map(func(r rune) rune {
		switch r {
		case ':', '-', '.', ' ':
			return -1
		}
		return r
	}, v)
	if (len(v) != 12 && len(v) != 16) || !isHex(v) {
		return "", fmt.Errorf("%q is not a MAC address", value)
	}
	return v, nil
}

func normalizeIMEI(value string) (string, error) {
	v := digitsOnly(value)
	if len(v) < 14 || len(v) > 16 {
		return "", fmt.Errorf("%q is not an IMEI", value)
	}
	return v, nil
}

func normalizeIMSI(value string) (string, error) {
	v := digitsOnly(value)
	if len(v) < 14 || len(v) > 15 {
		return "", fmt.Errorf("%q is not an IMSI", value)
	}
	return v, nil
}

func normalizeICCID(value string) (string, error) {
	v := digitsOnly(value)
	if len(v) < 18 || len(v) > 20 {
		return "", fmt.Errorf("%q is not an ICCID", value)
	}
	return v, nil
}

func digitsOnly(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		default:
			return false
		}
	}
	return len(s) > 0
}
