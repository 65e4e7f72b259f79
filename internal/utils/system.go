package utils

import (
	"os"
	"os/user"
	"regexp"
	"strconv"
	"strings"
)

var (
	invalidNameChars = regexp.MustCompile(`[^a-z0-9\-_]`)
	repeatedHyphens  = regexp.MustCompile(`-+`)
)

// GetUsername returns the current username.
func GetUsername() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	return u.Username, nil
}

// GetHostname returns the system hostname.
func GetHostname() (string, error) {
	return os.Hostname()
}

// MachineIdentity returns "hostname:username" for the current process.
// Both parts must be resolvable; a session file bound to a partial identity
// would silently stop opening once the missing part became available.
func MachineIdentity() (string, error) {
	hostname, err := GetHostname()
	if err != nil {
		return "", err
	}
	username, err := GetUsername()
	if err != nil {
		return "", err
	}
	return hostname + ":" + username, nil
}

// SanitizeWalletName lowercases name, turns spaces into hyphens and drops
// everything but letters, digits, hyphens and underscores.
func SanitizeWalletName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "-")
	name = invalidNameChars.ReplaceAllString(name, "")
	name = repeatedHyphens.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")

	if name == "" {
		name = "wallet"
	}
	return name
}

// GenerateWalletName returns base (sanitized), or base-2, base-3 and so on,
// whichever is not already in existing. Comparison is case-insensitive.
func GenerateWalletName(base string, existing []string) string {
	base = SanitizeWalletName(base)

	taken := make(map[string]bool, len(existing))
	for _, name := range existing {
		taken[strings.ToLower(name)] = true
	}

	name := base
	for suffix := 2; taken[name]; suffix++ {
		name = base + "-" + strconv.Itoa(suffix)
	}
	return name
}
