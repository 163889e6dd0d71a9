package tools

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/wagiedev/msf-mcp-go/internal/artifact"
	"github.com/wagiedev/msf-mcp-go/internal/errors"
)

// ValidHost reports whether host is usable as a target or listener
// address. Four dot-separated parts must all be integers in 0..255; any
// other non-empty value is accepted as a hostname.
func ValidHost(host string) bool {
	if host == "" {
		return false
	}

	parts := strings.Split(host, ".")
	if len(parts) != 4 {
		return true
	}

	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 255 {
			return false
		}
	}

	return true
}

// splitHosts splits an RHOSTS value on commas and whitespace.
func splitHosts(value string) []string {
	return strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// validateHosts checks every entry of a host list. A trailing /prefix is
// allowed so CIDR ranges pass.
func validateHosts(field, value string) error {
	hosts := splitHosts(value)
	if len(hosts) == 0 {
		return &errors.ValidationError{Field: field, Err: errors.ErrMissingArgument}
	}

	for _, host := range hosts {
		addr, prefix, hasPrefix := strings.Cut(host, "/")
		if hasPrefix {
			if n, err := strconv.Atoi(prefix); err != nil || n < 0 || n > 32 {
				return &errors.ValidationError{Field: field, Err: fmt.Errorf("%s is not a valid host", host)}
			}
		}

		if !ValidHost(addr) {
			return &errors.ValidationError{Field: field, Err: fmt.Errorf("%s is not a valid host", host)}
		}
	}

	return nil
}

// validateHost checks an optional single host.
func validateHost(field, value string) error {
	if value == "" || ValidHost(value) {
		return nil
	}

	return &errors.ValidationError{Field: field, Err: fmt.Errorf("%s is not a valid host", value)}
}

func validatePort(field string, port int) error {
	if port < 0 || port > 65535 {
		return &errors.ValidationError{Field: field, Err: fmt.Errorf("%d is out of range", port)}
	}

	return nil
}

// validateFormat rejects output formats that would name a path instead of a
// file extension.
func validateFormat(field, format string) error {
	if artifact.ValidFormat(format) {
		return nil
	}

	return &errors.ValidationError{Field: field, Err: fmt.Errorf("%q is not a valid format", format)}
}
