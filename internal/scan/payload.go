// Package scan validates decoded QR payloads before they are fetched.
package scan

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidPayload indicates scanned text that is not a procedure URL.
var ErrInvalidPayload = errors.New("scanned code is not a procedure link")

// scheme://host[:port][/path], scheme optional.
var payloadRe = regexp.MustCompile(`^(?:(https?)://)?([A-Za-z0-9](?:[A-Za-z0-9.-]*[A-Za-z0-9])?)(:\d{1,5})?((?:/[\w.~%-]*)*)$`)

// Normalize checks payload against the procedure URL pattern and returns the
// URL to fetch. Payloads without a scheme are fetched over https.
func Normalize(payload string) (string, error) {
	p := strings.TrimSpace(payload)
	m := payloadRe.FindStringSubmatch(p)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidPayload, truncate(p, 80))
	}
	if m[1] == "" {
		return "https://" + p, nil
	}
	return p, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
