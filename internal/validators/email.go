package validators

import (
	"context"
	"net"
	"strings"
	"time"
)

// lookupTimeout bounds the DNS round trips so a slow resolver cannot stall
// the public booking endpoint.
const lookupTimeout = 2 * time.Second

// IsEmailDomainValid checks that the address has a domain with either an MX
// record or a resolvable host. Empty addresses are allowed: patients may
// book without an email.
func IsEmailDomainValid(email string) bool {
	if email == "" {
		return true
	}

	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}

	domain := email[at+1:]

	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	if mx, err := net.DefaultResolver.LookupMX(ctx, domain); err == nil && len(mx) > 0 {
		return true
	}

	if ips, err := net.DefaultResolver.LookupIPAddr(ctx, domain); err == nil && len(ips) > 0 {
		return true
	}

	return false
}
