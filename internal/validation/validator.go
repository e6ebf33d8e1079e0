// internal/validation/validator.go
package validation

import (
	"context"
	"net"
	"net/mail"
	"strings"
	"sync"

	appErrors "github.com/leadmasterhq/leadmaster-backend/internal/errors"
)

// Result is one admission verdict. Batch results keep the input order.
type Result struct {
	Email   string `json:"email"`
	IsValid bool   `json:"isValid"`
}

// MXResolver is the DNS dependency, injectable for tests.
type MXResolver interface {
	LookupMX(ctx context.Context, domain string) ([]*net.MX, error)
}

// Validator checks addresses syntactically and against DNS MX records
// before they are allowed into the delivery queue.
type Validator struct {
	Resolver  MXResolver
	ChunkSize int
}

const defaultChunkSize = 20

// New builds a Validator backed by the system resolver.
func New() *Validator {
	return &Validator{Resolver: net.DefaultResolver, ChunkSize: defaultChunkSize}
}

// Check validates a single address: RFC 5322 syntax, then a non-empty MX
// record set for its domain. A nil return admits the address; otherwise the
// ValidationError names what disqualified it.
func (v *Validator) Check(ctx context.Context, email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return appErrors.NewValidation(email, "malformed address")
	}
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return appErrors.NewValidation(email, "malformed address")
	}
	domain := email[at+1:]

	records, err := v.Resolver.LookupMX(ctx, domain)
	if err != nil || len(records) == 0 {
		return appErrors.NewValidation(email, "no MX records for "+domain)
	}
	return nil
}

// ValidateEmail collapses Check to a verdict.
func (v *Validator) ValidateEmail(ctx context.Context, email string) bool {
	return v.Check(ctx, email) == nil
}

// ValidateBatch fans out lookups in fixed-size chunks: addresses within a
// chunk are checked concurrently, chunks run one after another, so at most
// ChunkSize lookups are in flight. The result slice preserves input order.
// One bad address never affects its siblings.
func (v *Validator) ValidateBatch(ctx context.Context, emails []string) []Result {
	chunkSize := v.ChunkSize
	if chunkSize < 1 {
		chunkSize = defaultChunkSize
	}

	results := make([]Result, len(emails))

	for start := 0; start < len(emails); start += chunkSize {
		end := start + chunkSize
		if end > len(emails) {
			end = len(emails)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				results[idx] = Result{
					Email:   emails[idx],
					IsValid: v.ValidateEmail(ctx, emails[idx]),
				}
			}(i)
		}
		wg.Wait()
	}

	return results
}
