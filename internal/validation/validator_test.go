package validation

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	appErrors "github.com/leadmasterhq/leadmaster-backend/internal/errors"
)

// stubResolver answers MX lookups from a fixed table. Domains absent from
// the table resolve to an NXDOMAIN-style error.
type stubResolver struct {
	domains map[string]bool
	lookups atomic.Int64

	mu          sync.Mutex
	inFlight    int
	maxInFlight int
}

func (r *stubResolver) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	r.lookups.Add(1)
	r.mu.Lock()
	r.inFlight++
	if r.inFlight > r.maxInFlight {
		r.maxInFlight = r.inFlight
	}
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.inFlight--
		r.mu.Unlock()
	}()

	if r.domains[domain] {
		return []*net.MX{{Host: "mx." + domain, Pref: 10}}, nil
	}
	return nil, errors.New("no such host")
}

func TestValidateEmail(t *testing.T) {
	v := &Validator{Resolver: &stubResolver{domains: map[string]bool{"x.com": true}}}
	ctx := context.Background()

	cases := []struct {
		email string
		want  bool
	}{
		{"good@x.com", true},
		{"not-an-address", false},
		{"Display Name <good@x.com>", false},
		{"good@nodomain.invalid", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := v.ValidateEmail(ctx, tc.email); got != tc.want {
			t.Errorf("ValidateEmail(%q) = %v, want %v", tc.email, got, tc.want)
		}
	}
}

func TestCheckNamesTheDisqualification(t *testing.T) {
	v := &Validator{Resolver: &stubResolver{domains: map[string]bool{"x.com": true}}}
	ctx := context.Background()

	if err := v.Check(ctx, "good@x.com"); err != nil {
		t.Fatalf("Check admitted address returned %v", err)
	}

	var verr *appErrors.ValidationError

	err := v.Check(ctx, "not-an-address")
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if verr.Email != "not-an-address" || !strings.Contains(verr.Reason, "malformed") {
		t.Errorf("unexpected verdict %+v", verr)
	}

	err = v.Check(ctx, "good@nodomain.invalid")
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if !strings.Contains(verr.Reason, "MX") || !strings.Contains(verr.Reason, "nodomain.invalid") {
		t.Errorf("MX failure reason should name the domain, got %q", verr.Reason)
	}
}

func TestValidateBatchPreservesOrder(t *testing.T) {
	v := &Validator{Resolver: &stubResolver{domains: map[string]bool{"x.com": true}}}

	results := v.ValidateBatch(context.Background(), []string{
		"first@x.com",
		"broken@@x.com",
		"third@x.com",
	})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	want := []struct {
		email string
		valid bool
	}{
		{"first@x.com", true},
		{"broken@@x.com", false},
		{"third@x.com", true},
	}
	for i, w := range want {
		if results[i].Email != w.email {
			t.Errorf("result %d: email %q, want %q", i, results[i].Email, w.email)
		}
		if results[i].IsValid != w.valid {
			t.Errorf("result %d (%s): valid = %v, want %v", i, w.email, results[i].IsValid, w.valid)
		}
	}
}

func TestValidateBatchBoundsConcurrency(t *testing.T) {
	r := &stubResolver{domains: map[string]bool{"x.com": true}}
	v := &Validator{Resolver: r, ChunkSize: 4}

	emails := make([]string, 25)
	for i := range emails {
		emails[i] = "lead@x.com"
	}
	results := v.ValidateBatch(context.Background(), emails)

	if len(results) != 25 {
		t.Fatalf("expected 25 results, got %d", len(results))
	}
	if got := r.lookups.Load(); got != 25 {
		t.Errorf("expected 25 lookups, got %d", got)
	}
	if r.maxInFlight > 4 {
		t.Errorf("concurrency exceeded chunk size: %d in flight", r.maxInFlight)
	}
}

func TestValidateBatchEmptyInput(t *testing.T) {
	v := New()
	results := v.ValidateBatch(context.Background(), nil)
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}
