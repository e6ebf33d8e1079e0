package smtp

import (
	"errors"
	"fmt"
	"testing"

	appErrors "github.com/leadmasterhq/leadmaster-backend/internal/errors"
)

func TestIsPermanentRejection(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"user unknown", errors.New("550 5.1.1 User unknown"), true},
		{"no such user", errors.New("smtp rcpt to: No Such User here"), true},
		{"mailbox unavailable", errors.New("554 mailbox unavailable"), true},
		{"recipient rejected", errors.New("Recipient rejected by policy"), true},
		{"bare 550", errors.New("550 blocked"), true},
		{"551 relay", errors.New("551 user not local"), true},
		{"timeout", errors.New("i/o timeout"), false},
		{"greylisting", errors.New("451 4.7.1 try again later"), false},
		{"connection refused", errors.New("dial tcp: connection refused"), false},
		// 5500 must not match the "550 " code pattern.
		{"unrelated number", errors.New("queue id 5500 deferred"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsPermanentRejection(tc.err); got != tc.want {
				t.Errorf("IsPermanentRejection(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	if err := Classify("a@x.com", nil); err != nil {
		t.Fatalf("Classify(nil) = %v, want nil", err)
	}

	perm := Classify("a@x.com", errors.New("550 5.1.1 User unknown"))
	if !appErrors.IsPermanent(perm) {
		t.Errorf("hard-bounce response not classified permanent: %v", perm)
	}
	var pe *appErrors.PermanentDeliveryError
	if !errors.As(perm, &pe) || pe.Email != "a@x.com" {
		t.Errorf("permanent classification lost the recipient: %v", perm)
	}

	trans := Classify("a@x.com", errors.New("i/o timeout"))
	if appErrors.IsPermanent(trans) {
		t.Errorf("timeout classified permanent: %v", trans)
	}
	var te *appErrors.TransientDeliveryError
	if !errors.As(trans, &te) {
		t.Errorf("expected TransientDeliveryError, got %T", trans)
	}

	// Classification survives further wrapping up the call stack.
	wrapped := fmt.Errorf("deliver a@x.com: %w", perm)
	if !appErrors.IsPermanent(wrapped) {
		t.Error("IsPermanent must see through wrapping")
	}
}
