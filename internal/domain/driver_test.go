package domain

import "testing"

func TestVerificationStatusCanTransition(t *testing.T) {
	cases := []struct {
		from, to VerificationStatus
		want     bool
	}{
		{VerificationSubmitted, VerificationApproved, true},
		{VerificationSubmitted, VerificationRejected, true},
		{VerificationSubmitted, VerificationSubmitted, false},
		{VerificationApproved, VerificationRejected, false},
		{VerificationApproved, VerificationSubmitted, false},
		{VerificationRejected, VerificationApproved, false},
		{VerificationRejected, VerificationSubmitted, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.want {
			t.Fatalf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestDocumentTypeValid(t *testing.T) {
	if !DocumentInsurance.Valid() {
		t.Fatalf("expected insurance to be valid")
	}
	if DocumentType("passport").Valid() {
		t.Fatalf("expected unknown doc type to be invalid")
	}
}
