package staff

import (
	"context"
	"errors"
	"testing"

	"pet-adoption-portal/internal/ports/capabilities"
)

type stubUsers map[string]bool

func (s stubUsers) IsStaff(ctx context.Context, userID string) (bool, error) {
	if userID == "broken" {
		return false, errors.New("db down")
	}
	return s[userID], nil
}

func TestResolver_HasFeature(t *testing.T) {
	t.Setenv("ALLOW_ALL_CAPABILITIES", "")
	r := NewResolver(stubUsers{"staff-1": true}, []string{" cfg-1 ", ""})

	cases := []struct {
		user, capability string
		want             bool
		wantErr          bool
	}{
		{"staff-1", capabilities.CapabilityModerate, true, false},
		{"cfg-1", capabilities.CapabilityModerate, true, false},
		{"plain", capabilities.CapabilityModerate, false, false},
		{"", capabilities.CapabilityModerate, false, false},
		{"staff-1", "portal:other", false, false},
		{"broken", capabilities.CapabilityModerate, false, true},
		{"staff-1", "", false, true},
	}
	for _, tc := range cases {
		got, err := r.HasFeature(context.Background(), capabilities.CapabilityCheck{UserID: tc.user, Capability: tc.capability})
		if (err != nil) != tc.wantErr {
			t.Fatalf("%s/%s: unexpected err %v", tc.user, tc.capability, err)
		}
		if got != tc.want {
			t.Fatalf("%s/%s: got %v want %v", tc.user, tc.capability, got, tc.want)
		}
	}
}

func TestResolver_AllowAll(t *testing.T) {
	t.Setenv("ALLOW_ALL_CAPABILITIES", "true")
	r := NewResolver(nil, nil)

	ok, err := r.HasFeature(context.Background(), capabilities.CapabilityCheck{UserID: "anyone", Capability: capabilities.CapabilityModerate})
	if err != nil || !ok {
		t.Fatalf("expected allow-all, got %v %v", ok, err)
	}
}
