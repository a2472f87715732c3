package domain

import "testing"

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"+62 (812) 555-0101": "628125550101",
		"  0812 ":            "0812",
		"no digits":          "",
		"":                   "",
	}
	for in, want := range cases {
		if got := NormalizePhone(in); got != want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeText(t *testing.T) {
	if got := NormalizeText("  Alice@Example.COM "); got != "alice@example.com" {
		t.Fatalf("unexpected normalisation: %q", got)
	}
}

func TestIsResetPassword(t *testing.T) {
	cases := []struct {
		pw   string
		want bool
	}{
		{"short1", false},
		{"abc123!!", false},
		{"abcd1234", true},
		{"ABCDEFGH", true},
		{"abcd 1234", false},
		{"pässwörd1", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsResetPassword(tc.pw); got != tc.want {
			t.Errorf("IsResetPassword(%q) = %v, want %v", tc.pw, got, tc.want)
		}
	}
}

func TestParsePortal(t *testing.T) {
	for _, p := range []string{"admin", "user", "creator"} {
		if _, ok := ParsePortal(p); !ok {
			t.Errorf("expected %q to be a valid portal", p)
		}
	}
	if _, ok := ParsePortal("root"); ok {
		t.Fatalf("expected root to be rejected")
	}
}

func TestAccountVariants(t *testing.T) {
	var std Account = &StandardAccount{ID: "a1", Role: RoleUser, Username: "bob", Password: "pw", FullName: " Bob Smith ", Phone: "+1 555"}
	if _, ok := std.TempPassword(); ok {
		t.Fatalf("standard accounts never carry a temp password")
	}
	if got := std.Subject(); got != (Subject{ID: "a1", Role: RoleUser, Username: "bob"}) {
		t.Fatalf("unexpected subject: %+v", got)
	}
	if prof := std.RecoveryProfile(); prof.Names[0] != "bob smith" || prof.Phones[0] != "1555" {
		t.Fatalf("unexpected profile: %+v", prof)
	}

	var prov Account = &ProviderAccount{ID: "p1", Username: "luna", Password: "pw", Temporary: "0812", CellPhone: "08-12"}
	if tmp, ok := prov.TempPassword(); !ok || tmp != "0812" {
		t.Fatalf("expected temp password, got %q %v", tmp, ok)
	}
	if prov.Subject().Role != RoleCreator {
		t.Fatalf("provider accounts always have the creator role")
	}
	if prof := prov.RecoveryProfile(); len(prof.Phones) != 2 || prof.Phones[1] != "0812" {
		t.Fatalf("unexpected provider phones: %+v", prof.Phones)
	}
}
