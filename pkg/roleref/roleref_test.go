package roleref

import "testing"

func TestRefMatchesNormalization(t *testing.T) {
	tests := []struct {
		name     string
		ref      Ref
		required string
		want     bool
	}{
		{"完全相等", LegacyRef("MANAGER"), "MANAGER", true},
		{"大小写不敏感", LegacyRef("manager"), "MANAGER", true},
		{"去首尾空白", LegacyRef("  MANAGER  "), "MANAGER", true},
		{"空白加大小写", RbacRef(" Admin_Rh "), "ADMIN_RH", true},
		{"不同代码", RbacRef("EMPLOYEE"), "MANAGER", false},
		{"空引用", LegacyRef(""), "MANAGER", false},
		{"空要求", LegacyRef("MANAGER"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ref.Matches(tt.required); got != tt.want {
				t.Errorf("Ref%v.Matches(%q) = %v, want %v", tt.ref, tt.required, got, tt.want)
			}
		})
	}
}

func TestMatchesAny(t *testing.T) {
	ref := RbacRef("MANAGER")
	if !ref.MatchesAny([]string{"ADMIN_RH", "MANAGER"}) {
		t.Error("expected MANAGER to match list containing MANAGER")
	}
	if ref.MatchesAny([]string{"ADMIN_RH", "EMPLOYEE"}) {
		t.Error("expected MANAGER not to match unrelated list")
	}
	if ref.MatchesAny(nil) {
		t.Error("expected no match against empty list")
	}
}

func TestAnyMatches(t *testing.T) {
	refs := Collect("employee", []string{"PLANNER"})
	if !AnyMatches(refs, []string{"EMPLOYEE"}) {
		t.Error("legacy role should match case-insensitively")
	}
	if !AnyMatches(refs, []string{"planner"}) {
		t.Error("rbac code should match case-insensitively")
	}
	if AnyMatches(refs, []string{"MANAGER"}) {
		t.Error("unexpected match")
	}
}

func TestCollect(t *testing.T) {
	refs := Collect("MANAGER", []string{"PLANNER", "", "APPROVER"})
	if len(refs) != 3 {
		t.Fatalf("expected 3 refs (blank codes dropped), got %d", len(refs))
	}
	if refs[0].Kind != Legacy {
		t.Error("first ref should be the legacy role")
	}
	for _, ref := range refs[1:] {
		if ref.Kind != Rbac {
			t.Error("remaining refs should be rbac codes")
		}
	}

	if got := Collect("", nil); len(got) != 0 {
		t.Errorf("expected empty collection, got %d refs", len(got))
	}
}
