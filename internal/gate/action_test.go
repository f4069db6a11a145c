package gate

import "testing"

func TestParseAction(t *testing.T) {
	cases := []struct {
		data string
		want Action
		ok   bool
	}{
		{"check_subscription", ActionCheckSubscription, true},
		{"\fcheck_subscription", ActionCheckSubscription, true},
		{"\fcheck_subscription|payload", ActionCheckSubscription, true},
		{"\fadmin_back", ActionAdminBack, true},
		{"admin_broadcast", ActionAdminBroadcast, true},
		{"admin_users", ActionAdminUsers, true},
		{"admin_stats", ActionAdminStats, true},
		{"", "", false},
		{"\f", "", false},
		{"subscribe_pls", "", false},
		{"admin_", "", false},
	}

	for _, tc := range cases {
		got, ok := ParseAction(tc.data)
		if ok != tc.ok || got != tc.want {
			t.Errorf("ParseAction(%q) = (%q, %v), want (%q, %v)", tc.data, got, ok, tc.want, tc.ok)
		}
	}
}

func TestActionAdmin(t *testing.T) {
	admins := []Action{ActionAdminStats, ActionAdminBroadcast, ActionAdminUsers, ActionAdminBack}
	for _, a := range admins {
		if !a.Admin() {
			t.Errorf("%s should be an admin action", a)
		}
	}
	if ActionCheckSubscription.Admin() {
		t.Error("check_subscription must not be an admin action")
	}
}
