package enums

import "testing"

func TestRoleCapabilities(t *testing.T) {
	cases := []struct {
		role       Role
		canApprove bool
		canManage  bool
	}{
		{RoleSuperAdmin, true, true},
		{RoleAdmin, true, true},
		{RoleProfessor, true, false},
		{RoleStudent, false, false},
		{Role("visitante"), false, false},
	}
	for _, tc := range cases {
		if got := tc.role.CanApproveLoans(); got != tc.canApprove {
			t.Errorf("%s: CanApproveLoans = %v, want %v", tc.role, got, tc.canApprove)
		}
		if got := tc.role.CanManageUsers(); got != tc.canManage {
			t.Errorf("%s: CanManageUsers = %v, want %v", tc.role, got, tc.canManage)
		}
	}
}

func TestParseRole(t *testing.T) {
	if _, err := ParseRole("aluno"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseRole("root"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestApprovalStatusTerminal(t *testing.T) {
	if ApprovalStatusPending.IsTerminal() {
		t.Fatal("pendente must not be terminal")
	}
	if !ApprovalStatusApproved.IsTerminal() || !ApprovalStatusRejected.IsTerminal() {
		t.Fatal("aprovado and rejeitado must be terminal")
	}
}

func TestLoanStatusTerminal(t *testing.T) {
	if LoanStatusActive.IsTerminal() || LoanStatusOverdue.IsTerminal() {
		t.Fatal("ativo and atrasado must not be terminal")
	}
	if !LoanStatusReturned.IsTerminal() || !LoanStatusCancelled.IsTerminal() {
		t.Fatal("devolvido and cancelado must be terminal")
	}
}
