package model

import "testing"

func TestIsAdmin(t *testing.T) {
	tests := []struct {
		user     *User
		expected bool
	}{
		{&User{Role: RoleAdmin}, true},
		{&User{Role: RoleUser}, false},
		{&User{Role: "unknown"}, false},
		{&User{}, false},
		{nil, false},
	}

	for _, tt := range tests {
		if got := tt.user.IsAdmin(); got != tt.expected {
			t.Errorf("IsAdmin() = %v, want %v for %+v", got, tt.expected, tt.user)
		}
	}
}

func TestFullName(t *testing.T) {
	u := &User{FirstName: "Jane", LastName: "Doe"}
	if got := u.FullName(); got != "Jane Doe" {
		t.Errorf("FullName() = %q, want %q", got, "Jane Doe")
	}

	u = &User{FirstName: "Prince"}
	if got := u.FullName(); got != "Prince" {
		t.Errorf("FullName() = %q, want %q", got, "Prince")
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{"", true},
		{"short", true},
		{"1234567", true},
		{"12345678", false},
		{"a-valid-password", false},
	}

	for _, tt := range tests {
		err := ValidatePassword(tt.password)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
		}
	}
}

func TestClaimedStatus(t *testing.T) {
	donation := &Item{Kind: KindDonation}
	if got := donation.ClaimedStatus(); got != StatusClaimed {
		t.Errorf("donation ClaimedStatus() = %q, want %q", got, StatusClaimed)
	}

	product := &Item{Kind: KindProduct}
	if got := product.ClaimedStatus(); got != StatusSold {
		t.Errorf("product ClaimedStatus() = %q, want %q", got, StatusSold)
	}
}
