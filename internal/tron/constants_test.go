package tron

import (
	"strings"
	"testing"
)

func TestIsValidAddress(t *testing.T) {
	cases := []struct {
		name    string
		address string
		want    bool
	}{
		{"mainnet usdt contract", "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t", true},
		{"testnet usdt contract", "TG3XXyExBkPp9nzdajDZsozEu4BkaSJozs", true},
		{"company address", "TR4Z3fYtTgGp5McMcyQrNgGjRL6jQESXBx", true},
		{"empty", "", false},
		{"too short", "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6", false},
		{"too long", "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6tX", false},
		{"wrong prefix", "XR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t", false},
		{"contains zero", "T07NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t", false},
		{"lowercase t prefix", "tR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsValidAddress(tc.address); got != tc.want {
				t.Errorf("IsValidAddress(%q) = %v, want %v", tc.address, got, tc.want)
			}
		})
	}
}

func TestGenerateUserAddress(t *testing.T) {
	addr := GenerateUserAddress("user-1")

	if !strings.HasPrefix(addr, "T") {
		t.Errorf("address must start with T, got %q", addr)
	}
	if len(addr) != 34 {
		t.Errorf("address length = %d, want 34", len(addr))
	}
	if !IsValidAddress(addr) {
		t.Errorf("generated address fails validation: %q", addr)
	}
}

func TestUSDTContract(t *testing.T) {
	if got := USDTContract(NetworkMainnet); got != USDTContractMainnet {
		t.Errorf("mainnet contract = %q", got)
	}
	if got := USDTContract(NetworkTestnet); got != USDTContractTestnet {
		t.Errorf("testnet contract = %q", got)
	}
}
