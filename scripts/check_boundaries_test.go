package main

import "testing"

const governancePrefix = "commonwealth/contexts/governance/treasury-governor"

func TestCheckImportAllowsOwnLayers(t *testing.T) {
	cases := []struct {
		layer string
		path  string
	}{
		{"domain", governancePrefix + "/domain/entities"},
		{"domain", "math/bits"},
		{"ports", governancePrefix + "/domain/entities"},
		{"ports", "commonwealth/contracts/gen/events/v1"},
		{"application", governancePrefix + "/ports"},
		{"adapters", "gorm.io/gorm"},
		{"adapters", governancePrefix + "/application/commands"},
	}
	for _, tc := range cases {
		if broken := checkImport(tc.layer, governancePrefix, tc.path); len(broken) != 0 {
			t.Fatalf("%s importing %s: unexpected violations %v", tc.layer, tc.path, broken)
		}
	}
}

func TestCheckImportFlagsViolations(t *testing.T) {
	cases := []struct {
		layer string
		path  string
	}{
		{"domain", governancePrefix + "/ports"},
		{"domain", "github.com/google/uuid"},
		{"application", governancePrefix + "/adapters/postgres"},
		{"application", "commonwealth/internal/platform/config"},
		{"ports", "gorm.io/gorm"},
		{"adapters", "commonwealth/contexts/identity-access/authorization-service/domain/entities"},
	}
	for _, tc := range cases {
		if broken := checkImport(tc.layer, governancePrefix, tc.path); len(broken) == 0 {
			t.Fatalf("%s importing %s: expected a violation", tc.layer, tc.path)
		}
	}
}
