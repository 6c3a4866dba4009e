// Flowmart - Digital Product Marketplace and Download Gateway
// Copyright 2026 Flowmart Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowmart/flowmart

package validation

import (
	"strings"
	"testing"
)

type captureRequest struct {
	Email        string `validate:"required,gated_email"`
	ProductID    string `validate:"required"`
	ProductTitle string `validate:"required"`
}

func TestValidateStruct_Valid(t *testing.T) {
	req := captureRequest{
		Email:        "a@b.com",
		ProductID:    "wf-1",
		ProductTitle: "Invoice Sync",
	}
	if err := ValidateStruct(&req); err != nil {
		t.Errorf("expected valid struct, got %v", err)
	}
}

func TestValidateStruct_GatedEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"a@b.com", true},
		{"weird@", true}, // the gate only requires an '@'
		{"@", true},
		{"plainstring", false},
		{"", false}, // fails required before gated_email
	}

	for _, tt := range tests {
		req := captureRequest{Email: tt.email, ProductID: "p", ProductTitle: "t"}
		err := ValidateStruct(&req)
		if tt.valid && err != nil {
			t.Errorf("email %q: expected valid, got %v", tt.email, err)
		}
		if !tt.valid && err == nil {
			t.Errorf("email %q: expected validation failure", tt.email)
		}
	}
}

func TestValidateStruct_CollectsAllFields(t *testing.T) {
	err := ValidateStruct(&captureRequest{})
	if err == nil {
		t.Fatal("expected validation failure")
	}

	if len(err.Fields()) != 3 {
		t.Errorf("expected 3 field errors, got %d", len(err.Fields()))
	}
	if !strings.Contains(err.Error(), "Email is required") {
		t.Errorf("expected required message for Email, got %q", err.Error())
	}
}

func TestValidateStruct_OneOfMessage(t *testing.T) {
	type sortRequest struct {
		Sort string `validate:"omitempty,oneof=name-asc name-desc"`
	}

	err := ValidateStruct(&sortRequest{Sort: "bogus"})
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if !strings.Contains(err.Error(), "must be one of") {
		t.Errorf("unexpected message: %q", err.Error())
	}
}
