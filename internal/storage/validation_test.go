package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/Veraticus/novatax/internal/model"
)

func TestValidateContext(t *testing.T) {
	tests := []struct {
		ctx     context.Context
		name    string
		wantErr bool
	}{
		{
			name:    "valid context",
			ctx:     context.Background(),
			wantErr: false,
		},
		{
			name:    "nil context",
			ctx:     nil,
			wantErr: true,
		},
		{
			name: "canceled context still valid",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			}(),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateContext() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateString(t *testing.T) {
	tests := []struct {
		name      string
		str       string
		paramName string
		wantErr   bool
	}{
		{name: "valid string", str: "test", paramName: "param"},
		{name: "empty string", str: "", paramName: "param", wantErr: true},
		{name: "whitespace only", str: "   ", paramName: "param", wantErr: true},
		{name: "string with spaces", str: "  test  ", paramName: "param"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateString(tt.str, tt.paramName)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateString() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), tt.paramName) {
				t.Errorf("validateString() error should contain param name %s, got %v", tt.paramName, err)
			}
		})
	}
}

func TestValidateTransaction(t *testing.T) {
	validDate := model.Today()
	tests := []struct {
		name    string
		errMsg  string
		txn     model.Transaction
		wantErr bool
	}{
		{
			name: "valid transaction",
			txn:  model.Transaction{ID: "txn123", Date: validDate, Type: model.TypeIncome},
		},
		{
			name:    "missing ID",
			txn:     model.Transaction{Date: validDate, Type: model.TypeIncome},
			wantErr: true,
			errMsg:  "missing ID",
		},
		{
			name:    "missing date",
			txn:     model.Transaction{ID: "txn123", Type: model.TypeExpense},
			wantErr: true,
			errMsg:  "missing date",
		},
		{
			name:    "unknown type",
			txn:     model.Transaction{ID: "txn123", Date: validDate, Type: "refund"},
			wantErr: true,
			errMsg:  "refund",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTransaction(tt.txn)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateTransaction() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("validateTransaction() error should contain %s, got %v", tt.errMsg, err)
			}
		})
	}
}

func TestValidateProfile(t *testing.T) {
	if err := validateProfile(model.UserProfile{ID: "u1"}); err != nil {
		t.Errorf("validateProfile() unexpected error = %v", err)
	}
	if err := validateProfile(model.UserProfile{Name: "No ID"}); err == nil {
		t.Error("validateProfile() expected error for missing ID")
	}
}
