package directives

import (
	"errors"
	"net/http"
	"testing"
)

var statusHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

func TestApplyStatus(t *testing.T) {
	m := NewModule(statusHandler)
	loc := &Location{Path: "/status"}

	if err := m.Apply(LocConf, loc, "status"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.Handler == nil {
		t.Fatal("status directive did not attach the handler")
	}
}

func TestApplyErrors(t *testing.T) {
	tests := []struct {
		name     string
		block    Context
		cmd      string
		args     []string
		expected error
	}{
		{"status with argument", LocConf, "status", []string{"on"}, ErrInvalidArgs},
		{"status in server block", SrvConf, "status", nil, ErrNotAllowedHere},
		{"status in main block", MainConf, "status", nil, ErrNotAllowedHere},
		{"format without arguments", LocConf, "status_format", nil, ErrInvalidArgs},
		{"format with three arguments", MainConf, "status_format", []string{"a", "b", "c"}, ErrInvalidArgs},
		{"zone in location block", LocConf, "status_zone", []string{"backend"}, ErrNotAllowedHere},
		{"zone in main block", MainConf, "status_zone", []string{"backend"}, ErrNotAllowedHere},
		{"zone without arguments", SrvConf, "status_zone", nil, ErrInvalidArgs},
		{"unknown directive", LocConf, "stub_status", nil, ErrUnknownDirective},
	}

	m := NewModule(statusHandler)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := &Location{Path: "/status"}

			err := m.Apply(tt.block, loc, tt.cmd, tt.args...)
			if !errors.Is(err, tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, err)
			}
			if loc.Handler != nil {
				t.Error("failed directive must not attach a handler")
			}
		})
	}
}

func TestStubDirectivesHaveNoEffect(t *testing.T) {
	tests := []struct {
		name  string
		block Context
		cmd   string
		args  []string
	}{
		{"format in main", MainConf, "status_format", []string{"json"}},
		{"format in server", SrvConf, "status_format", []string{"json", "pretty"}},
		{"format in location", LocConf, "status_format", []string{"text"}},
		{"zone with name", SrvConf, "status_zone", []string{"backend"}},
		{"zone with name and size", SrvConf, "status_zone", []string{"backend", "10m"}},
	}

	m := NewModule(statusHandler)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := &Location{Path: "/status"}

			if err := m.Apply(tt.block, loc, tt.cmd, tt.args...); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if loc.Handler != nil || loc.Path != "/status" {
				t.Errorf("%s changed the location: %+v", tt.cmd, loc)
			}
		})
	}
}

func TestContextString(t *testing.T) {
	tests := []struct {
		ctx      Context
		expected string
	}{
		{MainConf, "main"},
		{SrvConf | LocConf, "server|location"},
		{MainConf | SrvConf | LocConf, "main|server|location"},
	}

	for _, tt := range tests {
		if got := tt.ctx.String(); got != tt.expected {
			t.Errorf("expected %q, got %q", tt.expected, got)
		}
	}
}
