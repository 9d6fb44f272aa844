// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() returned unexpected error: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "kontentsource dev" {
		t.Errorf("output: got %q, want %q", got, "kontentsource dev")
	}
}

func TestLoadCmd_RequiresProjectID(t *testing.T) {
	t.Setenv("KONTENT_PROJECT_ID", "")

	cmd := rootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"load"})

	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "projectId") {
		t.Fatalf("Execute() error = %v, want missing project id", err)
	}
}
