package security

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestValidateHTTPURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{url: "https://example.com/a.png"},
		{url: "HTTP://example.com"},
		{url: "", wantErr: true},
		{url: "ftp://example.com/a.png", wantErr: true},
		{url: "https://", wantErr: true},
		{url: "/tmp/a.png", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if err := ValidateHTTPURL(tt.url); (err != nil) != tt.wantErr {
				t.Errorf("ValidateHTTPURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePluginPath(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "plugin")
	if err := os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755); err != nil { // #nosec G306 - test plugin must be executable
		t.Fatal(err)
	}
	plain := filepath.Join(dir, "plain")
	if err := os.WriteFile(plain, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := ValidatePluginPath(exe); err != nil {
		t.Errorf("ValidatePluginPath(executable) error = %v", err)
	}
	for _, path := range []string{"", dir, plain, filepath.Join(dir, "missing")} {
		if err := ValidatePluginPath(path); err == nil {
			t.Errorf("ValidatePluginPath(%q) expected error", path)
		}
	}
}

func TestLimitedReader(t *testing.T) {
	data := bytes.Repeat([]byte("a"), 32)

	got, err := io.ReadAll(NewLimitedReader(bytes.NewReader(data), 32))
	if err != nil {
		t.Fatalf("read at limit: %v", err)
	}
	if len(got) != 32 {
		t.Errorf("read %d bytes, want 32", len(got))
	}

	_, err = io.ReadAll(NewLimitedReader(bytes.NewReader(data), 31))
	if !errors.Is(err, ErrLimitExceeded) {
		t.Errorf("read over limit error = %v, want ErrLimitExceeded", err)
	}
}
