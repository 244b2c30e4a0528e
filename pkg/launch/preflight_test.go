// Copyright (c) OpenMMLab. All rights reserved.

package launch

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPreflight(t *testing.T) {
	dir := t.TempDir()
	image := filepath.Join(dir, "megatron.sif")
	if err := os.WriteFile(image, []byte("sif"), 0644); err != nil {
		t.Fatal(err)
	}
	megatron := filepath.Join(dir, "Megatron-LM")
	if err := os.Mkdir(megatron, 0755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		image    string
		megatron string
		logDir   string
		wantErr  bool
	}{
		{
			name:     "all paths present",
			image:    image,
			megatron: megatron,
			logDir:   filepath.Join(dir, "logs"),
		},
		{
			name:     "image missing",
			image:    filepath.Join(dir, "missing.sif"),
			megatron: megatron,
			logDir:   filepath.Join(dir, "logs"),
			wantErr:  true,
		},
		{
			name:     "image is a directory",
			image:    megatron,
			megatron: megatron,
			logDir:   filepath.Join(dir, "logs"),
			wantErr:  true,
		},
		{
			name:     "framework dir missing",
			image:    image,
			megatron: filepath.Join(dir, "nowhere"),
			logDir:   filepath.Join(dir, "logs"),
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Preflight(tt.image, tt.megatron, tt.logDir)
			if (err != nil) != tt.wantErr {
				t.Errorf("Preflight() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPreflightCreatesLogDir(t *testing.T) {
	dir := t.TempDir()
	image := filepath.Join(dir, "megatron.sif")
	if err := os.WriteFile(image, []byte("sif"), 0644); err != nil {
		t.Fatal(err)
	}
	megatron := filepath.Join(dir, "Megatron-LM")
	if err := os.Mkdir(megatron, 0755); err != nil {
		t.Fatal(err)
	}

	logDir := filepath.Join(dir, "out", "logs")
	if err := Preflight(image, megatron, logDir); err != nil {
		t.Fatalf("Preflight() error = %v", err)
	}

	info, err := os.Stat(logDir)
	if err != nil || !info.IsDir() {
		t.Errorf("log directory %s was not created: %v", logDir, err)
	}
}
