// Copyright (c) OpenMMLab. All rights reserved.

package launch

import (
	"os"
	"strings"
	"testing"

	"github.com/gilbert12tw/HPC-II-Megatron-LLM/pkg/config"
)

func TestWriteRunScript(t *testing.T) {
	cfg := config.Defaults()
	cfg.MegatronDir = "/opt/Megatron-LM"

	path, cleanup, err := WriteRunScript(cfg)
	if err != nil {
		t.Fatalf("WriteRunScript() error = %v", err)
	}
	defer cleanup()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("script not written: %v", err)
	}
	if info.Mode().Perm() != 0700 {
		t.Errorf("script mode = %v, want 0700", info.Mode().Perm())
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	script := string(content)

	for _, want := range []string{
		"#!/bin/bash",
		`cd "/opt/Megatron-LM"`,
		"exec torchrun",
		"--tensor-model-parallel-size 2",
		"pretrain_gpt.py",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q:\n%s", want, script)
		}
	}
}

func TestWriteRunScriptCleanupRemovesFile(t *testing.T) {
	path, cleanup, err := WriteRunScript(config.Defaults())
	if err != nil {
		t.Fatalf("WriteRunScript() error = %v", err)
	}

	cleanup()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("helper script %s still exists after cleanup", path)
	}
}

func TestWriteRunScriptUniqueNames(t *testing.T) {
	p1, c1, err := WriteRunScript(config.Defaults())
	if err != nil {
		t.Fatal(err)
	}
	defer c1()
	p2, c2, err := WriteRunScript(config.Defaults())
	if err != nil {
		t.Fatal(err)
	}
	defer c2()

	if p1 == p2 {
		t.Errorf("two runs got the same helper path %s", p1)
	}
}
