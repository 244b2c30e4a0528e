// Copyright (c) OpenMMLab. All rights reserved.

package launch

import (
	"fmt"
	"os"
)

// Preflight fails fast, before anything is spawned, when a required path is
// missing. The log directory is the one path created on demand.
func Preflight(imagePath, megatronDir, logDir string) error {
	if info, err := os.Stat(imagePath); err != nil || info.IsDir() {
		return fmt.Errorf("container image %s not found", imagePath)
	}

	if info, err := os.Stat(megatronDir); err != nil || !info.IsDir() {
		return fmt.Errorf("Megatron-LM directory %s not found", megatronDir)
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("cannot create log directory %s: %w", logDir, err)
	}

	return nil
}
