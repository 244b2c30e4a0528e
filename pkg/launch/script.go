// Copyright (c) OpenMMLab. All rights reserved.

package launch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/google/uuid"

	"github.com/gilbert12tw/HPC-II-Megatron-LLM/pkg/config"
)

const runScriptTemplate = `#!/bin/bash
# Generated helper, removed after the run.
set -eo pipefail

cd "{{.MegatronDir}}"

exec {{.Command}}
`

type runScriptData struct {
	MegatronDir string
	Command     string
}

// WriteRunScript renders the helper script for one run into a uniquely
// named temp file. The returned cleanup must run on every exit path so the
// helper never outlives the launcher.
func WriteRunScript(c config.Config) (string, func(), error) {
	tmpl, err := template.New("runScript").Parse(runScriptTemplate)
	if err != nil {
		return "", nil, err
	}

	data := runScriptData{
		MegatronDir: c.MegatronDir,
		Command:     strings.Join(TrainArgs(c), " \\\n    "),
	}

	path := filepath.Join(os.TempDir(), fmt.Sprintf("megarun_%s.sh", uuid.NewString()[:8]))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0700)
	if err != nil {
		return "", nil, err
	}

	cleanup := func() { os.Remove(path) }

	if err := tmpl.Execute(f, data); err != nil {
		f.Close()
		cleanup()
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, err
	}

	return path, cleanup, nil
}
