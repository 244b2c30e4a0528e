// Copyright (c) OpenMMLab. All rights reserved.

package main

import (
	"os"

	"github.com/gilbert12tw/HPC-II-Megatron-LLM/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
