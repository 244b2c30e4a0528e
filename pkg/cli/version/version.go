// Copyright (c) OpenMMLab. All rights reserved.

package version

import (
	"fmt"

	"github.com/spf13/cobra"

	v "github.com/gilbert12tw/HPC-II-Megatron-LLM/pkg/version"
)

func NewCmdVersion() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print launcher version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Print(v.Info())
		},
	}
}
