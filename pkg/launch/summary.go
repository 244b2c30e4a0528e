// Copyright (c) OpenMMLab. All rights reserved.

package launch

import (
	"fmt"
	"strconv"

	"github.com/gilbert12tw/HPC-II-Megatron-LLM/pkg/config"
)

// PrintSummary writes the effective configuration table to stdout before
// the run starts.
func PrintSummary(c config.Config) {
	fmt.Println("Run Configuration:")

	fmt.Println("  Parallelism:")
	fmt.Printf("    Tensor Parallel:    %d\n", c.TensorParallel)
	fmt.Printf("    Pipeline Parallel:  %d\n", c.PipelineParallel)
	fmt.Printf("    Data Parallel:      %d (derived)\n", c.DataParallel)
	fmt.Printf("    Devices:            %d (%d node(s) x %d GPU(s))\n",
		c.TotalDevices(), c.NumNodes, c.GPUsPerNode)

	fmt.Println("  Batching:")
	fmt.Printf("    Micro Batch:        %d\n", c.MicroBatchSize)
	fmt.Printf("    Global Batch:       %d\n", c.GlobalBatchSize)
	fmt.Printf("    Sequence Length:    %d\n", c.SeqLength)

	fmt.Println("  Training:")
	fmt.Printf("    Iterations:         %d\n", c.TrainIters)
	fmt.Printf("    Learning Rate:      %s\n", strconv.FormatFloat(c.LearningRate, 'g', -1, 64))
	fmt.Printf("    LR Decay:           %s (warmup %.2f, min %s)\n",
		c.LRDecayStyle, c.LRWarmupFraction, strconv.FormatFloat(c.MinLearningRate, 'g', -1, 64))

	fmt.Println("  Precision / Memory:")
	fmt.Printf("    FP16:               %t\n", c.FP16)
	fmt.Printf("    Flash Attention:    %t\n", c.UseFlashAttention)
	fmt.Printf("    Recompute Act.:     %t\n", c.RecomputeActivations)
	fmt.Printf("    Mock Data:          %t\n", c.MockData)

	fmt.Println("  Paths:")
	fmt.Printf("    Image:              %s\n", c.ImagePath)
	fmt.Printf("    Megatron-LM:        %s\n", c.MegatronDir)
	fmt.Printf("    Logs:               %s\n", c.LogDir)
	fmt.Printf("    Tokenizer Model:    %s\n", c.TokenizerModel)
}
