// Copyright (c) OpenMMLab. All rights reserved.

// Package launch assembles and executes one Megatron-LM pretraining run
// inside the container runtime. The flag vocabulary of the external entry
// point is fixed: every configuration field maps to exactly one flag, and
// the emitted set never varies with input beyond value substitution.
package launch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gilbert12tw/HPC-II-Megatron-LLM/pkg/config"
)

// argList keeps command construction declarative: an ordered list of
// flag/value pairs instead of string concatenation.
type argList struct {
	args []string
}

func (a *argList) raw(tokens ...string) {
	a.args = append(a.args, tokens...)
}

func (a *argList) flag(name, value string) {
	a.args = append(a.args, name, value)
}

func (a *argList) intFlag(name string, value int) {
	a.flag(name, strconv.Itoa(value))
}

func (a *argList) floatFlag(name string, value float64) {
	a.flag(name, strconv.FormatFloat(value, 'g', -1, 64))
}

// boolFlag emits a presence-only flag.
func (a *argList) boolFlag(name string, set bool) {
	if set {
		a.args = append(a.args, name)
	}
}

// TrainArgs renders the torchrun invocation of pretrain_gpt.py that runs
// inside the container.
func TrainArgs(c config.Config) []string {
	var a argList

	a.raw("torchrun")
	a.intFlag("--nproc_per_node", c.GPUsPerNode)
	a.intFlag("--nnodes", c.NumNodes)
	a.raw("pretrain_gpt.py")

	// Parallel layout
	a.intFlag("--tensor-model-parallel-size", c.TensorParallel)
	a.intFlag("--pipeline-model-parallel-size", c.PipelineParallel)

	// Model shape (always emitted, fixed architecture)
	a.intFlag("--num-layers", c.NumLayers)
	a.intFlag("--hidden-size", c.HiddenSize)
	a.intFlag("--ffn-hidden-size", c.FFNHiddenSize)
	a.intFlag("--num-attention-heads", c.NumAttentionHeads)
	a.intFlag("--seq-length", c.SeqLength)
	a.intFlag("--max-position-embeddings", c.MaxPositionEmbeddings)

	// Batch / schedule
	a.intFlag("--micro-batch-size", c.MicroBatchSize)
	a.intFlag("--global-batch-size", c.GlobalBatchSize)
	a.intFlag("--train-iters", c.TrainIters)

	// Optimizer
	a.floatFlag("--lr", c.LearningRate)
	a.floatFlag("--min-lr", c.MinLearningRate)
	a.flag("--lr-decay-style", c.LRDecayStyle)
	a.floatFlag("--lr-warmup-fraction", c.LRWarmupFraction)
	a.floatFlag("--weight-decay", c.WeightDecay)
	a.floatFlag("--clip-grad", c.ClipGrad)

	// Tokenizer
	a.flag("--tokenizer-type", "Llama2Tokenizer")
	a.flag("--tokenizer-model", c.TokenizerModel)

	// Precision / memory / data, presence flags only
	a.boolFlag("--fp16", c.FP16)
	a.boolFlag("--use-flash-attn", c.UseFlashAttention)
	a.boolFlag("--recompute-activations", c.RecomputeActivations)
	a.boolFlag("--mock-data", c.MockData)

	return a.args
}

// EnvList mirrors the configuration record into the comma-joined
// environment whitelist passed to the container runtime. The values repeat
// what the flags already say; the framework may consult either.
func EnvList(c config.Config) string {
	pairs := []string{
		fmt.Sprintf("TP_SIZE=%d", c.TensorParallel),
		fmt.Sprintf("PP_SIZE=%d", c.PipelineParallel),
		fmt.Sprintf("DP_SIZE=%d", c.DataParallel),
		fmt.Sprintf("MICRO_BATCH=%d", c.MicroBatchSize),
		fmt.Sprintf("GLOBAL_BATCH=%d", c.GlobalBatchSize),
		fmt.Sprintf("SEQ_LEN=%d", c.SeqLength),
		fmt.Sprintf("TRAIN_ITERS=%d", c.TrainIters),
		fmt.Sprintf("LR=%s", strconv.FormatFloat(c.LearningRate, 'g', -1, 64)),
	}
	return strings.Join(pairs, ",")
}

// ContainerArgs renders the container runtime invocation that executes the
// generated helper script: bind mounts for the working directory, the
// script itself and the host GPU driver libraries, the framework directory
// as working directory, and the mirrored environment whitelist.
func ContainerArgs(c config.Config, workDir, scriptPath string) []string {
	var a argList

	a.raw(c.ContainerRuntime, "exec", "--nv")
	a.flag("--bind", strings.Join([]string{workDir, scriptPath, c.GPULibPath}, ","))
	a.flag("--pwd", workDir)
	a.flag("--env", EnvList(c))
	a.raw(c.ImagePath, "bash", scriptPath)

	return a.args
}
