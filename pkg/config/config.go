// Copyright (c) OpenMMLab. All rights reserved.

// Package config holds the training run configuration: a fixed Llama-2-7B
// model shape plus editable parallelism/batch/optimizer parameters. The
// configuration is built once from defaults, the optional yaml file and the
// command-line overrides, then passed by value to command assembly and
// execution. Data-parallel size is always derived, never user-set.
package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	// Model shape (fixed, Llama-2 7B)
	NumLayers             int
	HiddenSize            int
	FFNHiddenSize         int
	NumAttentionHeads     int
	MaxPositionEmbeddings int

	// Parallel layout
	TensorParallel   int
	PipelineParallel int
	DataParallel     int // derived: TotalDevices / (TP * PP)
	GPUsPerNode      int
	NumNodes         int

	// Training
	MicroBatchSize   int
	GlobalBatchSize  int
	SeqLength        int
	TrainIters       int
	LearningRate     float64
	MinLearningRate  float64
	LRDecayStyle     string
	LRWarmupFraction float64
	WeightDecay      float64
	ClipGrad         float64

	// Precision / memory
	FP16                 bool
	UseFlashAttention    bool
	RecomputeActivations bool
	MockData             bool

	// Container runtime and paths
	ContainerRuntime string
	ImagePath        string
	MegatronDir      string
	LogDir           string
	TokenizerModel   string
	GPULibPath       string
	PushGateway      string
}

func (c Config) TotalDevices() int {
	return c.GPUsPerNode * c.NumNodes
}

// Defaults returns the fixed default record: Llama-2-7B shape on a single
// 8-GPU node with TP=2, PP=2.
func Defaults() Config {
	c := Config{
		NumLayers:             32,
		HiddenSize:            4096,
		FFNHiddenSize:         11008,
		NumAttentionHeads:     32,
		MaxPositionEmbeddings: 4096,

		TensorParallel:   2,
		PipelineParallel: 2,
		GPUsPerNode:      8,
		NumNodes:         1,

		MicroBatchSize:   1,
		GlobalBatchSize:  128,
		SeqLength:        4096,
		TrainIters:       1000,
		LearningRate:     0.00015,
		MinLearningRate:  1e-5,
		LRDecayStyle:     "cosine",
		LRWarmupFraction: 0.01,
		WeightDecay:      0.1,
		ClipGrad:         1.0,

		FP16:                 true,
		UseFlashAttention:    true,
		RecomputeActivations: true,
		MockData:             true,

		ContainerRuntime: "singularity",
		ImagePath:        "megatron.sif",
		MegatronDir:      "Megatron-LM",
		LogDir:           "logs",
		TokenizerModel:   "llama2_tokenizer/tokenizer.model",
		GPULibPath:       "/usr/lib64/nvidia",
	}
	c.DataParallel = c.TotalDevices() / (c.TensorParallel * c.PipelineParallel)
	return c
}

// FromViper overlays path/runtime settings from the configuration file
// (megarun.yaml) on top of c. Parallelism and batch parameters are only
// adjustable through command-line flags.
func FromViper(c Config) Config {
	if s := viper.GetString("image"); s != "" {
		c.ImagePath = s
	}
	if s := viper.GetString("megatron-dir"); s != "" {
		c.MegatronDir = s
	}
	if s := viper.GetString("log-dir"); s != "" {
		c.LogDir = s
	}
	if s := viper.GetString("tokenizer-model"); s != "" {
		c.TokenizerModel = s
	}
	if s := viper.GetString("gpu-lib-path"); s != "" {
		c.GPULibPath = s
	}
	if s := viper.GetString("container-runtime"); s != "" {
		c.ContainerRuntime = s
	}
	if s := viper.GetString("push-gateway"); s != "" {
		c.PushGateway = s
	}
	if n := viper.GetInt("gpus-per-node"); n > 0 {
		c.GPUsPerNode = n
	}
	if n := viper.GetInt("num-nodes"); n > 0 {
		c.NumNodes = n
	}
	return c
}
