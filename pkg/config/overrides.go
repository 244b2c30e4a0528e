// Copyright (c) OpenMMLab. All rights reserved.

package config

import (
	"strings"

	"github.com/spf13/pflag"
)

// Overrides carries the command-line values the operator actually set.
// A nil field means "keep the default".
type Overrides struct {
	TensorParallel   *int
	PipelineParallel *int
	MicroBatchSize   *int
	GlobalBatchSize  *int
	SeqLength        *int
	TrainIters       *int
	LearningRate     *float64
}

// RegisterFlags declares the override flags on fs. --dp is declared so it
// parses cleanly, but it is never applied: data-parallel size is derived.
func RegisterFlags(fs *pflag.FlagSet) {
	def := Defaults()
	fs.Int("tp", def.TensorParallel, "tensor parallel size")
	fs.Int("pp", def.PipelineParallel, "pipeline parallel size")
	fs.Int("dp", def.DataParallel, "data parallel size (derived, cannot be set)")
	fs.Int("micro-batch", def.MicroBatchSize, "micro batch size per device")
	fs.Int("global-batch", def.GlobalBatchSize, "global batch size")
	fs.Int("seq-len", def.SeqLength, "sequence length")
	fs.Int("train-iters", def.TrainIters, "number of training iterations")
	fs.Float64("lr", def.LearningRate, "learning rate")
}

// OverridesFromFlags reads back only the flags the operator changed. The
// returned notes are informational messages (--dp being ignored) for the
// caller to log.
func OverridesFromFlags(fs *pflag.FlagSet) (Overrides, []string) {
	var ov Overrides
	var notes []string

	intFlag := func(name string) *int {
		if !fs.Changed(name) {
			return nil
		}
		v, _ := fs.GetInt(name)
		return &v
	}

	ov.TensorParallel = intFlag("tp")
	ov.PipelineParallel = intFlag("pp")
	ov.MicroBatchSize = intFlag("micro-batch")
	ov.GlobalBatchSize = intFlag("global-batch")
	ov.SeqLength = intFlag("seq-len")
	ov.TrainIters = intFlag("train-iters")

	if fs.Changed("lr") {
		v, _ := fs.GetFloat64("lr")
		ov.LearningRate = &v
	}

	if fs.Changed("dp") {
		notes = append(notes,
			"data parallel size is derived from device count / (TP x PP); ignoring --dp")
	}

	return ov, notes
}

// IgnoredFlags returns the flag tokens in argv that fs does not know about.
// Unknown flags are logged and ignored, never fatal.
func IgnoredFlags(argv []string, fs *pflag.FlagSet) []string {
	var unknown []string
	for _, arg := range argv {
		switch {
		case strings.HasPrefix(arg, "--"):
			name := strings.TrimPrefix(arg, "--")
			if i := strings.Index(name, "="); i >= 0 {
				name = name[:i]
			}
			if name != "" && fs.Lookup(name) == nil {
				unknown = append(unknown, "--"+name)
			}
		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			short := strings.TrimPrefix(arg, "-")
			if i := strings.Index(short, "="); i >= 0 {
				short = short[:i]
			}
			if len(short) == 1 && fs.ShorthandLookup(short) == nil {
				unknown = append(unknown, "-"+short)
			}
		}
	}
	return unknown
}

// Apply lays ov over def, re-derives the data parallel size, validates the
// resulting layout and, when TP > 1, truncates the sequence length down to
// the nearest multiple of TP. The truncation is warned about by Validate;
// global-batch divisibility is deliberately not re-checked afterwards.
func Apply(def Config, ov Overrides) (Config, []Violation) {
	c := def

	if ov.TensorParallel != nil {
		c.TensorParallel = *ov.TensorParallel
	}
	if ov.PipelineParallel != nil {
		c.PipelineParallel = *ov.PipelineParallel
	}
	if ov.MicroBatchSize != nil {
		c.MicroBatchSize = *ov.MicroBatchSize
	}
	if ov.GlobalBatchSize != nil {
		c.GlobalBatchSize = *ov.GlobalBatchSize
	}
	if ov.SeqLength != nil {
		c.SeqLength = *ov.SeqLength
	}
	if ov.TrainIters != nil {
		c.TrainIters = *ov.TrainIters
	}
	if ov.LearningRate != nil {
		c.LearningRate = *ov.LearningRate
	}

	if c.TensorParallel >= 1 && c.PipelineParallel >= 1 {
		c.DataParallel = c.TotalDevices() / (c.TensorParallel * c.PipelineParallel)
	} else {
		c.DataParallel = 0
	}

	vs := Validate(c)

	if c.TensorParallel > 1 && c.SeqLength%c.TensorParallel != 0 {
		c.SeqLength -= c.SeqLength % c.TensorParallel
	}

	return c, vs
}
