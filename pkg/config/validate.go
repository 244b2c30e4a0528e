// Copyright (c) OpenMMLab. All rights reserved.

package config

import (
	"fmt"
	"strings"
)

// Violation is one broken layout rule. Fatal violations abort the run
// before any external process is spawned; warnings are printed and the run
// proceeds.
type Violation struct {
	Fatal   bool
	Message string
}

func (v Violation) String() string {
	if v.Fatal {
		return "error: " + v.Message
	}
	return "warning: " + v.Message
}

// HasFatal reports whether any violation in vs aborts the run.
func HasFatal(vs []Violation) bool {
	for _, v := range vs {
		if v.Fatal {
			return true
		}
	}
	return false
}

// Validate checks every parallel-layout rule independently and collects all
// violations so the operator sees the full list at once.
func Validate(c Config) []Violation {
	var vs []Violation

	if c.TensorParallel < 1 {
		vs = append(vs, Violation{Fatal: true, Message: fmt.Sprintf(
			"tensor parallel size must be >= 1, got %d", c.TensorParallel)})
	}
	if c.PipelineParallel < 1 {
		vs = append(vs, Violation{Fatal: true, Message: fmt.Sprintf(
			"pipeline parallel size must be >= 1, got %d", c.PipelineParallel)})
	}
	if c.TensorParallel < 1 || c.PipelineParallel < 1 {
		return vs
	}

	if c.NumAttentionHeads%c.TensorParallel != 0 {
		vs = append(vs, Violation{Fatal: true, Message: fmt.Sprintf(
			"tensor parallel size %d does not divide attention head count %d (valid TP values: %s)",
			c.TensorParallel, c.NumAttentionHeads, joinInts(Divisors(c.NumAttentionHeads)))})
	}

	if c.NumLayers%c.PipelineParallel != 0 {
		vs = append(vs, Violation{Fatal: true, Message: fmt.Sprintf(
			"pipeline parallel size %d does not divide layer count %d (valid PP values: %s)",
			c.PipelineParallel, c.NumLayers, joinInts(Divisors(c.NumLayers)))})
	}

	if c.TensorParallel*c.PipelineParallel > c.TotalDevices() {
		vs = append(vs, Violation{Fatal: true, Message: fmt.Sprintf(
			"TP x PP = %d exceeds total device count %d",
			c.TensorParallel*c.PipelineParallel, c.TotalDevices())})
	}

	if c.DataParallel < 1 {
		vs = append(vs, Violation{Fatal: true, Message: fmt.Sprintf(
			"derived data parallel size %d is below 1 (devices=%d, TP=%d, PP=%d)",
			c.DataParallel, c.TotalDevices(), c.TensorParallel, c.PipelineParallel)})
	}

	if c.DataParallel >= 1 && c.GlobalBatchSize%c.DataParallel != 0 {
		vs = append(vs, Violation{Message: fmt.Sprintf(
			"global batch size %d is not divisible by data parallel size %d",
			c.GlobalBatchSize, c.DataParallel)})
	}

	if c.TensorParallel > 1 && c.SeqLength%c.TensorParallel != 0 {
		vs = append(vs, Violation{Message: fmt.Sprintf(
			"sequence length %d is not divisible by TP %d, truncating to %d",
			c.SeqLength, c.TensorParallel, c.SeqLength-c.SeqLength%c.TensorParallel)})
	}

	return vs
}

// Divisors enumerates the divisors of n in ascending order. Only used for
// hint messages, n is a layer or head count so trial division is fine.
func Divisors(n int) []int {
	var ds []int
	for i := 1; i <= n; i++ {
		if n%i == 0 {
			ds = append(ds, i)
		}
	}
	return ds
}

func joinInts(ns []int) string {
	parts := make([]string, 0, len(ns))
	for _, n := range ns {
		parts = append(parts, fmt.Sprintf("%d", n))
	}
	return strings.Join(parts, " ")
}
