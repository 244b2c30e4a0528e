// Copyright (c) OpenMMLab. All rights reserved.

package config

import (
	"reflect"
	"testing"

	"github.com/spf13/pflag"
)

func parseFlags(t *testing.T, argv []string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("megarun", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	RegisterFlags(fs)
	if err := fs.Parse(argv); err != nil {
		t.Fatalf("Parse(%v) error = %v", argv, err)
	}
	return fs
}

func TestApplyDerivesDataParallel(t *testing.T) {
	tests := []struct {
		name       string
		argv       []string
		wantDP     int
		wantFatal  bool
		wantSeqLen int
	}{
		{
			name:       "defaults: TP=2 PP=2 over 8 devices",
			argv:       nil,
			wantDP:     2,
			wantSeqLen: 4096,
		},
		{
			name:       "tp 4 pp 1",
			argv:       []string{"--tp", "4", "--pp", "1"},
			wantDP:     2,
			wantSeqLen: 4096,
		},
		{
			name:       "tp 8 pp 1",
			argv:       []string{"--tp", "8", "--pp", "1"},
			wantDP:     1,
			wantSeqLen: 4096,
		},
		{
			name:      "tp 3 does not divide 32 heads",
			argv:      []string{"--tp", "3"},
			wantDP:    1, // 8 / (3*2) truncates
			wantFatal: true,
			// 4096 is still truncated to a multiple of 3
			wantSeqLen: 4095,
		},
		{
			name:       "seq-len aligned to tp 8",
			argv:       []string{"--tp", "8", "--pp", "1", "--seq-len", "352"},
			wantDP:     1,
			wantSeqLen: 352,
		},
		{
			name:       "seq-len truncated to multiple of tp",
			argv:       []string{"--tp", "2", "--pp", "1", "--seq-len", "1025"},
			wantDP:     4,
			wantSeqLen: 1024,
		},
		{
			name:       "dp override is ignored",
			argv:       []string{"--dp", "3"},
			wantDP:     2,
			wantSeqLen: 4096,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := parseFlags(t, tt.argv)
			ov, _ := OverridesFromFlags(fs)

			cfg, vs := Apply(Defaults(), ov)

			if cfg.DataParallel != tt.wantDP {
				t.Errorf("DataParallel = %d, want %d", cfg.DataParallel, tt.wantDP)
			}
			if cfg.SeqLength != tt.wantSeqLen {
				t.Errorf("SeqLength = %d, want %d", cfg.SeqLength, tt.wantSeqLen)
			}
			if HasFatal(vs) != tt.wantFatal {
				t.Errorf("HasFatal = %v, want %v (violations: %v)", HasFatal(vs), tt.wantFatal, vs)
			}
		})
	}
}

func TestOverridesFromFlagsReadsOnlyChangedFlags(t *testing.T) {
	fs := parseFlags(t, []string{"--micro-batch", "4", "--lr", "0.0003"})
	ov, notes := OverridesFromFlags(fs)

	if ov.MicroBatchSize == nil || *ov.MicroBatchSize != 4 {
		t.Errorf("MicroBatchSize = %v, want 4", ov.MicroBatchSize)
	}
	if ov.LearningRate == nil || *ov.LearningRate != 0.0003 {
		t.Errorf("LearningRate = %v, want 0.0003", ov.LearningRate)
	}
	if ov.TensorParallel != nil || ov.PipelineParallel != nil || ov.SeqLength != nil || ov.TrainIters != nil {
		t.Errorf("untouched flags must stay nil, got %+v", ov)
	}
	if len(notes) != 0 {
		t.Errorf("no notes expected, got %v", notes)
	}
}

func TestOverridesFromFlagsNotesIgnoredDP(t *testing.T) {
	fs := parseFlags(t, []string{"--dp", "3"})
	ov, notes := OverridesFromFlags(fs)

	if len(notes) != 1 {
		t.Fatalf("notes = %v, want one --dp note", notes)
	}
	if !reflect.DeepEqual(ov, Overrides{}) {
		t.Errorf("--dp must not produce an override, got %+v", ov)
	}
}

func TestIgnoredFlags(t *testing.T) {
	fs := parseFlags(t, nil)

	tests := []struct {
		name string
		argv []string
		want []string
	}{
		{
			name: "known flags only",
			argv: []string{"--tp", "4", "--lr", "0.0001"},
			want: nil,
		},
		{
			name: "unknown long flag",
			argv: []string{"--tp", "4", "--frobnicate", "--seq-len", "2048"},
			want: []string{"--frobnicate"},
		},
		{
			name: "unknown flag with value",
			argv: []string{"--nodes=2"},
			want: []string{"--nodes"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IgnoredFlags(tt.argv, fs); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("IgnoredFlags(%v) = %v, want %v", tt.argv, got, tt.want)
			}
		})
	}
}
