// Copyright (c) OpenMMLab. All rights reserved.

package metrics

import (
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/zap"

	"github.com/gilbert12tw/HPC-II-Megatron-LLM/logger"
)

var (
	// Wall-clock duration of the last training run
	RunDuration = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "megarun_train_duration_seconds",
		Help: "Wall-clock duration of the training run in seconds",
	})

	// Exit code of the external training process
	RunExitCode = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "megarun_train_exit_code",
		Help: "Exit code of the external training process",
	})

	// Run counter by outcome
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "megarun_runs_total",
		Help: "Total number of launched training runs",
	}, []string{"status"})
)

// PushRunMetrics records one finished run and pushes the collectors to the
// Pushgateway. A missing URL disables the push; a push error is logged but
// never fails the run.
func PushRunMetrics(pushgatewayURL string, elapsed time.Duration, exitCode int) {
	RunDuration.Set(elapsed.Seconds())
	RunExitCode.Set(float64(exitCode))
	status := "success"
	if exitCode != 0 {
		status = "error"
	}
	RunsTotal.WithLabelValues(status).Inc()

	if pushgatewayURL == "" {
		return
	}

	pusher := push.New(pushgatewayURL, "megarun").
		Collector(RunDuration).
		Collector(RunExitCode).
		Collector(RunsTotal).
		Grouping("instance", getHostname())

	if err := pusher.Push(); err != nil {
		logger.Logger.Error("Error pushing metrics", zap.Error(err))
	}
}

func getHostname() string {
	if hostname, err := os.Hostname(); err == nil {
		return hostname
	}

	if hostname := os.Getenv("HOSTNAME"); hostname != "" {
		return hostname
	}

	return "unknown"
}
