package usecase

import (
	"io"
	"log/slog"

	"github.com/user/marina-office/internal/adapter/metrics"
)

// Shared across the package's tests: promauto registers with the global
// registry, so the metrics may only be constructed once per test binary.
var (
	testMetrics = metrics.NewOfficeMetrics()
	testLogger  = slog.New(slog.NewTextHandler(io.Discard, nil))
)
