package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// CanaryFlags controls the traffic split between the two pipelines.
type CanaryFlags struct {
	// EnableSLM is the kill-switch: false forces every request to Legacy.
	EnableSLM bool
	// Percent of conversations routed to the SLM pipeline, 0–100.
	Percent int
}

// Flags reads the canary configuration from the environment. Called per
// request by the router so operators can flip ENABLE_SLM_PIPELINE or adjust
// SLM_CANARY_PERCENT and have it take effect within seconds, no restart.
func Flags() CanaryFlags {
	flags := CanaryFlags{EnableSLM: false, Percent: 0}

	if v := os.Getenv("ENABLE_SLM_PIPELINE"); v != "" {
		flags.EnableSLM = strings.EqualFold(v, "true")
	}

	if v := os.Getenv("SLM_CANARY_PERCENT"); v != "" {
		pct, err := strconv.Atoi(v)
		switch {
		case err != nil:
			slog.Warn("Invalid SLM_CANARY_PERCENT, using 0", "value", v)
		case pct < 0:
			flags.Percent = 0
		case pct > 100:
			flags.Percent = 100
		default:
			flags.Percent = pct
		}
	}

	return flags
}
