package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"bridgegen/internal/observ"
	"bridgegen/internal/pipeline"
)

type timingsPayload struct {
	observ.Report
	Units []unitTimings `json:"units"`
}

type unitTimings struct {
	Unit   string             `json:"unit"`
	Cached bool               `json:"cached,omitempty"`
	Stages map[string]float64 `json:"stages_ms"`
}

func printTimings(out io.Writer, timer *observ.Timer, results []*pipeline.Result, format string) error {
	switch format {
	case "", "text":
		fmt.Fprint(out, timer.Summary())
		for _, res := range results {
			if res == nil {
				continue
			}
			fmt.Fprintf(out, "  %-28s %8.2f ms\n", res.Unit+" (stages)", toMillis(res.Timings.Total()))
		}
		return nil
	case "json":
		payload := timingsPayload{Report: timer.Report()}
		for _, res := range results {
			if res == nil {
				continue
			}
			ut := unitTimings{Unit: res.Unit, Cached: res.Cached, Stages: make(map[string]float64)}
			for _, stage := range pipeline.Stages {
				if res.Timings.Has(stage) {
					ut.Stages[string(stage)] = toMillis(res.Timings.Duration(stage))
				}
			}
			payload.Units = append(payload.Units, ut)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	default:
		return fmt.Errorf("unsupported timings format %q (must be text or json)", format)
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
