package pipeline

import (
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/eui-labs/eui/internal/codegen"
	"github.com/eui-labs/eui/internal/scriptgen"
)

// Report summarizes one code-generation batch. Retry statistics cover only
// the scenes whose retry loop actually ran; skipped scenes would drag the
// mean toward zero.
type Report struct {
	Topic            string    `json:"topic"`
	GeneratedAt      time.Time `json:"generated_at"`
	Scenes           int       `json:"scenes"`
	Succeeded        int       `json:"succeeded"`
	FailedValidation int       `json:"failed_validation"`
	GenerationErrors int       `json:"generation_errors"`
	MissingInput     int       `json:"missing_input"`
	TotalRetries     int       `json:"total_retries"`
	MeanRetries      float64   `json:"mean_retries"`
	StdDevRetries    float64   `json:"stddev_retries"`
	// Planned timing from the script's duration fields, where parseable.
	PlannedSeconds   float64 `json:"planned_seconds"`
	MeanSceneSeconds float64 `json:"mean_scene_seconds"`
	Elapsed          string  `json:"elapsed"`
}

func BuildReport(topic string, scenes []scriptgen.Scene, results []codegen.SceneResult, elapsed time.Duration) Report {
	r := Report{
		Topic:       topic,
		GeneratedAt: time.Now().UTC(),
		Scenes:      len(results),
		Elapsed:     elapsed.Round(time.Millisecond).String(),
	}

	var retries []float64
	for _, res := range results {
		switch res.Status {
		case codegen.StatusSuccess:
			r.Succeeded++
		case codegen.StatusFailedValidation:
			r.FailedValidation++
		case codegen.StatusGenerationError:
			r.GenerationErrors++
		case codegen.StatusMissingInput:
			r.MissingInput++
		}
		if res.Status != codegen.StatusMissingInput {
			r.TotalRetries += res.Retries
			retries = append(retries, float64(res.Retries))
		}
	}

	if len(retries) > 0 {
		r.MeanRetries = stat.Mean(retries, nil)
	}
	if len(retries) > 1 {
		r.StdDevRetries = stat.StdDev(retries, nil)
	}

	var durations []float64
	for _, scene := range scenes {
		if d, ok := parseSceneSeconds(scene.Duration); ok {
			durations = append(durations, d)
		}
	}
	if len(durations) > 0 {
		r.PlannedSeconds = floats.Sum(durations)
		r.MeanSceneSeconds = stat.Mean(durations, nil)
	}
	return r
}

// parseSceneSeconds pulls a leading number out of a free-form duration such
// as "5", "5s" or "5 seconds". The field is model-authored, so anything
// unparseable is simply left out of the statistics.
func parseSceneSeconds(raw string) (float64, bool) {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) == 0 {
		return 0, false
	}
	token := strings.TrimSuffix(fields[0], "s")
	d, err := strconv.ParseFloat(token, 64)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

// WriteReport persists the batch report next to the other artifacts.
func WriteReport(path string, report Report) error {
	return writeJSON(path, report)
}
