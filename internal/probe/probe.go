package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"
)

// inspectTimeout bounds a single ffprobe invocation
const inspectTimeout = 10 * time.Second

// Info describes the container metadata of a finished recording
type Info struct {
	Duration time.Duration `json:"duration"`
	Bitrate  int           `json:"bitrate"`
	Format   string        `json:"format"`
}

// Prober inspects recordings with ffprobe
type Prober struct {
	binPath string
}

// NewProber creates a new prober. ffprobe ships alongside ffmpeg, so a
// missing binary usually means ffmpeg is not installed either; the
// prober stays usable and reports Available() == false.
func NewProber() *Prober {
	path, err := exec.LookPath("ffprobe")
	if err != nil {
		return &Prober{}
	}
	return &Prober{binPath: path}
}

// Available reports whether ffprobe was found on PATH
func (p *Prober) Available() bool {
	return p.binPath != ""
}

// Inspect reads the duration, bit rate and container format of the
// recording at path
func (p *Prober) Inspect(path string) (*Info, error) {
	if !p.Available() {
		return nil, fmt.Errorf("ffprobe not found. Install with: brew install ffmpeg")
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("recording not found: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), inspectTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.binPath,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseProbeOutput(output)
}

// probeResult mirrors the JSON emitted by ffprobe -show_format. All
// numeric fields arrive as strings.
type probeResult struct {
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
		BitRate    string `json:"bit_rate"`
	} `json:"format"`
}

func parseProbeOutput(data []byte) (*Info, error) {
	var result probeResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &Info{Format: result.Format.FormatName}

	if result.Format.Duration != "" {
		seconds, err := strconv.ParseFloat(result.Format.Duration, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", result.Format.Duration, err)
		}
		info.Duration = time.Duration(seconds * float64(time.Second))
	}

	if result.Format.BitRate != "" {
		rate, err := strconv.Atoi(result.Format.BitRate)
		if err != nil {
			return nil, fmt.Errorf("invalid bit rate %q: %w", result.Format.BitRate, err)
		}
		info.Bitrate = rate
	}

	return info, nil
}
