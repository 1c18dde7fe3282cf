package audio

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"sync"
	"time"
)

const (
	// stopTimeout is how long Stop waits for ffmpeg to finalize the file
	stopTimeout = 5 * time.Second

	// minOutputSize is the smallest plausible finished recording
	minOutputSize = 1024
)

// FFmpegRecorder captures the default input device by running ffmpeg as a
// child process and letting it write the container file directly.
type FFmpegRecorder struct {
	config Config

	mu         sync.Mutex
	cmd        *exec.Cmd
	outputPath string
	sidecarLog string
	running    bool
}

// CheckFFmpeg verifies that the ffmpeg binary is available.
func CheckFFmpeg() error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found. Install with: brew install ffmpeg")
	}
	return nil
}

// NewFFmpegRecorder creates a recorder with the given encoding config.
func NewFFmpegRecorder(config Config) (*FFmpegRecorder, error) {
	if err := CheckFFmpeg(); err != nil {
		return nil, err
	}

	return &FFmpegRecorder{config: config}, nil
}

// buildArgs assembles the ffmpeg arguments for capturing the default
// input device into the container file at path.
func (r *FFmpegRecorder) buildArgs(path string) []string {
	return []string{
		"-f", captureFormat(),
		"-i", captureInput(),
		"-ac", strconv.Itoa(r.config.Channels),
		"-ar", strconv.Itoa(r.config.SampleRate),
		"-c:a", "aac",
		"-b:a", r.config.Bitrate,
		"-y",
		path,
	}
}

func captureFormat() string {
	if runtime.GOOS == "darwin" {
		return "avfoundation"
	}
	return "pulse"
}

func captureInput() string {
	if runtime.GOOS == "darwin" {
		return ":default"
	}
	return "default"
}

// Start begins capturing to the given file path.
func (r *FFmpegRecorder) Start(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("capture is already running")
	}

	cmd := exec.Command("ffmpeg", r.buildArgs(path)...)

	// ffmpeg's diagnostics go to a sidecar file that Deactivate removes
	// once the recording has been validated
	sidecar := path + ".ffmpeg.log"
	logFile, err := os.Create(sidecar)
	if err != nil {
		sidecar = ""
	} else {
		cmd.Stderr = logFile
	}

	if err := cmd.Start(); err != nil {
		if logFile != nil {
			logFile.Close()
			os.Remove(sidecar)
		}
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	// The child holds its own descriptor after Start
	if logFile != nil {
		logFile.Close()
	}

	r.cmd = cmd
	r.outputPath = path
	r.sidecarLog = sidecar
	r.running = true

	return nil
}

// Stop interrupts ffmpeg so it writes the container trailer, waits for it
// to exit, and kills it if it overruns the timeout.
func (r *FFmpegRecorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running || r.cmd == nil {
		return fmt.Errorf("capture is not running")
	}

	// SIGINT lets ffmpeg finalize the file
	if r.cmd.Process != nil {
		if err := r.cmd.Process.Signal(os.Interrupt); err != nil {
			r.cmd.Process.Kill()
		}
	}

	done := make(chan error, 1)
	go func() {
		done <- r.cmd.Wait()
	}()

	var waitErr error
	select {
	case err := <-done:
		waitErr = err
	case <-time.After(stopTimeout):
		r.cmd.Process.Kill()
		waitErr = <-done
	}

	r.cmd = nil
	r.running = false

	if waitErr != nil && !isSignalExit(waitErr) {
		return fmt.Errorf("ffmpeg exited abnormally: %w", waitErr)
	}

	return nil
}

// isSignalExit reports whether err is the expected exit status after an
// interrupt or kill signal.
func isSignalExit(err error) bool {
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		return false
	}

	// ffmpeg exits 255 when interrupted during capture
	if exitErr.ExitCode() == 255 {
		return true
	}

	if exitErr.ProcessState != nil {
		state := exitErr.ProcessState.String()
		if state == "signal: interrupt" || state == "signal: killed" {
			return true
		}
	}

	return false
}

// Deactivate validates the finished recording and removes the sidecar
// log. On validation failure the sidecar is kept for inspection.
func (r *FFmpegRecorder) Deactivate() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.outputPath == "" {
		return nil
	}

	path := r.outputPath
	sidecar := r.sidecarLog
	r.outputPath = ""
	r.sidecarLog = ""

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("recording file not found: %s", path)
	}

	if info.Size() < minOutputSize {
		return fmt.Errorf("recording file too small (%d bytes): %s", info.Size(), path)
	}

	if sidecar != "" {
		if err := os.Remove(sidecar); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove capture log: %w", err)
		}
	}

	return nil
}

// IsRunning returns whether a capture process is active.
func (r *FFmpegRecorder) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.running
}

// Close kills any running capture process and releases the recorder.
func (r *FFmpegRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd != nil && r.cmd.Process != nil {
		r.cmd.Process.Kill()
		r.cmd.Wait()
	}

	r.cmd = nil
	r.running = false

	return nil
}
