package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// ListInputDevices enumerates the available audio input devices.
func ListInputDevices() ([]Device, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	defer portaudio.Terminate()

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	defaultInput, err := portaudio.DefaultInputDevice()
	if err != nil {
		// Continue without marking any device as default
		defaultInput = nil
	}

	var result []Device
	for i, dev := range devices {
		// Only include devices with input channels
		if dev.MaxInputChannels > 0 {
			isDefault := false
			if defaultInput != nil && dev.Name == defaultInput.Name {
				isDefault = true
			}

			result = append(result, Device{
				ID:        i,
				Name:      dev.Name,
				IsDefault: isDefault,
			})
		}
	}

	return result, nil
}

// ProbeDefaultInput opens a short stream on the default input device and
// reads from it once. On macOS the first open triggers the system
// microphone prompt, so a successful probe means access is granted.
func ProbeDefaultInput() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	defer portaudio.Terminate()

	device, err := portaudio.DefaultInputDevice()
	if err != nil {
		return fmt.Errorf("failed to get default input device: %w", err)
	}

	if device.MaxInputChannels <= 0 {
		return fmt.Errorf("default device '%s' has no input channels", device.Name)
	}

	buffer := make([]int16, 1024)
	streamParams := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: 1,
			Latency:  device.DefaultHighInputLatency,
		},
		SampleRate:      device.DefaultSampleRate,
		FramesPerBuffer: len(buffer),
	}

	stream, err := portaudio.OpenStream(streamParams, buffer)
	if err != nil {
		return fmt.Errorf("failed to open input stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("failed to start input stream: %w", err)
	}

	if err := stream.Read(); err != nil {
		stream.Stop()
		return fmt.Errorf("failed to read from input stream: %w", err)
	}

	return stream.Stop()
}
