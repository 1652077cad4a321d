package notify

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/jfreymuth/pulse"
)

const cueSampleRate = 16000

type toneSpec struct {
	frequencyHz float64
	duration    time.Duration
	volume      float64
}

// failureCuePCM is a short falling two-tone.
var failureCuePCM = synthesizeCue([]toneSpec{
	{frequencyHz: 523, duration: 70 * time.Millisecond, volume: 0.16},
	{frequencyHz: 392, duration: 110 * time.Millisecond, volume: 0.16},
})

// playFailureCue plays file through pw-play when set and readable, falling
// back to the synthesized tone over PulseAudio.
func playFailureCue(ctx context.Context, file string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if path := expandUserPath(file); path != "" {
		if err := playCueFile(ctx, path); err == nil {
			return nil
		}
	}
	return playSynthCue(failureCuePCM)
}

func expandUserPath(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw != "~" && !strings.HasPrefix(raw, "~/") {
		return raw
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return raw
	}
	return filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(raw, "~"), "/"))
}

func playCueFile(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("stat cue file %q: %w", path, err)
	}

	cmd := exec.CommandContext(ctx, "pw-play", "--media-role", "Notification", path)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("play cue file %q: %w (%s)", path, err, strings.TrimSpace(string(output)))
	}
	return nil
}

func playSynthCue(samples []int16) error {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName("linevox"),
		pulse.ClientApplicationIconName("dialog-error"),
	)
	if err != nil {
		return fmt.Errorf("connect pulse server: %w", err)
	}
	defer client.Close()

	cursor := 0
	reader := pulse.Int16Reader(func(buf []int16) (int, error) {
		if cursor >= len(samples) {
			return 0, pulse.EndOfData
		}
		n := copy(buf, samples[cursor:])
		cursor += n
		if cursor >= len(samples) {
			return n, pulse.EndOfData
		}
		return n, nil
	})

	stream, err := client.NewPlayback(
		reader,
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(cueSampleRate),
		pulse.PlaybackLatency(0.02),
		pulse.PlaybackMediaName("linevox failure cue"),
	)
	if err != nil {
		return fmt.Errorf("create pulse playback stream: %w", err)
	}
	defer stream.Close()

	stream.Start()
	stream.Drain()
	if err := stream.Error(); err != nil {
		return fmt.Errorf("play cue stream: %w", err)
	}
	return nil
}

func synthesizeCue(parts []toneSpec) []int16 {
	gap := make([]int16, samplesForDuration(20*time.Millisecond))
	var pcm []int16
	for i, part := range parts {
		if i > 0 {
			pcm = append(pcm, gap...)
		}
		pcm = append(pcm, synthesizeTone(part)...)
	}
	return pcm
}

// synthesizeTone renders a sine with a linear ramp of at most 5ms at each
// end so the cue does not click.
func synthesizeTone(spec toneSpec) []int16 {
	n := samplesForDuration(spec.duration)
	if n <= 0 || spec.frequencyHz <= 0 || spec.volume <= 0 {
		return nil
	}

	ramp := min(max(n/10, 1), cueSampleRate/200)
	pcm := make([]int16, n)
	for i := range n {
		envelope := min(1.0, float64(i)/float64(ramp), float64(n-i-1)/float64(ramp))
		t := float64(i) / cueSampleRate
		sample := math.Sin(2 * math.Pi * spec.frequencyHz * t)
		pcm[i] = int16(math.Round(sample * spec.volume * envelope * 32767))
	}
	return pcm
}

func samplesForDuration(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(d.Seconds() * cueSampleRate))
}
