package metadata

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
)

func newTestExtractor() *Extractor {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewExtractor([]string{".mp3", ".wav", ".ogg"}, logger)
}

func TestIsAudioFile(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		path string
		want bool
	}{
		{"track.mp3", true},
		{"track.MP3", true},
		{"sound.wav", true},
		{"sound.ogg", true},
		{"album.flac", false}, // not in configured formats
		{"notes.txt", false},
		{"noext", false},
	}

	for _, tt := range tests {
		if got := e.IsAudioFile(tt.path); got != tt.want {
			t.Errorf("IsAudioFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestContentType(t *testing.T) {
	e := newTestExtractor()

	tests := []struct {
		path string
		want string
	}{
		{"track.mp3", "audio/mpeg"},
		{"sound.WAV", "audio/wav"},
		{"sound.ogg", "audio/ogg"},
		{"album.flac", "audio/flac"},
		{"mystery.bin", "application/octet-stream"},
	}

	for _, tt := range tests {
		if got := e.ContentType(tt.path); got != tt.want {
			t.Errorf("ContentType(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

// writeWAV writes a minimal valid WAV file with the given PCM seconds.
func writeWAV(t *testing.T, path string, seconds int) {
	t.Helper()

	const (
		sampleRate = 8000
		numChans   = 1
		bitDepth   = 16
	)
	pcmLen := seconds * sampleRate * numChans * (bitDepth / 8)

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+pcmLen))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(numChans))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*numChans*bitDepth/8))
	binary.Write(&buf, binary.LittleEndian, uint16(numChans*bitDepth/8))
	binary.Write(&buf, binary.LittleEndian, uint16(bitDepth))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(pcmLen))
	buf.Write(make([]byte, pcmLen))

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestProbeWAVDuration(t *testing.T) {
	e := newTestExtractor()
	path := filepath.Join(t.TempDir(), "tone.wav")
	writeWAV(t, path, 3)

	info := e.Probe(path)
	if info.Duration != 3 {
		t.Errorf("expected 3s duration, got %d", info.Duration)
	}
}

func TestProbeDegradesOnGarbage(t *testing.T) {
	e := newTestExtractor()
	path := filepath.Join(t.TempDir(), "garbage.mp3")
	if err := os.WriteFile(path, []byte("this is not audio"), 0644); err != nil {
		t.Fatal(err)
	}

	info := e.Probe(path)
	if info.Duration != 0 || info.Title != "" || info.Artist != "" {
		t.Errorf("expected zero info for garbage file, got %+v", info)
	}
}

func TestProbeUnknownFormat(t *testing.T) {
	e := newTestExtractor()
	path := filepath.Join(t.TempDir(), "sound.ogg")
	if err := os.WriteFile(path, []byte("OggS fake"), 0644); err != nil {
		t.Fatal(err)
	}

	// No decoder for ogg: duration stays 0, no error surfaces
	info := e.Probe(path)
	if info.Duration != 0 {
		t.Errorf("expected 0 duration for ogg, got %d", info.Duration)
	}
}
