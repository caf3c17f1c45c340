package media

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// AudioFormat describes the sample layout of a PCM WAV file
type AudioFormat struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
}

// NormalizedFormat is the format every extracted artifact must have:
// mono, 16-bit PCM, 16 kHz
var NormalizedFormat = AudioFormat{SampleRate: 16000, Channels: 1, BitsPerSample: 16}

func (f AudioFormat) String() string {
	return fmt.Sprintf("%d Hz, %d ch, %d-bit", f.SampleRate, f.Channels, f.BitsPerSample)
}

// ErrNotWAV is returned when the data is not a RIFF/WAVE PCM stream
var ErrNotWAV = errors.New("not a PCM WAV file")

// ReadAudioFormat parses the RIFF header and returns the format of the first fmt chunk
func ReadAudioFormat(r io.Reader) (AudioFormat, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return AudioFormat{}, fmt.Errorf("%w: %v", ErrNotWAV, err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return AudioFormat{}, ErrNotWAV
	}

	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return AudioFormat{}, fmt.Errorf("%w: missing fmt chunk", ErrNotWAV)
		}
		size := binary.LittleEndian.Uint32(hdr[4:8])

		if string(hdr[0:4]) != "fmt " {
			// chunks are word aligned
			skip := int64(size) + int64(size&1)
			if _, err := io.CopyN(io.Discard, r, skip); err != nil {
				return AudioFormat{}, fmt.Errorf("%w: truncated chunk", ErrNotWAV)
			}
			continue
		}

		if size < 16 {
			return AudioFormat{}, fmt.Errorf("%w: fmt chunk too short", ErrNotWAV)
		}
		var body [16]byte
		if _, err := io.ReadFull(r, body[:]); err != nil {
			return AudioFormat{}, fmt.Errorf("%w: truncated fmt chunk", ErrNotWAV)
		}

		tag := binary.LittleEndian.Uint16(body[0:2])
		if tag != wavFormatPCM && tag != wavFormatExtensible {
			return AudioFormat{}, fmt.Errorf("%w: format tag 0x%04x", ErrNotWAV, tag)
		}

		return AudioFormat{
			Channels:      int(binary.LittleEndian.Uint16(body[2:4])),
			SampleRate:    int(binary.LittleEndian.Uint32(body[4:8])),
			BitsPerSample: int(binary.LittleEndian.Uint16(body[14:16])),
		}, nil
	}
}
