// internal/predictor/zstd.go
package predictor

import (
	"sync"

	"github.com/klauspost/compress/zstd"
)

var (
	encoder    *zstd.Encoder
	decoder    *zstd.Decoder
	codecErr   error
	codecSetup sync.Once
)

func codec() (*zstd.Encoder, *zstd.Decoder, error) {
	codecSetup.Do(func() {
		encoder, codecErr = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if codecErr != nil {
			return
		}
		decoder, codecErr = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	})
	return encoder, decoder, codecErr
}

func compress(b []byte) ([]byte, error) {
	enc, _, err := codec()
	if err != nil {
		return nil, err
	}
	return enc.EncodeAll(b, make([]byte, 0, len(b)/4)), nil
}

func decompress(b []byte) ([]byte, error) {
	_, dec, err := codec()
	if err != nil {
		return nil, err
	}
	return dec.DecodeAll(b, make([]byte, 0, len(b)*3))
}
