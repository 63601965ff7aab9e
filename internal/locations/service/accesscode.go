package service

import (
	"crypto/rand"
	"fmt"
	"io"
)

// accessCodeAlphabet leaves out I, O, 0 and 1, which read alike.
const accessCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const accessCodeLength = 6

const maxAccessCodeAttempts = 10

// newAccessCode draws accessCodeLength symbols from src without modulo bias.
func newAccessCode(src io.Reader) (string, error) {
	// 256 is a multiple of 32, so each byte maps to one symbol evenly.
	buf := make([]byte, accessCodeLength)
	if _, err := io.ReadFull(src, buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = accessCodeAlphabet[int(b)%len(accessCodeAlphabet)]
	}
	return string(buf), nil
}

var randomSource io.Reader = rand.Reader
