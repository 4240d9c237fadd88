package pkg

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

const (
	roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// RoomCodeLength is the fixed length of shareable room codes.
	RoomCodeLength = 6
)

// GenerateRoomCode returns a random shareable room code of RoomCodeLength
// uppercase alphanumeric characters. Uniqueness among live rooms is the
// registry's job, not this function's.
func GenerateRoomCode() string {
	code := make([]byte, RoomCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(roomCodeAlphabet))))
		if err != nil {
			panic(err) // crypto/rand only fails when the OS entropy source is broken
		}
		code[i] = roomCodeAlphabet[n.Int64()]
	}

	return string(code)
}

// GenerateConnectionID mints the identity of a live transport session.
func GenerateConnectionID() string {
	return uuid.NewString()
}
