// Package gameid issues the identifiers games are addressed by: UUIDv7
// values written as 26 lowercase Crockford base32 characters, so ids sort
// by creation time.
package gameid

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// Base32 alphabet used by TypeID (Crockford's base32)
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length is the size of an encoded id.
const Length = 26

// Generator issues ids, drawing randomness from an optional reader.
type Generator struct {
	rand io.Reader
}

// NewGenerator creates a generator. A nil reader uses crypto randomness.
func NewGenerator(rand io.Reader) *Generator {
	return &Generator{rand: rand}
}

// Generate creates a new game id using crypto randomness.
func Generate() string {
	id, err := NewGenerator(nil).Generate()
	if err != nil {
		panic("failed to generate game id: " + err.Error())
	}
	return id
}

// Generate creates a new id from the generator's randomness.
func (g *Generator) Generate() (string, error) {
	var (
		u   uuid.UUID
		err error
	)
	if g.rand != nil {
		u, err = uuid.NewV7FromReader(g.rand)
	} else {
		u, err = uuid.NewV7()
	}
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return Encode(u), nil
}

// Encode writes u as 26 base32 characters. The 128 bits are padded with
// two leading zero bits, so the first character is always 0-7.
func Encode(u uuid.UUID) string {
	hi := binary.BigEndian.Uint64(u[:8])
	lo := binary.BigEndian.Uint64(u[8:])
	var out [Length]byte
	for i := Length - 1; i >= 0; i-- {
		out[i] = alphabet[lo&0x1f]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out[:])
}

// Parse decodes an id produced by Encode.
func Parse(id string) (uuid.UUID, error) {
	var u uuid.UUID
	if len(id) != Length {
		return u, fmt.Errorf("game ID must be exactly %d characters, got %d", Length, len(id))
	}
	if id[0] > '7' {
		return u, fmt.Errorf("game ID first character must be 0-7, got %c", id[0])
	}

	var hi, lo uint64
	for i := 0; i < Length; i++ {
		v := strings.IndexByte(alphabet, id[i])
		if v < 0 {
			return u, fmt.Errorf("invalid character %c at position %d", id[i], i)
		}
		hi = hi<<5 | lo>>59
		lo = lo<<5 | uint64(v)
	}
	binary.BigEndian.PutUint64(u[:8], hi)
	binary.BigEndian.PutUint64(u[8:], lo)
	return u, nil
}

// Validate checks that id is well formed and carries a version 7 UUID.
func Validate(id string) error {
	u, err := Parse(id)
	if err != nil {
		return err
	}
	if u.Version() != 7 {
		return fmt.Errorf("game ID holds a version %d uuid, want 7", u.Version())
	}
	return nil
}
