package nnue

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"lukechampine.com/frand"
)

// Weight blobs are little-endian: an int32 header [inputSize, hidden]
// followed by the raw int16 payloads W1 (inputSize*hidden), B1
// (hidden), W2 (2*hidden) and the int32 output bias.

// LoadNetwork reads a weight blob from path.
func LoadNetwork(path string) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("nnue weights: %w", err)
	}
	defer f.Close()

	net, err := ReadNetwork(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("nnue weights %q: %w", path, err)
	}
	return net, nil
}

// ReadNetwork decodes a weight blob.
func ReadNetwork(r io.Reader) (*Network, error) {
	var header [2]int32
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if header[0] != InputSize {
		return nil, fmt.Errorf("input size %d, want %d", header[0], InputSize)
	}
	hidden := int(header[1])
	if hidden <= 0 || hidden > 4096 {
		return nil, fmt.Errorf("implausible hidden size %d", hidden)
	}

	net := &Network{
		Hidden: hidden,
		W1:     make([]int16, InputSize*hidden),
		B1:     make([]int16, hidden),
		W2:     make([]int16, 2*hidden),
	}
	for _, chunk := range [][]int16{net.W1, net.B1, net.W2} {
		if err := binary.Read(r, binary.LittleEndian, chunk); err != nil {
			return nil, fmt.Errorf("reading weights: %w", err)
		}
	}
	if err := binary.Read(r, binary.LittleEndian, &net.B2); err != nil {
		return nil, fmt.Errorf("reading output bias: %w", err)
	}
	return net, nil
}

// WriteNetwork encodes the network in the blob format.
func WriteNetwork(w io.Writer, net *Network) error {
	header := [2]int32{InputSize, int32(net.Hidden)}
	for _, v := range []any{header, net.W1, net.B1, net.W2, net.B2} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("writing weights: %w", err)
		}
	}
	return nil
}

// NewRandomNetwork builds a small network with seeded random weights.
// It carries no chess knowledge; tests use it to exercise the
// accumulator and inference paths deterministically.
func NewRandomNetwork(seed uint64, hidden int) *Network {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	binary.LittleEndian.PutUint64(key[8:16], ^seed)
	rng := frand.NewCustom(key[:], 1024, 12)
	next := func() int16 {
		var b [2]byte
		rng.Read(b[:])
		return int16(binary.LittleEndian.Uint16(b[:])%129) - 64
	}

	net := &Network{
		Hidden: hidden,
		W1:     make([]int16, InputSize*hidden),
		B1:     make([]int16, hidden),
		W2:     make([]int16, 2*hidden),
	}
	for i := range net.W1 {
		net.W1[i] = next()
	}
	for i := range net.B1 {
		net.B1[i] = next()
	}
	for i := range net.W2 {
		net.W2[i] = next()
	}
	net.B2 = int32(next())
	return net
}
