package util

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/exp/constraints"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var prn = message.NewPrinter(language.English)

// Th makes string representation of the integer with thousands separator
func Th[T constraints.Integer](v T) string {
	return prn.Sprintf("%d", v)
}

// GoThousands same as Th, with Go-style '_' separator
func GoThousands[T constraints.Integer](v T) string {
	return strings.Replace(Th(v), ",", "_", -1)
}

// Sum sums up integers without overflow check
func Sum[T constraints.Integer](elems ...T) (ret T) {
	for _, e := range elems {
		ret += e
	}
	return
}

// SumWide sums up into uint64, so that small integer types do not wrap around
func SumWide[T constraints.Unsigned](elems ...T) (ret uint64) {
	for _, e := range elems {
		ret += uint64(e)
	}
	return
}

// Bytes32FromHex parses exactly 32 bytes from a hex string. Leading '0x' is accepted
func Bytes32FromHex(s string) (ret [32]byte, err error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	var data []byte
	if data, err = hex.DecodeString(s); err != nil {
		return
	}
	if len(data) != 32 {
		err = fmt.Errorf("expected 32 bytes, got %d", len(data))
		return
	}
	copy(ret[:], data)
	return
}

func ED25519PrivateKeyFromHexString(str string) (ed25519.PrivateKey, error) {
	privateKeyBin, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(str), "0x"))
	if err != nil {
		return nil, err
	}
	if len(privateKeyBin) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("wrong private key size %d", len(privateKeyBin))
	}
	return privateKeyBin, nil
}
