package vfile

import (
	"encoding/binary"
	"math"
)

func putFloat64(dst []byte, v float64) { binary.LittleEndian.PutUint64(dst, math.Float64bits(v)) }
func getFloat64(src []byte) float64    { return math.Float64frombits(binary.LittleEndian.Uint64(src)) }

func putInt64(dst []byte, v int64) { binary.LittleEndian.PutUint64(dst, uint64(v)) }
func getInt64(src []byte) int64    { return int64(binary.LittleEndian.Uint64(src)) }

func putUint64(dst []byte, v uint64) { binary.LittleEndian.PutUint64(dst, v) }
func getUint64(src []byte) uint64    { return binary.LittleEndian.Uint64(src) }
