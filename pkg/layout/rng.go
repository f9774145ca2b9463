package layout

import (
	"strconv"
	"unicode/utf16"
)

// rngModulus, rngMultiplier, and rngIncrement are the parameters of the
// linear congruential generator used for all jitter draws. They are part of
// the persisted-layout contract: changing them re-jitters every existing
// book, so they must never change.
const (
	rngMultiplier = 9301
	rngIncrement  = 49297
	rngModulus    = 233280
)

// RNG is a deterministic pseudo-random generator keyed to one page of one
// book. Every jitter decision in a page layout draws from a single RNG in a
// fixed order, which is what makes layouts reproducible bit-for-bit.
//
// RNG is not safe for concurrent use; each page gets its own instance.
type RNG struct {
	state int64
}

// Seed derives the integer seed for a (bookID, pageNumber) pair.
//
// The hash is a polynomial hash over the UTF-16 code units of the composite
// key with 32-bit wraparound, matching the seeds of previously shipped books.
// The absolute value is taken so the LCG state starts non-negative.
func Seed(bookID string, pageNumber int) int64 {
	key := compositeKey(bookID, pageNumber)
	var h int32
	for _, u := range utf16.Encode([]rune(key)) {
		h = h*31 + int32(u)
	}
	// Negate in 64 bits: -MinInt32 does not fit in int32 and would wrap
	// back to a negative seed.
	s := int64(h)
	if s < 0 {
		s = -s
	}
	return s
}

// compositeKey joins bookID and pageNumber into the hashed seed key.
// The "-" separator is part of the seed contract.
func compositeKey(bookID string, pageNumber int) string {
	return bookID + "-" + strconv.Itoa(pageNumber)
}

// NewRNG creates a generator for one page of one book.
func NewRNG(bookID string, pageNumber int) *RNG {
	return &RNG{state: Seed(bookID, pageNumber)}
}

// NewRNGFromSeed creates a generator from a raw seed value.
// Used when replaying a layout from its recorded seed.
func NewRNGFromSeed(seed int64) *RNG {
	return &RNG{state: seed}
}

// Next advances the generator and returns a value in [0, 1).
// Each call mutates state, so draw order is significant.
func (r *RNG) Next() float64 {
	r.state = (r.state*rngMultiplier + rngIncrement) % rngModulus
	return float64(r.state) / rngModulus
}
