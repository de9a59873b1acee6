// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package otp

import (
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 1000
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

func TestMACRoundTripRandom(t *testing.T) {
	rng := newFuzzRng(t)
	c := MustCatalog(IMX8MP())

	for i := 0; i < getFuzzRounds(); i++ {
		var mac [6]byte
		rng.Read(mac[:])
		style := MACStyle(rng.Intn(2))
		literal := FormatMAC(mac, style)

		for _, name := range []string{"MAC", "MAC2"} {
			mem := NewMemoryStore(SemanticsOR)
			f, _ := c.Resolve(mem, name)
			require.NoError(t, f.Set(literal))

			got, err := f.Get()
			require.NoError(t, err)
			assert.Equal(t, FormatMAC(mac, MACStylePlain), got, "%s round %d", name, i)
		}
	}
}

func TestSRKRoundTripRandom(t *testing.T) {
	rng := newFuzzRng(t)
	c := MustCatalog(IMX6DL())

	for i := 0; i < getFuzzRounds(); i++ {
		var words [8]uint32
		for j := range words {
			words[j] = rng.Uint32()
		}
		literal := FormatSRK(words)
		require.Len(t, literal, 87)

		mem := NewMemoryStore(SemanticsOR)
		f, _ := c.Resolve(mem, "SRK")
		require.NoError(t, f.Set(literal))

		got, err := f.Get()
		require.NoError(t, err)
		assert.Equal(t, literal, got, "round %d", i)
	}
}

// A random register value under a random flag never decodes to a name
// whose bits differ from the masked value.
func TestFlagDecodeRandom(t *testing.T) {
	rng := newFuzzRng(t)
	c := MustCatalog(IMX8MN())
	var flags []Entry
	for _, e := range c.Entries() {
		if e.Kind == KindFlag {
			flags = append(flags, e)
		}
	}

	for i := 0; i < getFuzzRounds(); i++ {
		e := flags[rng.Intn(len(flags))]
		word := rng.Uint32()
		mem := NewMemoryStore(SemanticsOR)
		mem.Load(e.Flag.Offset, word)

		got, err := NewFuse(e, mem).Get()
		require.NoError(t, err)
		if got == Unknown {
			continue
		}
		bits, ok := e.Flag.bits(got)
		require.True(t, ok)
		assert.Equal(t, word&e.Flag.Mask, bits, "%s word 0x%08x", e.Name, word)
	}
}

func FuzzParseMAC(f *testing.F) {
	f.Add("0010302050A2")
	f.Add("00:10:30:20:50:a2")
	f.Add("00:10:30:20:50:a")
	f.Add("")
	f.Fuzz(func(t *testing.T, arg string) {
		mac, err := ParseMAC(arg)
		if err != nil {
			return
		}
		for _, style := range []MACStyle{MACStylePlain, MACStyleColon} {
			again, err := ParseMAC(FormatMAC(mac, style))
			if err != nil || again != mac {
				t.Fatalf("%q: format/parse mismatch in style %d", arg, style)
			}
		}
	})
}

func FuzzParseSRK(f *testing.F) {
	f.Add(ZeroSRK)
	f.Add("0x11111111,0x22222222,0x33333333,0x44444444,0x55555555,0x66666666,0x77777777,0x8899AABB")
	f.Add("0X+1111111,0x22222222,0x33333333,0x44444444,0x55555555,0x66666666,0x77777777,0x8899AABB")
	f.Fuzz(func(t *testing.T, arg string) {
		words, err := ParseSRK(arg)
		if err != nil {
			return
		}
		again, err := ParseSRK(FormatSRK(words))
		if err != nil || again != words {
			t.Fatalf("%q: format/parse mismatch", arg)
		}
	})
}
