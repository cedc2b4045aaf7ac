package guide

// Sum8 returns the byte sum of s in an 8-bit accumulator that wraps on
// overflow.
func Sum8(s string) uint8 {
	var h uint8
	for i := 0; i < len(s); i++ {
		h += s[i]
	}
	return h
}

// Sum32 returns the byte sum of s in a 32-bit accumulator that wraps on
// overflow.
func Sum32(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		h += uint32(s[i])
	}
	return h
}
