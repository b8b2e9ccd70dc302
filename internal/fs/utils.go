package fs

func safeIntToUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	return uint32(n)
}

// blocks512 is the number of 512-byte blocks needed for size bytes.
func blocks512(size uint64) uint64 {
	return (size + 511) / 512
}
