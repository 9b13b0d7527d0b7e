package domain

// Zero overwrites every given buffer with zeros. Used on plaintext key material as soon
// as it has been wrapped or verified.
func Zero(buffers ...[]byte) {
	for _, b := range buffers {
		clear(b)
	}
}
