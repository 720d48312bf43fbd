package common

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// Use it to scrub passwords and other secrets once they are no longer needed.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
