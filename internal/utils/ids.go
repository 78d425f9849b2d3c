package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

// Every record id is a NanoID over a URL safe alphanumeric alphabet, so ids
// can be used in paths and storage keys unescaped.
const (
	NanoidSize     = 32
	nanoidAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

func NanoID() string {
	return NanoIDSize(NanoidSize)
}

// NanoIDSize returns an id of size characters, or NanoidSize when size is not
// positive.
func NanoIDSize(size int) string {
	if size <= 0 {
		size = NanoidSize
	}

	return gonanoid.MustGenerate(nanoidAlphabet, size)
}
