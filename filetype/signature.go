package filetype

import (
	"bytes"
	"io"
	"path/filepath"
)

// SignatureLength is the number of leading bytes inspected for magic numbers
const SignatureLength = 16

// ByExtension classifies path by its extension alone
func ByExtension(path string) FileType {
	return FromExtension(filepath.Ext(path))
}

// BySignature returns the first type, in declaration order, whose signature
// prefixes head. Only the first SignatureLength bytes are considered.
func BySignature(head []byte) FileType {
	if len(head) > SignatureLength {
		head = head[:SignatureLength]
	}
	for i, d := range descriptors {
		if len(d.signature) == 0 {
			continue
		}
		if bytes.HasPrefix(head, d.signature) {
			return FileType(i)
		}
	}
	return Unknown
}

// ReadSignature reads up to n leading bytes of r. A short file is not an
// error.
func ReadSignature(r io.Reader, n int) ([]byte, error) {
	if n <= 0 {
		n = SignatureLength
	}
	buf := make([]byte, n)
	read, err := io.ReadFull(r, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return buf[:read], nil
}
