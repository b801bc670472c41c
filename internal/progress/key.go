package progress

import (
	"cmp"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidKey is returned by ParseKey for strings that do not end in
// "-<chapter>".
var ErrInvalidKey = errors.New("invalid progress key")

// Key identifies one chapter of one book.
type Key struct {
	Book    string
	Chapter int
}

// String renders the serialized form "Book-Chapter". Book titles may contain
// "-"; ParseKey splits on the last one.
func (k Key) String() string {
	return k.Book + "-" + strconv.Itoa(k.Chapter)
}

// Valid reports whether k names a real chapter.
func (k Key) Valid() bool {
	return k.Book != "" && k.Chapter >= 0
}

// Compare orders keys by book title, then chapter number.
func (k Key) Compare(o Key) int {
	if c := cmp.Compare(k.Book, o.Book); c != 0 {
		return c
	}
	return cmp.Compare(k.Chapter, o.Chapter)
}

// ParseKey parses the serialized "Book-Chapter" form.
func ParseKey(s string) (Key, error) {
	i := strings.LastIndexByte(s, '-')
	if i <= 0 || i == len(s)-1 {
		return Key{}, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	ch, err := strconv.Atoi(s[i+1:])
	if err != nil || ch < 0 || s[i+1] == '+' {
		return Key{}, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}
	return Key{Book: s[:i], Chapter: ch}, nil
}
