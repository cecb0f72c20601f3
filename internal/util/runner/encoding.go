package runner

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// ErrUnknownEncoding возвращается для неподдерживаемого имени кодировки.
var ErrUnknownEncoding = errors.New("unknown console encoding")

// Поддерживаемые имена кодировок консоли.
const (
	EncodingAuto        = "auto"
	EncodingUTF8        = "utf-8"
	EncodingCP866       = "cp866"
	EncodingWindows1251 = "windows-1251"
)

// ValidateEncoding проверяет имя кодировки.
func ValidateEncoding(name string) error {
	_, _, err := lookupEncoding(name)
	return err
}

// Decode переводит вывод консоли в UTF-8.
//
// Пустое имя и "auto": валидный UTF-8 возвращается как есть,
// иначе вывод считается windows-1251.
func Decode(b []byte, name string) (string, error) {
	enc, auto, err := lookupEncoding(name)
	if err != nil {
		return string(b), err
	}
	if enc == nil || (auto && utf8.Valid(b)) {
		return string(b), nil
	}

	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return string(b), fmt.Errorf("decode %s: %w", name, err)
	}
	return string(out), nil
}

// lookupEncoding возвращает nil для utf-8.
func lookupEncoding(name string) (enc encoding.Encoding, auto bool, err error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EncodingAuto:
		return charmap.Windows1251, true, nil
	case EncodingUTF8, "utf8":
		return nil, false, nil
	case EncodingCP866, "ibm866", "866":
		return charmap.CodePage866, false, nil
	case EncodingWindows1251, "cp1251", "1251":
		return charmap.Windows1251, false, nil
	default:
		return nil, false, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
}
