// Copyright 2021 - 2022 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package types

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Charset is the character set of a string type instance.
type Charset uint8

const (
	CharsetBinary Charset = iota
	CharsetUTF8
	CharsetLatin1
	CharsetASCII
	CharsetUTF16
)

type charsetInfo struct {
	name            string
	maxBytesPerChar float64
	enc             encoding.Encoding
}

var charsets = [...]charsetInfo{
	CharsetBinary: {"binary", 1, encoding.Nop},
	CharsetUTF8:   {"utf8mb4", 4, unicode.UTF8},
	CharsetLatin1: {"latin1", 1, charmap.ISO8859_1},
	CharsetASCII:  {"ascii", 1, encoding.Nop},
	CharsetUTF16:  {"utf16", 4, unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)},
}

func (cs Charset) String() string {
	if int(cs) < len(charsets) {
		return charsets[cs].name
	}
	return "unknown"
}

// MaxBytesPerChar is the worst case encoded size of one character.
func (cs Charset) MaxBytesPerChar() float64 {
	return charsets[cs].maxBytesPerChar
}

// Encode converts a go string into the bytes of the charset.
// Characters the charset cannot represent become its substitute character.
func (cs Charset) Encode(s string) ([]byte, error) {
	switch cs {
	case CharsetBinary, CharsetUTF8:
		return []byte(s), nil
	case CharsetASCII:
		out := make([]byte, 0, len(s))
		for _, r := range s {
			if r >= 0x80 {
				r = '?'
			}
			out = append(out, byte(r))
		}
		return out, nil
	}
	enc := encoding.ReplaceUnsupported(charsets[cs].enc.NewEncoder())
	return enc.Bytes([]byte(s))
}

// Decode converts bytes of the charset back into a go string.
func (cs Charset) Decode(b []byte) (string, error) {
	switch cs {
	case CharsetBinary, CharsetUTF8, CharsetASCII:
		return string(b), nil
	}
	out, err := charsets[cs].enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ParseCharset finds a charset by name.
func ParseCharset(name string) (Charset, bool) {
	switch strings.ToLower(name) {
	case "utf8", "utf8mb4", "utf8mb3":
		return CharsetUTF8, true
	case "latin1", "iso-8859-1":
		return CharsetLatin1, true
	case "ascii":
		return CharsetASCII, true
	case "utf16":
		return CharsetUTF16, true
	case "binary":
		return CharsetBinary, true
	}
	return CharsetBinary, false
}
