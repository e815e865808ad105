package facts

import "strings"

// soundexCodes maps consonants to their Soundex digit.
var soundexCodes = map[byte]byte{
	'b': '1', 'f': '1', 'p': '1', 'v': '1',
	'c': '2', 'g': '2', 'j': '2', 'k': '2', 'q': '2', 's': '2', 'x': '2', 'z': '2',
	'd': '3', 't': '3',
	'l': '4',
	'm': '5', 'n': '5',
	'r': '6',
}

// Phonetic returns the Soundex code for a token, so "Sara" and "Sarah"
// collide. Non-alphabetic tokens encode to the empty string.
func Phonetic(token string) string {
	token = strings.ToLower(token)
	var letters []byte
	for i := 0; i < len(token); i++ {
		c := token[i]
		if c >= 'a' && c <= 'z' {
			letters = append(letters, c)
		}
	}
	if len(letters) == 0 {
		return ""
	}

	code := []byte{letters[0] - 'a' + 'A'}
	prev := soundexCodes[letters[0]]
	for _, c := range letters[1:] {
		d := soundexCodes[c]
		if d == 0 {
			// Vowels and h/w/y reset or pass through per classic Soundex:
			// h and w do not break a run, vowels do.
			if c != 'h' && c != 'w' {
				prev = 0
			}
			continue
		}
		if d != prev {
			code = append(code, d)
			if len(code) == 4 {
				break
			}
		}
		prev = d
	}
	for len(code) < 4 {
		code = append(code, '0')
	}
	return string(code)
}
