package plantuml

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"
)

// DefaultServer is the public PlantUML rendering service.
const DefaultServer = "https://www.plantuml.com/plantuml"

// alphabet maps a 6-bit value to its token character. The ordering differs
// from RFC 4648 base64 and must match what the rendering service expects.
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-_"

// Format selects the representation the rendering service returns.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
	FormatTXT Format = "txt"
)

// validFormats is the set of formats the rendering service serves.
var validFormats = map[Format]bool{
	FormatSVG: true,
	FormatPNG: true,
	FormatTXT: true,
}

// ParseFormat validates a format name. The empty string selects SVG.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatSVG, nil
	}
	f := Format(strings.ToLower(s))
	if !validFormats[f] {
		return "", fmt.Errorf("invalid format %q: must be one of svg, png, txt", s)
	}
	return f, nil
}

// Encode compresses text with raw DEFLATE at maximum level and packs the
// result into a URL-safe token, four characters per three compressed bytes.
// A short final group is zero-padded and still emits four characters; the
// token carries no length marker.
func Encode(text string) (string, error) {
	compressed, err := deflate([]byte(text))
	if err != nil {
		return "", err
	}
	return encode64(compressed), nil
}

// Decode reverses Encode. It fails with an *InvalidCharError for characters
// outside the token alphabet and with ErrDecompression when the unpacked
// bytes are not a raw DEFLATE stream.
func Decode(token string) (string, error) {
	data, err := decode64(token)
	if err != nil {
		return "", err
	}
	raw, err := inflate(data)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// URL returns the SVG rendering URL for text on server. An empty server
// selects DefaultServer.
func URL(text, server string) (string, error) {
	return FormatURL(text, server, FormatSVG)
}

// MustURL is like URL but panics if text cannot be encoded. Encoding only
// fails on a compressor fault, never because of content, so MustURL suits
// fixed sources such as DefaultSource.
func MustURL(text, server string) string {
	url, err := URL(text, server)
	if err != nil {
		panic("plantuml: MustURL: " + err.Error())
	}
	return url
}

// FormatURL returns the rendering URL for text in the given format.
func FormatURL(text, server string, format Format) (string, error) {
	token, err := Encode(text)
	if err != nil {
		return "", err
	}
	return TokenURL(token, server, format), nil
}

// TokenURL composes a rendering URL from an already encoded token.
func TokenURL(token, server string, format Format) string {
	if server == "" {
		server = DefaultServer
	}
	if format == "" {
		format = FormatSVG
	}
	return strings.TrimRight(server, "/") + "/" + string(format) + "/" + token
}

func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return nil, &DecompressionError{Op: "deflate", Err: err}
	}
	if _, err := w.Write(data); err != nil {
		return nil, &DecompressionError{Op: "deflate", Err: err}
	}
	if err := w.Close(); err != nil {
		return nil, &DecompressionError{Op: "deflate", Err: err}
	}
	return buf.Bytes(), nil
}

// inflate reads a single raw DEFLATE stream. Bytes after the final block,
// such as the zero padding left by encode64, are never consumed.
func inflate(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, &DecompressionError{Op: "inflate", Err: err}
	}
	return raw, nil
}

func encode64(data []byte) string {
	var b strings.Builder
	b.Grow((len(data) + 2) / 3 * 4)

	for i := 0; i < len(data); i += 3 {
		var b1, b2, b3 byte
		b1 = data[i]
		if i+1 < len(data) {
			b2 = data[i+1]
		}
		if i+2 < len(data) {
			b3 = data[i+2]
		}
		append3bytes(&b, b1, b2, b3)
	}
	return b.String()
}

func append3bytes(b *strings.Builder, b1, b2, b3 byte) {
	c1 := b1 >> 2
	c2 := (b1&0x3)<<4 | b2>>4
	c3 := (b2&0xf)<<2 | b3>>6
	c4 := b3 & 0x3f
	b.WriteByte(encode6bit(c1))
	b.WriteByte(encode6bit(c2))
	b.WriteByte(encode6bit(c3))
	b.WriteByte(encode6bit(c4))
}

func encode6bit(v byte) byte {
	if v > 63 {
		panic(fmt.Sprintf("plantuml: 6-bit value out of range: %d", v))
	}
	return alphabet[v]
}

func decode64(token string) ([]byte, error) {
	out := make([]byte, 0, (len(token)+3)/4*3)

	for i := 0; i < len(token); i += 4 {
		var c [4]byte
		for j := 0; j < 4 && i+j < len(token); j++ {
			v, err := decode6bit(token[i+j])
			if err != nil {
				return nil, &InvalidCharError{Char: token[i+j], Offset: i + j}
			}
			c[j] = v
		}
		out = append(out,
			c[0]<<2|c[1]>>4,
			(c[1]<<4)&0xf0|c[2]>>2,
			(c[2]<<6)&0xc0|c[3],
		)
	}
	return out, nil
}

func decode6bit(ch byte) (byte, error) {
	switch {
	case ch == '_':
		return 63, nil
	case ch == '-':
		return 62, nil
	case ch >= 'a' && ch <= 'z':
		return ch - 61, nil
	case ch >= 'A' && ch <= 'Z':
		return ch - 55, nil
	case ch >= '0' && ch <= '9':
		return ch - 48, nil
	}
	return 0, ErrInvalidTokenCharacter
}
