package codec

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/ssargent/iostreams/pkg/transform"
)

// ErrUnknownCodec is returned by New for names that are not registered.
var ErrUnknownCodec = errors.New("unknown codec")

// Direction selects the encoding or decoding half of a codec.
type Direction int

const (
	Encode Direction = iota
	Decode
)

func (d Direction) String() string {
	if d == Decode {
		return "decode"
	}
	return "encode"
}

// Codec is a transform that can be reused after Final.
type Codec interface {
	transform.Transform
	transform.Sizer
	transform.Resetter
}

type factory struct {
	encoder func(...Option) Codec
	decoder func(...Option) Codec
}

var registry = map[string]factory{
	"base64": {
		encoder: func(o ...Option) Codec { return NewBase64Encoder(o...) },
		decoder: func(o ...Option) Codec { return NewBase64Decoder(o...) },
	},
	"hex": {
		encoder: func(o ...Option) Codec { return NewHexEncoder(o...) },
		decoder: func(o ...Option) Codec { return NewHexDecoder(o...) },
	},
	"gzip": {
		encoder: func(o ...Option) Codec { return NewGzipEncoder(o...) },
		decoder: func(o ...Option) Codec { return NewGzipDecoder(o...) },
	},
	"zstd": {
		encoder: func(o ...Option) Codec { return NewZstdEncoder(o...) },
		decoder: func(o ...Option) Codec { return NewZstdDecoder(o...) },
	},
	"snappy": {
		encoder: func(o ...Option) Codec { return NewSnappyEncoder(o...) },
		decoder: func(o ...Option) Codec { return NewSnappyDecoder(o...) },
	},
}

// New returns the named codec in the given direction. Names are matched
// case-insensitively.
func New(name string, dir Direction, opts ...Option) (Codec, error) {
	f, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownCodec, "%q (available: %s)", name, strings.Join(Names(), ", "))
	}
	if dir == Decode {
		return f.decoder(opts...), nil
	}
	return f.encoder(opts...), nil
}

// Names lists the registered codec names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
