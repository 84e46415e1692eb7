// Package codec provides the transforms that run over streams: base64 and
// hexadecimal text codecs plus gzip, zstd and snappy compression.
//
// Every codec implements transform.Transform. Input is pushed through Update
// in chunks of any size and the result is delivered to a Sink, either while
// updating or on Final. Splitting the input differently never changes the
// output.
//
// # Base64
//
// Base64Encoder emits the standard alphabet with '=' padding and no line
// breaks. Base64Decoder ignores CR and LF anywhere in the input and removes up
// to two '=' from the end of each Update chunk:
//
//	enc := codec.NewBase64Encoder()
//	out, err := transform.Apply(enc, []byte{1, 2, 3, 4})
//	// out == "AQIDBA=="
//
// # Hex
//
// HexEncoder emits lowercase digits. HexDecoder accepts either case and skips
// ASCII whitespace, so "01 02 0A" and "01020a" decode to the same bytes.
//
// # Compression
//
// GzipEncoder, ZstdEncoder and SnappyEncoder stream their output to the sink
// as the underlying compressor produces it. The matching decoders collect
// their input and decode it on Final.
//
// # Registry
//
// New resolves a codec by name, which is how the command line tool selects
// one:
//
//	c, err := codec.New("hex", codec.Decode)
//
// Codecs are not safe for concurrent use. After Final a codec must be Reset
// before it is used again.
package codec
