// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Command yajbedump dumps a YAJBE stream as a single-line pseudo-JSON
// rendering of its values (no indentation, no token kinds), and optionally
// verifies that a file round-trips through an encode/decode cycle.
package main

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/google/uuid"
	"sigs.k8s.io/yaml"

	"github.com/yajbe-go/yajbe"
)

// config holds defaults loadable from a YAML file via -config. The field
// table and name arena capacities have no command-line flags of their own;
// the config file is the only way to change them.
type config struct {
	FieldCapacity int `json:"fieldCapacity"`
	ArenaCapacity int `json:"arenaCapacity"`
}

var defaultConfig = config{FieldCapacity: 1024, ArenaCapacity: 1024}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func main() {
	configPath := flag.String("config", "", "YAML file overriding field/arena capacity defaults")
	verify := flag.Bool("verify", false, "re-encode the decoded stream and confirm it matches byte-for-byte")
	digest := flag.Bool("digest", false, "print the BLAKE2b-256 digest of the input alongside the trace")
	compressed := flag.Bool("compress", false, "treat the input as an S2-compressed YAJBE stream")
	flag.Parse()

	runID := uuid.New().String()
	logger := log.New(os.Stderr, fmt.Sprintf("yajbedump[%s] ", runID[:8]), log.LstdFlags)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Fatalf("loading config: %s", err)
	}

	args := flag.Args()
	if len(args) == 0 {
		args = []string{"-"}
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	for _, arg := range args {
		if err := processFile(arg, cfg, *verify, *digest, *compressed, out, logger); err != nil {
			logger.Printf("%s: %s", arg, err)
			os.Exit(1)
		}
	}
}

func readInput(arg string) ([]byte, error) {
	if arg == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(arg)
}

func processFile(arg string, cfg config, verify, digest, compressed bool, out *bufio.Writer, logger *log.Logger) error {
	raw, err := readInput(arg)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	plain := raw
	if compressed {
		src, err := yajbe.NewCompressedSource(raw)
		if err != nil {
			return fmt.Errorf("decompressing: %w", err)
		}
		plain = src.Bytes()
	}

	var source yajbe.ByteSource = yajbe.NewMemSource(plain)
	var digestSrc *yajbe.DigestSource
	if digest {
		digestSrc = yajbe.NewDigestSource(source)
		source = digestSrc
	}

	fields := yajbe.NewFieldDecoderSized(cfg.FieldCapacity, cfg.ArenaCapacity)
	dec := yajbe.NewValueDecoder(source, fields)

	if err := dumpNext(dec, out, 0); err != nil {
		return fmt.Errorf("decoding: %w", err)
	}
	fmt.Fprintln(out)

	if digest {
		fmt.Fprintf(out, "# blake2b-256: %x\n", digestSrc.Sum())
	}

	if verify {
		ok, err := verifyRoundTrip(plain, cfg)
		if err != nil {
			return fmt.Errorf("verify: %w", err)
		}
		if !ok {
			return fmt.Errorf("verify: re-encoded stream does not match the input byte-for-byte")
		}
		logger.Printf("%s: verify ok (re-encode matches input byte-for-byte)", arg)
	}
	return nil
}

// verifyRoundTrip decodes plain into an in-memory tree, re-encodes that
// tree with a fresh FieldEncoder, and reports whether the result matches
// plain byte-for-byte. It reads plain through its own decoder instance, not
// the one processFile already advanced for the trace/digest output above.
func verifyRoundTrip(plain []byte, cfg config) (bool, error) {
	fields := yajbe.NewFieldDecoderSized(cfg.FieldCapacity, cfg.ArenaCapacity)
	dec := yajbe.NewValueDecoder(yajbe.NewMemSource(plain), fields)
	tree, err := decodeNode(dec)
	if err != nil {
		return false, fmt.Errorf("decoding: %w", err)
	}

	var out bytes.Buffer
	sink := yajbe.NewWriterSink(&out)
	fe := yajbe.NewFieldEncoder(cfg.FieldCapacity)
	enc := yajbe.NewValueEncoder(sink, fe)
	if err := encodeNode(enc, tree); err != nil {
		return false, fmt.Errorf("re-encoding: %w", err)
	}

	return bytes.Equal(out.Bytes(), plain), nil
}

// nodeKind distinguishes the shape of a decoded value tree node. It exists
// only to drive verifyRoundTrip's re-encode and is unrelated to yajbe.Kind.
type nodeKind int

const (
	nodeNull nodeKind = iota
	nodeBool
	nodeInt
	nodeFloat32
	nodeFloat64
	nodeString
	nodeBytes
	nodeArray
	nodeObject
)

// node is a fully materialised YAJBE value, including whether each
// array/object was encoded in streamed (unknown-length) or fixed form, so
// re-encoding it reproduces the original framing choice exactly.
type node struct {
	kind     nodeKind
	b        bool
	i        int64
	f32      float32
	f64      float64
	s        string
	by       []byte
	streamed bool
	items    []node
	names    []string
	values   []node
}

// decodeNode reads the next token from dec (calling Next itself) and
// materialises it, recursing into arrays and objects.
func decodeNode(dec *yajbe.ValueDecoder) (node, error) {
	if err := dec.Next(); err != nil {
		return node{}, err
	}
	return decodeCurrentNode(dec)
}

// decodeCurrentNode materialises the token dec.Next already classified,
// without reading another head byte itself.
func decodeCurrentNode(dec *yajbe.ValueDecoder) (node, error) {
	switch dec.Kind() {
	case yajbe.KindNull:
		return node{kind: nodeNull}, nil
	case yajbe.KindTrue, yajbe.KindFalse:
		v, err := dec.DecodeBool()
		if err != nil {
			return node{}, err
		}
		return node{kind: nodeBool, b: v}, nil
	case yajbe.KindIntSmall, yajbe.KindIntPositive, yajbe.KindIntNegative:
		v, err := dec.DecodeInt()
		if err != nil {
			return node{}, err
		}
		return node{kind: nodeInt, i: v}, nil
	case yajbe.KindFloat32:
		v, err := dec.DecodeFloat32()
		if err != nil {
			return node{}, err
		}
		return node{kind: nodeFloat32, f32: v}, nil
	case yajbe.KindFloat64:
		v, err := dec.DecodeFloat64()
		if err != nil {
			return node{}, err
		}
		return node{kind: nodeFloat64, f64: v}, nil
	case yajbe.KindSmallString, yajbe.KindString:
		v, err := dec.DecodeString()
		if err != nil {
			return node{}, err
		}
		return node{kind: nodeString, s: v}, nil
	case yajbe.KindSmallBytes, yajbe.KindBytes:
		buf := make([]byte, dec.Len())
		if err := dec.DecodeBytes(buf); err != nil {
			return node{}, err
		}
		return node{kind: nodeBytes, by: buf}, nil
	case yajbe.KindArray, yajbe.KindArrayEOF:
		return decodeArrayNode(dec)
	case yajbe.KindObject, yajbe.KindObjectEOF:
		return decodeObjectNode(dec)
	default:
		return node{}, fmt.Errorf("unexpected top-level token kind %s", dec.Kind())
	}
}

func decodeArrayNode(dec *yajbe.ValueDecoder) (node, error) {
	n := node{kind: nodeArray, streamed: dec.IsUnknownLen()}
	if n.streamed {
		for {
			_, end, err := dec.NextInContainer()
			if err != nil {
				return node{}, err
			}
			if end {
				break
			}
			item, err := decodeCurrentNode(dec)
			if err != nil {
				return node{}, err
			}
			n.items = append(n.items, item)
		}
		return n, nil
	}
	count := dec.Len()
	n.items = make([]node, 0, count)
	for i := uint64(0); i < count; i++ {
		item, err := decodeNode(dec)
		if err != nil {
			return node{}, err
		}
		n.items = append(n.items, item)
	}
	return n, nil
}

func decodeObjectNode(dec *yajbe.ValueDecoder) (node, error) {
	n := node{kind: nodeObject, streamed: dec.IsUnknownLen()}
	if n.streamed {
		for {
			key, end, err := dec.NextFieldOrEnd()
			if err != nil {
				return node{}, err
			}
			if end {
				break
			}
			value, err := decodeNode(dec)
			if err != nil {
				return node{}, err
			}
			n.names = append(n.names, string(key))
			n.values = append(n.values, value)
		}
		return n, nil
	}
	count := dec.Len()
	n.names = make([]string, 0, count)
	n.values = make([]node, 0, count)
	for i := uint64(0); i < count; i++ {
		key, err := dec.FieldString()
		if err != nil {
			return node{}, err
		}
		value, err := decodeNode(dec)
		if err != nil {
			return node{}, err
		}
		n.names = append(n.names, key)
		n.values = append(n.values, value)
	}
	return n, nil
}

// encodeNode writes n back out, reproducing its original streamed/fixed
// framing exactly.
func encodeNode(enc *yajbe.ValueEncoder, n node) error {
	switch n.kind {
	case nodeNull:
		return enc.EncodeNull()
	case nodeBool:
		return enc.EncodeBool(n.b)
	case nodeInt:
		return enc.EncodeInt(n.i)
	case nodeFloat32:
		return enc.EncodeFloat32(n.f32)
	case nodeFloat64:
		return enc.EncodeFloat64(n.f64)
	case nodeString:
		return enc.EncodeString(n.s)
	case nodeBytes:
		return enc.EncodeBytes(n.by)
	case nodeArray:
		if n.streamed {
			if err := enc.BeginStreamedArray(); err != nil {
				return err
			}
			for _, item := range n.items {
				if err := encodeNode(enc, item); err != nil {
					return err
				}
			}
			return enc.EndStreamed()
		}
		if err := enc.BeginArray(len(n.items)); err != nil {
			return err
		}
		for _, item := range n.items {
			if err := encodeNode(enc, item); err != nil {
				return err
			}
		}
		return nil
	case nodeObject:
		if n.streamed {
			if err := enc.BeginStreamedObject(); err != nil {
				return err
			}
			for i, name := range n.names {
				if err := enc.EncodeFieldString(name); err != nil {
					return err
				}
				if err := encodeNode(enc, n.values[i]); err != nil {
					return err
				}
			}
			return enc.EndStreamed()
		}
		if err := enc.BeginObject(len(n.names)); err != nil {
			return err
		}
		for i, name := range n.names {
			if err := enc.EncodeFieldString(name); err != nil {
				return err
			}
			if err := encodeNode(enc, n.values[i]); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unreachable node kind %d", n.kind)
	}
}

// dumpNext reads the next token and writes its pseudo-JSON rendering to w,
// recursing into arrays/objects. indent is the current nesting depth; it is
// passed down the recursion but does not change the output, which is
// written on a single line.
func dumpNext(dec *yajbe.ValueDecoder, w io.Writer, indent int) error {
	if err := dec.Next(); err != nil {
		return err
	}
	return dumpCurrent(dec, w, indent)
}

func dumpCurrent(dec *yajbe.ValueDecoder, w io.Writer, indent int) error {
	switch dec.Kind() {
	case yajbe.KindNull:
		fmt.Fprint(w, "null")
	case yajbe.KindTrue, yajbe.KindFalse:
		v, err := dec.DecodeBool()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%t", v)
	case yajbe.KindIntSmall, yajbe.KindIntPositive, yajbe.KindIntNegative:
		v, err := dec.DecodeInt()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d", v)
	case yajbe.KindFloat32:
		v, err := dec.DecodeFloat32()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%v", v)
	case yajbe.KindFloat64:
		v, err := dec.DecodeFloat64()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%v", v)
	case yajbe.KindSmallString, yajbe.KindString:
		v, err := dec.DecodeString()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%q", v)
	case yajbe.KindSmallBytes, yajbe.KindBytes:
		buf := make([]byte, dec.Len())
		if err := dec.DecodeBytes(buf); err != nil {
			return err
		}
		fmt.Fprintf(w, "<%x>", buf)
	case yajbe.KindArray, yajbe.KindArrayEOF:
		return dumpArray(dec, w, indent)
	case yajbe.KindObject, yajbe.KindObjectEOF:
		return dumpObject(dec, w, indent)
	default:
		return fmt.Errorf("unexpected top-level token kind %s", dec.Kind())
	}
	return nil
}

func dumpArray(dec *yajbe.ValueDecoder, w io.Writer, indent int) error {
	fmt.Fprint(w, "[")
	if dec.IsUnknownLen() {
		first := true
		for {
			_, end, err := dec.NextInContainer()
			if err != nil {
				return err
			}
			if end {
				break
			}
			if !first {
				fmt.Fprint(w, ", ")
			}
			first = false
			if err := dumpCurrent(dec, w, indent+1); err != nil {
				return err
			}
		}
	} else {
		n := dec.Len()
		for i := uint64(0); i < n; i++ {
			if i > 0 {
				fmt.Fprint(w, ", ")
			}
			if err := dumpNext(dec, w, indent+1); err != nil {
				return err
			}
		}
	}
	fmt.Fprint(w, "]")
	return nil
}

func dumpObject(dec *yajbe.ValueDecoder, w io.Writer, indent int) error {
	fmt.Fprint(w, "{")
	writeField := func(i int) error {
		if i > 0 {
			fmt.Fprint(w, ", ")
		}
		key, err := dec.FieldString()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%q: ", key)
		return dumpNext(dec, w, indent+1)
	}

	if dec.IsUnknownLen() {
		i := 0
		for {
			key, end, err := dec.NextFieldOrEnd()
			if err != nil {
				return err
			}
			if end {
				break
			}
			if i > 0 {
				fmt.Fprint(w, ", ")
			}
			fmt.Fprintf(w, "%q: ", key)
			if err := dumpNext(dec, w, indent+1); err != nil {
				return err
			}
			i++
		}
	} else {
		n := dec.Len()
		for i := uint64(0); i < n; i++ {
			if err := writeField(int(i)); err != nil {
				return err
			}
		}
	}
	fmt.Fprint(w, "}")
	return nil
}
