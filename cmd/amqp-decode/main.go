package main

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/maxpert/amqp-client-go/config"
	"github.com/maxpert/amqp-client-go/protocol"
	"github.com/maxpert/amqp-client-go/trace"
)

const version = "0.9.1"

func main() {
	// Define command-line flags
	var (
		mode           = flag.String("mode", "frame", "What the input is: frame, table or value")
		input          = flag.String("in", "", "Input file (defaults to stdin)")
		tracePath      = flag.String("trace", "", "Append decoded method frames to a CBOR trace file")
		showVersion    = flag.Bool("version", false, "Show version and exit")
		generateConfig = flag.String("generate-config", "", "Generate default config file and exit (e.g., client.yaml)")
	)

	flag.Parse()

	// Show version and exit
	if *showVersion {
		fmt.Printf("amqp-decode version %s\n", version)
		return
	}

	// Generate default config and exit
	if *generateConfig != "" {
		cfg := config.DefaultConfig()
		if err := cfg.Save(*generateConfig); err != nil {
			log.Fatalf("Failed to generate config file: %v", err)
		}
		fmt.Printf("Generated default configuration: %s\n", *generateConfig)
		return
	}

	data, err := readHexInput(*input, flag.Args())
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}
	if len(data) == 0 {
		log.Fatal("No input (pass hex as an argument, via --in, or on stdin)")
	}

	switch *mode {
	case "frame":
		err = decodeFrames(data, *tracePath)
	case "table":
		err = decodeTable(data)
	case "value":
		err = decodeValue(data)
	default:
		log.Fatalf("Unknown mode %q (want frame, table or value)", *mode)
	}
	if err != nil {
		log.Fatalf("Decode failed: %v", err)
	}
}

// readHexInput collects hex text from the argument list, a file or stdin
// and decodes it. Whitespace and "0x" prefixes are ignored.
func readHexInput(path string, args []string) ([]byte, error) {
	var text string
	switch {
	case len(args) > 0:
		text = strings.Join(args, "")
	case path != "":
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		text = string(raw)
	default:
		raw, err := io.ReadAll(bufio.NewReader(os.Stdin))
		if err != nil {
			return nil, err
		}
		text = string(raw)
	}

	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', ',':
			return -1
		}
		return r
	}, text)
	clean = strings.ReplaceAll(clean, "0x", "")
	return hex.DecodeString(clean)
}

func decodeFrames(data []byte, tracePath string) error {
	var recorder *trace.Recorder
	if tracePath != "" {
		var err error
		recorder, err = trace.NewFileRecorder(tracePath)
		if err != nil {
			return err
		}
		defer recorder.Close()
	}

	reader := bytes.NewReader(data)
	for i := 0; ; i++ {
		frame, err := protocol.ReadFrame(reader)
		if err == io.EOF {
			if i == 0 {
				return fmt.Errorf("no complete frames in input")
			}
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Printf("frame %d: type=%d channel=%d size=%d\n", i, frame.Type, frame.Channel, len(frame.Payload))
		if frame.Type != protocol.FrameMethod {
			continue
		}

		method, err := protocol.ParseMethodFrame(frame)
		if err != nil {
			return err
		}
		fmt.Printf("  method %s (class=%d method=%d)\n", method.Name(), method.ClassID, method.MethodID)

		if recorder != nil {
			if err := recorder.Record(method, nil); err != nil {
				return err
			}
		}
	}
}

func decodeTable(data []byte) error {
	table, offset, err := protocol.DecodeFieldTable(data, 0)
	if err != nil {
		return err
	}
	fmt.Printf("field table (%d bytes, %d entries)\n", offset, len(table))
	printTable(table, "  ")
	return nil
}

func decodeValue(data []byte) error {
	value, offset, err := protocol.DecodeFieldValue(data, 0)
	if err != nil {
		return err
	}
	fmt.Printf("field value (%d bytes)\n", offset)
	fmt.Printf("  %s\n", formatValue(value, "  "))
	return nil
}

func printTable(table protocol.Table, indent string) {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%s%s: %s\n", indent, k, formatValue(table[k], indent))
	}
}

func formatValue(value interface{}, indent string) string {
	switch v := value.(type) {
	case nil:
		return "void"
	case string:
		return fmt.Sprintf("%q", v)
	case []byte:
		return fmt.Sprintf("bytes(%s)", hex.EncodeToString(v))
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case protocol.Decimal:
		return fmt.Sprintf("decimal(%s)", v.String())
	case protocol.Table:
		var sb strings.Builder
		sb.WriteString("table{")
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(k + ": " + formatValue(v[k], indent))
		}
		sb.WriteString("}")
		return sb.String()
	case []interface{}:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = formatValue(item, indent)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return fmt.Sprintf("%v (%T)", v, v)
	}
}
