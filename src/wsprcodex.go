package wsprcodex

/*------------------------------------------------------------------
 *
 * Purpose:   	Command line front end for the codec.
 *
 * Description:	wsprcodex <command> [options] [args]
 *
 *		encode		Payload -> WSPR messages, one per line.
 *		decode		WSPR messages -> payload.
 *		inspect		Show what each message carries.
 *		capacity	Limits of one message and of a set.
 *		serve		HTTP codec service.
 *		version
 *
 *		Message lists are plain text, "CALLSG GRID POWER"
 *		per line, with blank lines and # comments ignored,
 *		so encode output can be piped straight into decode.
 *
 *---------------------------------------------------------------*/

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lestrrat-go/strftime"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// errUsage means usage has already been shown, nothing more to print.
var errUsage = errors.New("usage")

func WSPRCodexMain() {
	var err = WSPRCodex(os.Args[1:])

	switch {
	case err == nil, errors.Is(err, pflag.ErrHelp):
		return
	case errors.Is(err, errUsage):
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "wsprcodex: %s\n", err)
		os.Exit(1)
	}
}

// WSPRCodex runs one command.  args excludes the program name.
func WSPRCodex(args []string) error {
	if len(args) == 0 {
		usage()
		return errUsage
	}

	var command, rest = args[0], args[1:]

	switch command {
	case "encode":
		return encodeCommand(rest)
	case "decode":
		return decodeCommand(rest)
	case "inspect":
		return inspectCommand(rest)
	case "capacity":
		return capacityCommand(rest)
	case "serve":
		return serveCommand(rest)
	case "version":
		return versionCommand(rest)
	case "help", "-h", "--help":
		usage()
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", command)
		usage()

		return errUsage
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "wsprcodex - Carry arbitrary data in WSPR messages.\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "\twsprcodex encode [options] [text]\n")
	fmt.Fprintf(os.Stderr, "\twsprcodex decode [options] [file|-]\n")
	fmt.Fprintf(os.Stderr, "\twsprcodex inspect [options] [file|-]\n")
	fmt.Fprintf(os.Stderr, "\twsprcodex capacity\n")
	fmt.Fprintf(os.Stderr, "\twsprcodex serve [options]\n")
	fmt.Fprintf(os.Stderr, "\twsprcodex version [-v]\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "Use \"wsprcodex <command> --help\" for the options of a command.\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "Example:\n")
	fmt.Fprintf(os.Stderr, "\twsprcodex encode 'Hello, world' | wsprcodex decode\n")
}

/* Options every command that does real work takes. */

type commonOptions struct {
	configPath *string
	logLevel   *string
	debug      *bool
}

func newFlagSet(name string, synopsis string) (*pflag.FlagSet, commonOptions) {
	var fs = pflag.NewFlagSet(name, pflag.ContinueOnError)

	var opts = commonOptions{
		configPath: fs.StringP("config", "c", "", "Configuration file.  Default is to search for wsprcodex.yaml."),
		logLevel:   fs.String("log-level", "", "debug, info, warn or error.  Overrides the configuration file."),
		debug:      fs.BoolP("debug", "d", false, "Same as --log-level=debug."),
	}

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n\twsprcodex %s %s\n\n", name, synopsis)
		fs.PrintDefaults()
	}

	return fs, opts
}

// load reads the configuration and applies the logging options.
func (o commonOptions) load() (Config, error) {
	var cfg, path, err = LoadConfig(*o.configPath)
	if err != nil {
		return cfg, err
	}

	var level = cfg.LogLevel
	if *o.logLevel != "" {
		level = *o.logLevel
	}

	if *o.debug {
		level = "debug"
	}

	var levelErr = SetLogLevel(level)
	if levelErr != nil {
		return cfg, fmt.Errorf("log level %q: %w", level, levelErr)
	}

	if path != "" {
		logger.Debug("read configuration", "file", path)
	}

	return cfg, nil
}

// readInput reads the named file, or stdin for none or "-".
func readInput(args []string) ([]byte, error) {
	switch {
	case len(args) > 1:
		return nil, fmt.Errorf("expected at most one input file, got %d", len(args))
	case len(args) == 0 || args[0] == "-":
		return io.ReadAll(os.Stdin)
	default:
		return os.ReadFile(args[0])
	}
}

// messageSet is the YAML form of encode output.
type messageSet struct {
	MessageID byte      `yaml:"message_id"`
	Mode      string    `yaml:"mode"`
	Bytes     int       `yaml:"bytes"`
	Messages  []Message `yaml:"messages"`
}

func parseMessageInput(input []byte, fromYAML bool) ([]Message, error) {
	if !fromYAML {
		return ParseMessages(string(input))
	}

	var set messageSet

	var err = yaml.Unmarshal(input, &set)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormatInvalid, err)
	}

	for i, m := range set.Messages {
		m.Callsign = strings.ToUpper(m.Callsign)
		m.GridSquare = strings.ToUpper(m.GridSquare)

		var validateErr = m.Validate()
		if validateErr != nil {
			return nil, fmt.Errorf("message %d: %w", i, validateErr)
		}

		set.Messages[i] = m
	}

	return set.Messages, nil
}

/*------------------------------------------------------------------
 *
 * Name:	encodeCommand
 *
 * Purpose:	Payload from the command line, a file or stdin, out as
 *		a message set.
 *
 * Description:	Writes a "# message id ..." comment line first so
 *		the output is still valid decode input.
 *		With --mqtt, the set is also published for a
 *		transmitter to pick up.
 *
 *------------------------------------------------------------------*/

func encodeCommand(args []string) error {
	var fs, common = newFlagSet("encode", "[options] [text]")

	var id = fs.IntP("id", "i", 0, "Message id, 0-255.  Random if not given.")
	var hexInput = fs.BoolP("hex", "x", false, "Input is hexadecimal.  Spaces are ignored.")
	var file = fs.StringP("file", "f", "", "Read the payload from a file, - for stdin, instead of the command line.")
	var publish = fs.BoolP("mqtt", "m", false, "Also publish the messages to the MQTT broker.")
	var broker = fs.String("broker", "", "MQTT broker, e.g. tcp://localhost:1883.  Overrides the configuration file.")
	var timestampFormat = fs.StringP("timestamp-format", "T", "", "Precede each message with 'strftime' format time stamp.")
	var asYAML = fs.Bool("yaml", false, "Write the message set as YAML.")

	var err = fs.Parse(args)
	if err != nil {
		return err
	}

	var cfg, cfgErr = common.load()
	if cfgErr != nil {
		return cfgErr
	}

	var data []byte
	if *file != "" {
		if len(fs.Args()) > 0 {
			return errors.New("give the payload as text or --file, not both")
		}

		data, err = readInput([]string{*file})
		if err != nil {
			return err
		}
	} else {
		data = []byte(strings.Join(fs.Args(), " "))
	}

	if *hexInput {
		data, err = hex.DecodeString(strings.Join(strings.Fields(string(data)), ""))
		if err != nil {
			return fmt.Errorf("%w: hex input: %w", ErrFormatInvalid, err)
		}
	}

	var codec = NewMultiMessageCodec()

	var messageID byte
	if fs.Changed("id") {
		if *id < 0 || *id > 255 {
			return fmt.Errorf("%w: message id must be 0-255, got %d", ErrFormatInvalid, *id)
		}

		messageID = byte(*id)
	} else if len(data) > 0 {
		messageID, err = codec.RandomMessageID()
		if err != nil {
			return err
		}
	}

	var messages, encErr = codec.EncodeWithID(data, messageID)
	if encErr != nil {
		return encErr
	}

	var format = cfg.TimestampFormat
	if fs.Changed("timestamp-format") {
		format = *timestampFormat
	}

	if *asYAML {
		var out, yamlErr = yaml.Marshal(messageSet{
			MessageID: messageID,
			Mode:      ModeFor(len(data)).String(),
			Bytes:     len(data),
			Messages:  messages,
		})
		if yamlErr != nil {
			return yamlErr
		}

		fmt.Print(string(out))
	} else {
		var printErr = printMessages(messageID, len(data), messages, format, time.Now())
		if printErr != nil {
			return printErr
		}
	}

	if *publish {
		var mqttConfig = cfg.MQTT
		if *broker != "" {
			mqttConfig.Broker = *broker
		}

		var publisher, mqttErr = NewMQTTPublisher(mqttConfig)
		if mqttErr != nil {
			return mqttErr
		}
		defer publisher.Close()

		return publisher.Publish(messageID, messages)
	}

	return nil
}

func printMessages(messageID byte, size int, messages []Message, format string, now time.Time) error {
	fmt.Printf("# message id 0x%02x, %d bytes, %s mode, %d %s\n",
		messageID, size, ModeFor(size), len(messages), IfThenElse(len(messages) == 1, "message", "messages"))

	var prefix string
	if format != "" {
		var formatted, err = strftime.Format(format, now)
		if err != nil {
			return fmt.Errorf("timestamp format %q: %w", format, err)
		}

		prefix = "[" + formatted + "] "
	}

	for _, m := range messages {
		fmt.Printf("%s%s\n", prefix, m)
	}

	return nil
}

func decodeCommand(args []string) error {
	var fs, common = newFlagSet("decode", "[options] [file|-]")

	var modeName = fs.String("mode", "", "basic or extended.  Worked out from the messages if not given.")
	var hexOutput = fs.BoolP("hex", "x", false, "Write the payload in hexadecimal.")
	var fromYAML = fs.Bool("yaml", false, "Input is the YAML written by encode --yaml.")

	var err = fs.Parse(args)
	if err != nil {
		return err
	}

	_, err = common.load()
	if err != nil {
		return err
	}

	var input, readErr = readInput(fs.Args())
	if readErr != nil {
		return readErr
	}

	var messages, parseErr = parseMessageInput(input, *fromYAML)
	if parseErr != nil {
		return parseErr
	}

	var codec = NewMultiMessageCodec()

	var data []byte
	if *modeName == "" {
		data, err = codec.Decode(messages)
	} else {
		var mode, modeErr = ParseMode(*modeName)
		if modeErr != nil {
			return modeErr
		}

		data, err = codec.DecodeWithMode(messages, mode)
	}

	if err != nil {
		return err
	}

	if *hexOutput {
		fmt.Println(hex.EncodeToString(data))
		return nil
	}

	var _, writeErr = os.Stdout.Write(data)

	return writeErr
}

/*------------------------------------------------------------------
 *
 * Name:	inspectCommand
 *
 * Purpose:	Explain a message set, one message at a time, without
 *		giving up at the first problem.
 *
 * Description:	For each message: frame header, raw payload and where
 *		its grid square is.  Then whether the set is complete.
 *
 *------------------------------------------------------------------*/

func inspectCommand(args []string) error {
	var fs, common = newFlagSet("inspect", "[options] [file|-]")

	var modeName = fs.String("mode", "", "basic or extended.  Worked out from the messages if not given.")
	var fromYAML = fs.Bool("yaml", false, "Input is the YAML written by encode --yaml.")

	var err = fs.Parse(args)
	if err != nil {
		return err
	}

	_, err = common.load()
	if err != nil {
		return err
	}

	var input, readErr = readInput(fs.Args())
	if readErr != nil {
		return readErr
	}

	var messages, parseErr = parseMessageInput(input, *fromYAML)
	if parseErr != nil {
		return parseErr
	}

	if len(messages) == 0 {
		return fmt.Errorf("%w: no messages", ErrEmptyInput)
	}

	var blocks = make([][]byte, len(messages))
	var good [][]byte

	for i, m := range messages {
		var block, blockErr = MessageBlock(m)
		if blockErr != nil {
			logger.Debug("not a frame", "message", m, "err", blockErr)
			continue
		}

		blocks[i] = block
		good = append(good, block)
	}

	var mode = DetectMode(good)
	if *modeName != "" {
		mode, err = ParseMode(*modeName)
		if err != nil {
			return err
		}
	}

	fmt.Printf("%d %s, %s mode\n", len(messages), IfThenElse(len(messages) == 1, "message", "messages"), mode)

	var chunks []Chunk

	for i, m := range messages {
		fmt.Printf("\n%3d  %s\n", i, m)

		if blocks[i] == nil {
			fmt.Printf("     Not a frame: value is too large.\n")
			continue
		}

		var c, frameErr = ParseFrame(blocks[i], mode)
		if frameErr != nil {
			fmt.Printf("     %s\n", frameErr)
			continue
		}

		chunks = append(chunks, c)

		fmt.Printf("     message id 0x%02x, chunk %d of %d, payload %s\n", c.MessageID, c.Sequence+1, c.Total, hex.EncodeToString(c.Payload))

		var where, gridErr = DescribeGrid(m.GridSquare)
		if gridErr == nil {
			fmt.Printf("     %s\n", where)
		}
	}

	fmt.Printf("\n")

	var validateErr = ValidateChunks(chunks)
	if validateErr != nil {
		fmt.Printf("%s\n", validateErr)
		return nil
	}

	fmt.Printf("Complete set.\n")

	return nil
}

func capacityCommand(args []string) error {
	var fs, common = newFlagSet("capacity", "")

	var err = fs.Parse(args)
	if err != nil {
		return err
	}

	_, err = common.load()
	if err != nil {
		return err
	}

	var capacity = WSPRCapacity()

	fmt.Printf("Message capacity: %s (%d bits)\n", capacity, capacity.BitLen())
	fmt.Printf("Max payload bytes per message: %d\n", MaxPayloadBytes())
	fmt.Printf("Basic mode: %d bytes per message, up to %d messages, %d bytes\n", BasicPayloadBytes, BasicMaxChunks, BasicMaxPayload)
	fmt.Printf("Extended mode: %d bytes per message, up to %d messages, %d bytes\n", ExtendedPayloadBytes, ExtendedMaxChunks, ExtendedMaxPayload)

	return nil
}

func serveCommand(args []string) error {
	var fs, common = newFlagSet("serve", "[options]")

	var listen = fs.StringP("listen", "l", "", "Address to listen on, e.g. :8073.  Overrides the configuration file.")
	var announce = fs.Bool("dns-sd", false, "Announce the service with DNS-SD.  Overrides the configuration file.")
	var announceName = fs.String("dns-sd-name", "", "DNS-SD service name.  Default \"wsprcodex on <hostname>\".")

	var err = fs.Parse(args)
	if err != nil {
		return err
	}

	var cfg, cfgErr = common.load()
	if cfgErr != nil {
		return cfgErr
	}

	if *listen != "" {
		cfg.Server.Listen = *listen
	}

	if fs.Changed("dns-sd") {
		cfg.Server.DNSSD = *announce
	}

	if *announceName != "" {
		cfg.Server.DNSSDName = *announceName
	}

	var ctx, stop = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var server = NewServer(NewMultiMessageCodec(), NewMetrics())

	return server.ListenAndServe(ctx, cfg.Server.Listen, func(addr net.Addr) {
		fmt.Printf("Listening on %s\n", addr)

		var tcpAddr, ok = addr.(*net.TCPAddr)
		if cfg.Server.DNSSD && ok {
			dnsSDAnnounce(ctx, cfg.Server.DNSSDName, tcpAddr.Port)
		}
	})
}

func versionCommand(args []string) error {
	var fs = pflag.NewFlagSet("version", pflag.ContinueOnError)

	var verbose = fs.BoolP("verbose", "v", false, "Include build information.")

	var err = fs.Parse(args)
	if err != nil {
		return err
	}

	printVersion(*verbose)

	return nil
}
