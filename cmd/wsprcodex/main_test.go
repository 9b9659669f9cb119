package main

import (
	"os"
	"testing"

	wsprcodex "github.com/doismellburning/wsprcodex/src"
)

func Example_main() {
	os.Args = []string{"wsprcodex", "capacity", "--config", os.DevNull}

	main()
	// Output:
	// Message capacity: 1340027206041600 (51 bits)
	// Max payload bytes per message: 6
	// Basic mode: 4 bytes per message, up to 16 messages, 64 bytes
	// Extended mode: 3 bytes per message, up to 256 messages, 768 bytes
}

func Test_Encode(t *testing.T) {
	os.Args = []string{"wsprcodex", "encode", "--config", os.DevNull, "--id", "42", "Hello"}

	wsprcodex.AssertOutputContains(t, main, "# message id 0x2a, 5 bytes, basic mode, 2 messages")
}
