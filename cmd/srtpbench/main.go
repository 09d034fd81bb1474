// Command srtpbench reports which primitive backend this core's
// algorithm-agility layer elects on the current host, and how fast it runs.
// Grounded on the teacher's internal/aes/bench/main.go, generalized from a
// single hardcoded AES-128 timing loop to the full primitive.Algorithm set
// and the real election path (internal/primitive.Elected/CreateBlockCipher)
// instead of a standalone timer.
package main

import (
	"crypto/rand"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	flag "github.com/spf13/pflag"

	"github.com/lanikai/srtp/internal/primitive"
)

var (
	flagDuration time.Duration
	flagPayload  int
	flagPrefer   string
	flagHelp     bool
)

func init() {
	flag.DurationVarP(&flagDuration, "duration", "d", 3*time.Second, "How long to run each algorithm's timing loop")
	flag.IntVarP(&flagPayload, "payload", "p", 1280, "Payload size in bytes")
	flag.StringVarP(&flagPrefer, "prefer", "", "", "AES-128 provider name to prefer on election ties (e.g. nettle)")
	flag.BoolVarP(&flagHelp, "help", "h", false, "Print usage information and exit")
}

const helpString = `srtpbench: report and time this core's elected primitive backends

Usage: srtpbench [OPTION]...

  -d, --duration=DUR    Timing loop duration per algorithm (default: 3s)
  -p, --payload=NUM     Payload size in bytes (default: 1280)
      --prefer=NAME     AES-128 provider name to prefer on election ties
  -h, --help            Print this message and exit`

func main() {
	flag.Parse()

	if flagHelp {
		fmt.Println(helpString)
		os.Exit(0)
	}

	if flagPrefer != "" {
		primitive.SetAESProviderPreference(flagPrefer)
	}

	heading := color.New(color.FgCyan, color.Bold)
	ok := color.New(color.FgGreen)
	warn := color.New(color.FgYellow)

	for _, algorithm := range []primitive.Algorithm{primitive.AES128, primitive.Twofish128} {
		heading.Printf("%s\n", algorithm)

		name, err := primitive.Elected(algorithm)
		if err != nil {
			warn.Printf("  no backend available: %v\n", err)
			continue
		}

		rate, err := timeElected(algorithm, flagPayload, flagDuration)
		if err != nil {
			warn.Printf("  elected %q but timing run failed: %v\n", name, err)
			continue
		}
		ok.Printf("  elected %q: %.2f MB/s\n", name, rate)
	}
}

// timeElected keys the currently elected backend for algorithm and measures
// its counter-mode-style raw block throughput over duration.
func timeElected(algorithm primitive.Algorithm, payloadSize int, duration time.Duration) (float32, error) {
	block, err := primitive.CreateBlockCipher(algorithm)
	if err != nil {
		return 0, err
	}

	key := make([]byte, 16)
	if _, err := rand.Read(key); err != nil {
		return 0, err
	}
	if err := block.Init(key, true); err != nil {
		return 0, err
	}

	payload := make([]byte, payloadSize)
	out := make([]byte, block.BlockSize())

	start := time.Now()
	bytesProcessed := 0
	for time.Since(start) < duration {
		for off := 0; off+block.BlockSize() <= len(payload); off += block.BlockSize() {
			block.ProcessBlock(out, payload[off:off+block.BlockSize()])
			bytesProcessed += block.BlockSize()
		}
	}

	elapsed := time.Since(start)
	return float32(bytesProcessed) / (1024 * 1024) / float32(elapsed.Seconds()), nil
}
