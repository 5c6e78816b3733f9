package cmd

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"firestige.xyz/wiretap/internal/binutil"
	"firestige.xyz/wiretap/internal/config"
	"firestige.xyz/wiretap/internal/core"
	"firestige.xyz/wiretap/internal/hooks"
	"firestige.xyz/wiretap/internal/intercept"
	"firestige.xyz/wiretap/internal/log"
	"firestige.xyz/wiretap/internal/wire"
)

var replayCmd = &cobra.Command{
	Use:   "replay <dump-file>",
	Short: "Replay a capture dump through the interception engine",
	Long: `Replay feeds a capture dump through a fully wired interceptor and prints
aggregate statistics.

Dump format: one frame per line, "send <hex>" or "recv <hex>". Blank lines
and lines starting with '#' are skipped. Hooks declared in the config file
are registered before replay starts.

Example:
  wiretap replay -c config.yml session.dump`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runReplayCommand(args[0])
	},
}

func runReplayCommand(dumpFile string) {
	cfg, err := config.Load(configFile)
	if err != nil {
		exitWithError("failed to load config", err)
	}
	if err := log.Init(cfg.Log); err != nil {
		exitWithError("failed to init logging", err)
	}

	interceptor, err := buildInterceptor(cfg)
	if err != nil {
		exitWithError("failed to build interceptor", err)
	}
	defer interceptor.Destroy()

	f, err := os.Open(dumpFile)
	if err != nil {
		exitWithError(fmt.Sprintf("failed to open dump %s", dumpFile), err)
	}
	defer f.Close()

	var lineNo int
	scanner := bufio.NewScanner(f)
	// A max-size frame is ~30 MiB of hex on one line.
	scanner.Buffer(make([]byte, 0, 64*1024), 2*(core.HeaderSize+core.MaxBodySize)+64)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		dir, buf, err := parseDumpLine(line)
		if err != nil {
			exitWithError(fmt.Sprintf("dump line %d", lineNo), err)
		}
		interceptor.Intercept(buf, dir)
	}
	if err := scanner.Err(); err != nil {
		exitWithError("failed to read dump", err)
	}

	printStats(interceptor.GetStats())
}

// buildInterceptor wires the configured hook chain into a fresh interceptor.
func buildInterceptor(cfg *config.Config) (*intercept.Interceptor, error) {
	codec := wire.NewCodec(cfg.Engine.SigningSecret)

	pipeline := hooks.NewPipeline()
	for _, hc := range cfg.Hooks {
		hook, err := hooks.Build(codec, hc.Action, hc.Config)
		if err != nil {
			return nil, err
		}
		if hc.Method == "" {
			pipeline.RegisterGlobalHook(hook)
			continue
		}
		if err := pipeline.RegisterMethodHook(hc.Method, hook); err != nil {
			return nil, err
		}
	}

	return intercept.New(intercept.Config{
		MaxPackets: cfg.Engine.MaxPackets,
		Verify:     cfg.Engine.VerifySignatures,
		Secret:     cfg.Engine.SigningSecret,
	}, pipeline)
}

// parseDumpLine splits "send <hex>" / "recv <hex>" into direction and bytes.
func parseDumpLine(line string) (core.Direction, []byte, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return "", nil, fmt.Errorf("want \"send|recv <hex>\", got %q", line)
	}
	var dir core.Direction
	switch fields[0] {
	case string(core.DirectionSend):
		dir = core.DirectionSend
	case string(core.DirectionRecv):
		dir = core.DirectionRecv
	default:
		return "", nil, fmt.Errorf("unknown direction %q", fields[0])
	}
	buf, err := binutil.HexToBytes(fields[1])
	if err != nil {
		return "", nil, err
	}
	return dir, buf, nil
}

func printStats(stats core.Stats) {
	fmt.Printf("Packets:        %d (%d send / %d recv)\n",
		stats.TotalPackets,
		stats.ByDirection[core.DirectionSend],
		stats.ByDirection[core.DirectionRecv])
	fmt.Printf("Bytes:          %d (avg %.1f per packet)\n", stats.TotalBytes, stats.AvgPacketSize)
	fmt.Printf("Decode errors:  %d\n", stats.DecodeErrors)
	fmt.Printf("Tampered:       %d\n", stats.TamperCount)

	if len(stats.ByMethod) > 0 {
		methods := make([]string, 0, len(stats.ByMethod))
		for m := range stats.ByMethod {
			methods = append(methods, m)
		}
		sort.Strings(methods)
		fmt.Println("By method:")
		for _, m := range methods {
			fmt.Printf("  %-12s %d\n", m, stats.ByMethod[m])
		}
	}
	if len(stats.ByStatus) > 0 {
		statuses := make([]int, 0, len(stats.ByStatus))
		for s := range stats.ByStatus {
			statuses = append(statuses, int(s))
		}
		sort.Ints(statuses)
		fmt.Println("By status:")
		for _, s := range statuses {
			fmt.Printf("  %-12d %d\n", s, stats.ByStatus[int16(s)])
		}
	}
}
