package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/callshot/callshot/internal/config"
	"github.com/callshot/callshot/internal/logger"
	"github.com/callshot/callshot/pkg/capture"
)

var replayCmd = &cobra.Command{
	Use:   "replay <events.jsonl>",
	Short: "Replay a recorded enter/leave event log through the capture engine",
	Long: `Replay reads a JSONL file of recorded enter/leave events and feeds
them through the capture engine, one goroutine per thread key, producing the
same dot files a live instrumented run would. Each line is an object:

  {"thread":"worker-1","op":"enter","class":"com.example.OrderService","method":"placeOrder"}
  {"thread":"worker-1","op":"leave"}`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
}

// replayEvent is one recorded instrumentation callback.
type replayEvent struct {
	Thread string `json:"thread"`
	Op     string `json:"op"` // enter or leave
	Class  string `json:"class,omitempty"`
	Method string `json:"method,omitempty"`
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logCfg := logger.Config{
		Level:   cfg.Logging.Level,
		File:    cfg.Logging.File,
		Console: cfg.Logging.Console,
		Pretty:  cfg.Logging.Pretty,
	}
	if logLevel != "" {
		logCfg.Level = logLevel
	}
	diag, err := logger.New(logCfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer diag.Close()

	engine, err := capture.New(capture.Config{
		Trigger:        cfg.Trigger,
		CaptureRoot:    cfg.CaptureRoot,
		FullClassNames: cfg.FullClassNames,
	}, capture.WithLogger(diag.GetZerolog()))
	if err != nil {
		return err
	}

	threads, order, err := loadEvents(args[0], diag)
	if err != nil {
		return err
	}

	// One goroutine per thread key, preserving each thread's event order
	var wg sync.WaitGroup
	for _, key := range order {
		events := threads[key]
		wg.Add(1)
		go func(key string, events []replayEvent) {
			defer wg.Done()

			probe := engine.Probe()
			for _, ev := range events {
				switch ev.Op {
				case "enter":
					if err := probe.Enter(ev.Class, ev.Method); err != nil {
						diag.Error().Err(err).Str("thread", key).Msg("Replay enter failed")
					}
				case "leave":
					probe.Leave()
				}
			}
			// A log that ends mid-session gets its file closed cleanly
			probe.Abort()
		}(key, events)
	}
	wg.Wait()

	diag.Info().Int("threads", len(threads)).Msg("Replay finished")
	return nil
}

// loadEvents reads the event log and groups events by thread key, keeping
// per-thread order. Malformed lines are skipped with a warning, matching how
// a live run tolerates a broken instrumentation layer.
func loadEvents(path string, diag *logger.Logger) (map[string][]replayEvent, []string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open event log: %w", err)
	}
	defer file.Close()

	threads := make(map[string][]replayEvent)
	var order []string

	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if line == "" {
			continue
		}

		var ev replayEvent
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			diag.Warn().Int("line", lineNum).Err(err).Msg("Failed to parse event, skipping")
			continue
		}
		if ev.Op != "enter" && ev.Op != "leave" {
			diag.Warn().Int("line", lineNum).Str("op", ev.Op).Msg("Unknown event op, skipping")
			continue
		}

		if _, seen := threads[ev.Thread]; !seen {
			order = append(order, ev.Thread)
		}
		threads[ev.Thread] = append(threads[ev.Thread], ev)
	}

	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read event log: %w", err)
	}

	return threads, order, nil
}
