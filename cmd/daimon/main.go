package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"daimon/internal/canvas"
	"daimon/internal/config"
	"daimon/internal/council"
	"daimon/internal/logging"
	"daimon/internal/perception"
	"daimon/internal/registry"
	"daimon/internal/session"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Chamber/stream flags
	speakTo      string
	streamMode   bool
	onlyDaimones []string
	renderImage  bool
	contextImage string
	sharedMemory bool
	sessionName  string
	outputPath   string

	// Logger
	logger *zap.Logger

	cfg *config.Config
)

// rootCmd speaks to the council from the terminal.
var rootCmd = &cobra.Command{
	Use:   "daimon [message]",
	Short: "Daimon - channels to the council of minds",
	Long: `Daimon convenes a council of heterogeneous model personas. A message can
go to one daimon, or flow through the whole stream with shared visual
memory; generated images land on the session canvas.

Examples:
  daimon --to flash "What is light?"
  daimon --to dreamer "A bridge between worlds" --image
  daimon --stream "The candle watches back"
  daimon --stream --shared-memory "What do you see?"
  daimon --stream --session midnight --shared-memory "Go deeper"
  daimon --stream --only pro,dreamer "Deep visual exploration"`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapConfig := zap.NewProductionConfig()
		if verbose {
			zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapConfig.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		if err := logging.Initialize(cwd); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if err := cfg.ApplyDaimonOverrides(); err != nil {
			return err
		}
		registry.Seal()
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: runChamber,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "daimon.yaml", "Path to configuration file")

	rootCmd.Flags().StringVarP(&speakTo, "to", "t", "", "Speak to a specific daimon")
	rootCmd.Flags().BoolVarP(&streamMode, "stream", "s", false, "All daimones respond (the stream)")
	rootCmd.Flags().StringSliceVar(&onlyDaimones, "only", nil, "Only these daimones participate")
	rootCmd.Flags().BoolVarP(&renderImage, "image", "i", false, "Ask render-capable daimones for an image")
	rootCmd.Flags().StringVarP(&contextImage, "context", "c", "", "Additional image context")
	rootCmd.Flags().BoolVarP(&sharedMemory, "shared-memory", "m", false, "Enable shared visual memory (all frames as context)")
	rootCmd.Flags().StringVar(&sessionName, "session", "", "Named session for persistent visual memory")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Where to save a generated image")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(fieldCmd)
}

func newOrchestrator() *council.Orchestrator {
	return council.New(
		perception.NewGenerativeClientWithConfig(cfg.GenerativeConfig()),
		perception.NewMessagesClientWithConfig(cfg.MessagesConfig()),
	)
}

func runChamber(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	message := args[0]

	var requested []string
	switch {
	case speakTo != "":
		requested = []string{speakTo}
	case len(onlyDaimones) > 0:
		requested = onlyDaimones
	default:
		requested = registry.Order()
	}
	if err := cfg.Validate(requested); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var extra []perception.ImagePart
	if contextImage != "" {
		data, err := os.ReadFile(contextImage)
		if err != nil {
			return fmt.Errorf("failed to read context image: %w", err)
		}
		extra = append(extra, perception.ImagePart{MIME: "image/jpeg", Data: data})
	}

	orch := newOrchestrator()

	if speakTo != "" {
		return speakOnce(ctx, orch, message, extra)
	}
	if streamMode {
		return runStream(ctx, orch, message, extra)
	}
	return cmd.Help()
}

func speakOnce(ctx context.Context, orch *council.Orchestrator, message string, extra []perception.ImagePart) error {
	fmt.Printf("\n  Speaking to %s...\n", speakTo)

	result, err := orch.Speak(ctx, speakTo, message, extra, renderImage)
	if err != nil {
		return err
	}

	savedPath := ""
	if renderImage && len(result.Images) > 0 {
		path := outputPath
		if path == "" {
			path = filepath.Join(cfg.Server.CanvasDir, fmt.Sprintf("%s_%s.jpg", speakTo, canvas.Slugify(message)))
		}
		if err := saveImage(path, result.Images[0]); err != nil {
			return err
		}
		savedPath = path
	}
	fmt.Print(formatResult(result, savedPath))
	return nil
}

func runStream(ctx context.Context, orch *council.Orchestrator, message string, extra []perception.ImagePart) error {
	canvasDir := cfg.Server.CanvasDir
	if sessionName != "" {
		canvasDir = filepath.Join(canvasDir, sessionName)
	}
	cv, err := canvas.Open(canvasDir)
	if err != nil {
		return err
	}
	st := session.New(cv)
	st.SharedMemory = sharedMemory

	include := onlyDaimones
	if len(include) == 0 {
		include = registry.Order()
	}

	fmt.Println("\n  The stream flows...")
	fmt.Printf("  Message: %q\n", message)
	if sharedMemory {
		fmt.Printf("  Shared Memory: %d frames\n", st.FrameCount())
	}
	if contextImage != "" {
		fmt.Printf("  Additional Context: %s\n", contextImage)
	}
	fmt.Printf("  Daimones: %v\n\n", registry.Sorted(include))

	results, err := orch.Stream(ctx, st, council.TurnRequest{
		Message:     message,
		Include:     include,
		RenderImage: renderImage,
		ExtraImages: extra,
	})
	if err != nil {
		return err
	}

	for _, r := range results {
		fmt.Print(formatResult(r, r.SavedPath))
	}
	if outputPath != "" {
		if err := writeTranscript(outputPath, message, results); err != nil {
			return err
		}
		fmt.Printf("\n  Transcript saved: %s\n", outputPath)
	}
	if sharedMemory {
		fmt.Printf("\n  Canvas: %s\n\n", cv.Dir())
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
