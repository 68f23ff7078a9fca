package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"daimon/internal/perception"
	"daimon/internal/resonance"
)

// fieldCmd drives resonance field sessions: persisted visual narratives of
// numbered plates with an explicit next-frame continuity contract.
var fieldCmd = &cobra.Command{
	Use:   "field",
	Short: "Resonance field: persisted plates with visual memory",
	Long: `The resonance field is the persisted mode. Each session is a folder of
numbered plates; every new plate sees all previous ones and embeds a
MESSAGE TO NEXT FRAME for its successor.

Examples:
  daimon field start emergence "What is emergence?"
  daimon field continue emergence-live-1730000000 "Go deeper"
  daimon field select emergence-live-1730000000 "the spiral annotation"
  daimon field zoom emergence-live-1730000000 "Reveal the inner structure"
  daimon field inject emergence-live-1730000000 "entropy"
  daimon field list`,
}

func newField() (*resonance.Field, error) {
	if cfg.Vendors.Generative.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY required for the resonance field")
	}
	client := perception.NewGenerativeClientWithConfig(cfg.GenerativeConfig())
	return resonance.New(cfg.Resonance.SessionsDir, client), nil
}

func fieldContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func printPlate(plate *resonance.Plate) {
	if plate.Path == "" {
		fmt.Println("\n  No plate was rendered this time.")
		if plate.Text != "" {
			fmt.Printf("  The field says: %s\n", plate.Text)
		}
		return
	}
	fmt.Printf("\n  PLATE %s rendered\n", plate.Roman)
	fmt.Printf("  Session: %s\n", plate.Session.SessionID)
	fmt.Printf("  Saved:   %s\n", plate.Path)
	if plate.Text != "" {
		fmt.Printf("\n%s\n", plate.Text)
	}
}

var fieldStartCmd = &cobra.Command{
	Use:   "start <name> <prompt>",
	Short: "Start a new field session with its first plate",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		field, err := newField()
		if err != nil {
			return err
		}
		ctx, stop := fieldContext()
		defer stop()

		plate, err := field.Start(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		printPlate(plate)
		return nil
	},
}

var fieldContinueCmd = &cobra.Command{
	Use:   "continue <session-id> <prompt>",
	Short: "Render the next plate of a session",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		field, err := newField()
		if err != nil {
			return err
		}
		ctx, stop := fieldContext()
		defer stop()

		plate, err := field.Continue(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		printPlate(plate)
		return nil
	},
}

var fieldSelectCmd = &cobra.Command{
	Use:   "select <session-id> <element>",
	Short: "Mark an element of the latest plate for zooming",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		field, err := newField()
		if err != nil {
			return err
		}
		s, err := field.Select(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("\n  Selected: %s\n  Next: daimon field zoom %s \"<instruction>\"\n", s.SelectedElement, s.SessionID)
		return nil
	},
}

var fieldZoomCmd = &cobra.Command{
	Use:   "zoom <session-id> <prompt>",
	Short: "Expand the selected element into its own plate",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		field, err := newField()
		if err != nil {
			return err
		}
		ctx, stop := fieldContext()
		defer stop()

		plate, err := field.Zoom(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		printPlate(plate)
		return nil
	},
}

var fieldInjectCmd = &cobra.Command{
	Use:   "inject <session-id> <concept>",
	Short: "Inject a new concept into the field",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		field, err := newField()
		if err != nil {
			return err
		}
		ctx, stop := fieldContext()
		defer stop()

		plate, err := field.Inject(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		printPlate(plate)
		return nil
	},
}

var fieldListCmd = &cobra.Command{
	Use:   "list",
	Short: "List field sessions, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := resonance.New(cfg.Resonance.SessionsDir, nil).List()
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Println("\n  No field sessions yet. Begin with: daimon field start <name> <prompt>")
			return nil
		}
		fmt.Println()
		for _, s := range sessions {
			fmt.Printf("  %s\n    plates: %d  created: %s\n", s.SessionID, s.PlateNumber, s.CreatedAt)
			for _, entry := range s.TableOfContents {
				fmt.Printf("    %s\n", entry)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	fieldCmd.AddCommand(fieldStartCmd)
	fieldCmd.AddCommand(fieldContinueCmd)
	fieldCmd.AddCommand(fieldSelectCmd)
	fieldCmd.AddCommand(fieldZoomCmd)
	fieldCmd.AddCommand(fieldInjectCmd)
	fieldCmd.AddCommand(fieldListCmd)
}
