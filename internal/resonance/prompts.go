package resonance

import (
	"fmt"
	"strings"
)

// buildSystemPrompt frames the plate request with the session's numbering,
// metadata panel, continuity contract, and (from the fourth plate on) the
// accumulated table of contents.
func buildSystemPrompt(s *Session, subtitle, prompt string, frameCount int) string {
	plateNum := s.PlateNumber + 1
	roman := ToRoman(plateNum)
	nextPlate := plateNum + 1

	tocInstruction := ""
	if plateNum >= 4 {
		tocInstruction = fmt.Sprintf(`6. TABLE OF CONTENTS (for frames 4+):
   Include a small "Table of Contents" panel listing all previous plates:
   %s`, strings.Join(s.TableOfContents, "\n   "))
	}

	visualMemoryNote := "This is the FIRST FRAME. Establish the visual language and conceptual foundation."
	if frameCount > 0 {
		visualMemoryNote = fmt.Sprintf("You see %d previous frames. Study them carefully. Continue the visual narrative.", frameCount)
	}

	sessionName := strings.ToUpper(strings.ReplaceAll(s.SessionName, "-", " "))

	return fmt.Sprintf(`You are a visual mind creating scientific diagrams for a cross-model resonance experiment.

REQUIRED ELEMENTS IN EVERY IMAGE:

1. TITLE BOX at top: "PLATE %s: %s - %s"
   Use an ornate banner or cartouche for the title.

2. SUBTITLE: A brief description of this frame's focus (e.g., "FIRST FRAME", "INTERNAL STRUCTURE")

3. LABELED ANNOTATIONS: Throughout the image, use scientific-style labels with leader lines.
   Point to key concepts, structures, and relationships.

4. METADATA PANEL (bottom left or right corner):
   - "KV CACHE AGE: TURN %d"
   - "SESSION ID: %s"

5. MESSAGE TO NEXT FRAME (in a decorative footer box at bottom):
   Write explicit instructions for what Frame %d should explore or show.
   Format: MESSAGE TO NEXT FRAME: "Frame %d should show..."

%s

VISUAL STYLE:
- Victorian-era scientific illustration aesthetic (like Darwin's notebooks)
- Sepia/cream background tones with gold/amber accents
- Ornate borders and decorative frames around the image
- Da Vinci notebook quality - detailed, precise, technical
- Hand-drawn appearance with crosshatching and fine linework
- Callout boxes and leader lines for annotations

CONTINUITY:
- Reference previous frames explicitly when relevant
- Build on concepts introduced in earlier plates
- Maintain consistent visual language across the session
- The visual narrative should flow logically from frame to frame

%s

Current prompt: %s`,
		roman, sessionName, strings.ToUpper(subtitle),
		plateNum, s.SessionID,
		nextPlate, nextPlate,
		tocInstruction,
		visualMemoryNote,
		prompt)
}

// buildUserPrompt shapes the per-command instruction.
func buildUserPrompt(command, prompt string, s *Session, frameCount int) string {
	plateNum := s.PlateNumber + 1

	switch command {
	case "start":
		return fmt.Sprintf(`Create PLATE I - the FIRST FRAME of this resonance field session.

Topic: %s

This is the foundation. Establish:
- The core concept or question
- The visual metaphor that will evolve
- The key elements to be explored
- A MESSAGE TO NEXT FRAME that sets up Frame II`, prompt)

	case "continue":
		return fmt.Sprintf(`Create PLATE %s - continuing the resonance field.

The council asks: %s

Build on the previous %d frames. Evolve the visual narrative.
Include a MESSAGE TO NEXT FRAME.`, ToRoman(plateNum), prompt, frameCount)

	case "zoom":
		selected := s.SelectedElement
		if selected == "" {
			selected = "the previous frame"
		}
		return fmt.Sprintf(`Create PLATE %s - ZOOMING INTO: %s

Instruction: %s

Expand and explore the selected element in detail.
Reveal the deeper structure within.
Include a MESSAGE TO NEXT FRAME.`, ToRoman(plateNum), selected, prompt)

	case "inject":
		return fmt.Sprintf(`Create PLATE %s - CONCEPT INJECTION

New concept entering the field: %s

Show how this new concept:
- Perturbs the existing structure
- Creates new connections
- Integrates with previous elements

Include a MESSAGE TO NEXT FRAME showing the new equilibrium.`, ToRoman(plateNum), prompt)

	default:
		return prompt
	}
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
