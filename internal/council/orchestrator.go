package council

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"

	"daimon/internal/logging"
	"daimon/internal/perception"
	"daimon/internal/registry"
	"daimon/internal/resonance"
	"daimon/internal/session"
)

// Orchestrator routes invocations to the vendor adapters and runs turns.
type Orchestrator struct {
	generative perception.Client
	messages   perception.Client
}

// New creates an orchestrator over the two vendor adapters.
func New(generative, messages perception.Client) *Orchestrator {
	return &Orchestrator{generative: generative, messages: messages}
}

func (o *Orchestrator) clientFor(vendor registry.Vendor) perception.Client {
	if vendor == registry.VendorMessages {
		return o.messages
	}
	return o.generative
}

// TurnRequest is one client turn. Include is filtered to known tags and
// reordered into registry order before dispatch. ExtraImages are caller
// supplied context images appended after the visual memory.
type TurnRequest struct {
	Message     string
	Include     []string
	RenderImage bool
	ExtraImages []perception.ImagePart
}

// Turn runs the sequential council: each daimon in registry order sees the
// original message plus the transcript of every daimon before it. Failures
// become silence-sentinel responses and the turn keeps moving; only an
// emitter error (client gone) or context cancellation aborts it.
func (o *Orchestrator) Turn(ctx context.Context, st *session.State, req TurnRequest, em Emitter) error {
	st.TurnCount++
	participants := registry.Sorted(req.Include)
	logging.Council("turn %d session=%s participants=%v render=%t",
		st.TurnCount, st.ID, participants, req.RenderImage)

	contextImages, err := st.VisualMemory()
	if err != nil {
		logging.CouncilWarn("turn %d: visual memory unavailable: %v", st.TurnCount, err)
		contextImages = nil
	}
	contextImages = append(contextImages, req.ExtraImages...)

	var transcript Transcript
	for _, name := range participants {
		if err := ctx.Err(); err != nil {
			return err
		}
		daimon, ok := registry.Lookup(name)
		if !ok {
			continue
		}

		augmented := transcript.Augment(req.Message)
		if name == "resonator" {
			augmented = resonatorMetadata(st, augmented)
		}

		if err := em.Emit(newThinkingEvent(name)); err != nil {
			return err
		}

		framesBefore := st.FrameCount()
		result, invokeErr := o.clientFor(daimon.Vendor).Invoke(ctx, perception.Invocation{
			Daimon:        daimon,
			Prompt:        augmented,
			ContextImages: contextImages,
			RenderImage:   req.RenderImage,
		})

		ev := ResponseEvent{Type: "response", Daimon: name, Verb: daimon.DefaultVerb, Images: []string{}}
		if invokeErr != nil {
			ev.Text = silenceSentinel(invokeErr)
			logging.CouncilWarn("turn %d: %s fell silent: %v", st.TurnCount, name, invokeErr)
		} else {
			ev.Verb, ev.Text = perception.ParseVerb(result.Text, daimon.DefaultVerb)
			ev = o.persistImages(st, name, req.Message, result.Images, ev)
		}

		if err := em.Emit(ev); err != nil {
			return err
		}
		if grown := st.FrameCount(); grown > framesBefore {
			if err := em.Emit(newMemoryUpdateEvent(grown)); err != nil {
				return err
			}
		}
		transcript.Append(name, ev.Verb, ev.Text)
	}

	logging.Council("turn %d done, transcript entries=%d", st.TurnCount, transcript.Len())
	return em.Emit(newDoneEvent())
}

// persistImages writes each generated image to the canvas before the
// response is emitted. A write failure drops the images and turns the
// response into a silence sentinel.
func (o *Orchestrator) persistImages(st *session.State, name, prompt string, images []string, ev ResponseEvent) ResponseEvent {
	for _, img := range images {
		data, err := base64.StdEncoding.DecodeString(img)
		if err != nil {
			logging.CouncilWarn("%s returned an undecodable image: %v", name, err)
			continue
		}
		path, err := st.Canvas.Append(name, prompt, data)
		if err != nil {
			logging.CouncilWarn("canvas write failed for %s: %v", name, err)
			ev.Text = silenceSentinel(err)
			ev.Image = ""
			ev.Images = []string{}
			ev.SavedPath = ""
			return ev
		}
		if ev.SavedPath == "" {
			ev.SavedPath = path
		}
	}
	ev.Images = images
	if len(images) > 0 {
		ev.Image = images[0]
	}
	return ev
}

// resonatorMetadata frames the resonator's prompt with the turn counter and
// canvas state so the model can paint its own metadata panel.
func resonatorMetadata(st *session.State, message string) string {
	plateNum := st.FrameCount() + 1
	plateLabel := strconv.Itoa(plateNum)
	if plateNum <= 20 {
		plateLabel = resonance.ToRoman(plateNum)
	}
	sid := st.ID
	if len(sid) > 8 {
		sid = sid[:8]
	}
	return fmt.Sprintf(`[KV CACHE METADATA]
TURN: %d
PLATE NUMBER: %d (use Roman numeral: %s)
FRAMES IN MEMORY: %d
SESSION: resonance-field-%s

[USER PROMPT]
%s`, st.TurnCount, plateNum, plateLabel, st.FrameCount(), sid, message)
}

func silenceSentinel(err error) string {
	reason := err.Error()
	if len(reason) > 100 {
		reason = reason[:100]
	}
	return fmt.Sprintf("[silence - %s]", reason)
}
