package council

import (
	"context"
	"encoding/base64"

	"golang.org/x/sync/errgroup"

	"daimon/internal/logging"
	"daimon/internal/perception"
	"daimon/internal/registry"
	"daimon/internal/session"
)

// streamWorkers bounds parallel adapter calls in stream mode.
const streamWorkers = 3

// StreamResult is one daimon's contribution to a stream run.
type StreamResult struct {
	Daimon    string
	Verb      string
	Text      string
	Images    []string
	SavedPath string
}

// Stream fans the message across the enabled daimones in parallel. There is
// no transcript here, so ordering only matters for display: results come
// back in registry order regardless of completion order. Generated images
// are persisted to the session canvas after all adapters return.
func (o *Orchestrator) Stream(ctx context.Context, st *session.State, req TurnRequest) ([]StreamResult, error) {
	st.TurnCount++
	participants := registry.Sorted(req.Include)
	logging.Council("stream turn %d participants=%v render=%t", st.TurnCount, participants, req.RenderImage)

	contextImages, err := st.VisualMemory()
	if err != nil {
		return nil, err
	}
	contextImages = append(contextImages, req.ExtraImages...)

	results := make([]StreamResult, len(participants))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(streamWorkers)
	for i, name := range participants {
		daimon, ok := registry.Lookup(name)
		if !ok {
			continue
		}
		g.Go(func() error {
			result, err := o.clientFor(daimon.Vendor).Invoke(gctx, perception.Invocation{
				Daimon:        daimon,
				Prompt:        req.Message,
				ContextImages: contextImages,
				RenderImage:   req.RenderImage,
			})
			if err != nil {
				results[i] = StreamResult{Daimon: name, Verb: daimon.DefaultVerb, Text: silenceSentinel(err)}
				return nil
			}
			verb, text := perception.ParseVerb(result.Text, daimon.DefaultVerb)
			results[i] = StreamResult{Daimon: name, Verb: verb, Text: text, Images: result.Images}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Canvas appends stay serialized: write only after every worker is done.
	for i := range results {
		r := &results[i]
		for _, img := range r.Images {
			data, err := base64.StdEncoding.DecodeString(img)
			if err != nil {
				logging.CouncilWarn("%s returned an undecodable image: %v", r.Daimon, err)
				continue
			}
			path, err := st.Canvas.Append(r.Daimon, req.Message, data)
			if err != nil {
				logging.CouncilWarn("canvas write failed for %s: %v", r.Daimon, err)
				continue
			}
			if r.SavedPath == "" {
				r.SavedPath = path
			}
		}
	}
	return results, nil
}

// Speak is the single-daimon one-shot used by the CLI. The caller decides
// what to do with any returned images.
func (o *Orchestrator) Speak(ctx context.Context, name, message string, contextImages []perception.ImagePart, render bool) (StreamResult, error) {
	daimon, ok := registry.Lookup(name)
	if !ok {
		return StreamResult{}, &UnknownDaimonError{Name: name}
	}
	result, err := o.clientFor(daimon.Vendor).Invoke(ctx, perception.Invocation{
		Daimon:        daimon,
		Prompt:        message,
		ContextImages: contextImages,
		RenderImage:   render && daimon.CanRender,
	})
	if err != nil {
		return StreamResult{Daimon: name, Verb: daimon.DefaultVerb, Text: silenceSentinel(err)}, nil
	}
	verb, text := perception.ParseVerb(result.Text, daimon.DefaultVerb)
	return StreamResult{Daimon: name, Verb: verb, Text: text, Images: result.Images}, nil
}

// UnknownDaimonError reports a tag the registry does not know.
type UnknownDaimonError struct {
	Name string
}

func (e *UnknownDaimonError) Error() string {
	return "unknown daimon: " + e.Name
}
