package app

import (
	"context"
	"strings"
)

// Surface names the entry point a mutation came through.
type Surface string

// Surface values recorded on change events.
const (
	SurfaceTUI  Surface = "tui"
	SurfaceCLI  Surface = "cli"
	SurfaceHTTP Surface = "http"
	SurfaceMCP  Surface = "mcp"
)

// MutationActor carries caller identity metadata for change attribution.
type MutationActor struct {
	ActorID string
	Surface Surface
}

// WithMutationActor attaches normalized mutation-actor identity metadata to context.
func WithMutationActor(ctx context.Context, actor MutationActor) context.Context {
	actor = normalizeMutationActor(actor)
	return context.WithValue(ctx, mutationActorContextKey{}, actor)
}

// MutationActorFromContext returns normalized mutation-actor metadata when present.
func MutationActorFromContext(ctx context.Context) (MutationActor, bool) {
	raw := ctx.Value(mutationActorContextKey{})
	actor, ok := raw.(MutationActor)
	if !ok {
		return MutationActor{}, false
	}
	actor = normalizeMutationActor(actor)
	if actor.ActorID == "" && actor.Surface == "" {
		return MutationActor{}, false
	}
	return actor, true
}

// mutationActorContextKey stores context keys for mutation actor metadata.
type mutationActorContextKey struct{}

// normalizeMutationActor trims and canonicalizes mutation actor metadata.
func normalizeMutationActor(actor MutationActor) MutationActor {
	actor.ActorID = strings.TrimSpace(actor.ActorID)
	actor.Surface = Surface(strings.TrimSpace(strings.ToLower(string(actor.Surface))))
	switch actor.Surface {
	case "", SurfaceTUI, SurfaceCLI, SurfaceHTTP, SurfaceMCP:
	default:
		actor.Surface = SurfaceCLI
	}
	return actor
}
