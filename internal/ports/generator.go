package ports

import "context"

// Generator is the external text-completion service a stage calls. Complete
// blocks until the service returns or fails; the stage wrapper converts any
// error into a failed stage result. No retry is performed by the core.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Complete implements Generator.
func (f GeneratorFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
