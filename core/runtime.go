package core

import "context"

// RuntimeManager is the external collaborator that owns model artifacts. The
// forge never manages artifacts itself; the registry calls DownloadModel and
// LoadModel when an agent is created and UnloadModel when it is removed.
//
// Download and load are long-latency, I/O-bound calls and must not be invoked
// while holding locks that would block unrelated agents. UnloadModel is
// best-effort: callers log failures and proceed.
type RuntimeManager interface {
	// DownloadModel fetches the artifact for an alias into the runtime's
	// cache. Fails with NetworkError on transport problems or NotFoundError
	// (kind "model") for an unknown alias.
	DownloadModel(ctx context.Context, alias string) error

	// LoadModel loads a previously downloaded artifact and returns a handle
	// to it. Fails with NotFoundError (kind "model") for an unknown alias.
	LoadModel(ctx context.Context, alias string) (ModelHandle, error)

	// UnloadModel releases a loaded handle.
	UnloadModel(ctx context.Context, handleID string) error
}
