package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/mesh-intelligence/canvasboard/internal/paths"
	"github.com/mesh-intelligence/canvasboard/pkg/sqlite"
	"github.com/mesh-intelligence/canvasboard/pkg/types"
)

// attach resolves the data directory, creates a backend, and attaches it.
// The caller must defer Detach.
func (o *rootOptions) attach() (sqlite.Backend, string, error) {
	dataDir, err := paths.ResolveDataDir(o.dataDir, o.config.GetString(cfgKeyDataDir))
	if err != nil {
		return nil, "", sysError(fmt.Errorf("resolve data dir: %w", err))
	}

	cfg := types.Config{
		Backend:     o.config.GetString(cfgKeyBackend),
		DataDir:     dataDir,
		BusyTimeout: o.config.GetDuration(cfgKeyBusyTimeout),
	}
	backend := sqlite.NewBackend(sqlite.WithLogger(o.logger))
	if err := backend.Attach(cfg); err != nil {
		err = fmt.Errorf("attach backend: %w", err)
		if errors.Is(err, types.ErrValidation) {
			return nil, "", err
		}
		return nil, "", sysError(err)
	}
	return backend, dataDir, nil
}

func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Fprintln(w, string(out))
	return nil
}
