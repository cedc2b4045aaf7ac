package library

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/renameio/v2"

	"channelsurfer/internal/guide"
	"channelsurfer/internal/services"
)

const stageLibrary = "library"

// WriteSidecar persists record at path. The file is replaced atomically so a
// reader never observes a half-written sidecar.
func WriteSidecar(path string, record guide.Record) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrFilesystem, stageLibrary, "write sidecar", "encode record", err)
	}
	data = append(data, '\n')

	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return services.Wrap(services.ErrFilesystem, stageLibrary, "write sidecar", "create pending file", err)
	}
	defer func() {
		_ = pending.Cleanup()
	}()

	if _, err := pending.Write(data); err != nil {
		return services.Wrap(services.ErrFilesystem, stageLibrary, "write sidecar", "write data", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return services.Wrap(services.ErrFilesystem, stageLibrary, "write sidecar", "replace file", err)
	}
	return nil
}

// ReadSidecar loads the record stored at path.
func ReadSidecar(path string) (guide.Record, error) {
	var record guide.Record
	data, err := os.ReadFile(path)
	if err != nil {
		return record, services.Wrap(services.ErrFilesystem, stageLibrary, "read sidecar", path, err)
	}
	if err := json.Unmarshal(data, &record); err != nil {
		return record, services.Wrap(services.ErrDecode, stageLibrary, "read sidecar", fmt.Sprintf("parse %s", path), err)
	}
	return record, nil
}
