package service

import (
	"errors"
	"fmt"

	"github.com/MKhiriev/go-dam-sync/models"
)

// ErrUnknownDirection is returned for a job whose direction has no
// registered executor.
var ErrUnknownDirection = errors.New("no executor registered for sync direction")

// ExecutorFactory maps a job's direction to its executor. Supporting a new
// direction means adding one line to the table here.
type ExecutorFactory struct {
	table map[models.SyncDirection]Executor
}

func NewExecutorFactory(deps ExecutorDeps) *ExecutorFactory {
	base := newExecutorBase(deps)

	return &ExecutorFactory{
		table: map[models.SyncDirection]Executor{
			models.DownloadOnly:     newDownloadExecutor(base, false),
			models.DownloadAndClean: newDownloadExecutor(base, true),
			models.UploadOnly:       newUploadExecutor(base, false),
			models.UploadAndClean:   newUploadExecutor(base, true),
			models.BiDirectional:    newBidirectionalExecutor(base),
		},
	}
}

func (f *ExecutorFactory) ForDirection(direction models.SyncDirection) (Executor, error) {
	executor, ok := f.table[direction]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDirection, direction)
	}
	return executor, nil
}
