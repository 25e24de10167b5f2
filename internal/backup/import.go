package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mesh-intelligence/focusflow/internal/invalidate"
	"github.com/mesh-intelligence/focusflow/internal/logger"
	"github.com/mesh-intelligence/focusflow/pkg/types"
)

// Status is a stage of an import as shown to the user.
type Status string

const (
	StatusImporting Status = "importing"
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
)

// StatusFunc observes import progress. err is set only with StatusFailed.
type StatusFunc func(status Status, err error)

// Result summarises a successful import.
type Result struct {
	// Counts holds the number of records merged per collection.
	Counts map[string]int
	// Version is the data version after the import.
	Version uint64
}

// Importer merges backup files into the store.
type Importer struct {
	store       types.Store
	broadcaster *invalidate.Broadcaster
	status      StatusFunc
	log         logger.Logger
}

// NewImporter returns an Importer. broadcaster may be nil when no in-memory
// mirrors need to reload.
func NewImporter(store types.Store, broadcaster *invalidate.Broadcaster, log logger.Logger) *Importer {
	if log == nil {
		log = logger.Nop()
	}
	return &Importer{store: store, broadcaster: broadcaster, log: log}
}

// OnStatus registers fn to observe status transitions.
func (im *Importer) OnStatus(fn StatusFunc) {
	im.status = fn
}

// ImportFile reads and imports the file at path.
func (im *Importer) ImportFile(ctx context.Context, path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		verr := &ValidationError{Err: ErrReadFile, Cause: err}
		im.report(StatusFailed, verr)
		return Result{}, verr
	}
	defer f.Close()
	return im.Import(ctx, f)
}

// Import reads r, validates and stages every record, then merges them in a
// single Store.Apply. Records with matching ids are overwritten, new ids are
// inserted and nothing is deleted. Any failure before Apply leaves the store
// untouched; Apply itself is all or nothing.
func (im *Importer) Import(ctx context.Context, r io.Reader) (Result, error) {
	im.report(StatusImporting, nil)

	res, err := im.run(ctx, r)
	if err != nil {
		im.log.Warn("import failed", logger.Error(err))
		im.report(StatusFailed, err)
		return Result{}, err
	}

	im.log.Info("import applied", logger.Uint64("version", res.Version))
	im.report(StatusSuccess, nil)
	return res, nil
}

func (im *Importer) run(ctx context.Context, r io.Reader) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, &ValidationError{Err: ErrReadFile, Cause: err}
	}

	doc, err := Parse(data)
	if err != nil {
		return Result{}, err
	}
	batch, err := Stage(doc)
	if err != nil {
		return Result{}, err
	}
	if err := im.checkShareIDs(ctx, batch); err != nil {
		return Result{}, err
	}

	if err := im.store.Apply(ctx, batch); err != nil {
		return Result{}, fmt.Errorf("import failed: %w", err)
	}

	res := Result{Counts: batch.Counts()}
	if im.broadcaster != nil {
		res.Version = im.broadcaster.Bump()
	}
	return res, nil
}

// checkShareIDs rejects a batch that would leave two notes with one share
// id, counting both the staged notes and stored notes the batch does not
// overwrite.
func (im *Importer) checkShareIDs(ctx context.Context, batch *types.Batch) error {
	staged := make(map[string]string) // note id to share id
	for _, op := range batch.Ops() {
		if op.Collection != types.CollectionNotes {
			continue
		}
		n, err := types.Decode[types.Note](op.Value)
		if err != nil {
			return &ValidationError{Collection: op.Collection, Err: ErrInvalidItem, Cause: err}
		}
		staged[n.ID] = n.ShareID
	}
	if len(staged) == 0 {
		return nil
	}

	stored, err := im.store.GetAll(ctx, types.CollectionNotes)
	if err != nil {
		return fmt.Errorf("reading notes: %w", err)
	}
	owners := make(map[string]string, len(stored)+len(staged)) // share id to note id
	for _, raw := range stored {
		n, err := types.Decode[types.Note](raw)
		if err != nil {
			continue
		}
		if _, replaced := staged[n.ID]; replaced || n.ShareID == "" {
			continue
		}
		owners[n.ShareID] = n.ID
	}
	for _, op := range batch.Ops() {
		if op.Collection != types.CollectionNotes {
			continue
		}
		id := op.Key
		shareID := staged[id]
		if shareID == "" {
			continue
		}
		if owner, ok := owners[shareID]; ok && owner != id {
			return &ValidationError{Collection: op.Collection, Err: types.ErrDuplicateShareID}
		}
		owners[shareID] = id
	}
	return nil
}

func (im *Importer) report(status Status, err error) {
	if im.status != nil {
		im.status(status, err)
	}
}

// IsRejected reports whether err is a validation failure, meaning the file
// was refused before any write.
func IsRejected(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
