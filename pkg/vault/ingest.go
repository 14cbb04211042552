// Copyright © 2018 One Concern

package vault

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	units "github.com/docker/go-units"
	"github.com/oneconcern/zenodotus/pkg/digest"
	"github.com/oneconcern/zenodotus/pkg/index"
	"github.com/oneconcern/zenodotus/pkg/vault/status"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Stage of the ingestion pipeline
type Stage uint8

// Ingestion stages, in the order they run
const (
	StageReadHash Stage = iota
	StageDuplicateCheck
	StageRecord
	StageRelocate
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageReadHash:
		return "READ_HASH"
	case StageDuplicateCheck:
		return "DUPLICATE_CHECK"
	case StageRecord:
		return "RECORD"
	case StageRelocate:
		return "RELOCATE"
	case StageDone:
		return "DONE"
	case StageFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("Stage(%d)", uint8(s))
	}
}

// Source is a file to ingest. Name is the logical name of the new entry:
// it defaults to the base name of the file.
type Source struct {
	Path string
	Name string
}

// Receipt tells what happened to an ingested source
type Receipt struct {
	Source Source
	Path   string      // canonical path of the source
	Entry  index.Entry // the recorded entry, once past READ_HASH
	Size   int64
	Stage  Stage // DONE or FAILED
	Err    error
}

// IngestError is returned when the ingestion of a source fails
type IngestError struct {
	Path  string
	Stage Stage // the stage that failed
	Err   error
}

func (e *IngestError) Error() string {
	return fmt.Sprintf("ingest %q: %v failed: %v", e.Path, e.Stage, e.Err)
}

func (e *IngestError) Unwrap() error {
	return e.Err
}

// Ingest a single file into the vault.
//
// On success, the file has been moved into its storage slot.
// Errors are *IngestError values that may be inspected with errors.Is against status errors.
func (v *Vault) Ingest(ctx context.Context, src Source) (Receipt, error) {
	if err := v.checkStore(); err != nil {
		return Receipt{Source: src, Stage: StageFailed, Err: err}, err
	}

	p := &pipeline{
		v:       v,
		stage:   StageReadHash,
		receipt: Receipt{Source: src},
		l:       v.l.With(zap.String("source", src.Path)),
	}
	return p.run(ctx)
}

// IngestAll ingests several files, independently from each other.
//
// A failure on one file doesn't stop the others. The returned error combines all failures:
// use multierr.Errors to split it.
func (v *Vault) IngestAll(ctx context.Context, sources []Source) ([]Receipt, error) {
	receipts := make([]Receipt, 0, len(sources))
	var errs error
	for _, src := range sources {
		r, err := v.Ingest(ctx, src)
		receipts = append(receipts, r)
		errs = multierr.Append(errs, err)
	}
	return receipts, errs
}

func (v *Vault) checkStore() error {
	pth := v.cfg.StorePath()
	isDir, err := afero.IsDir(v.fs, pth)
	if err != nil || !isDir {
		return status.ErrPrecondition.WrapMessage("no storage area at %q: is this a vault?", pth)
	}
	return nil
}

type pipeline struct {
	v       *Vault
	stage   Stage
	receipt Receipt
	l       *zap.Logger
}

func (p *pipeline) run(ctx context.Context) (Receipt, error) {
	for {
		var err error
		switch p.stage {
		case StageReadHash:
			err = p.readHash()
		case StageDuplicateCheck:
			err = p.duplicateCheck(ctx)
		case StageRecord:
			err = p.record(ctx)
		case StageRelocate:
			err = p.relocate(ctx)
		case StageDone:
			p.receipt.Stage = StageDone
			p.l.Info("ingested",
				zap.String("digest", p.receipt.Entry.Digest),
				zap.String("name", p.receipt.Entry.Name),
				zap.String("size", units.HumanSize(float64(p.receipt.Size))),
			)
			return p.receipt, nil
		}

		if err != nil {
			ierr := &IngestError{Path: p.receipt.Source.Path, Stage: p.stage, Err: err}
			p.l.Debug("ingestion failed", zap.Stringer("stage", p.stage), zap.Error(err))
			p.stage = StageFailed
			p.receipt.Stage = StageFailed
			p.receipt.Err = ierr
			return p.receipt, ierr
		}
		p.l.Debug("stage complete", zap.Stringer("stage", p.stage))
		p.stage++
	}
}

// readHash resolves the canonical source path and digests the file
func (p *pipeline) readHash() error {
	pth, err := canonicalPath(p.v.fs, p.receipt.Source.Path)
	if err != nil {
		return status.ErrIO.Wrap(err)
	}
	p.receipt.Path = pth

	if err = p.v.checkOutsideVault(pth); err != nil {
		return err
	}

	sum, err := digest.File(p.v.fs, p.v.index.Scheme(), pth)
	if err != nil {
		return status.ErrIO.Wrap(err)
	}

	name := p.receipt.Source.Name
	if name == "" {
		name = filepath.Base(pth)
	}
	p.receipt.Entry = index.Entry{Digest: sum.Digest, Name: name}
	p.receipt.Size = sum.Size
	return nil
}

func (p *pipeline) duplicateCheck(ctx context.Context) error {
	return p.v.index.CheckDuplicate(ctx, p.receipt.Entry.Digest, p.receipt.Entry.Name)
}

func (p *pipeline) record(ctx context.Context) error {
	return p.v.index.Insert(ctx, p.receipt.Entry.Digest, p.receipt.Entry.Name)
}

// relocate moves the source into its storage slot. The entry is already recorded:
// a failure here leaves an indexed digest without any file in storage.
func (p *pipeline) relocate(ctx context.Context) error {
	if err := p.v.store.Move(ctx, p.receipt.Path, p.receipt.Entry.Digest); err != nil {
		return status.ErrIO.WrapWithLog(p.l, err,
			zap.String("digest", p.receipt.Entry.Digest),
			zap.String("detail", "entry is indexed but the file did not reach the storage area"),
		)
	}
	return nil
}

// checkOutsideVault refuses sources that belong to the vault itself: the index and its journals,
// or anything in the storage area
func (v *Vault) checkOutsideVault(pth string) error {
	if pth == v.indexPath || strings.HasPrefix(pth, v.indexPath+"-") {
		return status.ErrPrecondition.WrapMessage("%q is the index of the vault", pth)
	}
	if rel, err := filepath.Rel(v.storePath, pth); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return status.ErrPrecondition.WrapMessage("%q is in the storage area of the vault", pth)
	}
	return nil
}

// canonicalPath makes a path absolute. Symbolic links are resolved on the OS file system.
func canonicalPath(fs afero.Fs, pth string) (string, error) {
	abs, err := filepath.Abs(pth)
	if err != nil {
		return "", err
	}
	if _, isOS := fs.(*afero.OsFs); !isOS {
		return abs, nil
	}
	return filepath.EvalSymlinks(abs)
}
