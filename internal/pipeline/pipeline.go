package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"dicomscrub/internal/audit"
	"dicomscrub/internal/config"
	"dicomscrub/internal/dicomanon"
	"dicomscrub/internal/fileutil"
	"dicomscrub/internal/registry"
	"dicomscrub/internal/renamer"
	"dicomscrub/internal/resolver"
	"dicomscrub/internal/sheet"
)

// Summary counts what one run did. It is printed at the end so skipped rows
// and files can be followed up.
type Summary struct {
	RowsRead         int
	RowsWritten      int
	RowsSkipped      int
	Subjects         int
	FilesCleaned     int
	FilesQuarantined int
	FilesSkipped     int
	FileErrors       int
	RowsUnresolved   int
}

// Options collects the pipeline collaborators. Registry and Renamer default
// to fresh instances; Resolver defaults to the unconfigured resolver, which
// fails loudly on the first row.
type Options struct {
	Config   *config.Config
	Registry *registry.Registry
	Resolver resolver.PathResolver
	Adapter  *dicomanon.Adapter
	Renamer  *renamer.Renamer
	Audit    *audit.Store
	Logger   *slog.Logger
}

// Pipeline processes the variables spreadsheet row by row, in input order,
// on a single goroutine.
type Pipeline struct {
	cfg      *config.Config
	registry *registry.Registry
	resolver resolver.PathResolver
	adapter  *dicomanon.Adapter
	renamer  *renamer.Renamer
	audit    *audit.Store
	logger   *slog.Logger
}

// New assembles a pipeline.
func New(opts Options) *Pipeline {
	p := &Pipeline{
		cfg:      opts.Config,
		registry: opts.Registry,
		resolver: opts.Resolver,
		adapter:  opts.Adapter,
		renamer:  opts.Renamer,
		audit:    opts.Audit,
		logger:   opts.Logger,
	}
	if p.registry == nil {
		p.registry = registry.New()
	}
	if p.renamer == nil {
		p.renamer = renamer.New()
	}
	if p.resolver == nil {
		p.resolver = resolver.Unconfigured()
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	p.logger = p.logger.With("component", "pipeline")
	return p
}

// Run processes csvIn into csvOut, routing cleaned imaging files under
// destDir. Fatal errors abort and are returned; row- and file-local
// failures are logged, counted, and skipped.
func (p *Pipeline) Run(ctx context.Context, csvIn, csvOut, destDir string) (Summary, error) {
	var summary Summary

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return summary, fmt.Errorf("create destination: %w", err)
	}

	lock := flock.New(filepath.Join(destDir, ".dicomscrub.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return summary, fmt.Errorf("acquire destination lock: %w", err)
	}
	if !locked {
		return summary, fmt.Errorf("%w: %s", ErrLocked, destDir)
	}
	defer func() { _ = lock.Unlock() }()

	input, err := os.Open(csvIn)
	if err != nil {
		return summary, fmt.Errorf("open variables csv: %w", err)
	}
	defer input.Close()

	reader := sheet.NewReader(input, p.cfg.DelimiterRune())

	writer, err := sheet.NewWriter(csvOut, p.cfg.DelimiterRune())
	if err != nil {
		return summary, err
	}
	closed := false
	defer func() {
		if !closed {
			_ = writer.Close()
		}
	}()

	if p.cfg.Sheet.HasHeader {
		err := reader.ReadHeader(p.cfg.Sheet.ExpectedHeader)
		if errors.Is(err, io.EOF) {
			return summary, writer.Close()
		}
		if err != nil {
			return summary, err
		}
		if err := writer.Append(sheet.CleanHeader(reader.Header)); err != nil {
			return summary, err
		}
	}

	policy := sheet.Policy{
		Granularity:          p.cfg.Sheet.Granularity,
		DiagnosisAsDeltaDays: p.cfg.Sheet.DiagnosisAsDeltaDays,
	}

	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, sheet.ErrMalformedRow) {
			summary.RowsRead++
			summary.RowsSkipped++
			p.logger.Warn("skipping unparsable row", "error", err)
			continue
		}
		if err != nil {
			return summary, err
		}
		summary.RowsRead++

		if err := p.processRow(ctx, row, policy, writer, destDir, &summary); err != nil {
			if Fatal(err) {
				return summary, err
			}
			summary.RowsSkipped++
			p.logger.Warn("skipping row", "row", row.Index, "error", err)
		}
	}

	closed = true
	if err := writer.Close(); err != nil {
		return summary, err
	}

	summary.Subjects = p.registry.Len()
	p.logger.Info("run complete",
		"rows_read", summary.RowsRead,
		"rows_written", summary.RowsWritten,
		"rows_skipped", summary.RowsSkipped,
		"subjects", summary.Subjects,
		"files_cleaned", summary.FilesCleaned,
		"files_quarantined", summary.FilesQuarantined,
		"files_skipped", summary.FilesSkipped,
		"file_errors", summary.FileErrors,
	)
	return summary, nil
}

func (p *Pipeline) processRow(ctx context.Context, row sheet.Row, policy sheet.Policy, writer *sheet.Writer, destDir string, summary *Summary) error {
	if err := row.Validate(); err != nil {
		return err
	}

	key := registry.SubjectKey{PersonID: row.PersonID(), InvitationID: row.InvitationID()}
	pseudonym := p.registry.AssignOrGet(key)

	cleaned, err := sheet.Clean(row, pseudonym, policy)
	if err != nil {
		return err
	}
	if err := writer.Append(cleaned); err != nil {
		return err
	}
	summary.RowsWritten++

	paths, err := p.resolver.Resolve(key)
	if err != nil {
		summary.RowsUnresolved++
		p.logger.Warn("imaging files unresolved, row written without imaging",
			"row", row.Index, "error", fmt.Errorf("%w: %v", ErrUnresolvedSource, err))
		return nil
	}
	if len(paths) == 0 {
		summary.RowsUnresolved++
		p.logger.Info("no imaging files for row", "row", row.Index)
		return nil
	}

	for _, sourcePath := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.processFile(ctx, sourcePath, pseudonym, destDir, summary); err != nil {
			if Fatal(err) {
				return err
			}
			summary.FileErrors++
			p.logger.Warn("skipping imaging file", "row", row.Index, "source", sourcePath, "error", err)
		}
	}
	return nil
}

func (p *Pipeline) processFile(ctx context.Context, sourcePath, pseudonym, destDir string, summary *Summary) error {
	var name, partial string
	item := dicomanon.WorkItem{SourcePath: sourcePath, Pseudonym: pseudonym}

	outcome, err := p.adapter.Process(ctx, item, func() string {
		name = p.renamer.Next(pseudonym, filepath.Ext(sourcePath))
		partial = filepath.Join(destDir, ".partial-"+name)
		return partial
	})
	if err != nil {
		if partial != "" {
			_ = os.Remove(partial)
		}
		return err
	}
	if outcome.Skipped {
		summary.FilesSkipped++
		return nil
	}

	finalDir := destDir
	if outcome.Quarantine != dicomanon.QuarantineNone {
		finalDir = filepath.Join(destDir, p.cfg.Paths.QuarantineDirName)
	}
	finalPath := filepath.Join(finalDir, name)
	if err := fileutil.MoveFile(partial, finalPath); err != nil {
		_ = os.Remove(partial)
		return fmt.Errorf("place cleaned file: %w", err)
	}

	if p.audit != nil {
		if err := p.audit.RecordFile(ctx, pseudonym, name, outcome.OriginalAttributes, outcome.CleanedAttributes); err != nil {
			p.logger.Warn("audit record failed", "output", name, "error", err)
		}
	}

	if outcome.Quarantine != dicomanon.QuarantineNone {
		summary.FilesQuarantined++
		p.logger.Info("file quarantined", "output", name, "reason", outcome.Quarantine.String())
	} else {
		summary.FilesCleaned++
		p.logger.Debug("file cleaned", "output", name)
	}
	return nil
}
