package stats

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"unicode/utf8"

	"github.com/h2non/filetype"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"cssstat/css"
	"cssstat/source"
)

// Options controls Process.
type Options struct {
	// Workers limits number of files processed at the same time, 0 - no limit.
	Workers int
	// Charset of input files. When nil files are UTF-8 unless they declare
	// their own encoding.
	Charset encoding.Encoding
}

// Result is outcome of processing of a single file.
type Result struct {
	File   source.File
	Record Record
	// Sheet is parsed stylesheet, nil when ParseErr is set.
	Sheet *css.Stylesheet
	// ParseErr is set when file could not be parsed, Record describes failure then.
	ParseErr error
}

// Process computes statistics for every file. Results are returned in the
// order of files regardless of the order in which processing completes.
// Parse failures are reported in results, any other failure (file name
// without event id, unreadable file) fails the whole run.
func Process(ctx context.Context, files []source.File, parser *css.Parser, opts Options, log *zap.Logger) ([]Result, error) {
	ids := make([]string, len(files))
	for idx, f := range files {
		id, err := EventID(f.Name)
		if err != nil {
			return nil, fmt.Errorf("unable to process %q: %w", f.Path, err)
		}
		ids[idx] = id
	}

	results := make([]Result, len(files))
	errs := make([]error, len(files))

	var sem chan struct{}
	if opts.Workers > 0 {
		sem = make(chan struct{}, opts.Workers)
	}

	var waitGroup sync.WaitGroup
	for idx, f := range files {
		waitGroup.Add(1)

		go func(idx int, f source.File) {
			defer waitGroup.Done()

			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}

			if err := ctx.Err(); err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = processFile(f, ids[idx], parser, opts.Charset, log)
		}(idx, f)
	}
	waitGroup.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := multierr.Combine(errs...); err != nil {
		return nil, err
	}
	return results, nil
}

func processFile(f source.File, eventID string, parser *css.Parser, charset encoding.Encoding, log *zap.Logger) (Result, error) {
	raw, err := f.Read()
	if err != nil {
		return Result{}, fmt.Errorf("unable to read %q: %w", f.Path, err)
	}

	if kind, err := filetype.Match(raw); err == nil && kind != filetype.Unknown {
		log.Warn("Input does not look like a stylesheet", zap.String("file", f.Name), zap.String("type", kind.MIME.Value))
	}

	if charset == nil {
		var name string
		if charset, name = declaredCharset(raw); charset != nil {
			log.Debug("Using declared charset", zap.String("file", f.Name), zap.String("charset", name))
		}
	}
	if charset != nil {
		if raw, err = charset.NewDecoder().Bytes(raw); err != nil {
			return Result{}, fmt.Errorf("unable to decode %q: %w", f.Path, err)
		}
	}

	content := string(raw)
	base := NewRecord(eventID, utf8.RuneCountInString(content))
	log.Info("Read stylesheet", zap.String("eventId", eventID), zap.String("file", f.Name), zap.Int("characters", base.Length))

	sheet, err := parser.Parse(raw, f.Path)
	if err != nil {
		rec := base.Failed(content, err)
		log.Warn("Illegal stylesheet", zap.String("file", f.Name), zap.String("digest", strconv.Quote(rec.Digest)), zap.Error(err))
		return Result{File: f, Record: rec, ParseErr: err}, nil
	}
	return Result{File: f, Record: Extract(base, sheet), Sheet: sheet}, nil
}
