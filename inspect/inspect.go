// Package inspect composes classification, sampling and dialect inference
// into one report per file.
package inspect

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/gobeaver/filesniff"
	"github.com/gobeaver/filesniff/dialect"
	"github.com/gobeaver/filesniff/filetype"
	"github.com/gobeaver/filesniff/filevalidator"
	"github.com/gobeaver/filesniff/internal/logging"
	"github.com/gobeaver/filesniff/sampling"
)

// Report is everything learned about one file
type Report struct {
	Path           string                  `json:"path" yaml:"path"`
	Size           int64                   `json:"size" yaml:"size"`
	Classification filetype.Classification `json:"classification" yaml:"classification"`
	MIMEType       string                  `json:"mime_type" yaml:"mime_type"`

	// Dialect is nil for binary files and empty text files
	Dialect *dialect.Dialect `json:"dialect,omitempty" yaml:"dialect,omitempty"`

	// Origins maps each characteristic name to "inferred" or "explicit"
	Origins map[string]string `json:"origins,omitempty" yaml:"origins,omitempty"`

	// SampleBytes and Fingerprint describe the sample the dialect was
	// inferred from
	SampleBytes int    `json:"sample_bytes,omitempty" yaml:"sample_bytes,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`

	// Validation is set when the Inspector has constraints
	Validation *filevalidator.ValidationResult `json:"validation,omitempty" yaml:"validation,omitempty"`
}

// Type returns the merged file type
func (r *Report) Type() filetype.FileType {
	return r.Classification.Result
}

// Description returns the portable form of the dialect, false when the
// file has none
func (r *Report) Description() (dialect.Description, bool) {
	if r.Dialect == nil {
		return dialect.Description{}, false
	}
	return dialect.Describe(*r.Dialect), true
}

// Inspector inspects files of one filesniff.FileReader. Each inspection
// builds its own sampler and sniffer, so an Inspector is safe for
// concurrent use.
type Inspector struct {
	fs         filesniff.FileReader
	classifier *filetype.Classifier
	validator  *filevalidator.FileValidator
	log        logrus.FieldLogger

	sigBytes  int
	charLines int

	bytesToAnalyze int
	chunkSize      int
	seed           *uint64
	seedCalls      atomic.Uint64

	maxAttempts int
	threshold   *float64
	detector    dialect.CharsetDetector
	resolver    dialect.Resolver
	description *dialect.Description
}

// Option configures an Inspector
type Option func(*Inspector)

// WithLogger sets the logger handed to every component
func WithLogger(log logrus.FieldLogger) Option {
	return func(in *Inspector) {
		if log != nil {
			in.log = log
		}
	}
}

// WithSignatureBytes sets how many leading bytes the classifier reads
func WithSignatureBytes(n int) Option {
	return func(in *Inspector) { in.sigBytes = n }
}

// WithCharacteristicLines sets how many lines the classifier reads
func WithCharacteristicLines(n int) Option {
	return func(in *Inspector) { in.charLines = n }
}

// WithBytesToAnalyze sets the initial sample size
func WithBytesToAnalyze(n int) Option {
	return func(in *Inspector) {
		if n > 0 {
			in.bytesToAnalyze = n
		}
	}
}

// WithChunkSize sets the sampler's chunk size
func WithChunkSize(n int) Option {
	return func(in *Inspector) {
		if n > 0 {
			in.chunkSize = n
		}
	}
}

// WithSeed makes sampling reproducible. The n-th inspection of an
// Inspector always draws the same chunks for the same file.
func WithSeed(seed uint64) Option {
	return func(in *Inspector) { in.seed = &seed }
}

// WithMaxEncodingAttempts bounds the sampling rounds of encoding inference
func WithMaxEncodingAttempts(n int) Option {
	return func(in *Inspector) { in.maxAttempts = n }
}

// WithHeaderThreshold sets the header heuristic threshold
func WithHeaderThreshold(f float64) Option {
	return func(in *Inspector) { in.threshold = &f }
}

// WithCharsetDetector replaces the default charset detector
func WithCharsetDetector(d dialect.CharsetDetector) Option {
	return func(in *Inspector) { in.detector = d }
}

// WithResolver installs a fallback for failed inferences
func WithResolver(r dialect.Resolver) Option {
	return func(in *Inspector) { in.resolver = r }
}

// WithDescription assigns the described characteristics to every text
// file instead of inferring them. Inspecting a file that classifies as
// binary then fails with filesniff.ErrNotText.
func WithDescription(desc dialect.Description) Option {
	return func(in *Inspector) { in.description = &desc }
}

// WithConstraints validates every inspected file
func WithConstraints(c filevalidator.Constraints) Option {
	return func(in *Inspector) {
		in.validator = filevalidator.New(c)
	}
}

// New creates an Inspector reading from fs
func New(fs filesniff.FileReader, opts ...Option) *Inspector {
	in := &Inspector{
		fs:             fs,
		log:            logging.Discard(),
		bytesToAnalyze: dialect.DefaultBytesToAnalyze,
		chunkSize:      sampling.DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(in)
	}

	in.classifier = filetype.New(fs,
		filetype.WithLogger(in.log),
		filetype.WithSignatureBytes(in.sigBytes),
		filetype.WithCharacteristicLines(in.charLines),
	)
	if in.validator != nil {
		in.validator = filevalidator.New(in.validator.GetConstraints(), filevalidator.WithLogger(in.log))
	}
	return in
}

// Inspect classifies path and, for non-empty text files, infers its
// dialect.
func Inspect(ctx context.Context, fs filesniff.FileReader, path string, opts ...Option) (*Report, error) {
	return New(fs, opts...).Inspect(ctx, path)
}

// InspectAll inspects every file under dir whose relative path matches
// pattern.
func InspectAll(ctx context.Context, fs filesniff.FileReader, dir, pattern string, opts ...Option) ([]*Report, error) {
	return New(fs, opts...).InspectAll(ctx, dir, pattern)
}

// Inspect classifies path and, for non-empty text files, infers its
// dialect. A file whose dialect cannot be inferred fails as a whole.
func (in *Inspector) Inspect(ctx context.Context, path string) (*Report, error) {
	info, err := in.fs.Stat(ctx, path)
	if err != nil {
		return nil, err
	}
	if info.IsDir {
		return nil, &filesniff.PathError{Op: "inspect", Path: path, Err: filesniff.ErrIsDir}
	}

	cl, err := in.classifier.Explain(ctx, path)
	if err != nil {
		return nil, err
	}
	report := &Report{
		Path:           path,
		Size:           info.Size,
		Classification: cl,
		MIMEType:       cl.Result.MIMEType(),
	}

	if in.description != nil && !cl.Result.IsText() {
		return nil, &filesniff.PathError{Op: "inspect", Path: path, Err: filesniff.ErrNotText}
	}

	if cl.Result.IsText() && info.Size > 0 {
		if err := in.sniff(ctx, report); err != nil {
			return nil, &filesniff.PathError{Op: "inspect", Path: path, Err: err}
		}
	}

	if in.validator != nil {
		report.Validation, err = in.validator.Validate(ctx, in.fs, path, cl.Result, report.Dialect)
		if err != nil {
			return nil, err
		}
	}

	in.log.WithFields(logrus.Fields{
		"path":    path,
		"type":    cl.Result,
		"dialect": report.Dialect,
	}).Debug("inspected file")
	return report, nil
}

// sniff infers the dialect of report's file from a fresh random sample
func (in *Inspector) sniff(ctx context.Context, report *Report) error {
	samplerOpts := []sampling.Option{
		sampling.WithContext(ctx),
		sampling.WithChunkSize(in.chunkSize),
		sampling.WithLogger(in.log),
	}
	if in.seed != nil {
		n := in.seedCalls.Add(1) - 1
		samplerOpts = append(samplerOpts, sampling.WithSeed(*in.seed+n))
	}
	sampler := sampling.New(in.fs, report.Path, samplerOpts...)

	sniffer, err := dialect.New(sampler, in.snifferOptions()...)
	if err != nil {
		return err
	}

	// Delimiters outside the inference candidates (pipe) come from the type
	if b, ok := report.Type().Delimiter(); ok {
		if d, ok := dialect.DelimiterFor(b); ok && !slices.Contains(dialect.Delimiters(), d) {
			if err := sniffer.SetDelimiter(d); err != nil {
				return err
			}
		}
	}
	if in.description != nil {
		if err := sniffer.Apply(*in.description); err != nil {
			return err
		}
	}

	d, err := sniffer.Dialect()
	if err != nil {
		return err
	}

	sample := sampling.NewSample(sniffer.Sample())
	report.Dialect = &d
	report.SampleBytes = sample.Len()
	report.Fingerprint = fmt.Sprintf("%016x", sample.Fingerprint())
	report.Origins = make(map[string]string, len(dialect.Characteristics()))
	for _, c := range dialect.Characteristics() {
		report.Origins[c.String()] = sniffer.Origin(c).String()
	}
	return nil
}

func (in *Inspector) snifferOptions() []dialect.Option {
	opts := []dialect.Option{
		dialect.WithLogger(in.log),
		dialect.WithBytesToAnalyze(in.bytesToAnalyze),
		dialect.WithMaxEncodingAttempts(in.maxAttempts),
		dialect.WithCharsetDetector(in.detector),
		dialect.WithResolver(in.resolver),
	}
	if in.threshold != nil {
		opts = append(opts, dialect.WithHeaderThreshold(*in.threshold))
	}
	return opts
}

// InspectAll inspects every regular file below dir whose path relative to
// dir matches pattern. In the glob, "*" stays within one directory and
// "**" crosses directories; an empty pattern matches everything.
func (in *Inspector) InspectAll(ctx context.Context, dir, pattern string) ([]*Report, error) {
	selector, err := filesniff.PathGlob(dir, pattern)
	if err != nil {
		return nil, err
	}
	return in.InspectSelected(ctx, dir, selector)
}

// InspectSelected inspects every file below dir that selector matches.
// Reports are ordered by path. Files that fail are skipped and their
// errors joined into the returned error.
func (in *Inspector) InspectSelected(ctx context.Context, dir string, selector filesniff.FileSelector) ([]*Report, error) {
	entries, err := filesniff.ListWithSelector(ctx, in.fs, dir, selector, true)
	if err != nil {
		return nil, err
	}

	var reports []*Report
	var errs []error
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return reports, err
		}

		report, err := in.Inspect(ctx, entry.Path)
		if err != nil {
			in.log.WithError(err).WithField("path", entry.Path).Warn("inspection failed")
			errs = append(errs, err)
			continue
		}
		reports = append(reports, report)
	}
	return reports, errors.Join(errs...)
}
