package dialect

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/gobeaver/filesniff/internal/logging"
)

const (
	// DefaultBytesToAnalyze is the size of the initial sample
	DefaultBytesToAnalyze = 16184

	// DefaultMaxEncodingAttempts bounds the sampling rounds of encoding
	// inference
	DefaultMaxEncodingAttempts = 5
)

// SampleProvider supplies up to maxBytes bytes of the file being sniffed.
// Each call may return a different sample.
type SampleProvider interface {
	RandomSample(maxBytes int) ([]byte, error)
}

// Resolver is consulted when inferring c fails with err. A non-nil value is
// assigned to c as if set explicitly; it must be valid for c. Returning nil
// or an error keeps the original failure.
type Resolver func(c Characteristic, err error) (any, error)

// Origin tells where a characteristic's current value came from
type Origin uint8

const (
	OriginUnset Origin = iota
	OriginInferred
	OriginExplicit
)

func (o Origin) String() string {
	switch o {
	case OriginInferred:
		return "inferred"
	case OriginExplicit:
		return "explicit"
	}
	return "unset"
}

type slot[T any] struct {
	origin Origin
	value  T
}

func (s *slot[T]) store(v T, o Origin) {
	s.value, s.origin = v, o
}

func (s *slot[T]) reset() {
	var zero T
	s.value, s.origin = zero, OriginUnset
}

// Sniffer infers the dialect of one file from a byte sample. Each
// characteristic is inferred on first access and cached; explicit
// assignments take precedence and are never overwritten by inference.
// Nothing is invalidated automatically: use Reset to force re-inference.
//
// A Sniffer is not safe for concurrent use.
type Sniffer struct {
	provider       SampleProvider
	sample         []byte
	bytesToAnalyze int
	maxAttempts    int
	threshold      float64
	detector       CharsetDetector
	resolver       Resolver
	log            logrus.FieldLogger

	encoding       slot[Encoding]
	delimiter      slot[Delimiter]
	lineTerminator slot[LineTerminator]
	quotechar      slot[Quotechar]
	header         slot[Header]
}

// Option configures a Sniffer
type Option func(*Sniffer)

// WithBytesToAnalyze sets the initial sample size
func WithBytesToAnalyze(n int) Option {
	return func(s *Sniffer) {
		if n > 0 {
			s.bytesToAnalyze = n
		}
	}
}

// WithMaxEncodingAttempts bounds the sampling rounds of encoding inference
func WithMaxEncodingAttempts(n int) Option {
	return func(s *Sniffer) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithCharsetDetector replaces the default chardet-based detector
func WithCharsetDetector(d CharsetDetector) Option {
	return func(s *Sniffer) {
		if d != nil {
			s.detector = d
		}
	}
}

// WithResolver installs a fallback for failed inferences
func WithResolver(r Resolver) Option {
	return func(s *Sniffer) {
		s.resolver = r
	}
}

// WithLogger sets the logger used for debug output
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Sniffer) {
		if log != nil {
			s.log = log
		}
	}
}

// WithHeaderThreshold sets the share of differing column types above which
// the first row is a header
func WithHeaderThreshold(f float64) Option {
	return func(s *Sniffer) {
		if f >= 0 && f < 1 {
			s.threshold = f
		}
	}
}

func newSniffer(opts []Option) *Sniffer {
	s := &Sniffer{
		bytesToAnalyze: DefaultBytesToAnalyze,
		maxAttempts:    DefaultMaxEncodingAttempts,
		threshold:      DefaultHeaderThreshold,
		log:            logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.detector == nil {
		s.detector = NewChardetDetector()
	}
	return s
}

// New draws the initial sample from provider
func New(provider SampleProvider, opts ...Option) (*Sniffer, error) {
	s := newSniffer(opts)
	s.provider = provider

	sample, err := provider.RandomSample(s.bytesToAnalyze)
	if err != nil {
		return nil, fmt.Errorf("draw sample: %w", err)
	}
	s.sample = sample
	s.log.WithField("bytes", len(sample)).Debug("sniffer sample drawn")
	return s, nil
}

// NewFromBytes binds the sniffer to a fixed sample. Resampling during
// encoding inference returns the same bytes.
func NewFromBytes(sample []byte, opts ...Option) *Sniffer {
	s := newSniffer(opts)
	s.sample = append([]byte(nil), sample...)
	s.provider = fixedSample(s.sample)
	return s
}

type fixedSample []byte

func (f fixedSample) RandomSample(maxBytes int) ([]byte, error) {
	if maxBytes < len(f) {
		return f[:maxBytes], nil
	}
	return f, nil
}

// Sample returns a copy of the current sample
func (s *Sniffer) Sample() []byte {
	return append([]byte(nil), s.sample...)
}

// Origin reports where the current value of c came from
func (s *Sniffer) Origin(c Characteristic) Origin {
	switch c {
	case CharEncoding:
		return s.encoding.origin
	case CharDelimiter:
		return s.delimiter.origin
	case CharLineTerminator:
		return s.lineTerminator.origin
	case CharQuotechar:
		return s.quotechar.origin
	case CharHeader:
		return s.header.origin
	}
	return OriginUnset
}

// ============================================================================
// Accessors
// ============================================================================

// Encoding returns the encoding, inferring it on first use
func (s *Sniffer) Encoding() (Encoding, error) {
	if s.encoding.origin == OriginUnset {
		e, err := s.InferEncoding()
		if err != nil {
			if rerr := s.resolve(CharEncoding, err); rerr != nil {
				return 0, rerr
			}
			return s.encoding.value, nil
		}
		s.encoding.store(e, OriginInferred)
	}
	return s.encoding.value, nil
}

// SetEncoding assigns the encoding explicitly
func (s *Sniffer) SetEncoding(e Encoding) error {
	if !e.IsValid() {
		return &TypeError{Characteristic: CharEncoding, Value: e}
	}
	s.encoding.store(e, OriginExplicit)
	return nil
}

// Delimiter returns the delimiter, inferring it on first use. Inference
// never fails; the error is reserved for symmetry with other accessors.
func (s *Sniffer) Delimiter() (Delimiter, error) {
	if s.delimiter.origin == OriginUnset {
		s.delimiter.store(s.InferDelimiter(), OriginInferred)
	}
	return s.delimiter.value, nil
}

// SetDelimiter assigns the delimiter explicitly
func (s *Sniffer) SetDelimiter(d Delimiter) error {
	if !d.IsValid() {
		return &TypeError{Characteristic: CharDelimiter, Value: d}
	}
	s.delimiter.store(d, OriginExplicit)
	return nil
}

// LineTerminator returns the line terminator, inferring it on first use
func (s *Sniffer) LineTerminator() (LineTerminator, error) {
	if s.lineTerminator.origin == OriginUnset {
		s.lineTerminator.store(s.InferLineTerminator(), OriginInferred)
	}
	return s.lineTerminator.value, nil
}

// SetLineTerminator assigns the line terminator explicitly
func (s *Sniffer) SetLineTerminator(t LineTerminator) error {
	if !t.IsValid() {
		return &TypeError{Characteristic: CharLineTerminator, Value: t}
	}
	s.lineTerminator.store(t, OriginExplicit)
	return nil
}

// Quotechar returns the quote character, inferring it on first use
func (s *Sniffer) Quotechar() (Quotechar, error) {
	if s.quotechar.origin == OriginUnset {
		q, err := s.InferQuotechar()
		if err != nil {
			if rerr := s.resolve(CharQuotechar, err); rerr != nil {
				return QuoteNone, rerr
			}
			return s.quotechar.value, nil
		}
		s.quotechar.store(q, OriginInferred)
	}
	return s.quotechar.value, nil
}

// SetQuotechar assigns the quote character explicitly
func (s *Sniffer) SetQuotechar(q Quotechar) error {
	if !q.IsValid() {
		return &TypeError{Characteristic: CharQuotechar, Value: q}
	}
	s.quotechar.store(q, OriginExplicit)
	return nil
}

// Header returns whether the first row is a header, inferring it on first
// use
func (s *Sniffer) Header() (Header, error) {
	if s.header.origin == OriginUnset {
		h, err := s.InferHeader()
		if err != nil {
			if rerr := s.resolve(CharHeader, err); rerr != nil {
				return HeaderAbsent, rerr
			}
			return s.header.value, nil
		}
		s.header.store(h, OriginInferred)
	}
	return s.header.value, nil
}

// SetHeader assigns header presence explicitly
func (s *Sniffer) SetHeader(h Header) error {
	s.header.store(h, OriginExplicit)
	return nil
}

// resolve asks the resolver for a replacement after cause. It returns nil
// once a replacement has been stored.
func (s *Sniffer) resolve(c Characteristic, cause error) error {
	if s.resolver == nil {
		return cause
	}
	v, err := s.resolver(c, cause)
	if err != nil || v == nil {
		return cause
	}
	if err := s.Set(c, v); err != nil {
		return errors.Join(cause, err)
	}
	s.log.WithFields(logrus.Fields{
		"characteristic": c,
		"value":          v,
	}).Debug("characteristic resolved after failed inference")
	return nil
}

// ============================================================================
// Inference
// ============================================================================

// InferEncoding runs encoding inference without touching the cache. Each
// round keeps the encodings that decode the sample and accepts the charset
// detector's guess if it is among them. A failed round replaces the sample
// with a fresh one, one BytesToAnalyze larger per round.
func (s *Sniffer) InferEncoding() (Encoding, error) {
	var guess string
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		candidates := Candidates(s.sample)
		var ok bool
		guess, ok = s.detector.Detect(s.sample)

		fields := logrus.Fields{
			"attempt":    attempt,
			"bytes":      len(s.sample),
			"candidates": encodingNames(candidates),
			"guess":      guess,
		}
		if ok {
			if e, found := LookupEncoding(guess); found && containsEncoding(candidates, e) {
				s.log.WithFields(fields).Debug("encoding inferred")
				return e, nil
			}
		}
		s.log.WithFields(fields).Debug("encoding guess rejected")

		if attempt == s.maxAttempts {
			break
		}
		sample, err := s.provider.RandomSample(s.bytesToAnalyze * (attempt + 1))
		if err != nil {
			return 0, fmt.Errorf("resample: %w", err)
		}
		s.sample = sample
	}
	return 0, &EncodingError{Attempts: s.maxAttempts, LastGuess: guess}
}

// InferDelimiter runs delimiter inference without touching the cache
func (s *Sniffer) InferDelimiter() Delimiter {
	d := InferDelimiter(s.sample)
	s.log.WithField("delimiter", d).Debug("delimiter inferred")
	return d
}

// InferLineTerminator runs line terminator inference without touching the
// cache
func (s *Sniffer) InferLineTerminator() LineTerminator {
	t := InferLineTerminator(s.sample)
	s.log.WithField("lineterminator", t).Debug("line terminator inferred")
	return t
}

// InferQuotechar runs quote inference without touching its cache. It
// resolves the encoding and delimiter through their accessors.
func (s *Sniffer) InferQuotechar() (Quotechar, error) {
	enc, err := s.Encoding()
	if err != nil {
		return QuoteNone, err
	}
	if !HasQuotes(s.sample) {
		return QuoteNone, nil
	}

	delim, _ := s.Delimiter()
	text, err := enc.Decode(s.sample)
	if err != nil {
		return QuoteNone, err
	}

	q, err := SniffQuote(text, delim)
	if errors.Is(err, ErrNoDialect) {
		s.log.WithField("delimiter", delim).Debug("no quoting structure found")
		return QuoteNone, nil
	}
	if err != nil {
		return QuoteNone, err
	}
	s.log.WithField("quotechar", q).Debug("quote character inferred")
	return q, nil
}

// InferHeader runs header inference without touching its cache. The
// sample is parsed with the current encoding, delimiter, line terminator
// and quote character.
func (s *Sniffer) InferHeader() (Header, error) {
	d, err := s.partialDialect()
	if err != nil {
		return HeaderAbsent, err
	}

	text, err := d.Encoding.Decode(s.sample)
	if err != nil {
		return HeaderAbsent, err
	}
	rows, err := NewReader(strings.NewReader(text), d).ReadAll()
	if err != nil {
		return HeaderAbsent, err
	}

	h := InferHeader(rows, s.threshold)
	s.log.WithFields(logrus.Fields{"header": h, "rows": len(rows)}).Debug("header inferred")
	return h, nil
}

// partialDialect resolves everything but the header
func (s *Sniffer) partialDialect() (Dialect, error) {
	var d Dialect
	var err error
	if d.Delimiter, err = s.Delimiter(); err != nil {
		return d, err
	}
	if d.LineTerminator, err = s.LineTerminator(); err != nil {
		return d, err
	}
	if d.Quotechar, err = s.Quotechar(); err != nil {
		return d, err
	}
	if d.Encoding, err = s.Encoding(); err != nil {
		return d, err
	}
	return d, nil
}

// Dialect resolves all five characteristics
func (s *Sniffer) Dialect() (Dialect, error) {
	if _, err := s.Encoding(); err != nil {
		return Dialect{}, err
	}
	d, err := s.partialDialect()
	if err != nil {
		return Dialect{}, err
	}
	if d.Header, err = s.Header(); err != nil {
		return Dialect{}, err
	}
	return d, nil
}

// ============================================================================
// By-name access
// ============================================================================

// Get returns the value of c through its accessor
func (s *Sniffer) Get(c Characteristic) (any, error) {
	switch c {
	case CharEncoding:
		return s.Encoding()
	case CharDelimiter:
		return s.Delimiter()
	case CharLineTerminator:
		return s.LineTerminator()
	case CharQuotechar:
		return s.Quotechar()
	case CharHeader:
		return s.Header()
	}
	return nil, fmt.Errorf("%w: %s", ErrInvalidValue, c)
}

// Infer runs inference for c without reading or writing the cache
func (s *Sniffer) Infer(c Characteristic) (any, error) {
	switch c {
	case CharEncoding:
		return s.InferEncoding()
	case CharDelimiter:
		return s.InferDelimiter(), nil
	case CharLineTerminator:
		return s.InferLineTerminator(), nil
	case CharQuotechar:
		return s.InferQuotechar()
	case CharHeader:
		return s.InferHeader()
	}
	return nil, fmt.Errorf("%w: %s", ErrInvalidValue, c)
}

// Set assigns c explicitly. value may be the characteristic's own type or
// a string accepted by its parser; Header also accepts a bool. Anything
// else is a *TypeError.
func (s *Sniffer) Set(c Characteristic, value any) error {
	typeErr := &TypeError{Characteristic: c, Value: value}

	switch c {
	case CharEncoding:
		switch v := value.(type) {
		case Encoding:
			return s.SetEncoding(v)
		case string:
			if e, ok := LookupEncoding(v); ok {
				return s.SetEncoding(e)
			}
		}
	case CharDelimiter:
		switch v := value.(type) {
		case Delimiter:
			return s.SetDelimiter(v)
		case string:
			if d, err := ParseDelimiter(v); err == nil {
				return s.SetDelimiter(d)
			}
		}
	case CharLineTerminator:
		switch v := value.(type) {
		case LineTerminator:
			return s.SetLineTerminator(v)
		case string:
			if t, err := ParseLineTerminator(v); err == nil {
				return s.SetLineTerminator(t)
			}
		}
	case CharQuotechar:
		switch v := value.(type) {
		case Quotechar:
			return s.SetQuotechar(v)
		case string:
			if q, err := ParseQuotechar(v); err == nil {
				return s.SetQuotechar(q)
			}
		}
	case CharHeader:
		switch v := value.(type) {
		case Header:
			return s.SetHeader(v)
		case bool:
			return s.SetHeader(Header(v))
		case string:
			if h, err := ParseHeader(v); err == nil {
				return s.SetHeader(h)
			}
		}
	}
	return typeErr
}

// Reset returns c to the unset state so the next access infers it again
func (s *Sniffer) Reset(c Characteristic) {
	switch c {
	case CharEncoding:
		s.encoding.reset()
	case CharDelimiter:
		s.delimiter.reset()
	case CharLineTerminator:
		s.lineTerminator.reset()
	case CharQuotechar:
		s.quotechar.reset()
	case CharHeader:
		s.header.reset()
	}
}

// Apply assigns every characteristic desc describes. Nothing is assigned
// when any described value is invalid.
func (s *Sniffer) Apply(desc Description) error {
	values, err := desc.values()
	if err != nil {
		return err
	}
	for _, c := range Characteristics() {
		if v, ok := values[c]; ok {
			if err := s.Set(c, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func containsEncoding(list []Encoding, e Encoding) bool {
	for _, c := range list {
		if c == e {
			return true
		}
	}
	return false
}

func encodingNames(list []Encoding) []string {
	names := make([]string, len(list))
	for i, e := range list {
		names[i] = e.Codec()
	}
	return names
}
