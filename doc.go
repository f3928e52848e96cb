// Package filesniff identifies files and infers the dialect of delimited
// text: its encoding, delimiter, line terminator, quote character and
// whether it has a header row.
//
// The root package holds what every layer shares: the read-only
// [FileReader] abstraction files are inspected through, the optional
// [CanReadRange] capability used for random sampling, path errors and the
// environment-driven [Config].
//
// # Packages
//
//   - driver/local, driver/memory and driver/zip implement [FileReader]
//   - driver/s3, driver/gcs, driver/azure and driver/sftp are separate
//     modules reading remote storage with ranged requests
//   - filetype classifies files by extension, signature and content
//   - sampling draws random byte samples from large files
//   - dialect infers, validates, reads and writes delimited text dialects
//   - filevalidator checks files against size, type, dialect and row constraints
//   - inspect composes all of the above into one report per file
//
// # Basic Usage
//
//	fs, err := local.New("./incoming")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report, err := inspect.Inspect(ctx, fs, "orders.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(report.Type(), report.Dialect)
//
// A dialect can be used to read the file back:
//
//	rc, _ := fs.Read(ctx, "orders.csv")
//	defer rc.Close()
//	records, err := dialect.NewDecodingReader(rc, *report.Dialect).ReadAll()
//
// # Selecting and Mounting
//
// [ListWithSelector] walks a listing with composable selectors, and a
// [MountManager] presents several readers as one tree:
//
//	mm := filesniff.NewMountManager()
//	_ = mm.Mount("/landing", localFS)
//	_ = mm.Mount("/archive", s3FS)
//	csv, _ := filesniff.PathGlob("/", "**.csv")
//	reports, err := inspect.New(mm).InspectSelected(ctx, "/", csv)
//
// # Overriding Inference
//
// Any characteristic can be assigned instead of inferred. Assigned values
// always win and are never overwritten:
//
//	s, _ := dialect.New(sampling.New(fs, "orders.csv"))
//	_ = s.SetDelimiter(dialect.DelimiterSemicolon)
//	d, err := s.Dialect()
//
// # Configuration
//
// Settings are read from environment variables:
//
//	BEAVER_FILESNIFF_LOCAL_BASE_PATH=./incoming
//	BEAVER_FILESNIFF_BYTES_TO_ANALYZE=16184
//	BEAVER_FILESNIFF_SEED=42
//	BEAVER_FILESNIFF_LOG_LEVEL=debug
//
//	in, err := inspect.Default()
//
// # Error Handling
//
// File access errors are [*PathError] values wrapping sentinels such as
// [ErrNotExist]; use [IsNotExist] or errors.Is to test for them. Dialect
// failures wrap the dialect package's sentinel errors.
package filesniff
