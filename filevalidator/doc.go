// Package filevalidator checks inspected files against expectations on
// size, type, dialect and row shape.
//
// # Quick Start
//
// Using the CSV preset:
//
//	v := filevalidator.New(filevalidator.CSVConstraints())
//	result, err := v.Validate(ctx, fs, "orders.csv", filetype.CSV, &d)
//	if err != nil {
//	    return err // I/O failure
//	}
//	if !result.Valid {
//	    fmt.Println(result.Summary())
//	}
//
// Using the builder API:
//
//	v := filevalidator.NewBuilder().
//	    MaxSize(50 * filevalidator.MB).
//	    Types(filetype.CSV, filetype.TSV).
//	    Encoding(dialect.UTF8).
//	    RequireHeader().
//	    MaxFieldLength(255).
//	    UniformRows().
//	    Build()
//
// # Checks
//
// Every check that runs is recorded in ValidationResult.Checks:
//
//   - size: MinFileSize and MaxFileSize
//   - extension: AllowedExts, compared case-insensitively
//   - filetype: AllowedTypes against the merged file type
//   - dialect and header: the characteristics set in Constraints.Dialect
//   - field_length and row_length: the rows read with the file's dialect
//
// Violations never surface as the returned error; they are collected as
// ValidationError values in the result. Use IsErrorOfType on
// ValidationResult.Error() to branch on the first one.
//
// Files without a dialect (binary or non-delimited types) skip the dialect
// and row checks with a warning.
package filevalidator
