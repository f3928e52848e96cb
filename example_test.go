package filesniff_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/gobeaver/filesniff/dialect"
	"github.com/gobeaver/filesniff/driver/memory"
	"github.com/gobeaver/filesniff/filetype"
	"github.com/gobeaver/filesniff/filevalidator"
	"github.com/gobeaver/filesniff/inspect"
	"github.com/gobeaver/filesniff/sampling"
)

const orders = "id;customer;ordered\n1;alice;2021-03-04\n2;bob;2021-05-06\n3;carol;2021-07-08\n"

func Example() {
	ctx := context.Background()

	fs := memory.New()
	_ = fs.WriteBytes("orders.csv", []byte(orders))

	report, err := inspect.Inspect(ctx, fs, "orders.csv")
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	fmt.Println(report.Type())
	fmt.Println(report.Dialect)
	// Output:
	// CSV
	// encoding=ASCII delimiter=SEMICOLON lineterminator=LF quotechar=NONE header=PRESENT
}

func Example_readBack() {
	ctx := context.Background()

	fs := memory.New()
	_ = fs.WriteBytes("orders.csv", []byte(orders))

	report, _ := inspect.Inspect(ctx, fs, "orders.csv")

	rc, _ := fs.Read(ctx, "orders.csv")
	defer rc.Close()

	records, err := dialect.NewDecodingReader(rc, *report.Dialect).ReadAll()
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	for _, record := range records[1:] {
		fmt.Println(strings.Join(record, " | "))
	}
	// Output:
	// 1 | alice | 2021-03-04
	// 2 | bob | 2021-05-06
	// 3 | carol | 2021-07-08
}

func Example_overrideInference() {
	ctx := context.Background()

	fs := memory.New()
	_ = fs.WriteBytes("orders.csv", []byte(orders))

	s, err := dialect.New(sampling.New(fs, "orders.csv", sampling.WithContext(ctx)))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	// the first row is data, not labels
	_ = s.SetHeader(dialect.HeaderAbsent)

	d, _ := s.Dialect()
	fmt.Println(d.Delimiter, d.Header)
	fmt.Println(s.Origin(dialect.CharDelimiter), s.Origin(dialect.CharHeader))
	// Output:
	// SEMICOLON ABSENT
	// inferred explicit
}

func Example_writeDialect() {
	d := dialect.Dialect{
		Encoding:       dialect.UTF8,
		Delimiter:      dialect.DelimiterTab,
		LineTerminator: dialect.LF,
		Quotechar:      dialect.QuoteSingle,
		Header:         dialect.HeaderPresent,
	}

	var buf bytes.Buffer
	w := dialect.NewWriter(&buf, d)
	_ = w.WriteAll([][]string{
		{"name", "note"},
		{"alice", "it's\tfine"},
	})
	_ = w.Close()

	fmt.Printf("%q\n", buf.String())
	// Output:
	// "name\tnote\nalice\t'it''s\tfine'\n"
}

func Example_classify() {
	ctx := context.Background()

	fs := memory.New()
	_ = fs.WriteBytes("archive.bin", []byte("PK\x03\x04rest of the archive"))

	cl, err := filetype.New(fs).Explain(ctx, "archive.bin")
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println(cl.Extension, cl.Signature, cl.Result, cl.Result.MIMEType())
	// Output:
	// UNKNOWN ZIP ZIP application/zip
}

func Example_validate() {
	ctx := context.Background()

	fs := memory.New()
	_ = fs.WriteBytes("orders.csv", []byte(orders))

	constraints := filevalidator.NewBuilder().
		Types(filetype.CSV).
		Delimiter(dialect.DelimiterComma).
		UniformRows().
		Constraints()

	report, _ := inspect.Inspect(ctx, fs, "orders.csv", inspect.WithConstraints(constraints))
	fmt.Println(report.Validation.Valid)
	fmt.Println(report.Validation.Error())
	// Output:
	// false
	// dialect validation error: delimiter is SEMICOLON, expected COMMA
}
