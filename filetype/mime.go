package filetype

import (
	"mime"
	"strings"
)

// Common MIME types
const (
	MIMETypeTextPlain       = "text/plain"
	MIMETypeTextCSV         = "text/csv"
	MIMETypeTextTSV         = "text/tab-separated-values"
	MIMETypeTextHTML        = "text/html"
	MIMETypeApplicationJSON = "application/json"
	MIMETypeApplicationXML  = "application/xml"
	MIMETypeApplicationPDF  = "application/pdf"
	MIMETypeApplicationZip  = "application/zip"
	MIMETypeOctetStream     = "application/octet-stream"
)

var typeToMIME = map[FileType]string{
	PDF:         MIMETypeApplicationPDF,
	ExcelLegacy: "application/vnd.ms-excel",
	Excel:       "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	CSV:         MIMETypeTextCSV,
	JSON:        MIMETypeApplicationJSON,
	ZIP:         MIMETypeApplicationZip,
	GZIP:        "application/gzip",
	TAR:         "application/x-tar",
	XML:         MIMETypeApplicationXML,
	HTML:        MIMETypeTextHTML,
	Text:        MIMETypeTextPlain,
	JSONL:       "application/jsonl",
	TSV:         MIMETypeTextTSV,
	Pipe:        MIMETypeTextPlain,
	FixedWidth:  MIMETypeTextPlain,
	Numbers:     "application/x-iwork-numbers-sffnumbers",
	Pages:       "application/x-iwork-pages-sffpages",
}

// MIMEType returns the media type of t, without parameters
func (t FileType) MIMEType() string {
	if m, ok := typeToMIME[t]; ok {
		return m
	}
	// Fall back to the system registry
	if ext := t.Extension(); ext != "" {
		if m := mime.TypeByExtension(ext); m != "" {
			if idx := strings.Index(m, ";"); idx > 0 {
				m = m[:idx]
			}
			return m
		}
	}
	return MIMETypeOctetStream
}
