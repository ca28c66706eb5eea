package extract

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"encoding/xml"
	"errors"
	"io"
	"os"
	"path"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
)

// plaintextExts are read verbatim; invalid UTF-8 bytes are replaced rather
// than rejected so a stray binary sequence in a log file does not hide the
// rest of its content from the scanner.
var plaintextExts = []string{
	"txt", "md", "json", "xml", "yaml", "yml", "log",
	"py", "js", "ts", "html", "css", "sql", "sh", "bat",
	"ini", "cfg", "conf", "env", "properties",
}

func registerDefaults(a *Adapter) {
	for _, ext := range plaintextExts {
		a.Register(ext, decodePlaintext)
	}
	a.Register("csv", decodeSeparated(','))
	a.Register("tsv", decodeSeparated('\t'))
	a.Register("xlsx", decodeWorkbook)
	a.Register("xlsm", decodeWorkbook)
	a.Register("pdf", decodePDF)
	a.Register("docx", decodeDocx)
	a.Register("pptx", decodePptx)
	// Legacy binary workbooks are recognized so they surface as
	// decoder_unavailable instead of unsupported_format.
	a.Register("xls", nil)
}

func decodePlaintext(_ context.Context, filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(data), "�"), nil
}

func decodeSeparated(comma rune) Decoder {
	return func(ctx context.Context, filePath string) (string, error) {
		f, err := os.Open(filePath)
		if err != nil {
			return "", err
		}
		defer f.Close()

		r := csv.NewReader(f)
		r.Comma = comma
		r.FieldsPerRecord = -1
		r.LazyQuotes = true

		var sb strings.Builder
		for row := 0; ; row++ {
			if row%256 == 0 {
				if err := ctx.Err(); err != nil {
					return "", err
				}
			}
			record, err := r.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return "", err
			}
			if sb.Len() > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString(strings.Join(record, " "))
		}
		return sb.String(), nil
	}
}

func decodeWorkbook(ctx context.Context, filePath string) (string, error) {
	wb, err := excelize.OpenFile(filePath)
	if err != nil {
		return "", err
	}
	defer wb.Close()

	var sb strings.Builder
	for _, sheet := range wb.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		rows, err := wb.GetRows(sheet)
		if err != nil {
			return "", err
		}
		for i, row := range rows {
			if i%256 == 0 {
				if err := ctx.Err(); err != nil {
					return "", err
				}
			}
			if sb.Len() > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString(strings.Join(row, " "))
		}
	}
	return sb.String(), nil
}

func decodePDF(ctx context.Context, filePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	data, err := io.ReadAll(plain)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeDocx(ctx context.Context, filePath string) (string, error) {
	return decodeOfficeXML(ctx, filePath, func(name string) bool {
		return name == "word/document.xml"
	})
}

func decodePptx(ctx context.Context, filePath string) (string, error) {
	return decodeOfficeXML(ctx, filePath, func(name string) bool {
		dir, base := path.Split(name)
		return dir == "ppt/slides/" && strings.HasPrefix(base, "slide") && strings.HasSuffix(base, ".xml")
	})
}

// decodeOfficeXML pulls the text runs (<w:t>/<a:t> elements) out of the XML
// parts selected by wantPart inside an OOXML container.
func decodeOfficeXML(ctx context.Context, filePath string, wantPart func(string) bool) (string, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return "", err
	}
	defer zr.Close()

	var sb strings.Builder
	for _, zf := range zr.File {
		if !wantPart(zf.Name) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if err := appendTextRuns(ctx, &sb, zf); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func appendTextRuns(ctx context.Context, sb *strings.Builder, zf *zip.File) error {
	rc, err := zf.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	inRun := 0
	tokens := 0
	for {
		tokens++
		if tokens%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "t" {
				inRun++
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				if inRun > 0 {
					inRun--
				}
			case "p":
				// Paragraph boundary keeps line-oriented patterns intact.
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inRun > 0 {
				if sb.Len() > 0 && !endsWithSpace(sb) {
					sb.WriteByte(' ')
				}
				sb.Write(el)
			}
		}
	}
}

func endsWithSpace(sb *strings.Builder) bool {
	s := sb.String()
	return s[len(s)-1] == ' ' || s[len(s)-1] == '\n'
}
